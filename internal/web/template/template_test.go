package template

import (
	"bytes"
	"errors"
	"html/template"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodigyview/helium/internal/registry"
	"github.com/prodigyview/helium/internal/web/controller"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"templates/default.html.tmpl":  {Data: []byte(`<main>{{ .title }}|{{ content }}</main>`)},
		"templates/plain.html.tmpl":    {Data: []byte(`{{ content }}`)},
		"views/posts/index.html.tmpl":  {Data: []byte(`<h1>{{ .title }}</h1>{{ range .items }}<i>{{ . }}</i>{{ end }}`)},
		"views/posts/about.html.md":    {Data: []byte("# {{ .title }}\n\n*hi* <script>alert(1)</script>\n")},
		"views/posts/shout.html.tmpl":  {Data: []byte(`{{ upper .title }}`)},
		"views/posts/broken.html.tmpl": {Data: []byte(`{{ .title `)},
	}
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "views/posts/index.html.tmpl", ViewPath(controller.View{View: "posts", Prefix: "index", Type: "html", Extension: "tmpl"}))
	assert.Equal(t, "templates/default.html.tmpl", LayoutPath(controller.DefaultTemplate()))
}

func TestShow_ViewInLayout(t *testing.T) {
	e := NewEngine(testFS())
	tpl := e.New(registry.New())
	tpl.Assign("title", "Posts")
	tpl.Assign("items", []string{"a", "<b>"})

	view := controller.DefaultView().Merge(controller.View{View: "posts", Prefix: "index"})
	var out bytes.Buffer
	require.NoError(t, tpl.Show(&out, view, controller.DefaultTemplate()))
	assert.Equal(t, `<main>Posts|<h1>Posts</h1><i>a</i><i>&lt;b&gt;</i></main>`, out.String())
}

func TestShow_DisabledLayout(t *testing.T) {
	e := NewEngine(testFS())
	tpl := e.New(registry.New())
	tpl.Assign("title", "Solo")

	view := controller.View{View: "posts", Prefix: "index", Type: "html", Extension: "tmpl"}
	var out bytes.Buffer
	require.NoError(t, tpl.Show(&out, view, controller.Template{Disable: true}))
	assert.Equal(t, `<h1>Solo</h1>`, out.String())
}

func TestShow_Markdown(t *testing.T) {
	e := NewEngine(testFS())
	tpl := e.New(registry.New())
	tpl.Assign("title", "About")

	view := controller.View{View: "posts", Prefix: "about", Type: "html", Extension: MarkdownExtension}
	var out bytes.Buffer
	require.NoError(t, tpl.Show(&out, view, controller.Template{Prefix: "plain", Type: "html", Extension: "tmpl"}))

	html := out.String()
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "About</h1>")
	assert.Contains(t, html, "<em>hi</em>")
	assert.NotContains(t, html, "<script>")
}

func TestShow_Funcs(t *testing.T) {
	e := NewEngine(testFS(), WithFuncs(template.FuncMap{"upper": strings.ToUpper}))
	tpl := e.New(registry.New())
	tpl.Assign("title", "loud")

	var out bytes.Buffer
	view := controller.View{View: "posts", Prefix: "shout", Type: "html", Extension: "tmpl"}
	require.NoError(t, tpl.Show(&out, view, controller.Template{Disable: true}))
	assert.Equal(t, "LOUD", out.String())
}

func TestShow_Errors(t *testing.T) {
	e := NewEngine(testFS())
	tpl := e.New(registry.New())

	var out bytes.Buffer
	err := tpl.Show(&out, controller.View{View: "nope", Prefix: "index", Type: "html", Extension: "tmpl"}, controller.DefaultTemplate())
	assert.True(t, errors.Is(err, ErrViewNotFound))

	err = tpl.Show(&out, controller.View{View: "posts", Prefix: "index", Type: "html", Extension: "tmpl"}, controller.Template{Prefix: "missing", Type: "html", Extension: "tmpl"})
	assert.True(t, errors.Is(err, ErrLayoutNotFound))

	err = tpl.Show(&out, controller.View{View: "posts", Prefix: "broken", Type: "html", Extension: "tmpl"}, controller.DefaultTemplate())
	assert.Error(t, err)
	assert.Zero(t, out.Len())
}

func TestCleanup(t *testing.T) {
	tpl := NewEngine(testFS()).New(registry.New()).(*Template)
	tpl.Assign("a", 1)
	tpl.Cleanup()
	assert.Empty(t, tpl.Vars())
}

func TestReload(t *testing.T) {
	fsys := testFS()
	e := NewEngine(fsys, WithReload())
	view := controller.View{View: "posts", Prefix: "index", Type: "html", Extension: "tmpl"}

	var out bytes.Buffer
	require.NoError(t, e.New(registry.New()).Show(&out, view, controller.Template{Disable: true}))

	fsys["views/posts/index.html.tmpl"] = &fstest.MapFile{Data: []byte("changed")}
	out.Reset()
	require.NoError(t, e.New(registry.New()).Show(&out, view, controller.Template{Disable: true}))
	assert.Equal(t, "changed", out.String())
}
