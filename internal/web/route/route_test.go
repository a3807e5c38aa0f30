package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_DefaultRules(t *testing.T) {
	table := MustTable()

	tests := []struct {
		path string
		want Route
		vars map[string]string
	}{
		{"/", Route{}, map[string]string{}},
		{"", Route{}, map[string]string{}},
		{"/posts", Route{Controller: "posts"}, map[string]string{"controller": "posts"}},
		{"/posts/", Route{Controller: "posts"}, map[string]string{"controller": "posts"}},
		{"/posts/view", Route{Controller: "posts", Action: "view"}, map[string]string{"controller": "posts", "action": "view"}},
		{"/posts/view/12", Route{Controller: "posts", Action: "view"}, map[string]string{"controller": "posts", "action": "view", "id": "12"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, vars, ok := table.Match(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.vars, vars)
		})
	}

	_, _, ok := table.Match("/a/b/c/d")
	assert.False(t, ok)
}

func TestTable_FixedTargets(t *testing.T) {
	table, err := NewTable(
		Rule{Pattern: "/blog/{slug}", Controller: "posts", Action: "view"},
		Rule{Pattern: "/{controller}/{action}"},
	)
	require.NoError(t, err)

	got, vars, ok := table.Match("/blog/hello%20world")
	require.True(t, ok)
	assert.Equal(t, Route{Controller: "posts", Action: "view"}, got)
	assert.Equal(t, "hello world", vars["slug"])

	got, _, ok = table.Match("/users/list")
	require.True(t, ok)
	assert.Equal(t, Route{Controller: "users", Action: "list"}, got)
}

func TestNewTable_Errors(t *testing.T) {
	_, err := NewTable(Rule{Pattern: "/a"}, Rule{Pattern: "/a"})
	assert.Error(t, err)

	_, err = NewTable(Rule{Pattern: "no-slash"})
	assert.Error(t, err)
}

func TestChiParser(t *testing.T) {
	p := MustTable().NewParser()
	p.SetRoute("/posts/view/3?draft=1&id=99")

	assert.Equal(t, Route{Controller: "posts", Action: "view"}, p.Route())
	assert.Equal(t, "3", p.Variable("id"))
	assert.Equal(t, "1", p.Variable("draft"))
	assert.Equal(t, "", p.Variable("missing"))

	vars := p.Variables()
	vars["id"] = "changed"
	assert.Equal(t, "3", p.Variable("id"))

	p.SetRoute("/x/y/z/w")
	assert.Equal(t, Route{}, p.Route())
	assert.Empty(t, p.Variables())
}
