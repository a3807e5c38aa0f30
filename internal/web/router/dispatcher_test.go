package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodigyview/helium/internal/registry"
	"github.com/prodigyview/helium/internal/web/controller"
	"github.com/prodigyview/helium/internal/web/response"
	"github.com/prodigyview/helium/internal/web/route"
	"github.com/prodigyview/helium/internal/web/template"
)

// fakeTemplates records every Show call
type fakeTemplates struct {
	shows    []show
	cleanups int
}

type show struct {
	view controller.View
	tmpl controller.Template
	vars map[string]any
}

func (f *fakeTemplates) New(*registry.Registry) template.Renderer {
	return &fakeRenderer{parent: f, vars: map[string]any{}}
}

type fakeRenderer struct {
	parent *fakeTemplates
	vars   map[string]any
}

func (r *fakeRenderer) Assign(key string, value any) { r.vars[key] = value }

func (r *fakeRenderer) Show(w io.Writer, view controller.View, tmpl controller.Template) error {
	r.parent.shows = append(r.parent.shows, show{view: view, tmpl: tmpl, vars: r.vars})
	_, err := fmt.Fprintf(w, "%s/%s", view.View, view.Prefix)
	return err
}

func (r *fakeRenderer) Cleanup() { r.parent.cleanups++ }

type postsController struct {
	*controller.Base
	cleaned bool
}

func (p *postsController) Cleanup() { p.cleaned = true }

func newPosts(reg *registry.Registry) controller.Controller {
	p := &postsController{Base: controller.NewBase(reg)}
	p.Handle("index", func(ctx context.Context) (controller.Result, error) {
		return controller.Vars{"count": 2}, nil
	})
	p.Handle("view", func(ctx context.Context) (controller.Result, error) {
		r := registry.FromContext(ctx)
		return controller.Vars{"id": r.Route()["id"], "q": r.Query()["q"]}, nil
	})
	p.Handle("save", func(ctx context.Context) (controller.Result, error) {
		return p.Redirect("/posts"), nil
	})
	p.Handle("raw", func(ctx context.Context) (controller.Result, error) {
		p.RenderView(controller.View{Prefix: "custom"})
		return nil, nil
	})
	p.Handle("fail", func(ctx context.Context) (controller.Result, error) {
		return nil, errors.New("boom")
	})
	p.Handle("edit", func(ctx context.Context) (controller.Result, error) {
		return nil, response.NewHTTPError(http.StatusForbidden, "not yours")
	})
	return p
}

func newError(reg *registry.Registry) controller.Controller {
	b := controller.NewBase(reg)
	b.Handle("index", func(context.Context) (controller.Result, error) {
		return &controller.Halt{Code: http.StatusNotFound, Body: "no such page"}, nil
	})
	return b
}

func newDispatcher(t *testing.T, withError bool) (*Dispatcher, *fakeTemplates) {
	t.Helper()
	controllers := NewControllers()
	require.NoError(t, controllers.Register("posts", newPosts))
	if withError {
		require.NoError(t, controllers.Register(ErrorController, newError))
	}
	tpl := &fakeTemplates{}
	return New(controllers, tpl), tpl
}

func TestResolve_Defaults(t *testing.T) {
	d, _ := newDispatcher(t, true)

	tests := []struct {
		raw        string
		controller string
		action     string
	}{
		{"", "index", "index"},
		{"/", "index", "index"},
		{"/posts", "posts", "index"},
		{"/posts/view/3", "posts", "view"},
		{"/a/b/c/d", "index", "index"},
	}
	for _, tt := range tests {
		st, _ := d.Resolve(tt.raw)
		assert.Equal(t, tt.controller, st.Controller, tt.raw)
		assert.Equal(t, tt.action, st.Action, tt.raw)
	}
}

func TestDispatch_RendersView(t *testing.T) {
	d, tpl := newDispatcher(t, true)

	w := httptest.NewRecorder()
	st, err := d.Dispatch(w, httptest.NewRequest(http.MethodGet, "/posts", nil))
	require.NoError(t, err)
	assert.Equal(t, State{Controller: "posts", Action: "index", Resolved: "posts", Invoked: "index"}, st)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "posts/index", w.Body.String())
	require.Len(t, tpl.shows, 1)
	assert.Equal(t, map[string]any{"count": 2}, tpl.shows[0].vars)
	assert.Equal(t, "html", tpl.shows[0].view.Type)
	assert.Equal(t, controller.DefaultTemplate(), tpl.shows[0].tmpl)
	assert.Equal(t, 1, tpl.cleanups)
}

func TestDispatch_RouteParamAndRegistry(t *testing.T) {
	d, tpl := newDispatcher(t, true)

	w := httptest.NewRecorder()
	_, err := d.Dispatch(w, httptest.NewRequest(http.MethodGet, "/?rt=posts/view/7&q=go", nil))
	require.NoError(t, err)

	require.Len(t, tpl.shows, 1)
	assert.Equal(t, "7", tpl.shows[0].vars["id"])
	assert.Equal(t, "go", tpl.shows[0].vars["q"])
	assert.Equal(t, "posts/view", w.Body.String())
}

func TestDispatch_ControllerViewOverride(t *testing.T) {
	d, tpl := newDispatcher(t, true)

	_, err := d.Dispatch(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts/raw", nil))
	require.NoError(t, err)
	require.Len(t, tpl.shows, 1)
	assert.Equal(t, "posts", tpl.shows[0].view.View)
	assert.Equal(t, "custom", tpl.shows[0].view.Prefix)
}

func TestDispatch_RedirectSkipsTemplate(t *testing.T) {
	d, tpl := newDispatcher(t, true)

	w := httptest.NewRecorder()
	_, err := d.Dispatch(w, httptest.NewRequest(http.MethodPost, "/posts/save", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts", w.Header().Get("Location"))
	assert.Equal(t, "302 Found", w.Body.String())
	assert.Empty(t, tpl.shows)
}

func TestDispatch_MissingActionRunsError404(t *testing.T) {
	d, tpl := newDispatcher(t, true)

	w := httptest.NewRecorder()
	st, err := d.Dispatch(w, httptest.NewRequest(http.MethodGet, "/posts/nothing", nil))
	require.NoError(t, err)

	assert.Equal(t, controller.NotFoundAction, st.Invoked)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, controller.NotFoundBody, w.Body.String())
	assert.Empty(t, tpl.shows)
}

func TestDispatch_UnknownControllerFallsBack(t *testing.T) {
	d, _ := newDispatcher(t, true)

	w := httptest.NewRecorder()
	st, err := d.Dispatch(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)

	assert.Equal(t, "missing", st.Controller)
	assert.Equal(t, ErrorController, st.Resolved)
	assert.Equal(t, "index", st.Invoked)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no such page", w.Body.String())
}

func TestDispatch_NoErrorControllerIsFatal(t *testing.T) {
	d, _ := newDispatcher(t, false)

	_, err := d.Dispatch(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.ErrorIs(t, err, ErrNoErrorController)

	w := httptest.NewRecorder()
	d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDispatch_NoControllers(t *testing.T) {
	d := New(NewControllers(), &fakeTemplates{})

	_, err := d.Dispatch(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoControllers)
}

func TestDispatch_ActionError(t *testing.T) {
	d, _ := newDispatcher(t, true)

	_, err := d.Dispatch(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts/fail", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postsController.fail")
}

func TestServeHTTP_HTTPErrorStatus(t *testing.T) {
	d, _ := newDispatcher(t, true)

	r := httptest.NewRequest(http.MethodGet, "/posts/edit", nil)
	r.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	d.ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"forbidden"`)

	w = httptest.NewRecorder()
	d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "500 Internal Server Error", w.Body.String())
}

func TestDispatch_NoRenderer(t *testing.T) {
	controllers := NewControllers()
	controllers.MustRegister("posts", newPosts)
	d := New(controllers, nil)

	_, err := d.Dispatch(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts", nil))
	assert.ErrorIs(t, err, ErrNoRenderer)
}

func TestDispatch_Interceptors(t *testing.T) {
	d, _ := newDispatcher(t, true)

	var order []string
	d.Use(
		func(next ActionHandler) ActionHandler {
			return func(ctx context.Context, c controller.Controller, action string) (controller.Result, error) {
				order = append(order, "outer:"+action)
				return next(ctx, c, action)
			}
		},
		func(next ActionHandler) ActionHandler {
			return func(ctx context.Context, c controller.Controller, action string) (controller.Result, error) {
				order = append(order, "inner:"+action)
				if action == "index" {
					return &controller.Halt{Code: http.StatusForbidden, Body: "denied"}, nil
				}
				return next(ctx, c, action)
			}
		},
	)

	w := httptest.NewRecorder()
	_, err := d.Dispatch(w, httptest.NewRequest(http.MethodGet, "/posts", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"outer:index", "inner:index"}, order)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "denied", w.Body.String())
}

func TestDispatch_CustomRoutes(t *testing.T) {
	controllers := NewControllers()
	controllers.MustRegister("posts", newPosts)
	tpl := &fakeTemplates{}
	d := New(controllers, tpl,
		WithRoutes(route.MustTable(route.Rule{Pattern: "/p/{id}", Controller: "posts", Action: "view"})),
		WithRouteParam("route"))

	_, err := d.Dispatch(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x?route=p/9", nil))
	require.NoError(t, err)
	require.Len(t, tpl.shows, 1)
	assert.Equal(t, "9", tpl.shows[0].vars["id"])
}

func TestControllers(t *testing.T) {
	c := NewControllers()
	require.NoError(t, c.Register("posts", newPosts))
	assert.Error(t, c.Register("posts", newPosts))
	assert.Error(t, c.Register("", newPosts))

	_, ok := c.Lookup("posts")
	assert.True(t, ok)
	_, ok = c.Lookup("postsController")
	assert.False(t, ok)
	assert.Equal(t, "postsController", Key("posts"))
	assert.Equal(t, []string{"posts"}, c.Names())
}
