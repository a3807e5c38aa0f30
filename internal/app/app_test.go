package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/prodigyview/helium/internal/cache"
	"github.com/prodigyview/helium/internal/config"
	"github.com/prodigyview/helium/internal/orm/condition"
	"github.com/prodigyview/helium/internal/orm/model"
	"github.com/prodigyview/helium/internal/orm/schema"
	"github.com/prodigyview/helium/internal/orm/storage"
	"github.com/prodigyview/helium/internal/registry"
	"github.com/prodigyview/helium/internal/web/controller"
	"github.com/prodigyview/helium/internal/web/middleware"
)

func noteDefinition() *model.Definition {
	return &model.Definition{
		Name: "Note",
		Schema: schema.New(
			schema.Field{Name: "id", Type: schema.TypeInteger, PrimaryKey: true, AutoIncrement: true},
			schema.Field{Name: "text", Type: schema.TypeString, Length: 200},
		),
	}
}

type notesExtension struct{ err error }

func (e notesExtension) Name() string { return "notes" }

func (e notesExtension) Register(a *App) error {
	if e.err != nil {
		return e.err
	}
	if err := a.RegisterModel(noteDefinition()); err != nil {
		return err
	}
	if err := a.RegisterController("notes", func(reg *registry.Registry) controller.Controller {
		b := controller.NewBase(reg)
		b.Handle("index", func(ctx context.Context) (controller.Result, error) {
			return controller.Vars{"title": "Notes"}, nil
		})
		return b
	}); err != nil {
		return err
	}
	return a.RegisterController("error", func(reg *registry.Registry) controller.Controller {
		return controller.NewBase(reg)
	})
}

func templatesFS() fstest.MapFS {
	return fstest.MapFS{
		"templates/default.html.tmpl": {Data: []byte(`<main>{{ content }}</main>`)},
		"views/notes/index.html.tmpl": {Data: []byte(`<h1>{{ .title }}</h1>`)},
		"public/site.css":             {Data: []byte(`body{}`)},
	}
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...Option) *App {
	t.Helper()
	base := []Option{
		WithLogger(zaptest.NewLogger(t)),
		WithTemplates(templatesFS()),
		WithExtensions(notesExtension{}),
	}
	a, err := New(context.Background(), cfg, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func sqliteConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Database.Default = "main"
	cfg.Database.Connections = map[string]config.ConnectionConfig{
		"main": {Driver: "sqlite3", URL: fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))},
	}
	return cfg
}

func TestNew_DefaultsToDocumentStore(t *testing.T) {
	a := newTestApp(t, nil)

	assert.Equal(t, storage.Mongo, a.Storage().DatabaseType())
	assert.Equal(t, []string{"notes"}, a.Extensions())
	assert.Equal(t, []string{"Note"}, a.Definitions().Names())
	assert.Equal(t, []string{"error", "notes"}, a.Controllers().Names())
	assert.NotNil(t, a.Cache())
	assert.NotNil(t, a.Dispatcher())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = 0

	_, err := New(context.Background(), cfg, WithLogger(zaptest.NewLogger(t)))
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestNew_ExtensionError(t *testing.T) {
	_, err := New(context.Background(), nil,
		WithLogger(zaptest.NewLogger(t)),
		WithExtensions(notesExtension{err: errors.New("nope")}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extension notes")
}

func TestNewModel_SQLStorage(t *testing.T) {
	a := newTestApp(t, sqliteConfig(t))
	ctx := context.Background()

	assert.Equal(t, storage.SQLite, a.Storage().DatabaseType())

	results, err := a.SyncSchemas(ctx, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Note", results[0].Model)
	assert.Equal(t, "note", results[0].Table)

	m, err := a.NewModel("Note")
	require.NoError(t, err)
	ok, err := m.Create(ctx, map[string]any{"text": "hello"}, model.CreateOptions{})
	require.NoError(t, err)
	require.True(t, ok)

	found, err := a.NewModel("Note")
	require.NoError(t, err)
	ok, err = found.First(ctx, condition.Spec{Conditions: map[string]any{"text": "hello"}}, model.ReadOptions{Cache: true})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", found.Get("text"))

	_, err = a.NewModel("Missing")
	assert.ErrorIs(t, err, model.ErrUnknownModel)
}

func TestNewModel_AppliesModelDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Model.ColumnCheck = false
	cfg.Cache.TTL = time.Minute
	a := newTestApp(t, cfg)

	m, err := a.NewModel("Note")
	require.NoError(t, err)
	assert.False(t, m.Config().ColumnCheck)
	assert.True(t, m.Config().CreateTable)
	assert.Equal(t, time.Minute, m.Config().CacheTTL)
}

func TestNew_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Cache.Driver = "redis"
	cfg.Cache.Addr = mr.Addr()

	a := newTestApp(t, cfg)
	require.IsType(t, &cache.RedisCache{}, a.Cache().Backend())

	require.NoError(t, a.Cache().WriteCache(context.Background(), "k", map[string]any{"a": 1}, time.Minute))
	assert.False(t, a.Cache().HasExpired(context.Background(), "k"))
}

func TestNew_RedisUnavailable(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Driver = "redis"
	cfg.Cache.Addr = "127.0.0.1:1"

	_, err := New(context.Background(), cfg, WithLogger(zaptest.NewLogger(t)))
	assert.Error(t, err)
}

func TestHandler_Dispatches(t *testing.T) {
	a := newTestApp(t, nil)
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/notes")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?rt=notes", nil))
	assert.Equal(t, "<main><h1>Notes</h1></main>", w.Body.String())

	w = httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/site.css", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "body{}", w.Body.String())
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.Server.Addr() + "/notes")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

type countingExtension struct{ calls *int }

func (c countingExtension) Name() string { return "counting" }

func (c countingExtension) Register(*App) error {
	*c.calls++
	return nil
}

func TestExtend(t *testing.T) {
	calls := 0
	Extend(countingExtension{calls: &calls})
	t.Cleanup(func() {
		extMu.Lock()
		extensions = nil
		extMu.Unlock()
	})

	a := newTestApp(t, nil)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"counting", "notes"}, a.Extensions())
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	_, err = NewLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
