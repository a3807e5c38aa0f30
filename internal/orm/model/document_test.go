package model

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodigyview/helium/internal/orm/condition"
	"github.com/prodigyview/helium/internal/orm/schema"
	"github.com/prodigyview/helium/internal/orm/storage"
	"github.com/prodigyview/helium/internal/orm/storage/memstore"
	"github.com/prodigyview/helium/internal/orm/validation"
)

func noteDefinition() *Definition {
	return &Definition{
		Name: "Note",
		Schema: schema.New(
			schema.Field{Name: "_id", Type: schema.TypeString, PrimaryKey: true, AutoGenerated: true},
			schema.Field{Name: "author", Type: schema.TypeString},
			schema.Field{Name: "text", Type: schema.TypeText},
			schema.Field{Name: "stars", Type: schema.TypeInteger, Default: 0, Cast: schema.CastInteger},
		),
		Validators: validation.Set{
			"author": {{Key: "notempty", Error: "author missing"}},
		},
	}
}

func TestDocuments_CRUD(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	m := New(noteDefinition(), store)

	ok, err := m.Create(ctx, map[string]any{"author": "ann", "text": "hi", "stars": "3"}, CreateOptions{})
	require.NoError(t, err)
	require.True(t, ok)
	_, err = New(noteDefinition(), store).Create(ctx, map[string]any{"author": "bob", "text": "yo"}, CreateOptions{})
	require.NoError(t, err)

	exists, err := store.TableExists(ctx, "note")
	require.NoError(t, err)
	assert.True(t, exists)

	res, err := m.Find(ctx, condition.Spec{Conditions: map[string]any{"author": "ann"}}, FindOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Len())
	assert.Equal(t, int64(3), res.Rows[0]["stars"])
	assert.NotEmpty(t, res.Rows[0]["_id"])

	reader := New(noteDefinition(), store)
	found, err := reader.First(ctx, condition.Spec{Conditions: map[string]any{"author": "bob"}}, ReadOptions{})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "yo", reader.Get("text"))

	ok, err = reader.Update(ctx, map[string]any{"text": "edited"}, condition.Spec{Conditions: map[string]any{"author": "bob"}}, UpdateOptions{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "edited", reader.Get("text"))

	n, err := reader.Delete(ctx, condition.Spec{Conditions: map[string]any{"author": "ann"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	res, err = m.Find(ctx, condition.Spec{}, FindOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Len())
	assert.Equal(t, "edited", res.Rows[0]["text"])
}

func TestDocuments_CheckSchemaIsNoop(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	require.NoError(t, New(noteDefinition(), store).CheckSchema(ctx, true))

	exists, err := store.TableExists(ctx, "note")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestConnectionScoping(t *testing.T) {
	store := memstore.New("archive")
	ctx := context.Background()
	def := noteDefinition()
	cfg := DefaultConfig()
	cfg.Connection = "archive"
	def.Config = &cfg

	m := New(def, store)
	ok, err := m.Create(ctx, map[string]any{"author": "ann"}, CreateOptions{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, memstore.DefaultConnection, store.Connection())

	res, err := New(noteDefinition(), store).Find(ctx, condition.Spec{}, FindOptions{})
	require.NoError(t, err)
	assert.Zero(t, res.Len())

	res, err = m.Find(ctx, condition.Spec{}, FindOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Len())
	assert.Equal(t, memstore.DefaultConnection, store.Connection())
}

func TestConnectionScoping_UnknownConnection(t *testing.T) {
	store := memstore.New()
	m := New(noteDefinition(), store, WithConfig(Config{Connection: "missing"}))

	_, err := m.Find(context.Background(), condition.Spec{}, FindOptions{})
	assert.True(t, errors.Is(err, storage.ErrUnknownConnection))
	assert.Equal(t, memstore.DefaultConnection, store.Connection())
}

func TestInterceptors_Order(t *testing.T) {
	var calls []string
	record := func(name string) Interceptor {
		return func(next Handler) Handler {
			return func(ctx context.Context, inv *Invocation) error {
				calls = append(calls, name+">"+string(inv.Operation))
				err := next(ctx, inv)
				calls = append(calls, name+"<"+string(inv.Operation))
				return err
			}
		}
	}

	m := New(noteDefinition(), memstore.New(), WithInterceptors(record("outer"), record("inner")))
	_, err := m.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"outer>sync", "inner>sync",
		"outer>first", "inner>first", "inner<first", "outer<first",
		"inner<sync", "outer<sync",
	}, calls)
}

func TestInterceptors_RewriteAndShortCircuit(t *testing.T) {
	normalize := func(next Handler) Handler {
		return func(ctx context.Context, inv *Invocation) error {
			if author, ok := inv.Data["author"].(string); ok {
				inv.Data["author"] = strings.ToLower(author)
			}
			return next(ctx, inv)
		}
	}
	readOnly := errors.New("read only")
	deny := func(next Handler) Handler {
		return func(ctx context.Context, inv *Invocation) error {
			return readOnly
		}
	}

	store := memstore.New()
	ctx := context.Background()
	m := New(noteDefinition(), store, WithInterceptors(
		Only(normalize, OpCreate),
		Only(deny, OpDelete),
	))

	_, err := m.Create(ctx, map[string]any{"author": "ANN"}, CreateOptions{})
	require.NoError(t, err)

	res, err := m.Find(ctx, condition.Spec{Conditions: map[string]any{"author": "ann"}}, FindOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Len())

	_, err = m.Delete(ctx, condition.Spec{})
	assert.ErrorIs(t, err, readOnly)
}

func TestFind_ModelResultsInheritInterceptors(t *testing.T) {
	var ops []Operation
	spy := func(next Handler) Handler {
		return func(ctx context.Context, inv *Invocation) error {
			ops = append(ops, inv.Operation)
			return next(ctx, inv)
		}
	}
	store := memstore.New()
	ctx := context.Background()
	_, err := New(noteDefinition(), store).Create(ctx, map[string]any{"author": "ann"}, CreateOptions{})
	require.NoError(t, err)

	m := New(noteDefinition(), store, WithInterceptors(spy))
	res, err := m.Find(ctx, condition.Spec{}, FindOptions{Results: ResultsModel})
	require.NoError(t, err)
	require.Len(t, res.Models, 1)

	ops = nil
	_, err = res.Models[0].Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Operation{OpSync, OpFirst}, ops)
	assert.Equal(t, "ann", res.Models[0].Get("author"))
}

func TestDefinitions(t *testing.T) {
	defs := NewDefinitions()
	require.NoError(t, defs.Register(noteDefinition()))

	err := defs.Register(noteDefinition())
	assert.ErrorIs(t, err, ErrDuplicateModel)

	_, err = defs.Lookup("Nope")
	assert.ErrorIs(t, err, ErrUnknownModel)

	bad := &Definition{Name: "Bad", Schema: schema.New(schema.Field{Name: "a"}, schema.Field{Name: "a"})}
	assert.ErrorIs(t, defs.Register(bad), schema.ErrDuplicateField)

	assert.Equal(t, []string{"Note"}, defs.Names())
	def, ok := defs.Get("Note")
	require.True(t, ok)
	assert.Equal(t, DefaultConfig(), def.config())
}
