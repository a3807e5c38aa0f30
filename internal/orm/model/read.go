package model

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prodigyview/helium/internal/orm/condition"
	"github.com/prodigyview/helium/internal/orm/storage"
)

// ResultsMode selects the shape of Find results
type ResultsMode int

const (
	// ResultsRecord returns plain rows
	ResultsRecord ResultsMode = iota
	// ResultsModel wraps every row in a model instance of the same definition
	ResultsModel
)

// ReadOptions controls First
type ReadOptions struct {
	// Cache reads and writes the result through the cache. Config.Cache
	// enables it for every read.
	Cache    bool
	CacheTTL time.Duration
	// Fresh always reads from storage. The row is still written back when
	// caching applies, so later cached reads see it.
	Fresh bool
}

// FindOptions controls Find
type FindOptions struct {
	Results  ResultsMode
	Cache    bool
	CacheTTL time.Duration
}

// Results is the outcome of Find
type Results struct {
	Rows []map[string]any
	// Models is set with ResultsModel, one per row
	Models     []*Model
	Pagination *storage.Pagination
}

// Len returns the number of rows
func (r *Results) Len() int {
	return len(r.Rows)
}

// First loads the first record matching spec into the collection and reports
// whether one was found
func (m *Model) First(ctx context.Context, spec condition.Spec, opts ReadOptions) (bool, error) {
	inv := &Invocation{Operation: OpFirst, Spec: &spec, Options: &opts}
	if err := m.run(ctx, inv); err != nil {
		return false, err
	}
	found, _ := inv.Result.(bool)
	return found, nil
}

func (m *Model) first(ctx context.Context, inv *Invocation) error {
	opts, _ := inv.Options.(*ReadOptions)
	if opts == nil {
		opts = &ReadOptions{}
	}

	release, err := m.useConnection()
	if err != nil {
		return err
	}
	defer release()

	q, err := m.query(ctx, inv.Spec, true)
	if err != nil {
		return err
	}

	useCache, ttl := m.caching(opts.Cache, opts.CacheTTL)
	var key string
	if useCache {
		key, useCache = m.cacheKey(q)
	}
	if useCache && !opts.Fresh && !m.cache.HasExpired(ctx, key) {
		var row map[string]any
		err := m.cache.ReadCache(ctx, key, &row)
		if err == nil {
			m.logger.Debug("cache hit", zap.String("key", key))
			m.def.Schema.RestoreRow(row)
			m.load(row)
			inv.Result = len(row) > 0
			return nil
		}
		m.logger.Debug("cache read failed", zap.String("key", key), zap.Error(err))
	}

	rows, err := m.store.Select(ctx, q)
	if err != nil {
		return err
	}
	row := map[string]any{}
	if len(rows) > 0 {
		for k, v := range rows[0] {
			row[k] = v
		}
	}
	m.load(row)
	inv.Result = len(rows) > 0

	if useCache {
		m.writeCache(ctx, key, row, ttl)
	}
	return nil
}

// Find selects the records matching spec. Every row is also appended to the
// collection under the next integer key, and paginated queries store their
// metadata under PaginationKey.
func (m *Model) Find(ctx context.Context, spec condition.Spec, opts FindOptions) (*Results, error) {
	inv := &Invocation{Operation: OpFind, Spec: &spec, Options: &opts}
	if err := m.run(ctx, inv); err != nil {
		return nil, err
	}
	results, _ := inv.Result.(*Results)
	if results == nil {
		results = &Results{}
	}
	return results, nil
}

// cachedResults is the cache entry written by Find
type cachedResults struct {
	Rows       []map[string]any    `json:"rows"`
	Pagination *storage.Pagination `json:"pagination,omitempty"`
}

func (m *Model) find(ctx context.Context, inv *Invocation) error {
	opts, _ := inv.Options.(*FindOptions)
	if opts == nil {
		opts = &FindOptions{}
	}

	release, err := m.useConnection()
	if err != nil {
		return err
	}
	defer release()

	q, err := m.query(ctx, inv.Spec, false)
	if err != nil {
		return err
	}
	if m.documents() {
		q.Fields = nil
	}

	useCache, ttl := m.caching(opts.Cache, opts.CacheTTL)
	var key string
	if useCache {
		key, useCache = m.cacheKey(q)
	}
	if useCache && !m.cache.HasExpired(ctx, key) {
		var cached cachedResults
		err := m.cache.ReadCache(ctx, key, &cached)
		if err == nil {
			m.logger.Debug("cache hit", zap.String("key", key), zap.Int("rows", len(cached.Rows)))
			for _, row := range cached.Rows {
				m.def.Schema.RestoreRow(row)
			}
			inv.Result = m.collect(cached.Rows, cached.Pagination, opts.Results)
			return nil
		}
		m.logger.Debug("cache read failed", zap.String("key", key), zap.Error(err))
	}

	var page *storage.Pagination
	if q.Paginate {
		page, err = m.store.PaginationOffset(ctx, q)
		if err != nil {
			return fmt.Errorf("paginate %s: %w", q.Table, err)
		}
		q.Limit = condition.Int(page.ResultsPerPage)
		q.Offset = condition.Int(page.StartLocation)
	}

	rows, err := m.store.Select(ctx, q)
	if err != nil {
		return err
	}
	inv.Result = m.collect(rows, page, opts.Results)

	if useCache {
		m.writeCache(ctx, key, cachedResults{Rows: rows, Pagination: page}, ttl)
	}
	return nil
}

// collect appends rows to the collection and builds the Results
func (m *Model) collect(rows []map[string]any, page *storage.Pagination, mode ResultsMode) *Results {
	results := &Results{Rows: rows, Pagination: page}
	for _, row := range rows {
		if mode == ResultsModel {
			child := m.spawn(row)
			results.Models = append(results.Models, child)
			m.collection.Add(child)
			continue
		}
		m.collection.Add(row)
	}
	if page != nil {
		m.pagination = page
		m.collection.Set(PaginationKey, page.Map())
	}
	return results
}

// Sync reloads from storage the record identified by the collection's primary key values.
// It returns false when the schema declares no primary key.
func (m *Model) Sync(ctx context.Context) (bool, error) {
	inv := &Invocation{Operation: OpSync}
	if err := m.run(ctx, inv); err != nil {
		return false, err
	}
	ok, _ := inv.Result.(bool)
	return ok, nil
}

func (m *Model) sync(ctx context.Context, inv *Invocation) error {
	keys := m.keyValues()
	if len(keys) == 0 {
		inv.Result = false
		return nil
	}
	if _, err := m.First(ctx, condition.Spec{Conditions: keys}, ReadOptions{Fresh: true}); err != nil {
		return err
	}
	inv.Result = true
	return nil
}

// query builds the storage query for spec. Relational stores get their schema
// checked and their joins rendered.
func (m *Model) query(ctx context.Context, spec *condition.Spec, single bool) (*condition.Query, error) {
	var s condition.Spec
	if spec != nil {
		s = *spec
	}
	documents := m.documents()
	q := condition.Format(s, m.TableName(!documents), documents, single)
	q.GridFS = m.cfg.Storage == StorageGridFS
	if documents {
		return q, nil
	}

	if err := m.CheckSchema(ctx, false); err != nil {
		return nil, err
	}
	if len(s.Join) > 0 {
		join, err := condition.RenderJoins(s.Join, m.def.Joins, resolver{m})
		if err != nil {
			return nil, err
		}
		q.Join = join
	}
	return q, nil
}

func (m *Model) caching(enabled bool, ttl time.Duration) (bool, time.Duration) {
	if ttl <= 0 {
		ttl = m.cfg.CacheTTL
	}
	return (enabled || m.cfg.Cache) && m.cache != nil, ttl
}

func (m *Model) cacheKey(q *condition.Query) (string, bool) {
	key, err := condition.CacheKey(q)
	if err != nil {
		m.logger.Debug("cache key", zap.Error(err))
		return "", false
	}
	return key, true
}

func (m *Model) writeCache(ctx context.Context, key string, data any, ttl time.Duration) {
	if err := m.cache.WriteCache(ctx, key, data, ttl); err != nil {
		m.logger.Debug("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
