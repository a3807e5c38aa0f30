package model

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/prodigyview/helium/internal/collection"
	"github.com/prodigyview/helium/internal/orm/condition"
	"github.com/prodigyview/helium/internal/orm/schema"
	"github.com/prodigyview/helium/internal/orm/validation"
)

// CreateOptions controls Create. The zero value validates, fills missing
// fields from the schema and re-reads the created record.
type CreateOptions struct {
	SkipValidation bool
	// IgnoreSchema inserts data without filling defaults
	IgnoreSchema bool
	// SkipSync is accepted for symmetry with Update; Create always re-reads
	SkipSync bool
	// ValidateEvent defaults to the create event
	ValidateEvent *validation.Events
	// SkipReturnID inserts without asking the database for the generated id
	SkipReturnID bool
}

// UpdateOptions controls Update
type UpdateOptions struct {
	SkipValidation bool
	// IgnoreSchema writes data verbatim with the given conditions
	IgnoreSchema bool
	// SkipSync does not reload the record after the write
	SkipSync bool
	// ValidateEvent defaults to the update event
	ValidateEvent *validation.Events
}

// Create validates data and inserts it. On success the model is reloaded from
// the inserted row: by the generated id when the schema has an auto-increment
// field, otherwise by the primary key values written.
func (m *Model) Create(ctx context.Context, data map[string]any, opts CreateOptions) (bool, error) {
	inv := &Invocation{Operation: OpCreate, Data: data, Options: &opts}
	if err := m.run(ctx, inv); err != nil {
		return false, err
	}
	created, _ := inv.Result.(bool)
	return created, nil
}

func (m *Model) create(ctx context.Context, inv *Invocation) error {
	opts, _ := inv.Options.(*CreateOptions)
	if opts == nil {
		opts = &CreateOptions{}
	}

	if !m.documents() {
		if err := m.CheckSchema(ctx, false); err != nil {
			return err
		}
	}

	event := validation.On(validation.EventCreate)
	if opts.ValidateEvent != nil {
		event = *opts.ValidateEvent
	}

	w, err := m.insert(ctx, inv.Data, opts, event)
	if err != nil {
		return err
	}
	inv.Result = w.created

	switch {
	case w.created && w.autoField != "" && w.id != nil:
		_, err = m.First(ctx, condition.Spec{Conditions: map[string]any{w.autoField: w.id}}, ReadOptions{Fresh: true})
	case len(w.keys) > 0:
		_, err = m.First(ctx, condition.Spec{Conditions: w.keys}, ReadOptions{Fresh: true})
	}
	return err
}

type insertResult struct {
	created   bool
	autoField string
	id        any
	keys      map[string]any
}

// insert performs the write of Create on the model's connection
func (m *Model) insert(ctx context.Context, data map[string]any, opts *CreateOptions, event validation.Events) (insertResult, error) {
	var w insertResult

	release, err := m.useConnection()
	if err != nil {
		return w, err
	}
	defer release()

	if !opts.SkipValidation && !m.Validate(ctx, data, ValidateOptions{Event: event}) {
		return w, nil
	}

	table := m.TableName(true)
	if !opts.IgnoreSchema {
		data = merge(data, m.defaults(true))
	}

	var input *collection.Collection
	if opts.SkipValidation {
		input = collection.FromMap(data)
	} else {
		input = collection.New()
		w.keys = make(map[string]any)
		for _, f := range m.def.Schema.Fields() {
			if f.Exclude {
				continue
			}
			value := data[f.Name]
			if schema.IsEmpty(value) {
				value = f.DefaultValue()
				if !f.HasDefault() && f.Null {
					value = nil
				}
			}
			if f.AutoIncrement {
				w.autoField = f.Name
				continue
			}
			if f.AutoGenerated {
				continue
			}
			if f.PrimaryKey {
				w.keys[f.Name] = value
			}
			value, err = schema.Apply(value, f.Cast)
			if err != nil {
				return w, fmt.Errorf("cast %s: %w", f.Name, err)
			}
			input.Set(f.Name, value)
		}
	}

	if !opts.SkipReturnID && w.autoField != "" {
		w.id, err = m.store.InsertReturning(ctx, table, w.autoField, input)
		if err != nil {
			return w, err
		}
		w.created = schema.Truthy(w.id)
	} else {
		if err := m.store.Insert(ctx, table, input); err != nil {
			return w, err
		}
		w.created = true
	}
	m.logger.Debug("record created", zap.String("table", table), zap.Any("id", w.id))
	return w, nil
}

// Update validates data and writes it to the rows selected by spec. With the
// schema applied only declared, non-excluded fields are written, empty values
// keep the loaded record's value, nullable fields given an empty value are
// skipped, and primary keys present in data narrow the WHERE clause to the
// loaded record. It returns true when the write was issued; the model is
// reloaded afterwards unless SkipSync is set.
func (m *Model) Update(ctx context.Context, data map[string]any, spec condition.Spec, opts UpdateOptions) (bool, error) {
	inv := &Invocation{Operation: OpUpdate, Data: data, Spec: &spec, Options: &opts}
	if err := m.run(ctx, inv); err != nil {
		return false, err
	}
	ok, _ := inv.Result.(bool)
	return ok, nil
}

func (m *Model) update(ctx context.Context, inv *Invocation) error {
	opts, _ := inv.Options.(*UpdateOptions)
	if opts == nil {
		opts = &UpdateOptions{}
	}
	var spec condition.Spec
	if inv.Spec != nil {
		spec = *inv.Spec
	}

	ok, err := m.write(ctx, inv.Data, spec, opts)
	if err != nil {
		return err
	}
	inv.Result = ok

	if ok && !opts.SkipSync {
		_, err = m.Sync(ctx)
	}
	return err
}

func (m *Model) write(ctx context.Context, data map[string]any, spec condition.Spec, opts *UpdateOptions) (bool, error) {
	release, err := m.useConnection()
	if err != nil {
		return false, err
	}
	defer release()

	event := validation.On(validation.EventUpdate)
	if opts.ValidateEvent != nil {
		event = *opts.ValidateEvent
	}
	if !opts.IgnoreSchema {
		data = merge(data, m.defaults(false))
	}
	if !opts.SkipValidation && !m.Validate(ctx, data, ValidateOptions{Event: event}) {
		return false, nil
	}

	table := m.TableName(true)
	where := make(map[string]any, len(spec.Conditions))
	for k, v := range spec.Conditions {
		where[k] = v
	}

	var input *collection.Collection
	if opts.IgnoreSchema {
		input = collection.FromMap(data)
	} else {
		input = collection.New()
		for _, f := range m.def.Schema.Fields() {
			value, present := data[f.Name]
			if !present || value == nil {
				continue
			}
			if f.Null && !schema.Truthy(value) {
				continue
			}
			if f.PrimaryKey {
				if current := m.collection.Get(f.Name); schema.Truthy(current) {
					where[f.Name] = current
				} else {
					where[f.Name] = f.DefaultValue()
				}
			}
			if f.Exclude {
				continue
			}
			if !schema.Truthy(value) {
				value = m.collection.Get(f.Name)
			}
			value, err = schema.Apply(value, f.Cast)
			if err != nil {
				return false, fmt.Errorf("cast %s: %w", f.Name, err)
			}
			input.Set(f.Name, value)
		}
	}

	n, err := m.store.Update(ctx, table, input, where)
	if err != nil {
		return false, err
	}
	m.collection.AddAll(input.Map())
	m.logger.Debug("records updated", zap.String("table", table), zap.Int64("rows", n))
	return true, nil
}

// Delete removes the rows matching spec's conditions and returns how many
// were removed
func (m *Model) Delete(ctx context.Context, spec condition.Spec) (int64, error) {
	inv := &Invocation{Operation: OpDelete, Spec: &spec}
	if err := m.run(ctx, inv); err != nil {
		return 0, err
	}
	n, _ := inv.Result.(int64)
	return n, nil
}

func (m *Model) delete(ctx context.Context, inv *Invocation) error {
	release, err := m.useConnection()
	if err != nil {
		return err
	}
	defer release()

	if !m.documents() {
		if err := m.CheckSchema(ctx, false); err != nil {
			return err
		}
	}

	var spec condition.Spec
	if inv.Spec != nil {
		spec = condition.Spec{Conditions: inv.Spec.Conditions}
	}
	q := condition.Format(spec, m.TableName(!m.documents()), m.documents(), false)
	q.GridFS = m.cfg.Storage == StorageGridFS

	n, err := m.store.Delete(ctx, q)
	if err != nil {
		return err
	}
	inv.Result = n
	return nil
}

// merge returns data with missing keys filled from defaults
func merge(data, defaults map[string]any) map[string]any {
	out := make(map[string]any, len(data)+len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range data {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
