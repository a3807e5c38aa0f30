package model

import (
	"context"

	"go.uber.org/zap"

	"github.com/prodigyview/helium/internal/orm/validation"
	"github.com/prodigyview/helium/internal/registry"
)

// ValidateOptions controls Validate
type ValidateOptions struct {
	// Event selects the rules to run. The zero value runs rules declared for
	// the empty event only.
	Event validation.Events
	// SkipSync leaves the collection untouched. By default the validated
	// data is copied into it.
	SkipSync bool
	// Display overrides Config.DisplayErrors
	Display *bool
}

// Validate runs the declared validators against data. It returns true when no
// rule failed; failures are available through Error and ValidationErrors and
// are published to the registry given by WithRegistry, or else to the one
// carried by ctx.
func (m *Model) Validate(ctx context.Context, data map[string]any, opts ValidateOptions) bool {
	inv := &Invocation{Operation: OpValidate, Data: data, Options: &opts}
	if err := m.run(ctx, inv); err != nil {
		m.logger.Debug("validation aborted", zap.Error(err))
		return false
	}
	ok, _ := inv.Result.(bool)
	return ok
}

func (m *Model) validate(ctx context.Context, inv *Invocation) error {
	opts, _ := inv.Options.(*ValidateOptions)
	if opts == nil {
		opts = &ValidateOptions{}
	}
	display := m.cfg.DisplayErrors
	if opts.Display != nil {
		display = *opts.Display
	}

	ok, errs := m.engine.Validate(inv.Data, validation.Options{Event: opts.Event, Display: display})
	m.errors = errs

	if !opts.SkipSync {
		for _, k := range sortedKeys(inv.Data) {
			m.collection.Set(k, inv.Data[k])
		}
	}

	reg := m.registry
	if reg == nil {
		reg = registry.FromContext(ctx)
	}
	if reg != nil {
		reg.SetErrors(errs.Map())
	}
	inv.Result = ok
	return nil
}
