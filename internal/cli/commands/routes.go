package commands

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prodigyview/helium/internal/cli/ui"
	"github.com/prodigyview/helium/internal/registry"
	"github.com/prodigyview/helium/internal/web/router"
)

// actionLister is implemented by controllers embedding controller.Base
type actionLister interface {
	Actions() []string
}

func (r *runner) newRoutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List route patterns and registered controllers",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			_, info, _, _ := r.colors()

			cfg, err := r.loadConfig()
			if err != nil {
				return err
			}
			a, err := r.newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			info.Fprintf(out, "Routes (raw route from the %q parameter or the path)\n", cfg.Server.RouteParam)
			routes := ui.NewTable(out, r.noColor, "PATTERN", "CONTROLLER", "ACTION")
			for _, rule := range a.Dispatcher().Routes().Rules() {
				routes.AddRow(rule.Pattern, orDefault(rule.Controller, "{controller}"), orDefault(rule.Action, "{action}"))
			}
			routes.Render()

			info.Fprintln(out, "\nControllers")
			controllers := ui.NewTable(out, r.noColor, "CONTROLLER", "KEY", "ACTIONS")
			for _, name := range a.Controllers().Names() {
				factory, _ := a.Controllers().Lookup(name)
				actions := "-"
				if l, ok := factory(registry.New()).(actionLister); ok {
					names := l.Actions()
					sort.Strings(names)
					actions = strings.Join(names, ", ")
				}
				controllers.AddRow(name, router.Key(name), actions)
			}
			controllers.Render()
			return nil
		},
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
