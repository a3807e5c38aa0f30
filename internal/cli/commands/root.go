// Package commands implements the helium command line.
package commands

import (
	"context"
	"runtime"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/prodigyview/helium/internal/app"
	"github.com/prodigyview/helium/internal/cli/ui"
	"github.com/prodigyview/helium/internal/config"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Options customise the commands, mainly for embedding and tests
type Options struct {
	// AppOptions are passed to app.New
	AppOptions []app.Option
	// Confirm asks a yes/no question. Defaults to a survey prompt.
	Confirm func(message string) (bool, error)
}

type runner struct {
	opts       Options
	configFile string
	noColor    bool
}

// NewRootCommand creates the root command
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Confirm == nil {
		opts.Confirm = surveyConfirm
	}
	r := &runner{opts: opts}

	rootCmd := &cobra.Command{
		Use:   "helium",
		Short: "Helium MVC application server",
		Long: color.CyanString(`Helium - MVC web framework

Routes requests to controllers and renders their views, backed by an ORM
that keeps the database schema in sync with the model definitions.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&r.configFile, "config", "c", "", "Configuration file (default ./helium.yaml)")
	rootCmd.PersistentFlags().BoolVar(&r.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(r.newServeCommand())
	rootCmd.AddCommand(r.newSchemaCommand())
	rootCmd.AddCommand(r.newRoutesCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			noColor, _ := cmd.Flags().GetBool("no-color")
			kv := ui.NewKeyValue(cmd.OutOrStdout(), noColor)
			kv.Add("Helium version", Version)
			kv.Add("Git commit", GitCommit)
			kv.Add("Build date", BuildDate)
			kv.Add("Go version", runtime.Version())
			kv.Render()
		},
	}
}

func (r *runner) loadConfig() (*config.Config, error) {
	if r.configFile != "" {
		return config.LoadFile(r.configFile)
	}
	return config.Load()
}

func (r *runner) newApp(ctx context.Context, cfg *config.Config) (*app.App, error) {
	return app.New(ctx, cfg, r.opts.AppOptions...)
}

func (r *runner) colors() (success, info, warn, fail *color.Color) {
	success = color.New(color.FgGreen, color.Bold)
	info = color.New(color.FgCyan)
	warn = color.New(color.FgYellow, color.Bold)
	fail = color.New(color.FgRed, color.Bold)
	if r.noColor {
		for _, c := range []*color.Color{success, info, warn, fail} {
			c.DisableColor()
		}
	}
	return
}

func surveyConfirm(message string) (bool, error) {
	var ok bool
	prompt := &survey.Confirm{Message: message, Default: false}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Execute runs the root command
func Execute(opts Options) error {
	rootCmd := NewRootCommand(opts)
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
