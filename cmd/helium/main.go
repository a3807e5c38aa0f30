// Command helium runs the helium demo application.
package main

import (
	"embed"
	"io/fs"
	"os"

	"github.com/prodigyview/helium/internal/app"
	"github.com/prodigyview/helium/internal/cli/commands"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

//go:embed web
var webFS embed.FS

func main() {
	commands.Version = Version
	commands.GitCommit = GitCommit
	commands.BuildDate = BuildDate

	var opts []app.Option
	// an on-disk template root from the configuration wins over the embedded views
	if _, err := os.Stat("app/views"); os.IsNotExist(err) {
		web, err := fs.Sub(webFS, "web")
		if err != nil {
			panic(err)
		}
		opts = append(opts, app.WithTemplates(web))
	}

	if err := commands.Execute(commands.Options{AppOptions: opts}); err != nil {
		os.Exit(1)
	}
}
