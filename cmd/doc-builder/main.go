package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/doc-builder/cmd/doc-builder/commands"
	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
	"git.home.luguber.info/inful/doc-builder/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("doc-builder"),
		kong.Description("Render Word study reports from templates, markdown sections and CSV data"),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	if err := ctx.Run(&commands.Global{}, &cli); err != nil {
		fmt.Fprintf(os.Stderr, "doc-builder: %v\n", err)
		os.Exit(dberrors.ExitCodeFor(err))
	}
}
