package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/doc-builder/internal/config"
	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	if !i.Force {
		if _, err := os.Stat(root.Config); err == nil {
			return dberrors.New(dberrors.CategoryConfig, dberrors.SeverityError,
				fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", root.Config))
		}
	}
	if err := os.WriteFile(root.Config, []byte(config.DefaultToolConfig), 0o644); err != nil {
		return dberrors.OutputWriteFailed(root.Config, err)
	}
	fmt.Printf("Wrote %s\n", root.Config)
	return nil
}
