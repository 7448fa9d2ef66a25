package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/doc-builder/internal/batch"
	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
)

// BatchCmd implements the 'batch' command over a studies root.
type BatchCmd struct {
	Root        string `arg:"" help:"Directory whose subdirectories are studies"`
	TemplateDir string `name:"template-dir" short:"t" help:"Directory holding .docx templates (overrides config)"`
	Output      string `short:"o" help:"Output directory for generated reports (overrides config)"`
}

func (b *BatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadTool(root, b.TemplateDir, b.Output)
	if err != nil {
		return err
	}

	runner := batch.NewRunner(newGenerator(cfg))
	if store := openLedger(cfg); store != nil {
		runner.Ledger = store
		defer func() { _ = store.Close() }()
	}

	summary, err := runner.Run(context.Background(), b.Root)
	if err != nil {
		return err
	}

	for _, o := range summary.Outcomes {
		if o.Err != nil {
			fmt.Printf("failed   %s: %v\n", o.Study, o.Err)
		} else {
			fmt.Printf("ok       %s -> %s\n", o.Study, o.OutputPath)
		}
	}
	fmt.Printf("%d succeeded, %d failed\n", summary.Succeeded(), summary.Failed())

	if summary.Failed() > 0 {
		return dberrors.New(dberrors.CategoryRender, dberrors.SeverityError,
			fmt.Sprintf("%d of %d studies failed", summary.Failed(), len(summary.Outcomes)))
	}
	return nil
}
