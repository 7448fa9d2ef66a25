package commands

import (
	"fmt"
)

// GenerateCmd implements the 'generate' command for a single study.
type GenerateCmd struct {
	Study       string `arg:"" help:"Study directory containing report.json"`
	TemplateDir string `name:"template-dir" short:"t" help:"Directory holding .docx templates (overrides config)"`
	Output      string `short:"o" help:"Output directory for generated reports (overrides config)"`
}

func (g *GenerateCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadTool(root, g.TemplateDir, g.Output)
	if err != nil {
		return err
	}

	res, err := newGenerator(cfg).Generate(g.Study)
	if err != nil {
		return err
	}
	fmt.Printf("Generated %s\n", res.OutputPath)
	return nil
}
