package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/doc-builder/internal/ledger"
)

// HistoryCmd implements the 'history' command over the run ledger.
type HistoryCmd struct {
	Limit int    `short:"n" help:"Maximum number of entries to show" default:"20"`
	RunID string `name:"run" help:"Show only entries for the given run ID"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadTool(root, "", "")
	if err != nil {
		return err
	}

	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	var entries []ledger.Entry
	if h.RunID != "" {
		entries, err = store.ByRun(ctx, h.RunID)
	} else {
		entries, err = store.Recent(ctx, h.Limit)
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No recorded runs")
		return nil
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-8s %-20s %4dms", e.Timestamp.Format("2006-01-02 15:04:05"), e.Outcome, e.Study, e.DurationMS)
		if e.Outcome == "success" {
			line += "  " + e.OutputPath
		} else if e.Error != "" {
			line += "  " + e.Error
		}
		fmt.Println(line)
	}
	return nil
}
