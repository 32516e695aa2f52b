package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/docmake/internal/buildstore"
)

// HistoryCmd lists recent target runs from the build history database.
type HistoryCmd struct {
	Limit int `short:"n" default:"20" help:"Number of runs to show"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if cfg.History.Disabled {
		return fmt.Errorf("build history is disabled in configuration")
	}

	store, err := buildstore.NewStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	records, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No recorded builds yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tTARGET\tMODE\tOUTCOME\tWARNINGS\tDURATION")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			rec.StartedAt.Format("2006-01-02 15:04:05"),
			rec.Target, rec.Mode, rec.Outcome, rec.Warnings, rec.Duration.Round(time.Millisecond))
	}
	return w.Flush()
}
