package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luminahealth/lumina-go/internal/crypto"
	"github.com/luminahealth/lumina-go/internal/store"
)

var (
	historyUser     string
	historyPage     int
	historyPageSize int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a user's journal analysis history",
	Long: `Show a user's processed journal entries, newest first, with decrypted
insights. Raw entry text stays encrypted at rest and is never printed.

Examples:
  lumina history --user alice
  lumina history --user alice --page 2 --page-size 20`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyUser, "user", "u", "", "user id (required)")
	historyCmd.Flags().IntVarP(&historyPage, "page", "p", 1, "page number")
	historyCmd.Flags().IntVar(&historyPageSize, "page-size", 10, "entries per page (max 50)")
	_ = historyCmd.MarkFlagRequired("user")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cipher, err := crypto.NewCipher(cfg.FernetKey)
	if err != nil {
		return fmt.Errorf("init cipher: %w", err)
	}
	recorder := store.New(dbClient, cipher, nil)

	history, err := recorder.History(ctx, historyUser, historyPage, historyPageSize)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	if history.TotalCount == 0 {
		fmt.Println("No journal entries found.")
		return nil
	}

	fmt.Printf("Page %d (%d entries total)\n\n", history.Page, history.TotalCount)
	for i := range history.Entries {
		entry := &history.Entries[i]
		fmt.Printf("%s  %s\n", entry.Timestamp.Format("2006-01-02 15:04"), summaryLine(entry))
		fmt.Printf("  %s\n", entry.TherapeuticInsight)
		if verbose {
			fmt.Printf("  entry: %s\n", entry.NormalizedJournal)
		}
		fmt.Println()
	}

	if history.HasNext {
		fmt.Printf("More entries available: --page %d\n", history.Page+1)
	}
	return nil
}
