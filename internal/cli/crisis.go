package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/luminahealth/lumina-go/internal/crypto"
	"github.com/luminahealth/lumina-go/internal/store"
)

var (
	crisisUser string
	crisisDays int
)

var crisisCmd = &cobra.Command{
	Use:   "crisis",
	Short: "List a user's crisis-flagged entries",
	Long: `List the entries flagged as crisis (level 3+) within the lookback
window, with their indicators and assessment reasoning.

Examples:
  lumina crisis --user alice
  lumina crisis --user alice --days 90`,
	RunE: runCrisis,
}

func init() {
	crisisCmd.Flags().StringVarP(&crisisUser, "user", "u", "", "user id (required)")
	crisisCmd.Flags().IntVar(&crisisDays, "days", 30, "lookback window in days")
	_ = crisisCmd.MarkFlagRequired("user")
}

func runCrisis(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cipher, err := crypto.NewCipher(cfg.FernetKey)
	if err != nil {
		return fmt.Errorf("init cipher: %w", err)
	}
	recorder := store.New(dbClient, cipher, nil)

	since := time.Now().UTC().AddDate(0, 0, -crisisDays)
	entries, err := recorder.CrisisHistory(ctx, crisisUser, since)
	if err != nil {
		return fmt.Errorf("load crisis history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Printf("No crisis entries in the last %d days.\n", crisisDays)
		return nil
	}

	fmt.Printf("%d crisis entries in the last %d days:\n\n", len(entries), crisisDays)
	for _, entry := range entries {
		fmt.Printf("%s  level %d (%s), primary emotion %s\n",
			entry.Timestamp.Format("2006-01-02 15:04"), int(entry.Level), entry.Level, entry.PrimaryEmotion)
		if len(entry.Indicators) > 0 {
			fmt.Printf("  indicators: %s\n", strings.Join(entry.Indicators, ", "))
		}
		if entry.Reasoning != "" {
			fmt.Printf("  %s\n", entry.Reasoning)
		}
		fmt.Println()
	}
	return nil
}
