package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/luminahealth/lumina-go/internal/models"
	"github.com/luminahealth/lumina-go/internal/pipeline"
)

var (
	processUser string
	processFile string
	processTags []string
	processNoUI bool
)

var processCmd = &cobra.Command{
	Use:   "process [text]",
	Short: "Process a journal entry through the therapeutic pipeline",
	Long: `Process a journal entry: normalize it, analyze emotions and patterns,
assess crisis indicators, generate an embedding, and store the encrypted
record.

The entry text comes from the argument, --file, or stdin.

Examples:
  lumina process "Had a calm walk in the park today, felt at peace." --user alice
  lumina process --file entry.txt --user alice --tags morning,gratitude
  echo "Long day at work..." | lumina process --user alice`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processUser, "user", "u", "", "user id (required)")
	processCmd.Flags().StringVarP(&processFile, "file", "f", "", "read entry text from file")
	processCmd.Flags().StringSliceVar(&processTags, "tags", nil, "tags to attach to the entry")
	processCmd.Flags().BoolVar(&processNoUI, "no-ui", false, "plain output without the progress display")
	_ = processCmd.MarkFlagRequired("user")
}

func runProcess(cmd *cobra.Command, args []string) error {
	text, err := readEntryText(args)
	if err != nil {
		return err
	}

	ctx := context.Background()

	if processNoUI {
		pipe, _, err := buildPipeline(ctx)
		if err != nil {
			return err
		}
		analysis, err := pipe.Process(ctx, text, processUser, processTags)
		if err != nil {
			return fmt.Errorf("process entry: %w", err)
		}
		fmt.Print(renderAnalysis(defaultTheme, analysis))
		return nil
	}

	model := newProcessModel()
	program := tea.NewProgram(model)

	pipe, _, err := buildPipeline(ctx, pipeline.WithStageObserver(
		func(stage pipeline.Stage, status pipeline.StageStatus) {
			program.Send(stageMsg{stage: stage, status: status})
		}))
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		analysis, err := pipe.Process(runCtx, text, processUser, processTags)
		program.Send(resultMsg{analysis: analysis, err: err})
	}()

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("progress display: %w", err)
	}
	if m, ok := final.(processModel); ok {
		if m.quitting {
			cancel()
			return nil
		}
		if m.err != nil {
			os.Exit(1)
		}
	}
	return nil
}

// readEntryText resolves the entry source: positional argument, file, or
// stdin, in that order.
func readEntryText(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if processFile != "" {
		data, err := os.ReadFile(processFile)
		if err != nil {
			return "", fmt.Errorf("read entry file: %w", err)
		}
		return string(data), nil
	}

	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("no entry text: pass it as an argument, via --file, or on stdin")
}

// summaryLine gives the one-line crisis summary used in plain listings.
func summaryLine(a *models.JournalAnalysis) string {
	if !a.CrisisDetected {
		return string(a.Emotions.Primary)
	}
	return fmt.Sprintf("%s, crisis level %d (%s)",
		a.Emotions.Primary, int(a.Crisis.Level), strings.Join(a.Crisis.RecommendedResources, ", "))
}
