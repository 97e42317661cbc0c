// Package cli provides the command-line interface for lumina.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luminahealth/lumina-go/internal/config"
	"github.com/luminahealth/lumina-go/internal/crypto"
	"github.com/luminahealth/lumina-go/internal/db"
	"github.com/luminahealth/lumina-go/internal/llm"
	"github.com/luminahealth/lumina-go/internal/pipeline"
	"github.com/luminahealth/lumina-go/internal/store"
)

var (
	// Version is set at build time.
	Version = "2.0.0"

	// Global flags
	verbose bool

	// Global config and db client
	cfg      config.Config
	dbClient *db.Client
)

// offlineCommands run without a database connection.
var offlineCommands = map[string]bool{
	"version":   true,
	"help":      true,
	"resources": true,
	"genkey":    true,
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lumina",
	Short: "Therapeutic journaling assistant",
	Long: `Lumina processes journal entries through a therapeutic analysis
pipeline: normalization, six-emotion analysis, crisis assessment with
keyword fallback, optional embedding generation, and encrypted storage.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if offlineCommands[cmd.Name()] {
			return nil
		}

		cfg = config.Load()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		ctx := context.Background()
		dbCfg := db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		var err error
		dbClient, err = db.NewClient(ctx, dbCfg, nil)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
	},
}

// buildPipeline wires the full processing stack: LLM, optional embedder,
// cipher, and record store.
func buildPipeline(ctx context.Context, opts ...pipeline.Option) (*pipeline.Pipeline, *store.Store, error) {
	model, err := llm.NewModel(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init llm: %w", err)
	}

	cipher, err := crypto.NewCipher(cfg.FernetKey)
	if err != nil {
		return nil, nil, fmt.Errorf("init cipher: %w", err)
	}
	recorder := store.New(dbClient, cipher, nil)

	pipeOpts := append([]pipeline.Option{
		pipeline.WithStageTimeout(cfg.StageTimeout),
		pipeline.WithCrisisLLM(cfg.CrisisDetectionEnabled),
	}, opts...)

	if cfg.EmbeddingConfigured() {
		embedder, err := llm.NewEmbedder(ctx, cfg)
		if err != nil {
			// Embedding is best-effort end to end; a misconfigured
			// embedder must not block journaling.
			fmt.Fprintf(os.Stderr, "Warning: embedder unavailable: %v\n", err)
		} else {
			pipeOpts = append(pipeOpts, pipeline.WithEmbedder(embedder))
		}
	}

	return pipeline.New(model, recorder, nil, pipeOpts...), recorder, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(crisisCmd)
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(genkeyCmd)
}
