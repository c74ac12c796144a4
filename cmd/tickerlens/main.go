// tickerlens — company mention sentiment from YouTube finance channels.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tickerlens/tickerlens/internal/analysis"
	"github.com/tickerlens/tickerlens/internal/config"
	"github.com/tickerlens/tickerlens/internal/logging"
	"github.com/tickerlens/tickerlens/internal/nlp"
	"github.com/tickerlens/tickerlens/internal/pipeline"
	"github.com/tickerlens/tickerlens/internal/storage"
	"github.com/tickerlens/tickerlens/internal/youtube"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tickerlens",
	Short: "tickerlens — company mention sentiment from YouTube finance channels",
	Long: `tickerlens watches a YouTube finance channel, transcribes its recent
uploads from captions, finds which listed companies each video talks
about, and scores the sentiment of every mention.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Shared Wiring ---

func buildNLPClient() *nlp.HFClient {
	return nlp.NewHFClient(cfg.NLP.APIKey,
		nlp.WithBaseURL(cfg.NLP.BaseURL),
		nlp.WithSummaryModel(cfg.NLP.SummaryModel),
		nlp.WithSentimentModel(cfg.NLP.SentimentModel),
		nlp.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.NLP.TimeoutSec) * time.Second}),
	)
}

func buildCaptions(log *zap.Logger) *youtube.Captions {
	return youtube.NewCaptions(cfg.Download.Dir, log,
		youtube.WithCaptionsYtdlpPath(cfg.Download.YtdlpPath),
		youtube.WithCaptionsTimeout(time.Duration(cfg.Download.TimeoutSec)*time.Second),
		youtube.WithCaptionsRateLimit(cfg.Download.RatePerMin),
	)
}

func buildLister(log *zap.Logger) pipeline.VideoLister {
	if cfg.Channel.Source == "rss" {
		return youtube.NewFeedLister(log)
	}
	return youtube.NewLister(log, youtube.WithListerYtdlpPath(cfg.Download.YtdlpPath))
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tickerlens %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Setup Command ---

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the database and seed the company registry",
	Long: `Create the SQLite database, migrate its schema, and seed the ticker
registry from the SEC's public company list. Safe to run again; an
already-seeded registry is left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.OpenOrCreate(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		n, err := store.CompanyCount(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			fmt.Printf("✅ Database ready at %s (%d companies already seeded)\n", cfg.Database.Path, n)
			return nil
		}

		fmt.Println("⬇️  Downloading company registry from SEC…")
		companies, err := storage.NewRegistryClient().Fetch(ctx)
		if err != nil {
			return fmt.Errorf("fetch company registry: %w", err)
		}
		if err := store.InsertCompanies(ctx, companies); err != nil {
			return err
		}
		fmt.Printf("✅ Database ready at %s (%d companies seeded)\n", cfg.Database.Path, len(companies))
		return nil
	},
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze the channel's recent uploads",
	Long: `List the configured channel's recent uploads, download the captions of
each, score company mentions, and store one result row per video.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		store, err := storage.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		log := logging.New(cfg.Logging)
		defer logging.Sync(log)

		hf := buildNLPClient()
		p := pipeline.New(pipeline.Options{
			Lister:      buildLister(log),
			Captions:    buildCaptions(log),
			Analyzer:    analysis.NewAnalyzer(store, hf, hf, log),
			Saver:       pipeline.NewResultSaver(store, hf, log),
			ChannelURL:  cfg.Channel.URL,
			Limit:       cfg.Channel.Limit,
			Workers:     cfg.Download.Workers,
			DownloadDir: cfg.Download.Dir,
			Log:         log,
		})

		outcomes, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}

		counts := pipeline.CountStates(outcomes)
		fmt.Printf("\n📊 %d videos: %d done, %d skipped, %d failed\n",
			len(outcomes), counts[pipeline.StateDone], counts[pipeline.StateSkipped], counts[pipeline.StateFailed])
		for _, o := range outcomes {
			if o.State == pipeline.StateDone {
				continue
			}
			line := fmt.Sprintf("  %-8s %s: %s", o.State, o.VideoID, o.Reason)
			if o.Err != nil {
				line += " (" + o.Err.Error() + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [video-id]",
	Short: "Analyze a single video and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID := args[0]
		store, err := storage.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		log := logging.New(cfg.Logging)
		defer logging.Sync(log)

		ctx := cmd.Context()
		transcript, err := buildCaptions(log).Fetch(ctx, videoID)
		if err != nil {
			return fmt.Errorf("fetch captions for %s: %w", videoID, err)
		}

		hf := buildNLPClient()
		result := analysis.NewAnalyzer(store, hf, hf, log).Analyze(ctx, transcript)

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))

		if save, _ := cmd.Flags().GetBool("save"); save {
			publishDate, _ := cmd.Flags().GetString("publish-date")
			saver := pipeline.NewResultSaver(store, hf, log)
			if err := saver.Save(ctx, videoID, publishDate, result); err != nil {
				return err
			}
			fmt.Printf("💾 Saved analysis for %s\n", videoID)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Bool("save", false, "store the result in the database")
	analyzeCmd.Flags().String("publish-date", time.Now().Format("20060102"), "video publish date (YYYYMMDD), used with --save")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and database status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  tickerlens — Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:  %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Channel:      %s (limit %d, source %s)\n", cfg.Channel.URL, cfg.Channel.Limit, cfg.Channel.Source)
		fmt.Printf("    Workers:      %d\n", cfg.Download.Workers)
		fmt.Printf("    Database:     %s\n", cfg.Database.Path)
		fmt.Printf("    NLP models:   %s / %s\n", cfg.NLP.SummaryModel, cfg.NLP.SentimentModel)
		keyStatus := "❌ not set"
		if cfg.NLP.APIKey != "" {
			keyStatus = "✅ set"
		}
		fmt.Printf("    NLP API key:  %s\n", keyStatus)
		fmt.Println()

		store, err := storage.Open(cfg.Database.Path)
		if err != nil {
			fmt.Println("  Database:  not initialized (run `tickerlens setup`)")
			fmt.Println("═══════════════════════════════════════")
			return nil
		}
		defer store.Close()

		ctx := cmd.Context()
		companies, _ := store.CompanyCount(ctx)
		results, _ := store.ResultCount(ctx)
		fmt.Println("  Database:")
		fmt.Printf("    Companies:    %d\n", companies)
		fmt.Printf("    Analyses:     %d\n", results)
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
