package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/constadinisio/huntly/internal/ai"
	"github.com/constadinisio/huntly/internal/config"
	"github.com/constadinisio/huntly/internal/dispatch"
	"github.com/constadinisio/huntly/internal/filter"
	"github.com/constadinisio/huntly/internal/ingest"
	"github.com/constadinisio/huntly/internal/model"
	"github.com/constadinisio/huntly/internal/ratelimit"
	"github.com/constadinisio/huntly/internal/retry"
	"github.com/constadinisio/huntly/internal/review"
	"github.com/constadinisio/huntly/internal/scheduler"
	"github.com/constadinisio/huntly/internal/scraper"
	"github.com/constadinisio/huntly/internal/store"
	"github.com/constadinisio/huntly/internal/telegram"
	"github.com/constadinisio/huntly/internal/webclient"
	"github.com/constadinisio/huntly/internal/workana"
)

var dryRun bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scrape-and-review daemon",
	Long:  "Start the scraper, dispatch consumer and Telegram listener; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	startCmd.Flags().BoolVar(&dryRun, "dry-run", false, "scrape once, print fresh listings, persist nothing, then exit")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"feed", cfg.Scrape.URL,
		"interval", cfg.Scrape.Interval.String(),
		"max_age", cfg.Scrape.MaxAge.String(),
		"telegram", cfg.Telegram.Enabled,
		"ai", cfg.AI.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scrapeClient, err := webclient.New(cfg.Scrape.Timeout)
	if err != nil {
		logger.Error("failed to create scrape client", "error", err)
		os.Exit(1)
	}

	limiter := ratelimit.NewHostRateLimiter(cfg.Scrape.MinDelay)
	workanaFetcher, err := scraper.NewWorkanaFetcher(scrapeClient, cfg.Scrape.URL, cfg.Scrape.MaxPages, limiter, logger)
	if err != nil {
		logger.Error("invalid scrape url", "error", err)
		os.Exit(1)
	}
	fetcher := retry.NewRetryFetcher(workanaFetcher, 2, 5*cfg.Scrape.MinDelay, logger)
	freshness := filter.NewFreshnessFilter(cfg.Scrape.MaxAge)

	if dryRun {
		return runDryCycle(ctx, fetcher, freshness, logger)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	tgClient := setupTelegramClient(cfg, logger)
	n := setupNotifier(cfg, tgClient, logger)
	generator := setupGenerator(cfg, logger)
	submitter, err := setupSubmitter(cfg, logger)
	if err != nil {
		logger.Error("failed to load workana session", "error", err)
		os.Exit(1)
	}

	handler := review.NewHandler(sqlStore, generator, submitter, logger)

	var queue *dispatch.Queue
	var ingestor *ingest.Ingestor
	if tgClient != nil {
		backoff := dispatch.Backoff{
			MaxAttempts: cfg.Dispatch.MaxAttempts,
			BaseDelay:   cfg.Dispatch.BaseDelay,
		}
		queue = dispatch.NewQueue(telegram.NewMessenger(tgClient), backoff, logger)
		ingestor = ingest.NewIngestor(sqlStore, queue, true, logger)
	} else {
		ingestor = ingest.NewIngestor(sqlStore, nil, false, logger)
	}

	sched := scheduler.NewScheduler(fetcher, freshness, ingestor, n, cfg.Scrape.Interval, logger)

	if queue != nil {
		go func() {
			if err := queue.Run(ctx); err != nil {
				logger.Error("dispatch consumer error", "error", err)
			}
		}()
	}
	if tgClient != nil {
		listener := telegram.NewListener(tgClient, handler, cfg.Telegram.PollTimeout, logger)
		go func() {
			if err := listener.Run(ctx); err != nil {
				logger.Error("telegram listener error", "error", err)
			}
		}()
	}

	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}

// runDryCycle scrapes once and runs the full ingest pipeline against a
// NopStore, so URL validation and id derivation are exercised without
// persisting anything or prompting the operator.
func runDryCycle(ctx context.Context, fetcher model.FeedFetcher, freshness model.RawJobFilter, logger *slog.Logger) error {
	ingestor := ingest.NewIngestor(store.NewNopStore(), nil, false, logger)

	listings, err := fetcher.FetchJobs(ctx)
	if err != nil {
		logger.Error("dry-run fetch failed", "error", err)
		os.Exit(1)
	}

	kept := 0
	ingestible := 0
	for _, raw := range listings {
		if !freshness.Match(raw) {
			continue
		}
		kept++
		if ingestor.HandleNewJob(raw) {
			ingestible++
		}
		logger.Info("listing", "title", raw.Title, "budget", raw.Budget, "posted", raw.PostedAt, "url", raw.URL)
	}
	logger.Info("dry-run complete", "fetched", len(listings), "fresh", kept, "ingestible", ingestible)
	return nil
}

// setupGenerator builds the proposal generator, disabled when ai.enabled is false.
func setupGenerator(cfg *config.Config, logger *slog.Logger) model.ProposalGenerator {
	if !cfg.AI.Enabled {
		return ai.NewNopGenerator()
	}
	httpClient := &http.Client{Timeout: cfg.AI.Timeout}
	provider := ai.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, httpClient)
	logger.Info("proposal generator enabled", "model", cfg.AI.Model)
	return ai.NewLLMProposalGenerator(provider, ai.ProposalTemplate, logger)
}

// setupSubmitter builds the proposal submitter, disabled when no login
// session file is configured.
func setupSubmitter(cfg *config.Config, logger *slog.Logger) (model.ProposalSubmitter, error) {
	if cfg.Workana.StateFile == "" {
		logger.Warn("workana.state_file not set, proposal submission disabled")
		return workana.NewNopSubmitter(), nil
	}

	submitClient, err := webclient.New(cfg.Scrape.Timeout)
	if err != nil {
		return nil, err
	}
	if err := workana.LoadSession(submitClient, cfg.Workana.StateFile); err != nil {
		return nil, err
	}
	logger.Info("workana session loaded", "state_file", cfg.Workana.StateFile)
	return workana.NewSubmitter(submitClient, logger), nil
}
