package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"review-sentiment/config"
	"review-sentiment/metrics"
	"review-sentiment/models"
	"review-sentiment/scraper/web"
	"review-sentiment/sentiment"
	"review-sentiment/server"
	"review-sentiment/services"
	"review-sentiment/source"
	"review-sentiment/storage"
	"review-sentiment/utils"
)

type app struct {
	cfg      *config.Config
	logger   *utils.Logger
	registry *prometheus.Registry
	client   *sentiment.Client
	parser   *services.ReviewParser
	analyzer *services.Analyzer
}

func main() {
	mode := flag.String("mode", "analyze", "analyze | text | scrape | serve")
	input := flag.String("input", "", "review table: local path, http(s) URL or s3://bucket/key (overrides INPUT_PATH)")
	modelName := flag.String("model", "vader", "model used for the printed report and text mode (vader | textblob)")
	text := flag.String("text", "", "text to score in text mode")
	pageURL := flag.String("url", "", "product page to scrape (overrides SCRAPE_URL)")
	flag.Parse()

	cfg := config.Load()
	logger := utils.NewLogger(cfg.Debug)

	model, err := models.ParseModel(*modelName)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, logger)
	logger.Info("=== Review Sentiment Pipeline starting (mode: %s) ===", *mode)
	logger.Info("Config: service %s | concurrency: %d | rate: %dms",
		cfg.SentimentAPIURL, cfg.MaxConcurrency, cfg.RateLimitMs)

	switch *mode {
	case "analyze":
		location := cfg.InputPath
		if *input != "" {
			location = *input
		}
		err = a.analyzeFile(ctx, location, model)
	case "text":
		err = a.scoreText(ctx, *text, model)
	case "scrape":
		target := cfg.ScrapeURL
		if *pageURL != "" {
			target = *pageURL
		}
		err = a.scrape(ctx, target, model)
	case "serve":
		err = a.serve(ctx)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}

	if err != nil {
		logger.Error("%s", services.UserMessage(err))
		logger.Debug("cause: %v", err)
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, logger *utils.Logger) *app {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	client := sentiment.NewClient(cfg.SentimentAPIURL, cfg.RequestTimeout, cfg.ProbeTimeout, logger)
	parser := services.NewReviewParser(logger, m)
	enricher := services.NewEnricher(client, cfg.MaxConcurrency, cfg.RateLimitMs, logger, m)
	aggregator := services.NewAggregator(logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		client:   client,
		parser:   parser,
		analyzer: services.NewAnalyzer(parser, enricher, aggregator, logger),
	}
}

func (a *app) analyzeFile(ctx context.Context, location string, model models.Model) error {
	if location == "" {
		return errors.New("no input given: pass -input or set INPUT_PATH")
	}

	loader := source.NewLoader(a.cfg.AWSRegion, a.cfg.S3Endpoint, a.logger)
	lines, err := loader.Load(ctx, location)
	if err != nil {
		return fmt.Errorf("reading %s: %w", location, err)
	}

	analysis, err := a.analyzer.AnalyzeLines(ctx, lines)
	if err != nil {
		return err
	}
	a.report(ctx, analysis, model)
	return nil
}

func (a *app) scrape(ctx context.Context, target string, model models.Model) error {
	if target == "" {
		return errors.New("no page given: pass -url or set SCRAPE_URL")
	}

	scraper := web.New(a.cfg.ChromeBin, a.cfg.ScrapeSelector, a.cfg.ScrapePages, a.cfg.MaxRetries, a.logger)
	page, err := scraper.Scrape(ctx, target)
	if err != nil {
		return fmt.Errorf("scraping %s: %w", target, err)
	}

	product := page.Product
	if a.cfg.ScrapeProduct != "" {
		product = a.cfg.ScrapeProduct
	}
	a.logger.Info("Scraped %d review texts from %s", len(page.Reviews), page.URL)

	analysis, err := a.analyzer.AnalyzeReviews(ctx, a.parser.FromTexts(product, page.Reviews))
	if err != nil {
		return err
	}
	a.report(ctx, analysis, model)
	return nil
}

// report writes the enriched records to CSV and, when enabled, PostgreSQL,
// then prints the dashboard from the stored copy.
func (a *app) report(ctx context.Context, analysis *services.Analysis, model models.Model) {
	reviews := analysis.Reviews

	csvWriter, err := storage.NewCSVWriter(a.cfg.CSVOutputPath)
	if err != nil {
		a.logger.Error("Failed to create CSV writer: %v", err)
	} else {
		defer csvWriter.Close()
		if err := csvWriter.Write(analysis.UploadID, reviews); err != nil {
			a.logger.Error("CSV write failed: %v", err)
		} else {
			a.logger.Info("Enriched reviews saved to %s", a.cfg.CSVOutputPath)
		}
	}

	if a.cfg.PersistEnabled {
		if stored, ok := a.persist(ctx, analysis); ok {
			reviews = stored
		}
	}

	agg := a.analyzer.Aggregator()
	agg.Print(agg.Aggregate(reviews), reviews, model)
}

func (a *app) persist(ctx context.Context, analysis *services.Analysis) ([]*models.Review, bool) {
	pgWriter, err := storage.NewPostgresWriter(ctx, a.cfg.DSN(), a.retryConfig())
	if err != nil {
		a.logger.Error("Failed to connect to PostgreSQL: %v", err)
		return nil, false
	}
	defer pgWriter.Close()

	if err := pgWriter.Write(analysis.UploadID, analysis.Reviews); err != nil {
		a.logger.Error("PostgreSQL write failed: %v", err)
		return nil, false
	}
	a.logger.Info("Upload %s stored in PostgreSQL (table: reviews)", analysis.UploadID)

	_, stored, err := pgWriter.FetchAll()
	if err != nil {
		a.logger.Error("Failed to fetch reviews from DB for the report: %v", err)
		return nil, false
	}
	return stored, true
}

func (a *app) scoreText(ctx context.Context, text string, model models.Model) error {
	if text == "" {
		return errors.New("no text given: pass -text")
	}
	if err := a.client.Ping(ctx); err != nil {
		return err
	}

	res, err := a.client.Score(ctx, text, model)
	if err != nil {
		return err
	}
	fmt.Printf("\n  %s | score %.4f | %s\n  %q\n\n", model.DisplayName(), res.Score, res.Label.Display(), res.Text)
	return nil
}

func (a *app) serve(ctx context.Context) error {
	var writer storage.ReviewWriter
	if a.cfg.PersistEnabled {
		pgWriter, err := storage.NewPostgresWriter(ctx, a.cfg.DSN(), a.retryConfig())
		if err != nil {
			return fmt.Errorf("connecting to PostgreSQL: %w", err)
		}
		defer pgWriter.Close()
		writer = pgWriter
	}

	srv := server.New(a.analyzer, a.client, a.client.BaseURL(), writer, a.registry, a.logger, a.cfg.Debug)
	httpServer := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP API listening on %s", a.cfg.HTTPAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.logger.Info("Shutting down HTTP API...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (a *app) retryConfig() *utils.RetryConfig {
	return &utils.RetryConfig{
		MaxAttempts: a.cfg.MaxRetries,
		BaseDelay:   time.Second,
		Logger:      a.logger,
	}
}
