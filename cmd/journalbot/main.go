package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/journalbot/config"
	"github.com/alejandrodnm/journalbot/internal/adapters/console"
	"github.com/alejandrodnm/journalbot/internal/adapters/notify"
	"github.com/alejandrodnm/journalbot/internal/adapters/storage"
	"github.com/alejandrodnm/journalbot/internal/adapters/telegram"
	"github.com/alejandrodnm/journalbot/internal/application/intake"
	"github.com/alejandrodnm/journalbot/internal/domain"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	consoleMode := flag.Bool("console", false, "chat through stdin/stdout instead of Telegram")
	report := flag.Bool("report", false, "print the most recent trades and exit")
	ticker := flag.String("ticker", "", "with -report: only trades of this ticker")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	// En modo consola stdout es la conversación; los logs van a stderr.
	var logOut io.Writer = os.Stdout
	if *consoleMode || *report {
		logOut = os.Stderr
	}
	setupLogger(cfg.Log, logOut)

	slog.Info("journalbot starting",
		"config", *configPath,
		"dsn", cfg.Storage.DSN,
		"console", *consoleMode,
		"report", *report,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := options{console: *consoleMode, report: *report, ticker: *ticker}
	if err := run(ctx, cfg, opts); err != nil {
		slog.Error("journalbot exited with error", "err", err)
		cancel()
		os.Exit(1)
	}

	slog.Info("journalbot stopped cleanly")
}

type options struct {
	console bool
	report  bool
	ticker  string
}

// run abre el storage y ejecuta el modo pedido. Todo lo que abre se cierra
// antes de volver.
func run(ctx context.Context, cfg *config.Config, opts options) error {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		return fmt.Errorf("open storage %q: %w", cfg.Storage.DSN, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("failed to close storage", "err", err)
		}
	}()

	if err := store.SeedTickers(ctx, cfg.Journal.Tickers); err != nil {
		return fmt.Errorf("seed tickers: %w", err)
	}

	switch {
	case opts.report:
		return printReport(ctx, store, opts.ticker, cfg.Journal.RecentLimit)
	case opts.console:
		return runConsole(ctx, cfg, store)
	default:
		return runTelegram(ctx, cfg, store)
	}
}

func printReport(ctx context.Context, store *storage.SQLiteStorage, ticker string, limit int) error {
	var (
		trades []domain.Trade
		err    error
	)
	if ticker == "" {
		trades, err = store.RecentTrades(ctx, 0, limit)
	} else {
		trades, err = store.TradesByTicker(ctx, 0, ticker, limit)
	}
	if err != nil {
		return fmt.Errorf("read trades: %w", err)
	}
	notify.NewConsole().PrintTrades(trades)
	return nil
}

func runConsole(ctx context.Context, cfg *config.Config, store *storage.SQLiteStorage) error {
	c := console.New(os.Stdin, os.Stdout, store)
	d := startDispatcher(ctx, c.Resolve(intake.NewFlow(store, c, c)), cfg.Dispatch.Workers)
	defer d.Stop()
	return c.Run(ctx, d)
}

func runTelegram(ctx context.Context, cfg *config.Config, store *storage.SQLiteStorage) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	bot, err := telegram.New(cfg.Telegram.Token, telegram.Config{
		PollTimeoutSeconds: cfg.Telegram.PollTimeoutSeconds,
		SendRatePerSec:     cfg.Telegram.SendRatePerSec,
		RecentLimit:        cfg.Journal.RecentLimit,
		Debug:              cfg.Telegram.Debug,
	}, store)
	if err != nil {
		return err
	}
	d := startDispatcher(ctx, intake.NewFlow(store, bot, bot), cfg.Dispatch.Workers)
	defer d.Stop()
	return bot.Run(ctx, d)
}

func startDispatcher(ctx context.Context, h intake.Handler, workers int) *intake.Dispatcher {
	d := intake.NewDispatcher(h, workers)
	d.Start(ctx)
	slog.Info("dispatcher started", "workers", d.Workers())
	return d
}

func setupLogger(cfg config.LogConfig, w io.Writer) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}
