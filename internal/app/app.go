package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"currency-rate-alerts/internal/alerting"
	"currency-rate-alerts/internal/config"
	"currency-rate-alerts/internal/detector"
	"currency-rate-alerts/internal/fetcher"
	"currency-rate-alerts/internal/scheduler"
	"currency-rate-alerts/internal/service"
	"currency-rate-alerts/internal/storage"
	"currency-rate-alerts/internal/telegram"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetcher() fetcher.RateFetcher {
	return fetcher.NewProvider(fetcher.ProviderOptions{
		URL:       a.Config.Provider.URL,
		Pair:      a.Config.Provider.Pair,
		Timeout:   a.Config.Provider.RequestTimeout,
		UserAgent: a.Config.Provider.UserAgent,
	}, a.Logger)
}

func (a *App) newStores() (storage.StateStore, storage.HistoryStore) {
	return storage.NewFileStateStore(a.Config.Storage.StatePath),
		storage.NewFileHistoryStore(a.Config.Storage.HistoryPath)
}

func (a *App) detectorParams() detector.Params {
	return detector.Params{
		Lambda:        a.Config.Detector.Lambda,
		Threshold:     a.Config.Detector.ZThreshold,
		Cooldown:      a.Config.Detector.Cooldown,
		WarmupSamples: a.Config.Detector.WarmupSamples,
		Epsilon:       a.Config.Detector.Epsilon,
	}
}

func (a *App) newTelegramClient() (*telegram.Client, error) {
	if a.Config.Telegram.BotToken == "" {
		return nil, errors.New("telegram.bot_token is missing; set it in config, .env, or BOT_TOKEN")
	}
	return telegram.NewClient(a.Config.Telegram.BotToken, a.Config.Telegram.APIEndpoint, a.Logger)
}

func (a *App) targetChatID() (int64, error) {
	if a.Config.Telegram.ChatID == "" {
		return 0, errors.New("telegram.chat_id is missing; set it in config, .env, or CHAT_ID")
	}
	chatID, err := strconv.ParseInt(a.Config.Telegram.ChatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram.chat_id: %w", err)
	}
	return chatID, nil
}

// newNotifier returns nil when telegram alerting is disabled.
func (a *App) newNotifier() (alerting.Notifier, error) {
	if !a.Config.Telegram.Enabled {
		return nil, nil
	}
	client, err := a.newTelegramClient()
	if err != nil {
		return nil, err
	}
	chatID, err := a.targetChatID()
	if err != nil {
		return nil, err
	}
	return alerting.NewTelegramNotifier(client, chatID, a.Logger), nil
}

func (a *App) newService() (*service.Service, error) {
	notifier, err := a.newNotifier()
	if err != nil {
		return nil, err
	}
	states, history := a.newStores()
	svc := service.New(a.Config.Provider.Pair, a.detectorParams(), a.newFetcher(), states, history, notifier, a.Logger)
	return svc, nil
}

// MonitorOnce executes a single monitoring tick, for cron-style deployment.
func (a *App) MonitorOnce(ctx context.Context) error {
	svc, err := a.newService()
	if err != nil {
		return err
	}
	_, err = svc.ProcessTick(ctx, time.Now().UTC())
	return err
}

// Run executes the long-running monitoring loop.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := a.newService()
	if err != nil {
		return err
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	a.Logger.Info().Dur("interval", a.Config.Scheduler.Interval).Msg("starting monitoring service")
	err = sched.Run(ctx, func(ctx context.Context, tick time.Time) error {
		_, tickErr := svc.ProcessTick(ctx, tick)
		return tickErr
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("monitoring service stopped")
	return nil
}

// ExportOptions hold parameters for exporting history rows.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// ChatsOptions configure chat discovery.
type ChatsOptions struct {
	Manual   string
	MarkRead bool
	Raw      bool
}

// SimulateOptions feed a synthetic price pair through the real pipeline.
type SimulateOptions struct {
	Price     float64
	PrevPrice float64
}
