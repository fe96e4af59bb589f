package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"atlwatch"
	"atlwatch/pkg/config"
	"atlwatch/pkg/core"
	"atlwatch/pkg/notification"
	"atlwatch/pkg/price"
	"atlwatch/pkg/storage"
	"atlwatch/pkg/tracker"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := atlwatch.DefaultLog

	cfg, err := config.Load(log)
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	// Bounded run for scheduled/batch invocation
	if cfg.RunFor > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, cfg.RunFor)
		defer timeoutCancel()
	}

	store, err := storage.FromFile(cfg.StateFile)
	if err != nil {
		log.WithError(err).Fatal("failed to open state file")
	}
	defer store.Close()

	source, err := newPriceSource(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize price source")
	}

	var options []tracker.Option
	if cfg.Telegram.Enabled {
		settings := &core.Settings{
			Asset:    cfg.Asset,
			Telegram: cfg.Telegram,
		}

		notifier, err := notification.NewTelegram(settings, log,
			notification.WithStatusFunc(func() string {
				return tracker.StatusText(store, cfg.Asset)
			}))
		if err != nil {
			log.WithError(err).Fatal("failed to initialize telegram")
		}

		notifier.Start()
		options = append(options, tracker.WithNotifier(notifier))
	}

	log.WithFields(map[string]any{
		"asset":    cfg.Asset,
		"source":   cfg.Source,
		"interval": cfg.CheckInterval,
	}).Info("starting all-time low tracker")

	trk := tracker.New(cfg.Asset, source, store, cfg.CheckInterval, log, options...)
	if err := trk.Run(ctx); err != nil {
		log.WithError(err).Fatal("tracker stopped")
	}

	log.Info("shutdown complete")
}

func newPriceSource(ctx context.Context, cfg *config.Config) (core.PriceSource, error) {
	switch cfg.Source {
	case config.SourceCoinGecko:
		return price.NewCoinGecko(cfg.CoinID, cfg.VsCurrency), nil
	case config.SourceBinance:
		return price.NewBinance(ctx, cfg.Pair)
	default:
		return nil, fmt.Errorf("unknown price source %q", cfg.Source)
	}
}
