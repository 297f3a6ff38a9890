package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/notifyd/pkg/authchain"
	"github.com/dmitrymomot/notifyd/pkg/bus"
	"github.com/dmitrymomot/notifyd/pkg/capability"
	"github.com/dmitrymomot/notifyd/pkg/config"
	"github.com/dmitrymomot/notifyd/pkg/history"
	"github.com/dmitrymomot/notifyd/pkg/httpserver"
	"github.com/dmitrymomot/notifyd/pkg/logger"
	"github.com/dmitrymomot/notifyd/pkg/notify"
	"github.com/dmitrymomot/notifyd/pkg/pincode"
	"github.com/dmitrymomot/notifyd/pkg/settings"
	"github.com/dmitrymomot/notifyd/pkg/systime"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg appConfig
	config.MustLoad(&cfg)

	var log *slog.Logger
	if cfg.Environment == "production" {
		log = logger.New(logger.WithProduction("notifyd"))
	} else {
		log = logger.New(logger.WithDevelopment("notifyd"))
	}
	logger.SetAsDefault(log)

	var storage history.Storage
	if cfg.MongoURL != "" {
		var mcfg history.Config
		config.MustLoad(&mcfg)
		st, err := history.Connect(ctx, mcfg)
		if err != nil {
			log.Error("history storage unavailable", logger.Error(err))
			os.Exit(1)
		}
		storage = st
	} else {
		storage = history.NewMemory()
		log.Warn("MONGODB_URL not set, history kept in memory")
	}

	gate := capability.NewGate(capability.WithGateLogger(log))
	memBus := bus.NewMemory(cfg.BusBuffer)
	defer memBus.Close()

	clock := systime.New(systime.WithLogger(log))
	sched := history.NewScheduler(storage, history.WithSchedulerLogger(log))
	clock.OnSync(sched.HandleSync)
	clock.OnBoot(func(kind string) { sched.HandleBoot(kind, clock.Synced()) })

	settingsSvc := settings.NewMemory(map[string]string{
		settings.KeySystemPin:        cfg.SystemPin,
		settings.KeySystemPinHash:    cfg.SystemPinHash,
		settings.KeyCountry:          cfg.Country,
		settings.KeyStoreMode:        cfg.StoreMode,
		settings.KeyEnableToastPopup: cfg.EnableToastPopup,
	})
	system := settings.NewSystem()
	if err := system.Refresh(ctx, settingsSvc); err != nil {
		log.Error("settings refresh failed", logger.Error(err))
	}

	prompts := pincode.NewManager(system, settingsSvc, promptPoster{memBus},
		pincode.WithLogger(log))

	var authorizer authchain.Authorizer = allowAllAuthorizer{}
	if cfg.AuthzURL != "" {
		authorizer = newHTTPAuthorizer(cfg.AuthzURL)
	} else {
		log.Warn("AUTHZ_URL not set, alert action URIs are not verified")
	}
	chain := authchain.New(authorizer, authchain.WithLogger(log))

	svc := notify.New(gate, memBus, storage, chain, prompts, clock,
		notify.WithLogger(log),
		notify.WithRetention(cfg.Retention))
	svc.SetToastSilenced(system.SilencesToast())

	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))
	if err := srv.Run(ctx, newRouter(svc, memBus, clock, log)); err != nil {
		log.Error("server failed", logger.Error(err))
		os.Exit(1)
	}
}

// promptPoster adapts the presentation bus to the prompt manager.
type promptPoster struct {
	bus bus.Bus
}

func (p promptPoster) PostPrompt(ctx context.Context, payload map[string]any) error {
	return p.bus.Post(ctx, bus.ChannelPrompt, payload)
}
