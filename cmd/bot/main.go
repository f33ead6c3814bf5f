package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/goonworks/goonbot/clock"
	"github.com/goonworks/goonbot/config"
	"github.com/goonworks/goonbot/discord"
	"github.com/goonworks/goonbot/logger"
	"github.com/goonworks/goonbot/presets"
	"github.com/goonworks/goonbot/store"
)

func main() {
	params, err := build()
	if err != nil {
		log.Fatal(err)
	}

	if err = run(params); err != nil {
		log.Fatal(err)
	}
}

func build() (runParams, error) {
	// A missing .env is fine; production deploys inject real env vars.
	_ = godotenv.Load()

	cfg, err := config.LoadWithDefaults("config/config.yaml", "config/secrets.yaml")
	if err != nil {
		return runParams{}, fmt.Errorf("load config: %w", err)
	}
	config.ApplyEnv(cfg)
	if err := config.ApplyChannelOverrides(cfg, config.DefaultChannelOverridesFile); err != nil {
		return runParams{}, fmt.Errorf("apply channel overrides: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return runParams{}, fmt.Errorf("initialize logger: %w", err)
	}

	if err := config.ValidateToken(cfg.Discord.Token); err != nil {
		return runParams{}, fmt.Errorf("discord token: %w", err)
	}
	if cfg.Discord.GuildID == "" {
		appLogger.WarnW("GUILD_ID not set, slash commands register globally (propagation is slow)")
	}

	library, err := presets.Load(cfg.Presets.Path)
	if err != nil {
		return runParams{}, fmt.Errorf("load activity presets: %w", err)
	}
	for _, w := range library.Warnings() {
		appLogger.WarnW("skipped malformed preset entry",
			"category", w.Category, "index", w.Index, "reason", w.Reason)
	}

	st := store.NewSQLiteStore(store.Params{
		Path:   cfg.Store.Path,
		Logger: appLogger,
	})

	var clk clock.Clock = clock.System()
	var ntpClock *clock.NTPClock
	if cfg.Clock.Enabled {
		ntpClock = clock.FromConfig(cfg.Clock, appLogger)
		clk = ntpClock
	}

	discordClient, err := discord.New(discord.Params{
		Config:  cfg.Discord,
		Presets: library,
		Store:   st,
		Clock:   clk,
		Logger:  appLogger,
	})
	if err != nil {
		return runParams{}, fmt.Errorf("create discord client: %w", err)
	}

	return runParams{
		Config:        cfg,
		Logger:        appLogger,
		Store:         st,
		NTPClock:      ntpClock,
		DiscordClient: discordClient,
	}, nil
}

type runParams struct {
	Config        *config.AppConfig
	Logger        logger.Logger
	Store         *store.SQLiteStore
	NTPClock      *clock.NTPClock
	DiscordClient discord.Discord
}

// run starts all components and runs the application until shutdown.
func run(p runParams) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer p.Logger.Sync()

	if err := p.Store.Open(ctx); err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	if err := p.Store.RestoreFromDisk(ctx, p.Config.Store.Path); err != nil {
		p.Logger.WarnW("restore from disk", "error", err)
	}

	if p.NTPClock != nil {
		if err := p.NTPClock.Start(ctx); err != nil {
			p.Logger.WarnW("start ntp clock", "error", err)
		}
	}

	if err := p.DiscordClient.Start(ctx); err != nil {
		return fmt.Errorf("start discord client: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	p.DiscordClient.Stop()
	if p.NTPClock != nil {
		p.NTPClock.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := p.Store.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return nil
}
