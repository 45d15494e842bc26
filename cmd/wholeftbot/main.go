package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"who-left-bot/internal/bot"
	"who-left-bot/internal/command"
	"who-left-bot/internal/commands"
	"who-left-bot/internal/config"
	"who-left-bot/internal/repository"
	"who-left-bot/internal/service"
)

const reloadTimeout = 30 * time.Second

var flags struct {
	token    string
	db       string
	manifest string
	logFile  string
	clean    bool
	debug    bool
}

var rootCmd = &cobra.Command{
	Use:           "wholeftbot",
	Short:         "Telegram bot that tells who left the chat",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flags.token, "token", "", "telegram bot token (overrides TELEGRAM_TOKEN)")
	f.StringVar(&flags.db, "db", "", "sqlite database path (overrides DATABASE_PATH)")
	f.StringVar(&flags.manifest, "manifest", "", "commands manifest (overrides COMMANDS_MANIFEST)")
	f.StringVar(&flags.logFile, "log", "", "also write logs to this file (overrides LOG_FILE)")
	f.BoolVar(&flags.clean, "clean", false, "skip updates received while the bot was offline")
	f.BoolVar(&flags.debug, "debug", false, "log telegram api traffic")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("[fatal] %v", err)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	applyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer file.Close()
		log.SetOutput(io.MultiWriter(os.Stderr, file))
	}

	db, err := repository.NewDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	store := repository.NewActivityRepository(db)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	api.Debug = cfg.Debug
	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	registry := command.NewRegistry(bot.NewMenuPublisher(api))
	factories := commands.Factories(commands.Deps{
		API:      api,
		Store:    store,
		Registry: registry,
		Admins:   cfg,
	})
	source := command.StaticSource(factories)
	if cfg.ManifestPath != "" {
		source = command.ManifestSource{Path: cfg.ManifestPath}
	}
	registry.SetSource(source, factories)
	if err := registry.Load(ctx); err != nil {
		return fmt.Errorf("load commands: %w", err)
	}
	defer registry.UnregisterAll()

	telegramBot := bot.New(api, api.Self, registry, store, &cfg)
	if err := telegramBot.RegisterSelf(ctx); err != nil {
		log.Printf("[warn] register self: %v", err)
	}
	telegramBot.NotifyRestart()

	scheduler := service.NewSchedulerService(time.Local)
	job := service.ReloadJob(ctx, registry, reloadTimeout)
	if cfg.ReloadInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.ReloadInterval, job); err != nil {
			return fmt.Errorf("schedule reload: %w", err)
		}
	}
	if cfg.ReloadAt != "" {
		if _, err := scheduler.ScheduleDaily(cfg.ReloadAt, job); err != nil {
			return fmt.Errorf("schedule reload: %w", err)
		}
	}
	if scheduler.Jobs() > 0 {
		scheduler.Start()
		defer scheduler.Stop()
	}

	log.Println("[info] who-left bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped with error: %w", err)
	}
	log.Println("[info] shutdown complete")
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("token") {
		cfg.TelegramToken = flags.token
	}
	if f.Changed("db") {
		cfg.DatabasePath = flags.db
	}
	if f.Changed("manifest") {
		cfg.ManifestPath = flags.manifest
	}
	if f.Changed("log") {
		cfg.LogFile = flags.logFile
	}
	if f.Changed("clean") {
		cfg.CleanUpdates = flags.clean
	}
	if f.Changed("debug") {
		cfg.Debug = flags.debug
	}
}
