// Package main is the entry point for the PancyMod Go application.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/commands"
	"github.com/PancyStudios/PancyModGo/internal/enforcement"
	"github.com/PancyStudios/PancyModGo/internal/events"
	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/metrics"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/PancyStudios/PancyModGo/pkg/mqtt"
	"github.com/PancyStudios/PancyModGo/pkg/web"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Iniciando PancyMod Go...", "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage and the Discord session are independent, open them together
	var (
		backend       database.Backend
		discordClient *discord.ExtendedClient
	)
	startup, startupCtx := errgroup.WithContext(ctx)
	startup.Go(func() error {
		b, err := database.Open(startupCtx, database.Options{
			Kind:     cfg.StorageBackend,
			DataDir:  cfg.DataDir,
			MongoURL: cfg.MongoDBURL,
			DBName:   cfg.DBName,
			GuildID:  cfg.GuildID,
			RedisURL: cfg.RedisURL,
		})
		backend = b
		return err
	})
	startup.Go(func() error {
		c, err := discord.Init(cfg.BotToken)
		discordClient = c
		return err
	})
	if err := startup.Wait(); err != nil {
		logger.Critical(fmt.Sprintf("Error durante el arranque: %v", err), "Main")
		if backend != nil {
			backend.Close()
		}
		os.Exit(1)
	}
	defer backend.Close()

	// Initialize error handler
	errors.Init(cfg.ErrorWebhook, func() {
		if err := discordClient.Stop(); err != nil {
			logger.Error(fmt.Sprintf("Error cerrando Discord: %v", err), "Main")
		}
		if err := backend.Close(); err != nil {
			logger.Error(fmt.Sprintf("Error cerrando almacenamiento: %v", err), "Main")
		}
	})

	// Moderation core, loaded from storage
	svc, err := moderation.NewService(ctx, backend, moderation.Options{TrackedMembers: cfg.TrackedMembers})
	if err != nil {
		logger.Critical(fmt.Sprintf("Error cargando datos de moderación: %v", err), "Main")
		os.Exit(1)
	}
	stats := svc.Stats()
	metrics.SetStats(stats)
	logger.Info(fmt.Sprintf("Sanciones activas: %d silencios, %d baneos | %d advertencias", stats.ActiveMutes, stats.ActiveBans, stats.StoredWarnings), "Main")

	// Initialize MQTT
	mqttClientID := "pancymod"
	if !cfg.IsProd() {
		mqttClientID = "pancymod_canary"
	}
	mqttClient := mqtt.Init(mqtt.Options{
		Host:     cfg.MQTTHost,
		Port:     cfg.MQTTPort,
		Username: cfg.MQTTUser,
		Password: cfg.MQTTPassword,
		ClientID: mqttClientID,
	})
	defer mqttClient.Destroy()

	mqttClient.On("mod/status", func(map[string]interface{}) (interface{}, error) {
		return svc.Stats(), nil
	})

	enforcer := enforcement.New(svc,
		enforcement.NewDiscordRoleSink(discordClient.Session, cfg.MuteRoleID, cfg.BannedRoleID),
		enforcement.NewDiscordNotifier(discordClient.Session, cfg.LogChannelID),
		enforcement.NewAuditNotifier(mqttClient),
	)

	// Register commands and events
	commands.RegisterAll(discordClient, commands.Deps{
		Service:  svc,
		Enforcer: enforcer,
		Backend:  backend,
		Config:   cfg,
	})
	events.RegisterAll(discordClient, events.NewModule(svc, enforcer, cfg))

	// Initialize web server
	webServer := web.Init(web.Options{WebhookURL: cfg.LogsWebServerHook})
	web.SetupAPIRoutes(webServer, &web.API{Service: svc, Backend: backend, Bot: discordClient})

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer discordClient.Stop()

	logger.Success("PancyMod Go iniciado correctamente!", "Main")

	sweeper := enforcement.NewSweeper(svc, enforcer, cfg.SweepInterval)

	run, runCtx := errgroup.WithContext(ctx)
	run.Go(func() error {
		return sweeper.Run(runCtx)
	})
	run.Go(func() error {
		return webServer.Start(cfg.Port)
	})
	run.Go(func() error {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return webServer.Shutdown(shutdownCtx)
	})

	if err := run.Wait(); err != nil {
		logger.Error(fmt.Sprintf("Error en ejecución: %v", err), "Main")
	}

	logger.System("Apagando PancyMod Go...", "Main")
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
