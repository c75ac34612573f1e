// Package main provides a utility to sync Discord slash commands.
// This removes stale commands from Discord and ensures only currently-defined commands are registered.
//
// Usage:
//
//	go run ./cmd/sync-commands [options]
//
// Options:
//
//	-list           List all registered commands
//	-clean          Remove all commands without registering new ones
//	-guild <id>     Target a specific guild (defaults to guildId, then devGuildId, then global)
//	-global         Target global commands even when a guild is configured
//	-sync           Sync commands (remove stale, register current) - default behavior
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/PancyStudios/PancyModGo/internal/commands"
	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
)

func main() {
	// Parse command line flags
	listCmd := flag.Bool("list", false, "List all registered commands")
	cleanCmd := flag.Bool("clean", false, "Remove all commands without registering new ones")
	guildFlag := flag.String("guild", "", "Target a specific guild")
	globalCmd := flag.Bool("global", false, "Target global commands")
	syncCmd := flag.Bool("sync", false, "Sync commands (remove stale, register current)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Iniciando utilidad de sincronización de comandos...", "SyncCommands")

	// Initialize Discord client
	client, err := discord.NewClient(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "SyncCommands")
		os.Exit(1)
	}

	// Open connection to Discord
	if err := client.Session.Open(); err != nil {
		logger.Critical(fmt.Sprintf("Error connecting to Discord: %v", err), "SyncCommands")
		os.Exit(1)
	}
	defer client.Session.Close()

	logger.Success("Conectado a Discord", "SyncCommands")

	// Build the command set to know what we should have. Handlers are never
	// invoked here, so no services are needed.
	commands.RegisterAll(client, commands.Deps{Config: cfg})

	guildID := client.CommandHandler.Scope()
	if *guildFlag != "" {
		guildID = *guildFlag
	}
	if *globalCmd {
		guildID = ""
	}

	// Execute the requested action
	var ok bool
	switch {
	case *listCmd:
		ok = listCommands(client, guildID)
	case *cleanCmd:
		ok = cleanCommands(client, guildID)
	case *syncCmd:
		ok = syncCommands(client, guildID)
	default:
		ok = syncCommands(client, guildID)
	}

	if !ok {
		os.Exit(1)
	}
	logger.Success("Operación completada exitosamente", "SyncCommands")
}

func scopeLabel(guildID string) string {
	if guildID == "" {
		return "globales"
	}
	return "del servidor " + guildID
}

// listCommands lists all commands registered with Discord
func listCommands(client *discord.ExtendedClient, guildID string) bool {
	logger.Info("📋 Listando comandos "+scopeLabel(guildID)+"...", "SyncCommands")

	cmds, err := client.CommandHandler.ListCommands(guildID)
	if err != nil {
		logger.Error(fmt.Sprintf("Error obteniendo comandos: %v", err), "SyncCommands")
		return false
	}

	if len(cmds) == 0 {
		logger.Info("No hay comandos registrados", "SyncCommands")
		return true
	}

	logger.Info(fmt.Sprintf("Comandos encontrados: %d", len(cmds)), "SyncCommands")
	for i, cmd := range cmds {
		logger.Info(fmt.Sprintf("  %d. /%s - %s (ID: %s)", i+1, cmd.Name, cmd.Description, cmd.ID), "SyncCommands")
		for _, opt := range cmd.Options {
			logger.Info(fmt.Sprintf("       /%s %s - %s", cmd.Name, opt.Name, opt.Description), "SyncCommands")
		}
	}
	return true
}

// cleanCommands removes all commands from Discord
func cleanCommands(client *discord.ExtendedClient, guildID string) bool {
	logger.Info("🧹 Eliminando comandos "+scopeLabel(guildID)+"...", "SyncCommands")

	if err := client.CommandHandler.UnregisterCommands(guildID); err != nil {
		logger.Error(fmt.Sprintf("Error eliminando comandos: %v", err), "SyncCommands")
		return false
	}

	logger.Success("✅ Todos los comandos han sido eliminados", "SyncCommands")
	return true
}

// syncCommands replaces the registered commands with the current set
func syncCommands(client *discord.ExtendedClient, guildID string) bool {
	logger.Info("🔄 Sincronizando comandos "+scopeLabel(guildID)+"...", "SyncCommands")

	if err := client.CommandHandler.SyncCommands(guildID); err != nil {
		logger.Error(fmt.Sprintf("Error sincronizando comandos: %v", err), "SyncCommands")
		return false
	}

	logger.Success(fmt.Sprintf("✅ %d comandos sincronizados correctamente", len(client.CommandHandler.ApplicationCommands())), "SyncCommands")
	return true
}
