// Package mod provides the moderation commands grouped under /mod. Each
// subcommand lives in its own file.
package mod

import (
	"github.com/PancyStudios/PancyModGo/internal/enforcement"
	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
)

// Module holds what the /mod handlers need.
type Module struct {
	svc      *moderation.Service
	enforcer *enforcement.Enforcer
	cfg      *config.Config
}

func NewModule(svc *moderation.Service, enforcer *enforcement.Enforcer, cfg *config.Config) *Module {
	return &Module{svc: svc, enforcer: enforcer, cfg: cfg}
}

// RegisterModCommands registers all moderation commands as /mod subcommands
func RegisterModCommands(client *discord.ExtendedClient, m *Module) {
	modGroup := client.CommandHandler.BuildCommandGroup(
		"mod",
		"Comandos de moderación",
		m.createWarnCommand(),
		m.createMuteCommand(),
		m.createBanCommand(),
		m.createUnmuteCommand(),
		m.createUnbanCommand(),
		m.createRemoveCommand(),
		m.createLogCommand(),
		m.createWarnsCommand(),
	)

	client.CommandHandler.AddCommand(modGroup)
}
