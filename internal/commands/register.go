// Package commands provides a registry for organizing bot commands.
// Commands are organized in subdirectories by category (utils, mod).
package commands

import (
	"github.com/PancyStudios/PancyModGo/internal/commands/mod"
	"github.com/PancyStudios/PancyModGo/internal/commands/utils"
	"github.com/PancyStudios/PancyModGo/internal/enforcement"
	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
)

// Deps are the services the command modules are built on.
type Deps struct {
	Service  *moderation.Service
	Enforcer *enforcement.Enforcer
	Backend  database.Backend
	Config   *config.Config
}

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, deps Deps) {
	// /utils ping, status, help, stats
	utils.RegisterUtilsCommands(client, utils.NewModule(deps.Service, deps.Backend))

	// /mod warn, mute, ban, unmute, unban, remove, log, warns
	mod.RegisterModCommands(client, mod.NewModule(deps.Service, deps.Enforcer, deps.Config))
}
