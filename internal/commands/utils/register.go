package utils

import (
	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
)

// Module holds what the /utils commands report on.
type Module struct {
	svc     *moderation.Service
	backend database.Backend
}

func NewModule(svc *moderation.Service, backend database.Backend) *Module {
	return &Module{svc: svc, backend: backend}
}

// RegisterUtilsCommands registers all utility commands as /utils subcommands
func RegisterUtilsCommands(client *discord.ExtendedClient, m *Module) {
	utilsGroup := client.CommandHandler.BuildCommandGroup(
		"utils",
		"Comandos de utilidad",
		createPingCommand(),
		m.createStatusCommand(),
		createHelpCommand(),
		m.createStatsCommand(),
	)

	client.CommandHandler.AddCommand(utilsGroup)
}
