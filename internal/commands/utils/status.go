package utils

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
)

// createStatusCommand creates the /utils status subcommand
func (m *Module) createStatusCommand() *discord.Command {
	return discord.NewCommand(
		"status",
		"Muestra el estado del bot",
		"utils",
		m.statusHandler,
	)
}

func (m *Module) statusHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()
		storage, _ := database.Status(context.Background(), m.backend)
		ctx.Reply(statusText(ctx.Client.IsReady(), storage, ctx.Client.GuildCount(), m.svc.Stats()))
	}()
	return nil
}

func statusText(ready bool, storage string, guilds int, stats moderation.Stats) string {
	bot := "🟢 Online"
	if !ready {
		bot = "🟡 Conectando"
	}
	return fmt.Sprintf(
		"📊 **Estado del Bot**\n"+
			"• Bot: %s\n"+
			"• Almacenamiento: %s\n"+
			"• Servidores: %d\n"+
			"• Silencios activos: %d\n"+
			"• Baneos activos: %d",
		bot, storage, guilds, stats.ActiveMutes, stats.ActiveBans,
	)
}
