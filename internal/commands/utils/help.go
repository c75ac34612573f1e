package utils

import (
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
)

const helpText = "📖 **Ayuda de PancyMod**\n\n" +
	"**Utilidades:**\n" +
	"• `/utils ping` - Comprueba la latencia\n" +
	"• `/utils status` - Estado del bot y del almacenamiento\n" +
	"• `/utils stats` - Estadísticas del bot\n\n" +
	"**Moderación:**\n" +
	"• `/mod warn <usuario> [razón]` - Advierte a un usuario (cada advertencia aplica un silencio o baneo)\n" +
	"• `/mod mute <usuario> <duración> [razón]` - Silencia a un usuario\n" +
	"• `/mod ban <usuario> <duración> [razón]` - Banea a un usuario temporalmente\n" +
	"• `/mod unmute <usuario> [razón]` - Quita el silencio\n" +
	"• `/mod unban <usuario> [razón]` - Quita el baneo\n" +
	"• `/mod remove <id> [razón]` - Elimina una sanción o advertencia\n" +
	"• `/mod log <usuario>` - Sanciones activas de un usuario\n" +
	"• `/mod warns [usuario]` - Lista las advertencias\n\n" +
	"Duraciones: `30m`, `2h`, `1d12h`, `1 month`."

// createHelpCommand creates the /utils help subcommand
func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Muestra información de ayuda",
		"utils",
		helpHandler,
	)
}

func helpHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()
		ctx.ReplyEphemeral(helpText)
	}()
	return nil
}
