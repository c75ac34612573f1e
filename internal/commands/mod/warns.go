package mod

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// createWarnsCommand creates the /mod warns subcommand. Anyone may list
// their own warnings; listing someone else's needs a moderator role.
func (m *Module) createWarnsCommand() *discord.Command {
	return discord.NewCommand(
		"warns",
		"Lista de advertencias de un usuario",
		"mod",
		m.warnsHandler,
	).WithOptions(
		userOption("[STAFF] Usuario a buscar (opcional)", false),
	)
}

func (m *Module) warnsHandler(ctx *discord.CommandContext) error {
	isModerator := discord.IsModerator(ctx.Guild(), ctx.Member(), m.cfg.ModRoleIDs)

	target := ctx.GetUserOption("usuario")
	if target == nil {
		target = ctx.User()
	} else if target.ID != ctx.User().ID && !isModerator {
		return ctx.ReplyError("No tienes permisos para ver la lista de advertencias de otro usuario.")
	}

	warnings := m.svc.Warnings(target.ID)
	color := colorOK
	if len(warnings) > 0 {
		color = colorWarn
	}

	return ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🔖 - Lista de advertencias de %s", target.Username),
		Description: renderWarnings(warnings, isModerator, m.svc.Now()),
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: footerText},
	})
}

// renderWarnings hides the moderator from non-staff viewers.
func renderWarnings(warnings []moderation.WarningRecord, showModerator bool, now time.Time) string {
	var b strings.Builder
	if len(warnings) == 0 {
		b.WriteString("No se han encontrado advertencias del usuario en este servidor\n\n")
	}
	for _, w := range warnings {
		moderator := "Oculto"
		if showModerator {
			moderator = "AutoMod"
			if w.ModeratorID != "" {
				moderator = "<@" + w.ModeratorID + ">"
			}
		}
		fmt.Fprintf(&b, "> **Advertencia:** %s\n> **Moderador:** %s\n> **Fecha:** <t:%d:R>\n> **ID:** `%s`\n\n",
			w.Reason, moderator, w.CreatedAt.Unix(), w.ID)
	}
	fmt.Fprintf(&b, "> 💫 - **Cantidad de advertencias:** %d\n> 🕒 - **Fecha de consulta:** <t:%d>", len(warnings), now.Unix())
	return clip(b.String())
}
