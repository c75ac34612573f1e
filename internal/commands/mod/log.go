package mod

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// createLogCommand creates the /mod log subcommand
func (m *Module) createLogCommand() *discord.Command {
	return discord.NewCommand(
		"log",
		"Muestra las sanciones activas de un usuario",
		"mod",
		m.logHandler,
	).WithOptions(
		userOption("Usuario a consultar", true),
	).AsModOnly()
}

func (m *Module) logHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyError("Debes especificar un usuario.")
	}

	active := m.svc.ActiveForMember(ctx.Interaction.GuildID, user.ID)
	return ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📋 - Sanciones activas de %s", user.Username),
		Description: renderLog(active, m.svc.WarnCount(user.ID), m.svc.Now()),
		Color:       colorInfo,
		Footer:      &discordgo.MessageEmbedFooter{Text: footerText},
	})
}

func renderLog(active []moderation.PunishmentRecord, warnCount int, now time.Time) string {
	var b strings.Builder
	if len(active) == 0 {
		b.WriteString("El usuario no tiene sanciones activas.\n\n")
	}
	for _, p := range active {
		moderator := "AutoMod"
		if p.ModeratorID != "" {
			moderator = "<@" + p.ModeratorID + ">"
		}
		fmt.Fprintf(&b, "> **%s** `%s`\n> **Razón:** %s\n> **Moderador:** %s\n> **Termina:** <t:%d:R> (%s)\n\n",
			kindLabel(p.Kind), p.ID, p.Reason, moderator, p.ExpiresAt.Unix(),
			moderation.FormatDuration(int(p.Remaining(now).Round(time.Minute).Minutes())))
	}
	fmt.Fprintf(&b, "> 💫 - **Advertencias activas:** %d\n> 🕒 - **Fecha de consulta:** <t:%d>", warnCount, now.Unix())
	return clip(b.String())
}
