package mod

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// createRemoveCommand creates the /mod remove subcommand
func (m *Module) createRemoveCommand() *discord.Command {
	return discord.NewCommand(
		"remove",
		"Elimina una sanción o advertencia por su ID",
		"mod",
		m.removeHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "id",
			Description:  "ID de la sanción o advertencia",
			Required:     true,
			Autocomplete: true,
		},
		userOption("Filtra las sugerencias por usuario", false),
		reasonOption("Motivo", false),
	).WithAutoComplete(m.removeAutoComplete).WithBotPermissions(discordgo.PermissionManageRoles).AsModOnly()
}

func (m *Module) removeHandler(ctx *discord.CommandContext) error {
	id := strings.TrimSpace(ctx.GetStringOption("id"))
	if id == "" {
		return ctx.ReplyError("Debes especificar el ID.")
	}
	reason := reasonOrDefault(ctx)

	if err := ctx.Defer(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		opCtx, cancel := opContext()
		defer cancel()

		out, err := m.svc.RemovePunishment(opCtx, id, reason, ctx.User().ID)
		if err != nil {
			failDeferred(ctx, "RemovePunishment", err)
			return
		}

		m.enforcer.Removed(opCtx, ctx.Interaction.GuildID, out)

		var desc string
		if p := out.Punishment; p != nil {
			desc = fmt.Sprintf("Se eliminó el %s de <@%s>.\n\n> 📝 **Razón original:** %s", strings.ToLower(kindLabel(p.Kind)), p.MemberID, p.Reason)
		} else {
			desc = fmt.Sprintf("Se eliminó la advertencia de <@%s>.\n\n> 📝 **Razón original:** %s", out.Warning.MemberID, out.Warning.Reason)
		}
		desc += fmt.Sprintf("\n> 🆔 **ID:** `%s`\n> 💬 **Motivo:** %s", id, reason)

		_ = ctx.EditReplyEmbed(&discordgo.MessageEmbed{
			Title:       "🗑️ Eliminado con éxito",
			Description: desc,
			Color:       colorOK,
			Footer:      footer(ctx),
			Timestamp:   time.Now().Format(time.RFC3339),
		})
	}()

	return nil
}

func (m *Module) removeAutoComplete(ctx *discord.CommandContext) {
	guildID := ctx.Interaction.GuildID
	typed := ""
	if focused := ctx.FocusedOption(); focused != nil && focused.Type == discordgo.ApplicationCommandOptionString {
		typed = focused.StringValue()
	}

	var (
		punishments []moderation.PunishmentRecord
		warnings    []moderation.WarningRecord
	)
	if opt := ctx.GetOption("usuario"); opt != nil && opt.Type == discordgo.ApplicationCommandOptionUser {
		userID := opt.UserValue(nil).ID
		punishments = m.svc.ActiveForMember(guildID, userID)
		warnings = m.svc.Warnings(userID)
	} else {
		for _, p := range m.svc.ActivePunishments() {
			if p.CommunityID == guildID {
				punishments = append(punishments, p)
			}
		}
	}

	_ = ctx.RespondChoices(removeChoices(punishments, warnings, typed))
}

// removeChoices builds at most 25 suggestions whose id or reason contains
// typed, punishments first.
func removeChoices(punishments []moderation.PunishmentRecord, warnings []moderation.WarningRecord, typed string) []*discordgo.ApplicationCommandOptionChoice {
	typed = strings.ToLower(strings.TrimSpace(typed))
	matches := func(id, reason string) bool {
		return typed == "" || strings.Contains(strings.ToLower(id), typed) || strings.Contains(strings.ToLower(reason), typed)
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, 25)
	add := func(name, id string) {
		if len(choices) >= 25 {
			return
		}
		if r := []rune(name); len(r) > 100 {
			name = string(r[:97]) + "..."
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: id})
	}

	for _, p := range punishments {
		if matches(p.ID, p.Reason) {
			add(fmt.Sprintf("%s %s - %s", kindLabel(p.Kind), p.ID, p.Reason), p.ID)
		}
	}
	for _, w := range warnings {
		if matches(w.ID, w.Reason) {
			add(fmt.Sprintf("Advertencia %s - %s", w.ID, w.Reason), w.ID)
		}
	}
	return choices
}
