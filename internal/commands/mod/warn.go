package mod

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// createWarnCommand creates the /mod warn subcommand
func (m *Module) createWarnCommand() *discord.Command {
	return discord.NewCommand(
		"warn",
		"Advierte a un usuario y aplica la sanción correspondiente",
		"mod",
		m.warnHandler,
	).WithOptions(
		userOption("Usuario a advertir", true),
		reasonOption("Razón de la advertencia", true),
	).WithBotPermissions(discordgo.PermissionManageRoles).AsModOnly()
}

func (m *Module) warnHandler(ctx *discord.CommandContext) error {
	target := m.checkTarget(ctx)
	if target == nil {
		return nil
	}

	reason := ctx.GetStringOption("razon")
	if reason == "" {
		return ctx.ReplyError("Debes especificar una razón.")
	}

	if err := ctx.Defer(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		opCtx, cancel := opContext()
		defer cancel()

		out, err := m.svc.IssueWarning(opCtx, moderation.WarnRequest{
			CommunityID: ctx.Interaction.GuildID,
			MemberID:    target.User.ID,
			Reason:      reason,
			ModeratorID: ctx.User().ID,
		})
		if err != nil {
			failDeferred(ctx, "IssueWarning", err)
			return
		}

		m.enforcer.Warned(opCtx, out, nil)

		sanction := punishmentLine(out.Punishment, out.DurationMinutes)
		if out.Merged {
			sanction += " · acumulado"
		}

		_ = ctx.EditReplyEmbed(&discordgo.MessageEmbed{
			Title: "⚠️ Advertencia registrada",
			Description: fmt.Sprintf("**%s** ha sido advertido.\n\n> 📝 **Razón:** %s\n> 🔢 **Advertencias activas:** %d\n> ⛔ **Sanción:** %s\n> 🆔 **ID:** `%s`",
				target.User.String(), reason, out.WarnCount, sanction, out.Warning.ID),
			Color:     colorWarn,
			Footer:    footer(ctx),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}()

	return nil
}
