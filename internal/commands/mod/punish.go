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

func durationOption(desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "duracion",
		Description: desc,
		Required:    true,
	}
}

// createMuteCommand creates the /mod mute subcommand
func (m *Module) createMuteCommand() *discord.Command {
	return discord.NewCommand(
		"mute",
		"Silencia a un usuario temporalmente",
		"mod",
		m.punishHandler(moderation.KindMute),
	).WithOptions(
		userOption("Usuario a silenciar", true),
		durationOption("Duración, por ejemplo 30m, 2h o 1d12h"),
		reasonOption("Razón del silencio", false),
	).WithBotPermissions(discordgo.PermissionManageRoles).AsModOnly()
}

// createBanCommand creates the /mod ban subcommand
func (m *Module) createBanCommand() *discord.Command {
	return discord.NewCommand(
		"ban",
		"Restringe a un usuario con el rol de baneado",
		"mod",
		m.punishHandler(moderation.KindBan),
	).WithOptions(
		userOption("Usuario a banear", true),
		durationOption("Duración, por ejemplo 1d, 7d o 1month"),
		reasonOption("Razón del ban", false),
	).WithBotPermissions(discordgo.PermissionManageRoles).AsModOnly()
}

func (m *Module) punishHandler(kind moderation.Kind) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		target := m.checkTarget(ctx)
		if target == nil {
			return nil
		}

		minutes := moderation.ParseDuration(ctx.GetStringOption("duracion"))
		if minutes <= 0 || minutes > moderation.MaxDurationMinutes {
			return ctx.ReplyError(serviceErrorMessage(moderation.ErrInvalidDuration))
		}
		reason := reasonOrDefault(ctx)

		if err := ctx.Defer(); err != nil {
			return err
		}

		go func() {
			defer errors.RecoverMiddleware()()

			opCtx, cancel := opContext()
			defer cancel()

			out, err := m.svc.ApplyManualPunishment(opCtx, moderation.PunishRequest{
				CommunityID:     ctx.Interaction.GuildID,
				MemberID:        target.User.ID,
				Kind:            kind,
				DurationMinutes: minutes,
				Reason:          reason,
				ModeratorID:     ctx.User().ID,
			})
			if err != nil {
				failDeferred(ctx, "ApplyManualPunishment", err)
				return
			}

			m.enforcer.Punished(opCtx, out)

			title := "🔇 Usuario silenciado"
			if kind == moderation.KindBan {
				title = "🔨 Usuario baneado"
			}
			desc := fmt.Sprintf("**%s**\n\n> ⛔ **Sanción:** %s\n> 📝 **Razón:** %s\n> 🆔 **ID:** `%s`",
				target.User.String(), punishmentLine(out.Punishment, minutes), reason, out.Punishment.ID)
			if out.Merged {
				desc += "\n> ➕ Se sumó al silencio que ya tenía."
			}

			_ = ctx.EditReplyEmbed(&discordgo.MessageEmbed{
				Title:       title,
				Description: desc,
				Color:       colorError,
				Footer:      footer(ctx),
				Timestamp:   time.Now().Format(time.RFC3339),
			})
		}()

		return nil
	}
}

// createUnmuteCommand creates the /mod unmute subcommand
func (m *Module) createUnmuteCommand() *discord.Command {
	return discord.NewCommand(
		"unmute",
		"Quita el silencio a un usuario",
		"mod",
		m.liftHandler(moderation.KindMute),
	).WithOptions(
		userOption("Usuario a desilenciar", true),
		reasonOption("Motivo", false),
	).WithBotPermissions(discordgo.PermissionManageRoles).AsModOnly()
}

// createUnbanCommand creates the /mod unban subcommand
func (m *Module) createUnbanCommand() *discord.Command {
	return discord.NewCommand(
		"unban",
		"Quita el rol de baneado a un usuario",
		"mod",
		m.liftHandler(moderation.KindBan),
	).WithOptions(
		userOption("Usuario a desbanear", true),
		reasonOption("Motivo", false),
	).WithBotPermissions(discordgo.PermissionManageRoles).AsModOnly()
}

func (m *Module) liftHandler(kind moderation.Kind) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		user := ctx.GetUserOption("usuario")
		if user == nil {
			return ctx.ReplyError("Debes especificar un usuario.")
		}
		reason := reasonOrDefault(ctx)

		if err := ctx.Defer(); err != nil {
			return err
		}

		go func() {
			defer errors.RecoverMiddleware()()

			opCtx, cancel := opContext()
			defer cancel()

			removed, err := m.svc.RemoveMemberPunishment(opCtx, ctx.Interaction.GuildID, user.ID, kind)
			if err != nil {
				failDeferred(ctx, "RemoveMemberPunishment", err)
				return
			}

			m.enforcer.Lifted(opCtx, removed, reason, ctx.User().ID)

			_ = ctx.EditReplyEmbed(&discordgo.MessageEmbed{
				Title:       "✅ Sanción retirada",
				Description: fmt.Sprintf("Se retiró el %s de **%s**.\n\n> 📝 **Motivo:** %s", strings.ToLower(kindLabel(kind)), user.String(), reason),
				Color:       colorOK,
				Footer:      footer(ctx),
				Timestamp:   time.Now().Format(time.RFC3339),
			})
		}()

		return nil
	}
}
