package mod

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/metrics"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

const (
	defaultReason = "Sin razón especificada"
	footerText    = "💫 - Developed by PancyStudios"
	opTimeout     = 10 * time.Second

	colorOK    = 0x00FF00
	colorWarn  = 0xFFA500
	colorError = 0xFF0000
	colorInfo  = 0x3498db
)

func userOption(desc string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "usuario",
		Description: desc,
		Required:    required,
	}
}

func reasonOption(desc string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "razon",
		Description: desc,
		Required:    required,
		MaxLength:   512,
	}
}

func reasonOrDefault(ctx *discord.CommandContext) string {
	if r := ctx.GetStringOption("razon"); r != "" {
		return r
	}
	return defaultReason
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// member looks the user up in the state cache, falling back to the API.
func member(s *discordgo.Session, guildID, userID string) *discordgo.Member {
	if m, err := s.State.Member(guildID, userID); err == nil {
		return m
	}
	m, err := s.GuildMember(guildID, userID)
	if err != nil {
		return nil
	}
	return m
}

// targetProblem explains why actor may not punish target, or returns "".
// Moderators are exempt and the target must sit below both the actor and
// the bot.
func targetProblem(guild *discordgo.Guild, actor, bot, target *discordgo.Member, modRoles []string) string {
	switch {
	case target == nil || target.User == nil:
		return "El usuario no está en el servidor."
	case target.User.Bot:
		return "No puedes sancionar a un bot."
	case actor != nil && actor.User != nil && actor.User.ID == target.User.ID:
		return "No puedes sancionarte a ti mismo."
	case discord.IsModerator(guild, target, modRoles):
		return "No puedes sancionar a un moderador."
	case !discord.CanModerate(guild, actor, target):
		return "El usuario tiene un rol igual o superior al tuyo."
	case !discord.CanModerate(guild, bot, target):
		return "El usuario tiene un rol igual o superior al mío."
	}
	return ""
}

// checkTarget resolves the "usuario" option and validates it. On failure it
// has already replied and returns nil.
func (m *Module) checkTarget(ctx *discord.CommandContext) *discordgo.Member {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		_ = ctx.ReplyError("Debes especificar un usuario.")
		return nil
	}

	guildID := ctx.Interaction.GuildID
	target := member(ctx.Session, guildID, user.ID)
	bot := member(ctx.Session, guildID, ctx.Session.State.User.ID)

	if problem := targetProblem(ctx.Guild(), ctx.Member(), bot, target, m.cfg.ModRoleIDs); problem != "" {
		_ = ctx.ReplyError(problem)
		return nil
	}
	return target
}

// serviceErrorMessage maps moderation errors to a user facing message.
func serviceErrorMessage(err error) string {
	var perr *moderation.PersistenceError
	switch {
	case errors.Is(err, moderation.ErrNotFound):
		return "No se encontró ninguna sanción o advertencia con ese ID."
	case errors.Is(err, moderation.ErrInvalidDuration):
		return "La duración no es válida. Usa por ejemplo `10m`, `2h` o `1d12h`, hasta un máximo de 365 días."
	case errors.Is(err, moderation.ErrPolicy):
		return "Solicitud no válida: " + err.Error()
	case errors.As(err, &perr):
		return "No se pudo guardar el cambio. Inténtalo de nuevo más tarde."
	}
	return "Ocurrió un error inesperado."
}

// failDeferred edits a deferred reply with the error and logs it.
func failDeferred(ctx *discord.CommandContext, where string, err error) {
	var perr *moderation.PersistenceError
	if errors.As(err, &perr) {
		metrics.PersistenceFailures.Inc()
		logger.Error(fmt.Sprintf("%s: %v", where, err), "CMD-Mod")
	} else if !errors.Is(err, moderation.ErrPolicy) && !errors.Is(err, moderation.ErrNotFound) {
		logger.Error(fmt.Sprintf("%s: %v", where, err), "CMD-Mod")
	}

	embed := &discordgo.MessageEmbed{
		Description: "❌ " + serviceErrorMessage(err),
		Color:       colorError,
	}
	if editErr := ctx.EditReplyEmbed(embed); editErr != nil {
		logger.Error(fmt.Sprintf("Error editando respuesta: %v", editErr), "CMD-Mod")
	}
}

func footer(ctx *discord.CommandContext) *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{
		Text:    fmt.Sprintf("Solicitado por %s", ctx.User().String()),
		IconURL: ctx.User().AvatarURL(""),
	}
}

func kindLabel(k moderation.Kind) string {
	if k == moderation.KindBan {
		return "Baneo"
	}
	return "Silencio"
}

// clip keeps embed descriptions under Discord's 4096 character limit.
func clip(s string) string {
	const limit = 4000
	if r := []rune(s); len(r) > limit {
		return string(r[:limit]) + "\n…"
	}
	return s
}

// punishmentLine renders a punishment for embeds: kind, length and relative
// expiry.
func punishmentLine(p moderation.PunishmentRecord, minutes int) string {
	return fmt.Sprintf("%s por **%s** (termina <t:%d:R>)", kindLabel(p.Kind), moderation.FormatDuration(minutes), p.ExpiresAt.Unix())
}
