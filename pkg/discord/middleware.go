package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

var errNotModerator = fmt.Errorf("member is not a moderator")

// ModeratorMiddleware rejects ModOnly commands invoked outside the guild or
// by members without a moderator role.
func (c *ExtendedClient) ModeratorMiddleware(ctx *CommandContext, cmd *Command) error {
	if !cmd.ModOnly {
		return nil
	}

	cfg := config.Get()
	member := ctx.Member()
	if ctx.Interaction.GuildID != "" && IsModerator(ctx.Guild(), member, cfg.ModRoleIDs) {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🚫 Acceso Denegado",
		Description: "Necesitas un rol de moderador para usar este comando.",
		Color:       0xFF0000,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if err := ctx.ReplyEphemeralEmbed(embed); err != nil {
		logger.Error("Error respondiendo a usuario sin permisos: "+err.Error(), "ModeratorMiddleware")
	}

	logger.Warn(fmt.Sprintf("Usuario sin permisos intentó usar %s: %s", cmd.Name, ctx.User().ID), "ModeratorMiddleware")
	return errNotModerator
}

var errBotPermissions = fmt.Errorf("bot is missing permissions")

var permissionNames = []struct {
	bit  int64
	name string
}{
	{discordgo.PermissionManageRoles, "Gestionar roles"},
	{discordgo.PermissionManageMessages, "Gestionar mensajes"},
	{discordgo.PermissionSendMessages, "Enviar mensajes"},
	{discordgo.PermissionEmbedLinks, "Insertar enlaces"},
}

// missingPermissions returns the bits of need absent from have.
func missingPermissions(have, need int64) int64 {
	if have&discordgo.PermissionAdministrator != 0 {
		return 0
	}
	return need &^ have
}

func describePermissions(perms int64) string {
	var names []string
	for _, p := range permissionNames {
		if perms&p.bit != 0 {
			names = append(names, p.name)
			perms &^= p.bit
		}
	}
	if perms != 0 {
		names = append(names, fmt.Sprintf("0x%x", perms))
	}
	return strings.Join(names, ", ")
}

// BotPermissionsMiddleware rejects commands the bot lacks the permissions to
// carry out where they were invoked. Discord sends the bot's permissions for
// the channel with every guild interaction.
func (c *ExtendedClient) BotPermissionsMiddleware(ctx *CommandContext, cmd *Command) error {
	if cmd.BotPermissions == 0 || ctx.Interaction.GuildID == "" {
		return nil
	}

	missing := missingPermissions(ctx.Interaction.AppPermissions, cmd.BotPermissions)
	if missing == 0 {
		return nil
	}

	if err := ctx.ReplyError("Me faltan permisos para ejecutar este comando: " + describePermissions(missing) + "."); err != nil {
		logger.Error("Error respondiendo sobre permisos del bot: "+err.Error(), "BotPermissionsMiddleware")
	}
	logger.Warn(fmt.Sprintf("Permisos insuficientes para %s en %s: %s", cmd.Name, ctx.Interaction.GuildID, describePermissions(missing)), "BotPermissionsMiddleware")
	return errBotPermissions
}
