package enforcement

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// RoleSink applies and lifts the restriction role of a punishment.
type RoleSink interface {
	Grant(ctx context.Context, p moderation.PunishmentRecord) error
	Revoke(ctx context.Context, p moderation.PunishmentRecord) error
}

// RoleAPI is the part of *discordgo.Session the role sink needs.
type RoleAPI interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// DiscordRoleSink maps mutes to the mute role and bans to the banned role.
type DiscordRoleSink struct {
	api   RoleAPI
	roles map[moderation.Kind]string
}

func NewDiscordRoleSink(api RoleAPI, muteRoleID, bannedRoleID string) *DiscordRoleSink {
	return &DiscordRoleSink{
		api: api,
		roles: map[moderation.Kind]string{
			moderation.KindMute: muteRoleID,
			moderation.KindBan:  bannedRoleID,
		},
	}
}

func (d *DiscordRoleSink) roleFor(kind moderation.Kind) (string, error) {
	if id := d.roles[kind]; id != "" {
		return id, nil
	}
	return "", fmt.Errorf("no role configured for %s", kind)
}

func (d *DiscordRoleSink) Grant(ctx context.Context, p moderation.PunishmentRecord) error {
	roleID, err := d.roleFor(p.Kind)
	if err != nil {
		return err
	}
	return d.api.GuildMemberRoleAdd(p.CommunityID, p.MemberID, roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(p.Reason))
}

func (d *DiscordRoleSink) Revoke(ctx context.Context, p moderation.PunishmentRecord) error {
	roleID, err := d.roleFor(p.Kind)
	if err != nil {
		return err
	}
	return d.api.GuildMemberRoleRemove(p.CommunityID, p.MemberID, roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason("Castigo finalizado: "+p.ID))
}
