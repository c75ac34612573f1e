package discord

import (
	"slices"

	"github.com/bwmarrin/discordgo"
)

// IsModerator reports whether member may use moderator commands: the guild
// owner, an administrator or a holder of one of modRoles.
func IsModerator(guild *discordgo.Guild, member *discordgo.Member, modRoles []string) bool {
	if member == nil || member.User == nil {
		return false
	}
	if guild != nil && guild.OwnerID == member.User.ID {
		return true
	}
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	for _, roleID := range member.Roles {
		if slices.Contains(modRoles, roleID) {
			return true
		}
	}
	// Gateway members carry no computed permissions, so look at the roles.
	if guild != nil {
		for _, role := range guild.Roles {
			if role.Permissions&discordgo.PermissionAdministrator != 0 && slices.Contains(member.Roles, role.ID) {
				return true
			}
		}
	}
	return false
}

// HighestRolePosition returns the position of member's top role, 0 for
// members with only @everyone.
func HighestRolePosition(guild *discordgo.Guild, member *discordgo.Member) int {
	if guild == nil || member == nil {
		return 0
	}
	highest := 0
	for _, role := range guild.Roles {
		if role.Position > highest && slices.Contains(member.Roles, role.ID) {
			highest = role.Position
		}
	}
	return highest
}

// CanModerate reports whether actor sits above target in the role
// hierarchy. Nobody outranks the owner and the owner outranks everyone.
func CanModerate(guild *discordgo.Guild, actor, target *discordgo.Member) bool {
	if guild == nil || actor == nil || target == nil || actor.User == nil || target.User == nil {
		return false
	}
	if target.User.ID == guild.OwnerID {
		return false
	}
	if actor.User.ID == guild.OwnerID {
		return true
	}
	return HighestRolePosition(guild, actor) > HighestRolePosition(guild, target)
}
