package events

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterMemberEvents registers all member-related event handlers
func (m *Module) RegisterMemberEvents(client *discord.ExtendedClient) {
	client.EventHandler.OnGuildMemberAdd(m.onGuildMemberAdd)
}

// onGuildMemberAdd re-applies the roles of punishments still in force, so
// leaving and rejoining does not clear a mute or ban.
func (m *Module) onGuildMemberAdd(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
	if e.User == nil || e.User.Bot || !m.inScope(e.GuildID) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if n := m.enforcer.Reapply(ctx, e.GuildID, e.User.ID); n > 0 {
		logger.Info(fmt.Sprintf("🔁 %s volvió con %d sanción(es) activa(s); roles reaplicados", e.User.String(), n), "Member")
	}
}
