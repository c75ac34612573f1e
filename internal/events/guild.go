package events

import (
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterGuildEvents registers all guild-related event handlers
func (m *Module) RegisterGuildEvents(client *discord.ExtendedClient) {
	client.EventHandler.RegisterEvent("GuildCreate", m.onGuildCreate)
	client.EventHandler.RegisterEvent("GuildDelete", onGuildDelete)
}

// onGuildCreate fires for every guild on connect and when the bot joins a
// new one. Only the configured guild is moderated.
func (m *Module) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if !m.inScope(g.ID) {
		logger.Warn(fmt.Sprintf("Servidor %s (%s) fuera del servidor configurado; la moderación automática lo ignora", g.Name, g.ID), "Guild")
		return
	}
	logger.Info(fmt.Sprintf("🛡️ Moderando %s (ID: %s, %d miembros)", g.Name, g.ID, g.MemberCount), "Guild")
}

// onGuildDelete is called when the bot is removed from a server
func onGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	logger.Info(fmt.Sprintf("➖ Bot removido del servidor ID: %s", g.ID), "Guild")
}

// inScope reports whether guildID is moderated. With no guild configured
// every guild is.
func (m *Module) inScope(guildID string) bool {
	return m.cfg.GuildID == "" || m.cfg.GuildID == guildID
}
