package events

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/enforcement"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/metrics"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// RegisterMessageEvents registers the automod handler
func (m *Module) RegisterMessageEvents(client *discord.ExtendedClient) {
	client.EventHandler.OnMessageCreate(m.onMessageCreate)
}

// onMessageCreate feeds guild messages to the spam and flood detectors.
func (m *Module) onMessageCreate(s *discordgo.Session, msg *discordgo.MessageCreate) {
	if !m.observable(msg) {
		return
	}

	guild, _ := s.State.Guild(msg.GuildID)
	if discord.IsModerator(guild, author(s, msg), m.cfg.ModRoleIDs) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	verdict, err := m.svc.ObserveMessage(ctx, moderation.Message{
		CommunityID: msg.GuildID,
		MemberID:    msg.Author.ID,
		ChannelID:   msg.ChannelID,
		Text:        msg.Content,
		Timestamp:   msg.Timestamp,
	})
	if err != nil {
		var perr *moderation.PersistenceError
		if errors.As(err, &perr) {
			metrics.PersistenceFailures.Inc()
		}
		logger.Error(fmt.Sprintf("Automod falló para %s: %v", msg.Author.ID, err), "AutoMod")
		return
	}
	if !verdict.Triggered {
		return
	}

	metrics.AutomodTriggers.WithLabelValues(verdict.Reason).Inc()
	logger.Info(fmt.Sprintf("🤖 %s: %s", msg.Author.String(), verdict.Reason), "AutoMod")

	if verdict.DeleteMessage {
		if err := s.ChannelMessageDelete(msg.ChannelID, msg.ID, discordgo.WithContext(ctx)); err != nil {
			metrics.EnforcementFailures.WithLabelValues("delete").Inc()
			logger.Warn(fmt.Sprintf("No se pudo borrar el mensaje %s: %v", msg.ID, err), "AutoMod")
		}
	}
	if verdict.Outcome != nil {
		m.enforcer.Warned(ctx, *verdict.Outcome, &enforcement.Trigger{
			ChannelID: msg.ChannelID,
			Content:   msg.Content,
		})
	}
}

// observable filters out bots, webhooks, DMs, other guilds and ignored
// channels.
func (m *Module) observable(msg *discordgo.MessageCreate) bool {
	switch {
	case msg.Author == nil || msg.Author.Bot || msg.WebhookID != "":
		return false
	case msg.GuildID == "" || !m.inScope(msg.GuildID):
		return false
	case slices.Contains(m.cfg.IgnoredChannelIDs, msg.ChannelID):
		return false
	}
	return true
}

// author returns the sending member with its user attached. Gateway
// messages carry a partial member without the user.
func author(s *discordgo.Session, msg *discordgo.MessageCreate) *discordgo.Member {
	if s != nil && s.State != nil {
		if member, err := s.State.Member(msg.GuildID, msg.Author.ID); err == nil {
			return member
		}
	}
	if msg.Member == nil {
		return nil
	}
	member := *msg.Member
	member.User = msg.Author
	member.GuildID = msg.GuildID
	return &member
}
