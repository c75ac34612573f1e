package enforcement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// Notifier delivers an event somewhere. Errors are logged by the Enforcer.
type Notifier interface {
	Notify(ctx context.Context, evt Event) error
}

// MessageAPI is the part of *discordgo.Session the Discord notifier needs.
type MessageAPI interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

const footerText = "💫 - Developed by PancyStudios"

const (
	colorWarn   = 0xFFA500
	colorMute   = 0xFFFF00
	colorBan    = 0xFF0000
	colorExpire = 0x00FF00
	colorRemove = 0x3498db
)

// DiscordNotifier DMs the affected member and posts to the log channel.
type DiscordNotifier struct {
	api          MessageAPI
	logChannelID string
	guildName    func(guildID string) string
}

// NewDiscordNotifier resolves guild names through the session state.
func NewDiscordNotifier(s *discordgo.Session, logChannelID string) *DiscordNotifier {
	return newDiscordNotifier(s, logChannelID, func(guildID string) string {
		if g, err := s.State.Guild(guildID); err == nil && g.Name != "" {
			return g.Name
		}
		return guildID
	})
}

func newDiscordNotifier(api MessageAPI, logChannelID string, guildName func(string) string) *DiscordNotifier {
	return &DiscordNotifier{api: api, logChannelID: logChannelID, guildName: guildName}
}

func (n *DiscordNotifier) Notify(ctx context.Context, evt Event) error {
	var errs []error

	if embed := n.dmEmbed(evt); embed != nil {
		ch, err := n.api.UserChannelCreate(evt.MemberID, discordgo.WithContext(ctx))
		if err == nil {
			_, err = n.api.ChannelMessageSendEmbed(ch.ID, embed, discordgo.WithContext(ctx))
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("dm %s: %w", evt.MemberID, err))
		}
	}

	if n.logChannelID != "" {
		if _, err := n.api.ChannelMessageSendEmbed(n.logChannelID, logEmbed(evt), discordgo.WithContext(ctx)); err != nil {
			errs = append(errs, fmt.Errorf("log channel: %w", err))
		}
	}

	return errors.Join(errs...)
}

func kindName(k moderation.Kind) string {
	if k == moderation.KindBan {
		return "Baneo"
	}
	return "Silencio"
}

func kindColor(k moderation.Kind) int {
	if k == moderation.KindBan {
		return colorBan
	}
	return colorMute
}

func (n *DiscordNotifier) dmEmbed(evt Event) *discordgo.MessageEmbed {
	server := fmt.Sprintf("⚒ - **Servidor:** %s (%s)\n", n.guildName(evt.CommunityID), evt.CommunityID)
	embed := &discordgo.MessageEmbed{
		Footer:    &discordgo.MessageEmbedFooter{Text: footerText},
		Timestamp: evt.At.Format(time.RFC3339),
	}

	switch evt.Type {
	case EventWarn:
		embed.Title = "⚠ - Has recibido una advertencia"
		embed.Color = colorWarn
		embed.Description = server +
			fmt.Sprintf("📝 - **Razón:** %s\n🔢 - **Advertencias activas:** %d\n", evt.Reason, evt.WarnCount)
		if p := evt.Punishment; p != nil {
			embed.Description += fmt.Sprintf("⛔ - **Sanción:** %s por %s\n🕒 - **Termina:** <t:%d:R>",
				kindName(p.Kind), moderation.FormatDuration(evt.DurationMinutes), p.ExpiresAt.Unix())
		}
	case EventPunish:
		p := evt.Punishment
		embed.Title = "⛔ - Has sido sancionado"
		embed.Color = kindColor(p.Kind)
		embed.Description = server + fmt.Sprintf("⛔ - **Sanción:** %s por %s\n📝 - **Razón:** %s\n🕒 - **Termina:** <t:%d:R>",
			kindName(p.Kind), moderation.FormatDuration(evt.DurationMinutes), evt.Reason, p.ExpiresAt.Unix())
	case EventExpire:
		embed.Title = "ℹ - Tu sanción ha expirado"
		embed.Color = colorExpire
		embed.Description = server + fmt.Sprintf("✅ - **Sanción:** %s\n🆔 - **ID:** `%s`", kindName(evt.Punishment.Kind), evt.Punishment.ID)
	case EventRemove:
		embed.Title = "ℹ - Sanción eliminada"
		embed.Color = colorRemove
		embed.Description = server + removedLine(evt) + fmt.Sprintf("\n📝 - **Motivo:** %s", orDefault(evt.Reason))
	default:
		return nil
	}
	return embed
}

func logEmbed(evt Event) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Miembro", Value: fmt.Sprintf("<@%s> (%s)", evt.MemberID, evt.MemberID), Inline: true},
	}
	if evt.ModeratorID != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Moderador", Value: "<@" + evt.ModeratorID + ">", Inline: true})
	} else if evt.Automatic {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Moderador", Value: "AutoMod", Inline: true})
	}
	if evt.Reason != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Razón", Value: evt.Reason})
	}
	if evt.Automatic && evt.ChannelID != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Canal", Value: "<#" + evt.ChannelID + ">", Inline: true})
	}
	if evt.Automatic && strings.TrimSpace(evt.Content) != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Contenido del mensaje", Value: evt.Content})
	}

	embed := &discordgo.MessageEmbed{
		Footer:    &discordgo.MessageEmbedFooter{Text: footerText},
		Timestamp: evt.At.Format(time.RFC3339),
	}

	switch evt.Type {
	case EventWarn:
		embed.Title = "⚠ Advertencia"
		embed.Color = colorWarn
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Advertencias activas", Value: fmt.Sprint(evt.WarnCount), Inline: true})
	case EventPunish:
		embed.Title = "⛔ " + kindName(evt.Punishment.Kind)
		embed.Color = kindColor(evt.Punishment.Kind)
	case EventExpire:
		embed.Title = "✅ Sanción expirada"
		embed.Color = colorExpire
	case EventRemove:
		embed.Title = "🗑 Sanción eliminada"
		embed.Color = colorRemove
	}

	if p := evt.Punishment; p != nil {
		value := fmt.Sprintf("%s `%s`", kindName(p.Kind), p.ID)
		if evt.Type == EventWarn || evt.Type == EventPunish {
			value += fmt.Sprintf(" por %s, termina <t:%d:R>", moderation.FormatDuration(evt.DurationMinutes), p.ExpiresAt.Unix())
			if evt.Merged {
				value += " (acumulado)"
			}
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Sanción", Value: value})
	}
	if w := evt.Warning; w != nil && evt.Type == EventRemove {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Advertencia", Value: fmt.Sprintf("`%s`: %s", w.ID, w.Reason)})
	}

	embed.Fields = fields
	return embed
}

func removedLine(evt Event) string {
	if p := evt.Punishment; p != nil {
		return fmt.Sprintf("🗑 - **Sanción eliminada:** %s `%s`", kindName(p.Kind), p.ID)
	}
	if w := evt.Warning; w != nil {
		return fmt.Sprintf("🗑 - **Advertencia eliminada:** %s `%s`", w.Reason, w.ID)
	}
	return ""
}

func orDefault(reason string) string {
	if strings.TrimSpace(reason) == "" {
		return "Sin razón especificada"
	}
	return reason
}

// Publisher is satisfied by the MQTT communicator.
type Publisher interface {
	PublishEvent(event string, payload interface{}) error
}

// AuditNotifier forwards events to the MQTT audit feed.
type AuditNotifier struct {
	pub Publisher
}

func NewAuditNotifier(pub Publisher) *AuditNotifier {
	return &AuditNotifier{pub: pub}
}

func (a *AuditNotifier) Notify(_ context.Context, evt Event) error {
	return a.pub.PublishEvent(string(evt.Type), evt)
}
