// Package webhook posts embeds to Discord webhook URLs through discordgo.
package webhook

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ErrInvalidURL is returned for URLs that are not of the form
// https://discord.com/api/webhooks/<id>/<token>.
var ErrInvalidURL = errors.New("invalid discord webhook url")

const footerText = "💫 Developed by PancyStudio | PancyMod Go"

// Hook is a parsed webhook ready to be executed.
type Hook struct {
	ID    string
	Token string

	session *discordgo.Session
}

// Parse extracts the webhook id and token from rawURL.
func Parse(rawURL string) (*Hook, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return nil, ErrInvalidURL
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			// Webhook execution is authorized by the token in the path.
			s, _ := discordgo.New("")
			return &Hook{ID: parts[i+1], Token: parts[i+2], session: s}, nil
		}
	}
	return nil, ErrInvalidURL
}

// MustParseOrNil returns nil for an empty or invalid URL.
func MustParseOrNil(rawURL string) *Hook {
	if rawURL == "" {
		return nil
	}
	h, err := Parse(rawURL)
	if err != nil {
		return nil
	}
	return h
}

// Send executes the webhook with the given embeds.
func (h *Hook) Send(embeds ...*discordgo.MessageEmbed) error {
	if h == nil {
		return nil
	}
	_, err := h.session.WebhookExecute(h.ID, h.Token, false, &discordgo.WebhookParams{
		Embeds: embeds,
	})
	return err
}

// Embed builds the embed layout shared by the log and error webhooks.
func Embed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: footerText,
		},
	}
}
