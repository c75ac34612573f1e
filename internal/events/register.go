// Package events provides a registry for organizing bot events.
// Events are organized by category (ready, guild, member, message).
package events

import (
	"github.com/PancyStudios/PancyModGo/internal/enforcement"
	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
)

// Module holds what the gateway handlers need.
type Module struct {
	svc      *moderation.Service
	enforcer *enforcement.Enforcer
	cfg      *config.Config
}

func NewModule(svc *moderation.Service, enforcer *enforcement.Enforcer, cfg *config.Config) *Module {
	return &Module{svc: svc, enforcer: enforcer, cfg: cfg}
}

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, m *Module) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	// Ready, disconnect and resume
	RegisterReadyEvents(client)

	// Guild join/leave
	m.RegisterGuildEvents(client)

	// Rejoin enforcement
	m.RegisterMemberEvents(client)

	// Automod
	m.RegisterMessageEvents(client)

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}
