package web

import (
	"net/http"

	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/gin-gonic/gin"
)

// BotStatus is the part of the Discord client the API reports on.
type BotStatus interface {
	IsReady() bool
	GuildCount() int
}

// API serves read-only moderation data.
type API struct {
	Service *moderation.Service
	Backend database.Backend
	Bot     BotStatus
}

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, a *API) {
	api := s.Group("/api")
	{
		api.GET("/health", healthHandler)
		api.GET("/status", a.statusHandler)
		api.GET("/punishments", a.punishmentsHandler)
		api.GET("/members/:id/punishments", a.memberPunishmentsHandler)
		api.GET("/members/:id/warnings", a.memberWarningsHandler)
	}
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "PancyMod Go is running",
	})
}

// statusHandler returns the bot, storage and moderation status
func (a *API) statusHandler(c *gin.Context) {
	storageStatus, storageOnline := database.Status(c.Request.Context(), a.Backend)

	storageName := ""
	if a.Backend != nil {
		storageName = a.Backend.Name()
	}

	botOnline, guilds := false, 0
	if a.Bot != nil {
		botOnline = a.Bot.IsReady()
		guilds = a.Bot.GuildCount()
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"storage": gin.H{
			"backend":  storageName,
			"status":   storageStatus,
			"isOnline": storageOnline,
		},
		"bot": gin.H{
			"isOnline": botOnline,
			"guilds":   guilds,
		},
		"moderation": a.Service.Stats(),
	})
}

// punishmentsHandler lists active punishments, optionally ?kind=mute|ban
func (a *API) punishmentsHandler(c *gin.Context) {
	active := a.Service.ActivePunishments()

	if kind := moderation.Kind(c.Query("kind")); kind != "" {
		if !kind.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": "El tipo debe ser 'mute' o 'ban'.",
			})
			return
		}
		var filtered []moderation.PunishmentRecord
		for _, p := range active {
			if p.Kind == kind {
				filtered = append(filtered, p)
			}
		}
		active = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"count":       len(active),
		"punishments": nonNil(active),
	})
}

// memberPunishmentsHandler lists a member's active punishments
func (a *API) memberPunishmentsHandler(c *gin.Context) {
	memberID := c.Param("id")

	var mine []moderation.PunishmentRecord
	for _, p := range a.Service.ActivePunishments() {
		if p.MemberID == memberID {
			mine = append(mine, p)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"memberId":    memberID,
		"count":       len(mine),
		"punishments": nonNil(mine),
	})
}

// memberWarningsHandler lists a member's live warnings
func (a *API) memberWarningsHandler(c *gin.Context) {
	memberID := c.Param("id")
	warnings := a.Service.Warnings(memberID)
	if warnings == nil {
		warnings = []moderation.WarningRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"memberId": memberID,
		"count":    len(warnings),
		"warnings": warnings,
	})
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil(p []moderation.PunishmentRecord) []moderation.PunishmentRecord {
	if p == nil {
		return []moderation.PunishmentRecord{}
	}
	return p
}
