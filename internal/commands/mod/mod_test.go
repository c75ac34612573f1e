package mod

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testGuild() *discordgo.Guild {
	return &discordgo.Guild{
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "member", Position: 1},
			{ID: "bot", Position: 4},
			{ID: "mod", Position: 5},
			{ID: "vip", Position: 6},
		},
	}
}

func testMember(id string, roles ...string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: id}, Roles: roles}
}

func TestTargetProblem(t *testing.T) {
	guild := testGuild()
	mods := []string{"mod"}
	actor := testMember("actor", "mod")
	bot := testMember("bot", "bot")
	robot := testMember("robot")
	robot.User.Bot = true

	tests := []struct {
		name   string
		actor  *discordgo.Member
		target *discordgo.Member
		want   string
	}{
		{"regular member", actor, testMember("u", "member"), ""},
		{"not in guild", actor, nil, "no está en el servidor"},
		{"bot account", actor, robot, "bot"},
		{"self", testMember("u", "member"), testMember("u", "member"), "ti mismo"},
		{"moderator exempt", testMember("owner"), testMember("m2", "mod"), "moderador"},
		{"above bot", testMember("owner"), testMember("v", "vip"), "superior al mío"},
		{"above actor", testMember("x", "member"), testMember("v", "vip"), "superior al tuyo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := targetProblem(guild, tt.actor, bot, tt.target, mods)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestServiceErrorMessage(t *testing.T) {
	assert.Contains(t, serviceErrorMessage(moderation.ErrNotFound), "No se encontró")
	assert.Contains(t, serviceErrorMessage(moderation.ErrInvalidDuration), "duración")
	assert.Contains(t, serviceErrorMessage(moderation.ErrMissingMember), "no válida")
	assert.Contains(t, serviceErrorMessage(&moderation.PersistenceError{Op: "warning", Err: moderation.ErrBackendUnavailable}), "guardar")
	assert.Equal(t, "Ocurrió un error inesperado.", serviceErrorMessage(fmt.Errorf("boom")))
}

func TestRemoveChoices(t *testing.T) {
	punishments := []moderation.PunishmentRecord{
		{ID: "p-1", Kind: moderation.KindMute, Reason: "spam"},
		{ID: "p-2", Kind: moderation.KindBan, Reason: "raid"},
	}
	warnings := []moderation.WarningRecord{
		{ID: "w-1", Reason: "Spam en general"},
	}

	all := removeChoices(punishments, warnings, "")
	assert.Len(t, all, 3)
	assert.Equal(t, "p-1", all[0].Value)
	assert.Equal(t, "w-1", all[2].Value)

	filtered := removeChoices(punishments, warnings, "SPAM")
	assert.Len(t, filtered, 2)

	byID := removeChoices(punishments, warnings, "p-2")
	assert.Len(t, byID, 1)
	assert.True(t, strings.HasPrefix(byID[0].Name, "Baneo"))
}

func TestRemoveChoicesBounds(t *testing.T) {
	var punishments []moderation.PunishmentRecord
	for i := 0; i < 40; i++ {
		punishments = append(punishments, moderation.PunishmentRecord{
			ID: fmt.Sprintf("p-%d", i), Kind: moderation.KindMute, Reason: strings.Repeat("ñ", 150),
		})
	}

	choices := removeChoices(punishments, nil, "")
	assert.Len(t, choices, 25)
	for _, c := range choices {
		assert.LessOrEqual(t, len([]rune(c.Name)), 100)
	}
}

func TestRenderLog(t *testing.T) {
	active := []moderation.PunishmentRecord{
		{ID: "p-1", Kind: moderation.KindMute, Reason: "spam", ExpiresAt: now.Add(90 * time.Minute)},
		{ID: "p-2", Kind: moderation.KindBan, Reason: "raid", ModeratorID: "42", ExpiresAt: now.Add(48 * time.Hour)},
	}

	out := renderLog(active, 3, now)
	assert.Contains(t, out, "AutoMod")
	assert.Contains(t, out, "<@42>")
	assert.Contains(t, out, "1 hour 30 minutes")
	assert.Contains(t, out, "2 days")
	assert.Contains(t, out, "**Advertencias activas:** 3")

	assert.Contains(t, renderLog(nil, 0, now), "no tiene sanciones activas")
}

func TestRenderWarningsHidesModerator(t *testing.T) {
	warnings := []moderation.WarningRecord{{ID: "w-1", Reason: "spam", ModeratorID: "42", CreatedAt: now}}

	assert.Contains(t, renderWarnings(warnings, false, now), "Oculto")
	assert.Contains(t, renderWarnings(warnings, true, now), "<@42>")
	assert.Contains(t, renderWarnings(nil, false, now), "No se han encontrado advertencias")
}

func TestClip(t *testing.T) {
	long := strings.Repeat("a", 5000)
	assert.LessOrEqual(t, len([]rune(clip(long))), 4096)
	assert.Equal(t, "corto", clip("corto"))
}

func TestRoleCommandsNeedManageRoles(t *testing.T) {
	m := &Module{}
	for _, cmd := range []*discord.Command{
		m.createWarnCommand(), m.createMuteCommand(), m.createBanCommand(),
		m.createUnmuteCommand(), m.createUnbanCommand(), m.createRemoveCommand(),
	} {
		assert.Equal(t, int64(discordgo.PermissionManageRoles), cmd.BotPermissions, cmd.Name)
		assert.True(t, cmd.ModOnly, cmd.Name)
	}
	assert.Zero(t, m.createLogCommand().BotPermissions)
}
