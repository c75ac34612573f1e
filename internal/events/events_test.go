package events

import (
	"context"
	"testing"

	"github.com/PancyStudios/PancyModGo/internal/enforcement"
	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type grantRecorder struct {
	granted []string
}

func (g *grantRecorder) Grant(_ context.Context, p moderation.PunishmentRecord) error {
	g.granted = append(g.granted, p.MemberID+"/"+string(p.Kind))
	return nil
}

func (g *grantRecorder) Revoke(context.Context, moderation.PunishmentRecord) error { return nil }

func newModule(t *testing.T, cfg *config.Config) (*Module, *moderation.Service, *grantRecorder) {
	t.Helper()
	svc, err := moderation.NewService(context.Background(), moderation.NewMemoryBackend(), moderation.Options{})
	require.NoError(t, err)
	roles := &grantRecorder{}
	return NewModule(svc, enforcement.New(svc, roles), cfg), svc, roles
}

func message(guildID, channelID string, author *discordgo.User) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID: "m1", GuildID: guildID, ChannelID: channelID, Author: author, Content: "hola",
	}}
}

func TestObservable(t *testing.T) {
	m, _, _ := newModule(t, &config.Config{GuildID: "g", IgnoredChannelIDs: []string{"memes"}})
	user := &discordgo.User{ID: "u"}
	bot := &discordgo.User{ID: "b", Bot: true}

	webhook := message("g", "general", user)
	webhook.WebhookID = "hook"

	tests := []struct {
		name string
		msg  *discordgo.MessageCreate
		want bool
	}{
		{"guild message", message("g", "general", user), true},
		{"bot", message("g", "general", bot), false},
		{"webhook", webhook, false},
		{"no author", message("g", "general", nil), false},
		{"direct message", message("", "dm", user), false},
		{"other guild", message("other", "general", user), false},
		{"ignored channel", message("g", "memes", user), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.observable(tt.msg))
		})
	}
}

func TestInScopeWithoutGuild(t *testing.T) {
	m, _, _ := newModule(t, &config.Config{})
	assert.True(t, m.inScope("any"))
}

func TestAuthorFromPartialMember(t *testing.T) {
	msg := message("g", "general", &discordgo.User{ID: "u"})
	assert.Nil(t, author(nil, msg))

	msg.Member = &discordgo.Member{Roles: []string{"mod"}}
	got := author(nil, msg)
	require.NotNil(t, got)
	assert.Equal(t, "u", got.User.ID)
	assert.Equal(t, []string{"mod"}, got.Roles)
	assert.Nil(t, msg.Member.User, "event member is not mutated")
}

func TestMemberRejoinReappliesRoles(t *testing.T) {
	m, svc, roles := newModule(t, &config.Config{GuildID: "g"})
	ctx := context.Background()

	_, err := svc.ApplyManualPunishment(ctx, moderation.PunishRequest{
		CommunityID: "g", MemberID: "u", Kind: moderation.KindMute, DurationMinutes: 30,
	})
	require.NoError(t, err)
	roles.granted = nil

	m.onGuildMemberAdd(nil, &discordgo.GuildMemberAdd{Member: &discordgo.Member{GuildID: "g", User: &discordgo.User{ID: "u"}}})
	assert.Equal(t, []string{"u/mute"}, roles.granted)

	roles.granted = nil
	m.onGuildMemberAdd(nil, &discordgo.GuildMemberAdd{Member: &discordgo.Member{GuildID: "g", User: &discordgo.User{ID: "clean"}}})
	assert.Empty(t, roles.granted)
}
