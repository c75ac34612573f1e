package enforcement

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentEmbed struct {
	channel string
	embed   *discordgo.MessageEmbed
}

type fakeDiscord struct {
	sent     []sentEmbed
	added    []string
	removed  []string
	dmErr    error
	roleErr  error
	auditLog int
}

func (f *fakeDiscord) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.dmErr != nil {
		return nil, f.dmErr
	}
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeDiscord) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, sentEmbed{channelID, embed})
	return &discordgo.Message{ID: "m", ChannelID: channelID}, nil
}

func (f *fakeDiscord) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	f.added = append(f.added, guildID+"/"+userID+"/"+roleID)
	f.auditLog += len(options)
	return f.roleErr
}

func (f *fakeDiscord) GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	f.removed = append(f.removed, guildID+"/"+userID+"/"+roleID)
	return f.roleErr
}

func warnEvent() Event {
	p := moderation.PunishmentRecord{
		ID: "p1", MemberID: "u1", CommunityID: guild, Kind: moderation.KindMute,
		ExpiresAt: epoch.Add(90 * time.Minute),
	}
	w := moderation.WarningRecord{ID: "w1", MemberID: "u1", Reason: "Enviar mensajes demasiado rápido"}
	return Event{
		Type: EventWarn, CommunityID: guild, MemberID: "u1", Reason: w.Reason, Automatic: true,
		WarnCount: 4, DurationMinutes: 90, Warning: &w, Punishment: &p, At: epoch,
	}
}

func TestDiscordNotifierSendsDMAndLog(t *testing.T) {
	api := &fakeDiscord{}
	n := newDiscordNotifier(api, "log-channel", func(string) string { return "Pancy" })

	require.NoError(t, n.Notify(context.Background(), warnEvent()))
	require.Len(t, api.sent, 2)

	dm := api.sent[0]
	assert.Equal(t, "dm-u1", dm.channel)
	assert.Contains(t, dm.embed.Description, "Pancy")
	assert.Contains(t, dm.embed.Description, "1 hour 30 minutes")
	assert.Equal(t, colorWarn, dm.embed.Color)

	log := api.sent[1]
	assert.Equal(t, "log-channel", log.channel)
	var moderator string
	for _, f := range log.embed.Fields {
		if f.Name == "Moderador" {
			moderator = f.Value
		}
	}
	assert.Equal(t, "AutoMod", moderator)
}

func logField(embed *discordgo.MessageEmbed, name string) string {
	for _, f := range embed.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

func TestAutomodLogShowsChannelAndContent(t *testing.T) {
	api := &fakeDiscord{}
	n := newDiscordNotifier(api, "log-channel", func(string) string { return "Pancy" })

	evt := warnEvent()
	evt.ChannelID = "general"
	evt.Content = "spam spam spam"
	require.NoError(t, n.Notify(context.Background(), evt))
	require.Len(t, api.sent, 2)

	log := api.sent[1].embed
	assert.Equal(t, "<#general>", logField(log, "Canal"))
	assert.Equal(t, "spam spam spam", logField(log, "Contenido del mensaje"))
	assert.NotContains(t, api.sent[0].embed.Description, "spam spam spam", "the DM does not echo the message")

	manual := warnEvent()
	manual.Automatic = false
	manual.ModeratorID = "42"
	manual.ChannelID = "general"
	api.sent = nil
	require.NoError(t, n.Notify(context.Background(), manual))
	assert.Empty(t, logField(api.sent[1].embed, "Canal"))
}

func TestDiscordNotifierDMFailureStillLogs(t *testing.T) {
	api := &fakeDiscord{dmErr: errors.New("cannot send messages to this user")}
	n := newDiscordNotifier(api, "log-channel", func(id string) string { return id })

	err := n.Notify(context.Background(), warnEvent())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "dm u1"))
	require.Len(t, api.sent, 1)
	assert.Equal(t, "log-channel", api.sent[0].channel)
}

func TestDiscordNotifierExpireAndRemove(t *testing.T) {
	api := &fakeDiscord{}
	n := newDiscordNotifier(api, "", func(id string) string { return id })

	p := moderation.PunishmentRecord{ID: "p9", MemberID: "u1", CommunityID: guild, Kind: moderation.KindBan}
	require.NoError(t, n.Notify(context.Background(), Event{Type: EventExpire, CommunityID: guild, MemberID: "u1", Punishment: &p, At: epoch}))

	w := moderation.WarningRecord{ID: "w7", MemberID: "u1", Reason: "flood"}
	require.NoError(t, n.Notify(context.Background(), Event{Type: EventRemove, CommunityID: guild, MemberID: "u1", Warning: &w, At: epoch}))

	require.Len(t, api.sent, 2, "no log channel configured, DMs only")
	assert.Contains(t, api.sent[0].embed.Description, "p9")
	assert.Contains(t, api.sent[1].embed.Description, "w7")
	assert.Contains(t, api.sent[1].embed.Description, "Sin razón especificada")
}

func TestDiscordRoleSink(t *testing.T) {
	api := &fakeDiscord{}
	sink := NewDiscordRoleSink(api, "mute-role", "")
	p := moderation.PunishmentRecord{ID: "p1", MemberID: "u1", CommunityID: guild, Kind: moderation.KindMute, Reason: "spam"}

	require.NoError(t, sink.Grant(context.Background(), p))
	require.NoError(t, sink.Revoke(context.Background(), p))
	assert.Equal(t, []string{guild + "/u1/mute-role"}, api.added)
	assert.Equal(t, []string{guild + "/u1/mute-role"}, api.removed)
	assert.Equal(t, 2, api.auditLog)

	p.Kind = moderation.KindBan
	assert.Error(t, sink.Grant(context.Background(), p), "banned role is not configured")
}

type fakePublisher struct {
	topics   []string
	payloads []interface{}
}

func (f *fakePublisher) PublishEvent(event string, payload interface{}) error {
	f.topics = append(f.topics, event)
	f.payloads = append(f.payloads, payload)
	return nil
}

func TestAuditNotifier(t *testing.T) {
	pub := &fakePublisher{}
	evt := warnEvent()

	require.NoError(t, NewAuditNotifier(pub).Notify(context.Background(), evt))
	assert.Equal(t, []string{"warn"}, pub.topics)
	assert.Equal(t, evt, pub.payloads[0])
}
