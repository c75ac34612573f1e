package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

// TestReplyHelpersSignatures pins the reply helpers used by the mod commands
func TestReplyHelpersSignatures(t *testing.T) {
	type replyEmbedFunc func(*CommandContext, *discordgo.MessageEmbed) error
	type replyTextFunc func(*CommandContext, string) error
	type choicesFunc func(*CommandContext, []*discordgo.ApplicationCommandOptionChoice) error

	var _ replyEmbedFunc = (*CommandContext).ReplyEphemeralEmbed
	var _ replyTextFunc = (*CommandContext).ReplyError
	var _ choicesFunc = (*CommandContext).RespondChoices
}

// TestCommandCreation verifies that commands can be created with the builder pattern
func TestCommandCreation(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	cmd := NewCommand("test", "Test command", "test", handler)
	
	if cmd == nil {
		t.Fatal("NewCommand returned nil")
	}

	if cmd.Name != "test" {
		t.Errorf("Name = %v, want %v", cmd.Name, "test")
	}

	if cmd.Description != "Test command" {
		t.Errorf("Description = %v, want %v", cmd.Description, "Test command")
	}

	if cmd.Category != "test" {
		t.Errorf("Category = %v, want %v", cmd.Category, "test")
	}

	if cmd.Run == nil {
		t.Error("Run function is nil")
	}
}

// TestCommandWithOptions verifies the WithOptions builder method
func TestCommandWithOptions(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	option := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "test-option",
		Description: "Test option",
		Required:    true,
	}

	cmd := NewCommand("test", "Test command", "test", handler).
		WithOptions(option)

	if cmd.Options == nil {
		t.Fatal("Options is nil")
	}

	if len(cmd.Options) != 1 {
		t.Fatalf("Options length = %v, want %v", len(cmd.Options), 1)
	}

	if cmd.Options[0].Name != "test-option" {
		t.Errorf("Option name = %v, want %v", cmd.Options[0].Name, "test-option")
	}
}

// TestCommandWithPermissions verifies the permission builder methods
func TestCommandWithPermissions(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	cmd := NewCommand("test", "Test command", "test", handler).
		WithUserPermissions(discordgo.PermissionAdministrator).
		WithBotPermissions(discordgo.PermissionSendMessages)

	if cmd.UserPermissions != discordgo.PermissionAdministrator {
		t.Errorf("UserPermissions = %v, want %v", cmd.UserPermissions, discordgo.PermissionAdministrator)
	}

	if cmd.BotPermissions != discordgo.PermissionSendMessages {
		t.Errorf("BotPermissions = %v, want %v", cmd.BotPermissions, discordgo.PermissionSendMessages)
	}
}

// TestCommandAsModOnly verifies the AsModOnly builder method
func TestCommandAsModOnly(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	cmd := NewCommand("test", "Test command", "test", handler).AsModOnly()

	if !cmd.ModOnly {
		t.Error("ModOnly should be true after calling AsModOnly()")
	}
}

// TestToApplicationCommand verifies conversion to Discord application command
func TestToApplicationCommand(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	option := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "test-option",
		Description: "Test option",
		Required:    true,
	}

	cmd := NewCommand("test", "Test command", "test", handler).
		WithOptions(option)

	appCmd := cmd.ToApplicationCommand()

	if appCmd == nil {
		t.Fatal("ToApplicationCommand returned nil")
	}

	if appCmd.Name != "test" {
		t.Errorf("ApplicationCommand Name = %v, want %v", appCmd.Name, "test")
	}

	if appCmd.Description != "Test command" {
		t.Errorf("ApplicationCommand Description = %v, want %v", appCmd.Description, "Test command")
	}

	if len(appCmd.Options) != 1 {
		t.Fatalf("ApplicationCommand Options length = %v, want %v", len(appCmd.Options), 1)
	}

	if appCmd.DefaultMemberPermissions != nil {
		t.Errorf("DefaultMemberPermissions = %v, want nil", *appCmd.DefaultMemberPermissions)
	}
}

// TestBuildCommandGroup verifies subcommands are routed as "group.sub"
func TestBuildCommandGroup(t *testing.T) {
	client := &ExtendedClient{Commands: NewCommandCollection()}
	handler := NewCommandHandler(client)
	noop := func(ctx *CommandContext) error { return nil }

	group := handler.BuildCommandGroup("mod", "Moderación",
		NewCommand("warn", "Advertir", "mod", noop).WithUserPermissions(discordgo.PermissionModerateMembers),
		NewCommand("log", "Historial", "mod", noop),
	)

	if len(group.Options) != 2 || group.Options[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		t.Fatalf("group options = %+v, want two subcommands", group.Options)
	}
	if _, ok := client.Commands.Get("mod.warn"); !ok {
		t.Error("mod.warn was not registered")
	}
	if _, ok := client.Commands.Get("mod.log"); !ok {
		t.Error("mod.log was not registered")
	}
	if group.DefaultMemberPermissions == nil || *group.DefaultMemberPermissions != discordgo.PermissionModerateMembers {
		t.Errorf("DefaultMemberPermissions = %v, want ModerateMembers", group.DefaultMemberPermissions)
	}
}

// TestCommandKey verifies interaction routing keys
func TestCommandKey(t *testing.T) {
	tests := []struct {
		name string
		data discordgo.ApplicationCommandInteractionData
		want string
	}{
		{"plain", discordgo.ApplicationCommandInteractionData{Name: "ping"}, "ping"},
		{"subcommand", discordgo.ApplicationCommandInteractionData{
			Name: "mod",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "warn", Type: discordgo.ApplicationCommandOptionSubCommand},
			},
		}, "mod.warn"},
		{"group", discordgo.ApplicationCommandInteractionData{
			Name: "mod",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "config", Type: discordgo.ApplicationCommandOptionSubCommandGroup, Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "show", Type: discordgo.ApplicationCommandOptionSubCommand},
				}},
			},
		}, "mod.config.show"},
		{"plain option", discordgo.ApplicationCommandInteractionData{
			Name: "help",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "command", Type: discordgo.ApplicationCommandOptionString},
			},
		}, "help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := commandKey(tt.data); got != tt.want {
				t.Errorf("commandKey() = %v, want %v", got, tt.want)
			}
		})
	}
}
