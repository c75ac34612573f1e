package discord

import (
	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// CommandHandler manages command loading and registration
type CommandHandler struct {
	client        *ExtendedClient
	slashCommands []*discordgo.ApplicationCommand
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(client *ExtendedClient) *CommandHandler {
	return &CommandHandler{
		client:        client,
		slashCommands: make([]*discordgo.ApplicationCommand, 0),
	}
}

// RegisterCommand adds a top level command to the handler
func (ch *CommandHandler) RegisterCommand(cmd *Command) {
	ch.client.Commands.Set(cmd.Name, cmd)
	ch.slashCommands = append(ch.slashCommands, cmd.ToApplicationCommand())
	logger.Debug("Comando registrado: "+cmd.Name, "CommandHandler")
}

// BuildCommandGroup creates a command group with subcommands. Each
// subcommand is routed as "name.sub".
func (ch *CommandHandler) BuildCommandGroup(name, description string, subcommands ...*Command) *discordgo.ApplicationCommand {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subcommands))

	var perms int64
	for _, cmd := range subcommands {
		fullName := name + "." + cmd.Name
		ch.client.Commands.Set(fullName, cmd)
		perms |= cmd.UserPermissions

		options = append(options, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        cmd.Name,
			Description: cmd.Description,
			Options:     cmd.Options,
		})
	}

	appCmd := &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options:     options,
	}
	if perms != 0 {
		appCmd.DefaultMemberPermissions = &perms
	}
	return appCmd
}

// AddCommand queues a prebuilt application command (usually a group)
func (ch *CommandHandler) AddCommand(cmd *discordgo.ApplicationCommand) {
	ch.slashCommands = append(ch.slashCommands, cmd)
}

// ApplicationCommands returns the queued application commands
func (ch *CommandHandler) ApplicationCommands() []*discordgo.ApplicationCommand {
	return ch.slashCommands
}

// registrationScope picks where commands live: the moderated guild when
// configured, otherwise global.
func registrationScope(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	if cfg.GuildID != "" {
		return cfg.GuildID
	}
	return cfg.DevGuildID
}

// Scope returns the guild commands are registered to, "" for global.
func (ch *CommandHandler) Scope() string {
	return registrationScope(config.Get())
}

// RegisterCommands overwrites the bot's slash commands with the queued set
func (ch *CommandHandler) RegisterCommands() {
	guildID := ch.Scope()
	scope := "globales"
	if guildID != "" {
		scope = "del servidor " + guildID
	}

	logger.Info("🔄 Registrando comandos "+scope+"...", "CommandHandler")

	if err := ch.SyncCommands(guildID); err != nil {
		logger.Error("Error registrando comandos: "+err.Error(), "CommandHandler")
		return
	}

	logger.Success("✅ Comandos "+scope+" registrados.", "CommandHandler")
}

// SyncCommands replaces every command in the scope with the queued set.
// Discord drops the ones missing from the list.
func (ch *CommandHandler) SyncCommands(guildID string) error {
	_, err := ch.client.Session.ApplicationCommandBulkOverwrite(
		ch.client.Session.State.User.ID,
		guildID,
		ch.slashCommands,
	)
	return err
}

// ListCommands returns the commands Discord has registered in the scope
func (ch *CommandHandler) ListCommands(guildID string) ([]*discordgo.ApplicationCommand, error) {
	return ch.client.Session.ApplicationCommands(ch.client.Session.State.User.ID, guildID)
}

// UnregisterCommands removes the bot's commands from the given scope
// ("" for global).
func (ch *CommandHandler) UnregisterCommands(guildID string) error {
	appID := ch.client.Session.State.User.ID
	commands, err := ch.ListCommands(guildID)
	if err != nil {
		return err
	}

	for _, cmd := range commands {
		if err := ch.client.Session.ApplicationCommandDelete(appID, guildID, cmd.ID); err != nil {
			logger.Error("Error eliminando comando "+cmd.Name+": "+err.Error(), "CommandHandler")
		}
	}

	logger.Success("Comandos eliminados.", "CommandHandler")
	return nil
}
