// Package config provides configuration management for the bot.
// It loads environment variables (and a .env file when present) once and
// makes them available throughout the application.
package config

import (
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken   string
	GuildID    string
	DevGuildID string

	// Moderation
	MuteRoleID        string
	BannedRoleID      string
	LogChannelID      string
	ModRoleIDs        []string
	IgnoredChannelIDs []string
	SweepInterval     time.Duration
	TrackedMembers    int

	// Storage
	StorageBackend string
	DataDir        string
	MongoDBURL     string
	DBName         string
	RedisURL       string

	// MQTT
	MQTTHost     string
	MQTTPort     string
	MQTTUser     string
	MQTTPassword string

	// Web Server
	Port string

	// Environment
	Environment string

	// Webhooks
	ErrorWebhook      string
	LogsWebhook       string
	LogsWebServerHook string
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

var (
	cfg     *Config
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
func resetForTesting() {
	cfg = nil
	cfgOnce = sync.Once{}
}

func loadConfig() {
	// A missing .env file is fine
	_ = godotenv.Load()

	cfg = &Config{
		BotToken:   getEnv("botToken", ""),
		GuildID:    getEnv("guildId", ""),
		DevGuildID: getEnv("devGuildId", ""),

		MuteRoleID:        getEnv("muteRoleId", ""),
		BannedRoleID:      getEnv("bannedRoleId", ""),
		LogChannelID:      getEnv("logChannelId", ""),
		ModRoleIDs:        getList("modRoleIds"),
		IgnoredChannelIDs: getList("ignoredChannelIds"),
		SweepInterval:     getDuration("sweepInterval", 30*time.Second),
		TrackedMembers:    getInt("automodTrackedMembers", 10000),

		StorageBackend: strings.ToLower(getEnv("storage", "json")),
		DataDir:        getEnv("dataDir", "data"),
		MongoDBURL:     getEnv("mongodbUrl", "mongodb://localhost:27017"),
		DBName:         getEnv("dbName", "PancyMod"),
		RedisURL:       getEnv("redisUrl", "redis://localhost:6379/0"),

		MQTTHost:     getEnv("MQTT_Host", "localhost"),
		MQTTPort:     getEnv("MQTT_Port", "1883"),
		MQTTUser:     getEnv("MQTT_User", ""),
		MQTTPassword: getEnv("MQTT_Password", ""),

		Port: getEnv("PORT", "3000"),

		Environment: getEnv("enviroment", "dev"),

		ErrorWebhook:      getEnv("errorWebhook", ""),
		LogsWebhook:       getEnv("logsWebhook", ""),
		LogsWebServerHook: getEnv("logsWebServerWebhook", ""),
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, nil
}

// Get returns the current configuration
func Get() *Config {
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getList splits a comma separated variable, dropping empty entries.
func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// IsModRole reports whether roleID is one of the configured moderator roles.
func (c *Config) IsModRole(roleID string) bool {
	return slices.Contains(c.ModRoleIDs, roleID)
}

// IsIgnoredChannel reports whether automod skips channelID.
func (c *Config) IsIgnoredChannel(channelID string) bool {
	return slices.Contains(c.IgnoredChannelIDs, channelID)
}
