package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goonworks/goonbot/clock"
	"github.com/goonworks/goonbot/discord"
	"github.com/goonworks/goonbot/logger"
	"github.com/goonworks/goonbot/presets"
	"github.com/goonworks/goonbot/store"
	"go.uber.org/config"
)

// DefaultChannelOverridesFile is the optional flat JSON map that
// overrides channel IDs without touching secrets or the environment.
const DefaultChannelOverridesFile = "channel_ids.json"

// AppConfig holds all application configuration.
type AppConfig struct {
	Logger  logger.Config  `yaml:"logger"`
	Discord discord.Config `yaml:"discord"`
	Presets presets.Config `yaml:"presets"`
	Store   store.Config   `yaml:"store"`
	Clock   clock.Config   `yaml:"clock"`
}

// Load reads configuration from the specified YAML files.
// Files are merged in order, with later files overriding earlier ones.
// Missing files are silently ignored.
func Load(files ...string) (*AppConfig, error) {
	opts := make([]config.YAMLOption, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			opts = append(opts, config.File(f))
		}
	}

	if len(opts) == 0 {
		return nil, os.ErrNotExist
	}

	provider, err := config.NewYAML(opts...)
	if err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := provider.Get(config.Root).Populate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration with sensible defaults. When no
// config file exists at all, the bot runs on environment variables
// alone, so an empty config is returned rather than an error.
func LoadWithDefaults(files ...string) (*AppConfig, error) {
	cfg, err := Load(files...)
	if errors.Is(err, os.ErrNotExist) {
		cfg = &AppConfig{}
	} else if err != nil {
		return nil, err
	}

	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if len(cfg.Logger.OutputPaths) == 0 {
		cfg.Logger.OutputPaths = []string{"stdout"}
	}
	cfg.Presets.Defaults()
	if cfg.Store.Path == "" {
		cfg.Store.Path = "data/goonbot.db"
	}

	return cfg, nil
}

// channelBindings maps setting names (as used by both environment
// variables and channel_ids.json) to their destinations. Aliases are
// tried in order; the first non-empty value wins.
func channelBindings(ch *discord.Channels) []struct {
	keys []string
	dst  *string
} {
	return []struct {
		keys []string
		dst  *string
	}{
		{[]string{"GENERAL_CHANNEL_ID", "GENERAL"}, &ch.General},
		{[]string{"WELCOME_CHANNEL_ID", "WELCOME"}, &ch.Welcome},
		{[]string{"GENERAL_SHERPA_CHANNEL_ID", "GENERAL_SHERPA"}, &ch.GeneralSherpa},
		{[]string{"LFG_CHAT_CHANNEL_ID", "LFG_CHAT"}, &ch.LFGChat},
		{[]string{"EVENT_SIGNUP_CHANNEL_ID", "RAID_DUNGEON_EVENT_SIGNUP_CHANNEL_ID"}, &ch.EventSignup},
		{[]string{"RAID_SIGN_UP_CHANNEL_ID", "RAID_QUEUE_CHANNEL_ID", "RAID_QUEUE"}, &ch.RaidSignup},
		{[]string{"UPDATE_CHANNEL_ID"}, &ch.Update},
	}
}

// ApplyEnv overrides config values from environment variables. Values
// from the environment beat values from YAML files.
func ApplyEnv(cfg *AppConfig) {
	if v := firstEnv("DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}
	if v := firstEnv("GUILD_ID", "DISCORD_GUILD_ID"); v != "" {
		cfg.Discord.GuildID = v
	}
	if v := firstEnv("FOUNDER_USER_ID"); v != "" {
		cfg.Discord.FounderUserID = v
	}
	if v := firstEnv("SHERPA_ROLE_ID"); v != "" {
		cfg.Discord.SherpaRoleID = v
	}

	for _, b := range channelBindings(&cfg.Discord.Channels) {
		if v := firstEnv(b.keys...); v != "" {
			*b.dst = v
		}
	}

	if v := firstEnv("WELCOME_EMBED_ENABLED"); v != "" {
		enabled := !falseLike(v)
		cfg.Discord.WelcomeEmbed = &enabled
	}
	if v := firstEnv("WELCOME_DM_ENABLED"); v != "" {
		enabled := !falseLike(v)
		cfg.Discord.WelcomeDM = &enabled
	}
}

// ApplyChannelOverrides merges the optional channel_ids.json file into
// the channel config. Values from the file beat environment variables.
// A missing file is fine; a malformed one is a startup error.
func ApplyChannelOverrides(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var overrides map[string]string
	if err := json.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	for _, b := range channelBindings(&cfg.Discord.Channels) {
		for _, key := range b.keys {
			if v := strings.TrimSpace(overrides[key]); v != "" {
				*b.dst = v
				break
			}
		}
	}
	return nil
}

// ValidateToken fails fast on a missing or obviously wrong bot token.
// Discord tokens contain dots; anything without one was pasted wrong.
func ValidateToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("DISCORD_TOKEN is required: set it in the environment or discord.token in config")
	}
	if !strings.Contains(token, ".") {
		return errors.New("DISCORD_TOKEN looks invalid: double-check you pasted the full token")
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func falseLike(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "0", "false", "no", "off":
		return true
	}
	return false
}
