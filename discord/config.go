package discord

// Channels holds the destination channel IDs the bot posts to. Any of
// them may be empty, in which case the corresponding post is skipped.
type Channels struct {
	General       string `yaml:"general"`
	Welcome       string `yaml:"welcome"`
	GeneralSherpa string `yaml:"general_sherpa"`
	LFGChat       string `yaml:"lfg_chat"`
	EventSignup   string `yaml:"event_signup"`
	RaidSignup    string `yaml:"raid_signup"`
	Update        string `yaml:"update"`
}

// Config holds Discord-specific configuration.
type Config struct {
	Token         string   `yaml:"token"`
	GuildID       string   `yaml:"guild_id"`
	FounderUserID string   `yaml:"founder_user_id"`
	SherpaRoleID  string   `yaml:"sherpa_role_id"`
	Channels      Channels `yaml:"channels"`

	// nil means "not set", which defaults to enabled.
	WelcomeEmbed *bool `yaml:"welcome_embed_enabled"`
	WelcomeDM    *bool `yaml:"welcome_dm_enabled"`
}

// WelcomeEmbedEnabled reports whether new members get a channel embed.
func (c Config) WelcomeEmbedEnabled() bool {
	return c.WelcomeEmbed == nil || *c.WelcomeEmbed
}

// WelcomeDMEnabled reports whether new members get a direct message.
func (c Config) WelcomeDMEnabled() bool {
	return c.WelcomeDM == nil || *c.WelcomeDM
}
