package clock

import "time"

// Config holds NTP clock configuration. When Enabled is false the bot
// uses the plain system clock.
type Config struct {
	Enabled  bool          `yaml:"enabled"`
	Server   string        `yaml:"server"`
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}
