package presets

// Config holds preset loader configuration.
type Config struct {
	Path string `yaml:"path"`
}

// Defaults applies default values to the config.
func (c *Config) Defaults() {
	if c.Path == "" {
		c.Path = "activities.json"
	}
}
