package config

// DemoConfig controls the demonstration jobs seeded shortly after startup so
// a fresh deployment has traffic to display.
type DemoConfig struct {
	Enabled      bool `json:"enabled"`
	DelaySeconds int  `json:"delay_seconds"`
}

// SetDefaults applies sane defaults.
func (c *DemoConfig) SetDefaults() {
	if c.DelaySeconds <= 0 {
		c.DelaySeconds = 2
	}
}
