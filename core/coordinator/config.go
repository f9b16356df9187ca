package coordinator

import "fmt"

// Config carries the coordinator's sizing knobs.
type Config struct {
	// HistorySize bounds the emergency ring buffer.
	HistorySize int `json:"history_size"`
	// QueueDepth bounds each observer's delivery queue.
	QueueDepth int `json:"queue_depth"`
	// InboundBuffer bounds the bus adapter's inbound message channel.
	InboundBuffer int `json:"inbound_buffer"`
}

// SetDefaults fills unset fields with sensible values.
func (c *Config) SetDefaults() {
	if c.HistorySize == 0 {
		c.HistorySize = 100
	}
	if c.QueueDepth == 0 {
		c.QueueDepth = 8
	}
	if c.InboundBuffer == 0 {
		c.InboundBuffer = 256
	}
}

// Validate rejects non-positive sizes.
func (c Config) Validate() error {
	if c.HistorySize < 1 {
		return fmt.Errorf("history_size must be positive, got %d", c.HistorySize)
	}
	if c.QueueDepth < 1 {
		return fmt.Errorf("queue_depth must be positive, got %d", c.QueueDepth)
	}
	if c.InboundBuffer < 1 {
		return fmt.Errorf("inbound_buffer must be positive, got %d", c.InboundBuffer)
	}
	return nil
}
