package main

import (
	"fmt"
	"time"
)

// Config holds parameters for the simulator.
type Config struct {
	Broker            string
	Vehicles          int
	TrafficLights     int
	CAMInterval       time.Duration
	V2IInterval       time.Duration
	EmergencyInterval time.Duration
	EmergencyRate     float64
	ResponseDelay     time.Duration
	DropRate          float64
	Verbose           bool
}

func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("broker must not be empty")
	}
	if c.Vehicles < 0 || c.TrafficLights < 0 {
		return fmt.Errorf("entity counts must not be negative")
	}
	if c.CAMInterval <= 0 || c.V2IInterval <= 0 || c.EmergencyInterval <= 0 {
		return fmt.Errorf("intervals must be positive")
	}
	if c.EmergencyRate < 0 || c.EmergencyRate > 1 {
		return fmt.Errorf("emergency-rate must be within [0,1]")
	}
	if c.DropRate < 0 || c.DropRate > 1 {
		return fmt.Errorf("drop-rate must be within [0,1]")
	}
	return nil
}
