package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Broker:            "tcp://localhost:1883",
		Vehicles:          5,
		TrafficLights:     3,
		CAMInterval:       time.Second,
		V2IInterval:       2 * time.Second,
		EmergencyInterval: 5 * time.Second,
		EmergencyRate:     0.15,
	}
}

func TestGenerateVehicles(t *testing.T) {
	vehicles := generateVehicles(testConfig())
	require.Len(t, vehicles, 5)
	assert.Equal(t, "V001", vehicles[0].ID)
	assert.Equal(t, "V005", vehicles[4].ID)
	for _, v := range vehicles {
		assert.Equal(t, v.ID, v.state.VehicleID)
		assert.Equal(t, "CAM", v.state.Type)
		assert.Equal(t, "normal", v.state.Status)
		assert.GreaterOrEqual(t, v.state.Speed, 30.0)
		assert.Less(t, v.state.Speed, 80.0)
		assert.GreaterOrEqual(t, v.state.Heading, 0.0)
		assert.Less(t, v.state.Heading, 360.0)
		assert.InDelta(t, baseLat, v.state.Position.Latitude, 0.01)
		assert.InDelta(t, baseLon, v.state.Position.Longitude, 0.01)
		require.NoError(t, v.state.Validate())
	}
}

func TestVehicleStepBounds(t *testing.T) {
	v := newVehicleSim("V001", "tcp://localhost:1883", time.Second)
	start := v.state.Position
	before := v.state.Timestamp
	for i := 0; i < 500; i++ {
		v.step()
		assert.GreaterOrEqual(t, v.state.Heading, 0.0)
		assert.Less(t, v.state.Heading, 360.0)
	}
	// At 80 km/h a tick moves at most ~1.1e-4 degrees.
	maxDrift := 500 * (80.0 / 3.6) * 0.00001 * 0.5
	assert.InDelta(t, start.Latitude, v.state.Position.Latitude, maxDrift)
	assert.InDelta(t, start.Longitude, v.state.Position.Longitude, maxDrift)
	assert.False(t, v.state.Timestamp.Before(before.Time))
}

func TestGenerateTrafficLights(t *testing.T) {
	lights := generateTrafficLights(testConfig())
	require.Len(t, lights, 3)
	assert.Equal(t, "TL001", lights[0].ID)
	assert.Equal(t, "TL003", lights[2].ID)
	for i, l := range lights {
		assert.Contains(t, lightStates, l.state)
		assert.InDelta(t, baseLat+0.001*float64(i), l.pos.Lat, 1e-9)
		assert.InDelta(t, baseLon+0.001*float64(i), l.pos.Lon, 1e-9)
	}
}

func TestTrafficLightStep(t *testing.T) {
	lights := generateTrafficLights(testConfig())
	l := &lights[0]
	for i := 0; i < 200; i++ {
		msg := l.step()
		require.NoError(t, msg.Validate())
		assert.Equal(t, "V2I", msg.Type)
		assert.Equal(t, "TL001", msg.InfrastructureID)
		assert.Contains(t, lightStates, msg.Data.State)
		assert.GreaterOrEqual(t, msg.Data.RemainingTime, 5)
		assert.LessOrEqual(t, msg.Data.RemainingTime, 30)
	}
}

func TestEmergencyEvent(t *testing.T) {
	sim := &EmergencySim{Broker: "tcp://localhost:1883", Interval: time.Second, Rate: 1}
	for i := 0; i < 50; i++ {
		ev := sim.event()
		require.NoError(t, ev.Validate())
		assert.Len(t, ev.EventID, 8)
		assert.Contains(t, emergencyTypes, ev.EventType)
		assert.GreaterOrEqual(t, ev.Duration, 300)
		assert.LessOrEqual(t, ev.Duration, 1800)
		assert.GreaterOrEqual(t, ev.Radius, 100)
		assert.LessOrEqual(t, ev.Radius, 1000)
		assert.InDelta(t, baseLat, ev.Position.Latitude, 0.02)
		assert.InDelta(t, baseLon, ev.Position.Longitude, 0.02)
	}
}

func TestConfigValidate(t *testing.T) {
	base := testConfig()
	require.NoError(t, base.Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty broker", func(c *Config) { c.Broker = "" }},
		{"negative vehicles", func(c *Config) { c.Vehicles = -1 }},
		{"zero interval", func(c *Config) { c.CAMInterval = 0 }},
		{"emergency rate above one", func(c *Config) { c.EmergencyRate = 1.5 }},
		{"negative drop rate", func(c *Config) { c.DropRate = -0.1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
