package model

import (
	"encoding/json"
	"fmt"
)

// Position is a WGS84 coordinate as carried by CAM and DENM payloads.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LatLon is the compact coordinate encoding used by V2I payloads.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Severity levels accepted in DENM messages.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// CAM is the Cooperative Awareness Message periodically published by a
// vehicle: its position, speed and heading at a point in time.
type CAM struct {
	Type      string    `json:"type,omitempty"`
	VehicleID string    `json:"vehicle_id"`
	Timestamp Timestamp `json:"timestamp"`
	Position  Position  `json:"position"`
	Speed     float64   `json:"speed"`   // km/h
	Heading   float64   `json:"heading"` // degrees, 0-360
	Status    string    `json:"status"`
}

// Validate checks the minimal CAM schema.
func (m CAM) Validate() error {
	if m.VehicleID == "" {
		return fmt.Errorf("vehicle_id is required")
	}
	if m.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	return nil
}

// V2IData carries the operational attributes of an infrastructure element.
type V2IData struct {
	State         string `json:"state"`
	RemainingTime int    `json:"remaining_time"` // seconds
}

// UnmarshalJSON accepts both the canonical "state" key and the legacy
// "traffic_light_state" key emitted by older traffic light producers.
func (d *V2IData) UnmarshalJSON(data []byte) error {
	var raw struct {
		State             string `json:"state"`
		TrafficLightState string `json:"traffic_light_state"`
		RemainingTime     int    `json:"remaining_time"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.State = raw.State
	if d.State == "" {
		d.State = raw.TrafficLightState
	}
	d.RemainingTime = raw.RemainingTime
	return nil
}

// V2I is the status message published by a roadside infrastructure element
// such as a traffic light.
type V2I struct {
	Type             string    `json:"type,omitempty"`
	InfrastructureID string    `json:"infrastructure_id"`
	Timestamp        Timestamp `json:"timestamp"`
	Position         LatLon    `json:"position"`
	Data             V2IData   `json:"data"`
}

// Validate checks the minimal V2I schema.
func (m V2I) Validate() error {
	if m.InfrastructureID == "" {
		return fmt.Errorf("infrastructure_id is required")
	}
	if m.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	return nil
}

// DENM is the Decentralized Environmental Notification Message broadcast to
// all participants when a hazard or incident occurs.
type DENM struct {
	Type      string    `json:"type,omitempty"`
	EventID   string    `json:"event_id"`
	Timestamp Timestamp `json:"timestamp"`
	Position  Position  `json:"position"`
	EventType string    `json:"event_type"`
	Severity  string    `json:"severity"`
	Duration  int       `json:"duration"` // seconds
	Radius    int       `json:"radius"`   // meters
}

// Validate checks the minimal DENM schema, including the severity domain.
func (m DENM) Validate() error {
	if m.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if m.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	switch m.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return nil
	default:
		return fmt.Errorf("unknown severity %q", m.Severity)
	}
}

// VehicleEmergency is the free-form distress payload published by a single
// vehicle. The payload shape is producer-defined; the vehicle identity comes
// from the topic.
type VehicleEmergency struct {
	VehicleID string         `json:"vehicle_id"`
	Payload   map[string]any `json:"payload"`
}

// DecodeCAM parses and validates a CAM payload.
func DecodeCAM(payload []byte) (CAM, error) {
	var m CAM
	if err := json.Unmarshal(payload, &m); err != nil {
		return CAM{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := m.Validate(); err != nil {
		return CAM{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return m, nil
}

// DecodeV2I parses and validates an infrastructure payload.
func DecodeV2I(payload []byte) (V2I, error) {
	var m V2I
	if err := json.Unmarshal(payload, &m); err != nil {
		return V2I{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := m.Validate(); err != nil {
		return V2I{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return m, nil
}

// DecodeDENM parses and validates an emergency broadcast payload.
func DecodeDENM(payload []byte) (DENM, error) {
	var m DENM
	if err := json.Unmarshal(payload, &m); err != nil {
		return DENM{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := m.Validate(); err != nil {
		return DENM{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return m, nil
}

// DecodeEmergencyPayload parses a free-form vehicle emergency. Any valid JSON
// object is accepted.
func DecodeEmergencyPayload(payload []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return m, nil
}
