// Package topics parses and formats the hierarchical MQTT topic space used by
// the V2X coordinator. Parsing fails closed: anything outside the recognized
// grammar yields ok=false and the message is dropped upstream.
package topics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedTopic marks a topic outside the recognized grammar.
var ErrMalformedTopic = errors.New("malformed topic")

// Kind classifies a recognized topic. Downstream routing switches on this tag
// instead of re-parsing the topic string.
type Kind int

const (
	KindUnknown Kind = iota
	KindVehicleStatus
	KindVehicleEmergency
	KindInfrastructure
	KindEmergencyBroadcast
	KindJobAssign
	KindJobResponse
)

// String returns a human-readable representation of the topic kind.
func (k Kind) String() string {
	switch k {
	case KindVehicleStatus:
		return "vehicle_status"
	case KindVehicleEmergency:
		return "vehicle_emergency"
	case KindInfrastructure:
		return "infrastructure"
	case KindEmergencyBroadcast:
		return "emergency_broadcast"
	case KindJobAssign:
		return "job_assign"
	case KindJobResponse:
		return "job_response"
	default:
		return "unknown"
	}
}

// Class identifies which entity store a message belongs to, if any.
type Class int

const (
	ClassNone Class = iota
	ClassVehicle
	ClassInfrastructure
)

// String returns a human-readable representation of the entity class.
func (c Class) String() string {
	switch c {
	case ClassVehicle:
		return "vehicle"
	case ClassInfrastructure:
		return "infrastructure"
	default:
		return "none"
	}
}

// Address is the structured form of a parsed topic. EntityID is the vehicle,
// infrastructure or job identifier segment; it is empty for the emergency
// broadcast topic.
type Address struct {
	Kind     Kind
	Class    Class
	EntityID string
}

const domain = "v2x"

// Parse classifies a raw topic string. It returns ok=false for any topic
// outside the fixed grammar: wrong domain, wrong depth, empty segments or an
// unrecognized category/subkind.
func Parse(topic string) (Address, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || len(parts) > 4 {
		return Address{}, false
	}
	for _, p := range parts {
		if p == "" {
			return Address{}, false
		}
	}
	if parts[0] != domain {
		return Address{}, false
	}
	switch parts[1] {
	case "vehicles":
		if len(parts) != 4 {
			return Address{}, false
		}
		switch parts[3] {
		case "status":
			return Address{Kind: KindVehicleStatus, Class: ClassVehicle, EntityID: parts[2]}, true
		case "emergency":
			return Address{Kind: KindVehicleEmergency, Class: ClassVehicle, EntityID: parts[2]}, true
		}
		return Address{}, false
	case "infrastructure":
		if len(parts) != 3 {
			return Address{}, false
		}
		return Address{Kind: KindInfrastructure, Class: ClassInfrastructure, EntityID: parts[2]}, true
	case "emergency":
		if len(parts) != 3 || parts[2] != "broadcast" {
			return Address{}, false
		}
		return Address{Kind: KindEmergencyBroadcast}, true
	case "jobs":
		if len(parts) != 4 {
			return Address{}, false
		}
		switch parts[3] {
		case "assign":
			return Address{Kind: KindJobAssign, EntityID: parts[2]}, true
		case "response":
			return Address{Kind: KindJobResponse, EntityID: parts[2]}, true
		}
		return Address{}, false
	}
	return Address{}, false
}

// Format builds the topic string for a kind and entity identifier. The
// identifier must be non-empty and free of separator or wildcard characters
// for every kind except KindEmergencyBroadcast, which takes no identifier.
func Format(kind Kind, entityID string) (string, error) {
	if kind == KindEmergencyBroadcast {
		if entityID != "" {
			return "", fmt.Errorf("emergency broadcast takes no entity id, got %q", entityID)
		}
		return domain + "/emergency/broadcast", nil
	}
	if entityID == "" {
		return "", fmt.Errorf("empty entity id for kind %s", kind)
	}
	if strings.ContainsAny(entityID, "/+#") {
		return "", fmt.Errorf("entity id %q contains reserved topic characters", entityID)
	}
	switch kind {
	case KindVehicleStatus:
		return domain + "/vehicles/" + entityID + "/status", nil
	case KindVehicleEmergency:
		return domain + "/vehicles/" + entityID + "/emergency", nil
	case KindInfrastructure:
		return domain + "/infrastructure/" + entityID, nil
	case KindJobAssign:
		return domain + "/jobs/" + entityID + "/assign", nil
	case KindJobResponse:
		return domain + "/jobs/" + entityID + "/response", nil
	}
	return "", fmt.Errorf("unrecognized topic kind %d", kind)
}

// SubscriptionSet returns the wildcard filters the coordinator subscribes to.
// Job assignments are excluded: the coordinator publishes those.
func SubscriptionSet() []string {
	return []string{
		domain + "/vehicles/+/status",
		domain + "/vehicles/+/emergency",
		domain + "/infrastructure/+",
		domain + "/emergency/broadcast",
		domain + "/jobs/+/response",
	}
}
