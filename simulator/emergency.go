package main

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/v2x/core/model"
	"github.com/kilianp07/v2x/core/topics"
)

var (
	emergencyTypes = []string{
		"accident",
		"traffic_jam",
		"road_closure",
		"hazardous_weather",
		"emergency_vehicle",
	}
	severities = []string{model.SeverityLow, model.SeverityMedium, model.SeverityHigh}
)

// EmergencySim rolls the dice every tick and broadcasts a random environmental
// notification when it hits.
type EmergencySim struct {
	Broker   string
	Interval time.Duration
	Rate     float64
}

func (e *EmergencySim) event() model.DENM {
	return model.DENM{
		Type:      "DENM",
		EventID:   uuid.NewString()[:8],
		Timestamp: model.Now(),
		Position: model.Position{
			Latitude:  baseLat + (rand.Float64()-0.5)*0.04,
			Longitude: baseLon + (rand.Float64()-0.5)*0.04,
		},
		EventType: emergencyTypes[rand.Intn(len(emergencyTypes))],
		Severity:  severities[rand.Intn(len(severities))],
		Duration:  300 + rand.Intn(1501), // seconds
		Radius:    100 + rand.Intn(901),  // meters
	}
}

func (e *EmergencySim) Run(ctx context.Context) error {
	cli, err := newMQTTClient(e.Broker, "sim-emergency")
	if err != nil {
		return err
	}
	defer cli.Disconnect(250)

	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if rand.Float64() >= e.Rate {
				continue
			}
			e.publish(cli, e.event())
		}
	}
}

func (e *EmergencySim) publish(cli mqtt.Client, msg model.DENM) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("emergency: marshal: %v", err)
		return
	}
	topic, err := topics.Format(topics.KindEmergencyBroadcast, "")
	if err != nil {
		log.Printf("emergency: topic: %v", err)
		return
	}
	if token := cli.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
		log.Printf("emergency: publish: %v", token.Error())
		return
	}
	log.Printf("emergency: %s %s severity %s", msg.EventID, msg.EventType, msg.Severity)
}
