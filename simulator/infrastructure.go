package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/v2x/core/model"
	"github.com/kilianp07/v2x/core/topics"
)

var lightStates = []string{"red", "yellow", "green"}

// TrafficLightSim publishes the state of one simulated traffic light and
// occasionally switches it to a random phase.
type TrafficLightSim struct {
	ID       string
	Broker   string
	Interval time.Duration

	pos   model.LatLon
	state string
}

func generateTrafficLights(cfg Config) []TrafficLightSim {
	out := make([]TrafficLightSim, cfg.TrafficLights)
	for i := range out {
		out[i] = TrafficLightSim{
			ID:       fmt.Sprintf("TL%03d", i+1),
			Broker:   cfg.Broker,
			Interval: cfg.V2IInterval,
			pos: model.LatLon{
				Lat: baseLat + 0.001*float64(i),
				Lon: baseLon + 0.001*float64(i),
			},
			state: lightStates[i%len(lightStates)],
		}
	}
	return out
}

// step rolls the 5% phase switch and returns the message to publish.
func (t *TrafficLightSim) step() model.V2I {
	if rand.Float64() < 0.05 {
		t.state = lightStates[rand.Intn(len(lightStates))]
	}
	return model.V2I{
		Type:             "V2I",
		InfrastructureID: t.ID,
		Timestamp:        model.Now(),
		Position:         t.pos,
		Data: model.V2IData{
			State:         t.state,
			RemainingTime: 5 + rand.Intn(26),
		},
	}
}

func (t *TrafficLightSim) Run(ctx context.Context) error {
	cli, err := newMQTTClient(t.Broker, "sim-"+t.ID)
	if err != nil {
		return err
	}
	defer cli.Disconnect(250)

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.publish(cli, t.step())
		}
	}
}

func (t *TrafficLightSim) publish(cli mqtt.Client, msg model.V2I) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("%s: marshal: %v", t.ID, err)
		return
	}
	topic, err := topics.Format(topics.KindInfrastructure, t.ID)
	if err != nil {
		log.Printf("%s: topic: %v", t.ID, err)
		return
	}
	if token := cli.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
		log.Printf("%s: publish: %v", t.ID, token.Error())
		return
	}
	log.Printf("%s: %s, %ds remaining", t.ID, msg.Data.State, msg.Data.RemainingTime)
}
