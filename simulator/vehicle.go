package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/v2x/core/model"
	"github.com/kilianp07/v2x/core/topics"
)

// Munich city centre, the anchor for all simulated positions.
const (
	baseLat = 48.1351
	baseLon = 11.5820
)

// VehicleSim drives one simulated vehicle: it drifts the position each tick
// and publishes the resulting awareness message.
type VehicleSim struct {
	ID       string
	Broker   string
	Interval time.Duration

	state model.CAM
}

func newVehicleSim(id, broker string, interval time.Duration) VehicleSim {
	return VehicleSim{
		ID:       id,
		Broker:   broker,
		Interval: interval,
		state: model.CAM{
			Type:      "CAM",
			VehicleID: id,
			Timestamp: model.Now(),
			Position: model.Position{
				Latitude:  baseLat + (rand.Float64()-0.5)*0.02,
				Longitude: baseLon + (rand.Float64()-0.5)*0.02,
			},
			Speed:   30 + rand.Float64()*50, // km/h
			Heading: rand.Float64() * 360,
			Status:  "normal",
		},
	}
}

func generateVehicles(cfg Config) []VehicleSim {
	out := make([]VehicleSim, cfg.Vehicles)
	for i := range out {
		out[i] = newVehicleSim(fmt.Sprintf("V%03d", i+1), cfg.Broker, cfg.CAMInterval)
	}
	return out
}

// step advances the vehicle along a random walk scaled by its speed and
// occasionally turns it.
func (v *VehicleSim) step() {
	speedMS := v.state.Speed / 3.6
	v.state.Position.Latitude += speedMS * 0.00001 * (rand.Float64() - 0.5)
	v.state.Position.Longitude += speedMS * 0.00001 * (rand.Float64() - 0.5)
	if rand.Float64() < 0.1 {
		turn := rand.Float64()*60 - 30
		v.state.Heading = math.Mod(v.state.Heading+turn+360, 360)
	}
	v.state.Timestamp = model.Now()
}

func (v *VehicleSim) Run(ctx context.Context) error {
	cli, err := newMQTTClient(v.Broker, "sim-"+v.ID)
	if err != nil {
		return err
	}
	defer cli.Disconnect(250)

	ticker := time.NewTicker(v.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			v.step()
			v.publish(cli)
		}
	}
}

func (v *VehicleSim) publish(cli mqtt.Client) {
	payload, err := json.Marshal(v.state)
	if err != nil {
		log.Printf("%s: marshal: %v", v.ID, err)
		return
	}
	topic, err := topics.Format(topics.KindVehicleStatus, v.ID)
	if err != nil {
		log.Printf("%s: topic: %v", v.ID, err)
		return
	}
	if token := cli.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
		log.Printf("%s: publish: %v", v.ID, token.Error())
		return
	}
	log.Printf("%s: position %.4f,%.4f speed %.1f km/h", v.ID,
		v.state.Position.Latitude, v.state.Position.Longitude, v.state.Speed)
}
