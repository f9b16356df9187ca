// Command simulator generates V2X traffic against an MQTT broker: periodic
// vehicle awareness messages, traffic light states, random emergency
// broadcasts and acknowledgements for job assignments. It exists to exercise
// the coordinator without real roadside hardware.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

func main() {
	cfg := parseFlags()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run(ctx, cfg)
}

func run(ctx context.Context, cfg Config) {
	var wg sync.WaitGroup
	start := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				log.Printf("%s: %v", name, err)
			}
		}()
	}

	vehicles := generateVehicles(cfg)
	for i := range vehicles {
		v := &vehicles[i]
		start(v.ID, v.Run)
	}
	lights := generateTrafficLights(cfg)
	for i := range lights {
		l := &lights[i]
		start(l.ID, l.Run)
	}

	emergency := &EmergencySim{Broker: cfg.Broker, Interval: cfg.EmergencyInterval, Rate: cfg.EmergencyRate}
	start("emergency", emergency.Run)

	responder := NewJobResponder(cfg.Broker, AutoResponder{Delay: cfg.ResponseDelay, DropRate: cfg.DropRate})
	start("responder", responder.Run)

	wg.Wait()
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	flag.IntVar(&cfg.Vehicles, "vehicles", 5, "number of simulated vehicles")
	flag.IntVar(&cfg.TrafficLights, "traffic-lights", 3, "number of simulated traffic lights")
	flag.DurationVar(&cfg.CAMInterval, "cam-interval", time.Second, "interval between awareness messages")
	flag.DurationVar(&cfg.V2IInterval, "v2i-interval", 2*time.Second, "interval between infrastructure messages")
	flag.DurationVar(&cfg.EmergencyInterval, "emergency-interval", 5*time.Second, "interval between emergency rolls")
	flag.Float64Var(&cfg.EmergencyRate, "emergency-rate", 0.15, "probability of an emergency per roll")
	flag.DurationVar(&cfg.ResponseDelay, "response-delay", 2*time.Second, "delay before acknowledging a job")
	flag.Float64Var(&cfg.DropRate, "drop-rate", 0, "fraction of job responses to drop")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "log simulator activity")
	flag.Parse()
	return cfg
}
