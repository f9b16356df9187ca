package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kilianp07/v2x/config"
	"github.com/kilianp07/v2x/core/coordinator"
	"github.com/kilianp07/v2x/core/model"
	"github.com/kilianp07/v2x/infra/logger"
	"github.com/kilianp07/v2x/infra/mqtt"
)

var (
	emergencyType     string
	emergencySeverity string
	emergencyLat      float64
	emergencyLon      float64
	emergencyDuration int
	emergencyRadius   int
)

var emergencyCmd = &cobra.Command{
	Use:   "emergency",
	Short: "Emergency related commands",
}

var emergencyPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Broadcast an emergency event to all entities",
	RunE:  runEmergencyPublish,
}

func init() {
	emergencyPublishCmd.Flags().StringVar(&emergencyType, "type", "accident", "event type")
	emergencyPublishCmd.Flags().StringVar(&emergencySeverity, "severity", model.SeverityHigh, "severity: low, medium or high")
	emergencyPublishCmd.Flags().Float64Var(&emergencyLat, "lat", 0, "event latitude")
	emergencyPublishCmd.Flags().Float64Var(&emergencyLon, "lon", 0, "event longitude")
	emergencyPublishCmd.Flags().IntVar(&emergencyDuration, "duration", 600, "expected duration in seconds")
	emergencyPublishCmd.Flags().IntVar(&emergencyRadius, "radius", 500, "affected radius in meters")
	emergencyCmd.AddCommand(emergencyPublishCmd)
	rootCmd.AddCommand(emergencyCmd)
}

func runEmergencyPublish(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mqttCfg := cfg.MQTT
	mqttCfg.ClientID = uniqueClientID(mqttCfg.ClientID, "emergency-publish")
	adapter, err := mqtt.NewAdapter(mqttCfg, mqtt.HandlerFunc(func(string, []byte) {}), 1)
	if err != nil {
		return fmt.Errorf("mqtt adapter: %w", err)
	}
	defer adapter.Disconnect()

	coord, err := coordinator.New(cfg.Coordinator, adapter, nil, logger.New("emergency-command"))
	if err != nil {
		return fmt.Errorf("coordinator: %w", err)
	}
	defer coord.Close()

	event := model.DENM{
		EventID:   uuid.NewString()[:8],
		Timestamp: model.Now(),
		Position:  model.Position{Latitude: emergencyLat, Longitude: emergencyLon},
		EventType: emergencyType,
		Severity:  emergencySeverity,
		Duration:  emergencyDuration,
		Radius:    emergencyRadius,
	}
	if err := coord.PublishEmergency(event); err != nil {
		return err
	}
	fmt.Printf("%s\t%s\t%s\n", event.EventID, event.EventType, event.Severity)
	return nil
}
