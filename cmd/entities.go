package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/v2x/config"
	"github.com/kilianp07/v2x/core/coordinator"
	"github.com/kilianp07/v2x/core/topics"
	"github.com/kilianp07/v2x/infra/logger"
	"github.com/kilianp07/v2x/infra/mqtt"
	"github.com/kilianp07/v2x/pkg/export"
)

var (
	entitiesWindow time.Duration
	entitiesOutput string
)

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "Entity related commands",
}

var entitiesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Listen for a window and list observed entities",
	RunE:  runEntitiesLs,
}

func init() {
	entitiesLsCmd.Flags().DurationVar(&entitiesWindow, "window", 3*time.Second, "listening window")
	entitiesLsCmd.Flags().StringVarP(&entitiesOutput, "output", "o", "text", "output format: text, json or csv")
	entitiesCmd.AddCommand(entitiesLsCmd)
	rootCmd.AddCommand(entitiesCmd)
}

func runEntitiesLs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mqttCfg := cfg.MQTT
	mqttCfg.ClientID = uniqueClientID(mqttCfg.ClientID, "entities-ls")

	var coord *coordinator.Coordinator
	adapter, err := mqtt.NewAdapter(mqttCfg, mqtt.HandlerFunc(func(topic string, payload []byte) {
		coord.HandleMessage(topic, payload)
	}), cfg.Coordinator.InboundBuffer)
	if err != nil {
		return fmt.Errorf("mqtt adapter: %w", err)
	}
	coord, err = coordinator.New(cfg.Coordinator, adapter, nil, logger.New("entities-command"))
	if err != nil {
		return fmt.Errorf("coordinator: %w", err)
	}
	defer coord.Close()

	ctx, cancel := context.WithTimeout(context.Background(), entitiesWindow)
	defer cancel()
	adapter.Run(ctx)

	entities := coord.Entities(topics.ClassNone)
	switch entitiesOutput {
	case "json":
		return export.WriteJSON(os.Stdout, entities)
	case "csv":
		return export.WriteCSV(os.Stdout, entities)
	case "text":
		for _, e := range entities {
			fmt.Printf("%s\t%s\n", e.Class, e.ID)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", entitiesOutput)
	}
}
