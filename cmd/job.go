package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/v2x/config"
	"github.com/kilianp07/v2x/core/coordinator"
	"github.com/kilianp07/v2x/infra/logger"
	"github.com/kilianp07/v2x/infra/mqtt"
)

var (
	jobType    string
	jobTargets []string
	jobParams  []string
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Job related commands",
}

var jobCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a job and publish its assignment",
	RunE:  runJobCreate,
}

func init() {
	jobCreateCmd.Flags().StringVar(&jobType, "type", "", "job type")
	jobCreateCmd.Flags().StringSliceVar(&jobTargets, "targets", nil, "target vehicle ids")
	jobCreateCmd.Flags().StringArrayVar(&jobParams, "param", nil, "job parameter as key=value, repeatable")
	jobCmd.AddCommand(jobCreateCmd)
	rootCmd.AddCommand(jobCmd)
}

func runJobCreate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	params, err := parseParams(jobParams)
	if err != nil {
		return err
	}

	mqttCfg := cfg.MQTT
	mqttCfg.ClientID = uniqueClientID(mqttCfg.ClientID, "job-create")
	// The command only publishes; inbound traffic is discarded.
	adapter, err := mqtt.NewAdapter(mqttCfg, mqtt.HandlerFunc(func(string, []byte) {}), 1)
	if err != nil {
		return fmt.Errorf("mqtt adapter: %w", err)
	}
	defer adapter.Disconnect()

	coord, err := coordinator.New(cfg.Coordinator, adapter, nil, logger.New("job-command"))
	if err != nil {
		return fmt.Errorf("coordinator: %w", err)
	}
	defer coord.Close()

	job, err := coord.CreateJob(jobType, jobTargets, params)
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%s\t%s\n", job.JobID, job.Type, strings.Join(job.TargetVehicles, ","))
	return nil
}

func parseParams(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(raw))
	for _, p := range raw {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, want key=value", p)
		}
		params[k] = v
	}
	return params, nil
}

func uniqueClientID(base, fallback string) string {
	suffix := time.Now().UnixNano()
	if base != "" {
		return fmt.Sprintf("%s-%d", base, suffix)
	}
	return fmt.Sprintf("%s-%d", fallback, suffix)
}
