// Package util provides helpers shared across integration tests: a disposable
// Mosquitto broker and condition pollers.
package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	MosquittoReadyTimeout = 5 * time.Second
	MetricTimeout         = 5 * time.Second

	pollInterval = 50 * time.Millisecond
)

// mosquittoConf opens the listener to the test host. The stock image only
// accepts local connections.
const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
log_dest stdout
log_type error
log_type warning
log_type notice
connection_messages true
`

// WaitFor polls cond until it returns true or the context is done.
func WaitFor(ctx context.Context, cond func() bool) error {
	for {
		if cond() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// WaitForMetric polls the given metrics URL until the provided substring is
// found in the output or the context is done.
func WaitForMetric(ctx context.Context, metricsURL, substr string) error {
	err := WaitFor(ctx, func() bool {
		body, err := fetch(ctx, metricsURL)
		return err == nil && strings.Contains(body, substr)
	})
	if err != nil {
		return fmt.Errorf("metric %q not found: %w", substr, err)
	}
	return nil
}

func fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return string(body), err
}

// StartMosquitto launches a temporary Mosquitto broker inside a Docker
// container and returns its broker URL along with a cleanup function. It only
// returns once the broker accepts MQTT connections, not just TCP ones.
func StartMosquitto(ctx context.Context) (string, func(), error) {
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{
			{
				Reader:            strings.NewReader(mosquittoConf),
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0o644,
			},
		},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return "", nil, fmt.Errorf("start mosquitto: %w", err)
	}
	cleanup := func() { _ = cont.Terminate(context.Background()) }

	host, err := cont.Host(ctx)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		cleanup()
		return "", nil, err
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	readyCtx, cancel := context.WithTimeout(ctx, MosquittoReadyTimeout)
	defer cancel()
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("readiness-probe")
	err = WaitFor(readyCtx, func() bool {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() != nil {
			return false
		}
		cli.Disconnect(100)
		return true
	})
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("mosquitto never became ready: %w", err)
	}

	return broker, cleanup, nil
}
