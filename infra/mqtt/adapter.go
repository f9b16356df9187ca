// Package mqtt is the sole component touching the external transport. The
// Adapter subscribes to the coordinator's inbound topic set, funnels messages
// through a bounded channel into a single-consumer receive loop, and
// publishes outbound job assignments and emergency broadcasts with bounded
// retry.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/v2x/core/model"
	"github.com/kilianp07/v2x/core/monitoring"
	"github.com/kilianp07/v2x/core/topics"
	"github.com/kilianp07/v2x/infra/logger"
)

// Handler consumes classified inbound messages. Implemented by the
// coordinator; it never returns an error because ingestion-path failures are
// absorbed internally.
type Handler interface {
	HandleMessage(topic string, payload []byte)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(topic string, payload []byte)

func (f HandlerFunc) HandleMessage(topic string, payload []byte) { f(topic, payload) }

// subscriptionKinds maps each inbound filter to its kind for QoS lookup.
var subscriptionKinds = map[string]topics.Kind{
	"v2x/vehicles/+/status":    topics.KindVehicleStatus,
	"v2x/vehicles/+/emergency": topics.KindVehicleEmergency,
	"v2x/infrastructure/+":     topics.KindInfrastructure,
	"v2x/emergency/broadcast":  topics.KindEmergencyBroadcast,
	"v2x/jobs/+/response":      topics.KindJobResponse,
}

type inboundMessage struct {
	topic   string
	payload []byte
}

// Adapter connects the coordinator to the MQTT broker. Reconnection is
// handled by Paho with AutoReconnect; aggregated state is retained across
// reconnects, so OnConnect only re-establishes the subscriptions.
type Adapter struct {
	cli        pahoClient
	handler    Handler
	log        logger.Logger
	inbound    chan inboundMessage
	qos        map[string]byte
	maxRetries int
	backoff    time.Duration
}

// NewAdapter connects to the broker and subscribes to the inbound topic set.
// buffer bounds the channel between the Paho callbacks and the receive loop.
func NewAdapter(cfg Config, handler Handler, buffer int) (*Adapter, error) {
	if handler == nil {
		return nil, fmt.Errorf("mqtt: nil handler provided to NewAdapter")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "v2x-coordinator-" + uuid.NewString()
	}
	if buffer < 1 {
		buffer = 256
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt-adapter")
	a := &Adapter{
		handler:    handler,
		log:        log,
		inbound:    make(chan inboundMessage, buffer),
		qos:        cfg.QoS,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	if a.maxRetries <= 0 {
		a.maxRetries = 3
	}
	if a.backoff <= 0 {
		a.backoff = 100 * time.Millisecond
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		for _, filter := range topics.SubscriptionSet() {
			if token := c.Subscribe(filter, a.qosFor(subscriptionKinds[filter]), a.onMessage); token.Wait() && token.Error() != nil {
				log.Errorf("subscribe %s: %v", filter, token.Error())
			}
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	a.cli = cli
	return a, nil
}

func (a *Adapter) qosFor(kind topics.Kind) byte {
	if q, ok := a.qos[kind.String()]; ok {
		return q
	}
	return 0
}

func (a *Adapter) onMessage(_ paho.Client, msg paho.Message) {
	select {
	case a.inbound <- inboundMessage{topic: msg.Topic(), payload: msg.Payload()}:
	default:
		inboundDropped.Inc()
		a.log.Warnf("inbound queue full, dropping message on %s", msg.Topic())
	}
}

// Run consumes the inbound channel until ctx is canceled, dispatching each
// message synchronously to the handler. On cancellation the in-flight message
// is completed, the subscriptions are released and the client disconnects.
func (a *Adapter) Run(ctx context.Context) {
	a.log.Infof("receive loop started")
	for {
		select {
		case <-ctx.Done():
			a.shutdown()
			return
		default:
		}
		select {
		case <-ctx.Done():
			a.shutdown()
			return
		case m := <-a.inbound:
			a.handler.HandleMessage(m.topic, m.payload)
		}
	}
}

func (a *Adapter) shutdown() {
	if token := a.cli.Unsubscribe(topics.SubscriptionSet()...); token.Wait() && token.Error() != nil {
		a.log.Errorf("unsubscribe: %v", token.Error())
	}
	if a.cli.IsConnected() {
		a.cli.Disconnect(250)
	}
	a.log.Infof("receive loop stopped")
}

// PublishJobAssignment announces a new job on its assignment topic. The
// payload is encoded before any transport interaction.
func (a *Adapter) PublishJobAssignment(job model.Job) error {
	topic, err := topics.Format(topics.KindJobAssign, job.JobID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := a.publish(topic, a.qosFor(topics.KindJobAssign), payload); err != nil {
		return err
	}
	a.log.Infof("published assignment for job %s", job.JobID)
	return nil
}

// PublishEmergency broadcasts an emergency event to all entities.
func (a *Adapter) PublishEmergency(event model.DENM) error {
	topic, err := topics.Format(topics.KindEmergencyBroadcast, "")
	if err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := a.publish(topic, a.qosFor(topics.KindEmergencyBroadcast), payload); err != nil {
		return err
	}
	a.log.Infof("published emergency %s", event.EventID)
	return nil
}

func (a *Adapter) publish(topic string, qos byte, payload []byte) error {
	var publishErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		token := a.cli.Publish(topic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			publishSuccess.Inc()
			return nil
		}
		a.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		time.Sleep(a.backoff * time.Duration(1<<attempt))
	}
	publishFailure.Inc()
	monitoring.CaptureException(publishErr, map[string]string{"module": "mqtt", "topic": topic})
	return publishErr
}

// Disconnect gracefully closes the MQTT connection.
func (a *Adapter) Disconnect() {
	if a.cli != nil && a.cli.IsConnected() {
		a.cli.Disconnect(250)
	}
}
