package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Config defines the connection parameters for the Paho MQTT client. QoS maps
// a message kind name (for example "job_assign") to the QoS level used when
// subscribing or publishing that kind; unlisted kinds use QoS 0.
type Config struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`

	// Authentication. AuthMethod selects which credentials are offered:
	// "username_password", "tls" (no broker credentials) or "both"; empty
	// behaves like "username_password". Certificate material is loaded only
	// when UseTLS is set.
	Username   string `json:"username"`
	Password   string `json:"password"`
	AuthMethod string `json:"auth_method"`

	UseTLS     bool        `json:"use_tls"`
	ClientCert string      `json:"client_cert"`
	ClientKey  string      `json:"client_key"`
	CABundle   string      `json:"ca_bundle"`
	TLSConfig  *tls.Config `json:"-"`

	QoS map[string]byte `json:"qos"`

	// Last will, announced by the broker if the coordinator drops off.
	LWTTopic   string `json:"lwt_topic"`
	LWTPayload string `json:"lwt_payload"`
	LWTQoS     byte   `json:"lwt_qos"`
	LWTRetain  bool   `json:"lwt_retain"`

	// Publish retry budget.
	MaxRetries int `json:"max_retries"`
	BackoffMS  int `json:"backoff_ms"`
}

// Validate rejects configurations that cannot connect.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker must not be empty")
	}
	switch c.AuthMethod {
	case "", "username_password", "tls", "both":
	default:
		return fmt.Errorf("unknown auth_method %q", c.AuthMethod)
	}
	return nil
}

// pahoClient is the slice of the Paho API the adapter uses; narrowed for
// substitution in tests.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Unsubscribe(topics ...string) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewClientOptions builds Paho client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true

	switch cfg.AuthMethod {
	case "", "username_password", "both":
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig builds the TLS configuration for mutual authentication. An
// explicitly set TLSConfig wins over the file paths.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load client keypair: %w", err)
	}
	pool, err := loadCAPool(c.CABundle)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func loadCAPool(path string) (*x509.CertPool, error) {
	caBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ca bundle: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("ca bundle %s contains no certificates", path)
	}
	return pool, nil
}
