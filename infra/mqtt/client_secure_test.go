package mqtt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeTestCerts writes a self-signed certificate, its key and a CA bundle
// into a temp dir and returns the three paths.
func writeTestCerts(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "coordinator-test"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	dir := t.TempDir()
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	caFile = filepath.Join(dir, "ca.pem")
	for path, data := range map[string][]byte{certFile: certPEM, keyFile: keyPEM, caFile: certPEM} {
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return certFile, keyFile, caFile
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := writeTestCerts(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
	if tlsCfg.MinVersion != tls.VersionTLS12 {
		t.Fatalf("min version not enforced")
	}
}

func TestLoadTLSConfigMissingFiles(t *testing.T) {
	if _, err := (Config{UseTLS: true}).LoadTLSConfig(); err == nil {
		t.Fatalf("expected error for missing cert paths")
	}
}

func TestLoadTLSConfigBadCABundle(t *testing.T) {
	cert, key, _ := writeTestCerts(t)
	junk := filepath.Join(t.TempDir(), "junk.pem")
	if err := os.WriteFile(junk, []byte("not pem"), 0o600); err != nil {
		t.Fatalf("write junk: %v", err)
	}
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: junk}
	if _, err := cfg.LoadTLSConfig(); err == nil {
		t.Fatalf("expected error for CA bundle without certificates")
	}
}

func TestLoadTLSConfigPresetWins(t *testing.T) {
	preset := &tls.Config{MinVersion: tls.VersionTLS13}
	cfg := Config{UseTLS: true, TLSConfig: preset}
	got, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if got != preset {
		t.Fatalf("preset TLS config not returned")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
	if !opts.AutoReconnect {
		t.Fatalf("auto reconnect not enabled")
	}
}

func TestNewClientOptionsAuthMethodTLSOnly(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p", AuthMethod: "tls"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "" || opts.Password != "" {
		t.Fatalf("credentials should be ignored for tls auth method")
	}
}

func TestNewClientOptionsLWT(t *testing.T) {
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", LWTTopic: "v2x/coordinator/status", LWTPayload: "offline", LWTQoS: 1, LWTRetain: true}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if !opts.WillEnabled {
		t.Fatalf("will not enabled")
	}
	if opts.WillTopic != "v2x/coordinator/status" || string(opts.WillPayload) != "offline" {
		t.Fatalf("will options incorrect")
	}
	if opts.WillQos != 1 || !opts.WillRetained {
		t.Fatalf("will qos/retain incorrect")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected error for empty broker")
	}
	if err := (Config{Broker: "tcp://localhost:1883"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Config{Broker: "tcp://localhost:1883", AuthMethod: "api_key"}).Validate(); err == nil {
		t.Fatalf("expected error for unknown auth method")
	}
	for _, method := range []string{"username_password", "tls", "both"} {
		if err := (Config{Broker: "tcp://localhost:1883", AuthMethod: method}).Validate(); err != nil {
			t.Fatalf("auth method %s rejected: %v", method, err)
		}
	}
}
