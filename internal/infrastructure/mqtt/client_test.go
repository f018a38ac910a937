package mqtt

import (
	"strings"
	"testing"

	"github.com/mariemm1/IoTIrrigation/internal/infrastructure/config"
)

func TestDownlinkTopic(t *testing.T) {
	got := DownlinkTopic("12", "a84041fdfe2b9f2b")
	want := "application/12/device/a84041fdfe2b9f2b/command/down"
	if got != want {
		t.Errorf("DownlinkTopic() = %q, want %q", got, want)
	}
}

func TestBuildClientOptions(t *testing.T) {
	t.Run("plain tcp broker", func(t *testing.T) {
		opts := buildClientOptions(config.MQTTConfig{
			Broker: config.MQTTBrokerConfig{
				Host:     "broker.local",
				Port:     1883,
				ClientID: "irrigation-core",
			},
		})
		servers := opts.Servers
		if len(servers) != 1 || servers[0].String() != "tcp://broker.local:1883" {
			t.Errorf("broker URL = %v, want tcp://broker.local:1883", servers)
		}
		if opts.ClientID != "irrigation-core" {
			t.Errorf("ClientID = %q", opts.ClientID)
		}
	})

	t.Run("tls switches scheme", func(t *testing.T) {
		opts := buildClientOptions(config.MQTTConfig{
			Broker: config.MQTTBrokerConfig{
				Host: "broker.local",
				Port: 8883,
				TLS:  true,
			},
		})
		if got := opts.Servers[0].Scheme; got != "ssl" {
			t.Errorf("scheme = %q, want ssl", got)
		}
		if opts.TLSConfig == nil {
			t.Error("TLSConfig not set with TLS enabled")
		}
	})

	t.Run("credentials applied when set", func(t *testing.T) {
		opts := buildClientOptions(config.MQTTConfig{
			Broker: config.MQTTBrokerConfig{Host: "h", Port: 1883},
			Auth:   config.MQTTAuthConfig{Username: "core", Password: "secret"},
		})
		if opts.Username != "core" || opts.Password != "secret" {
			t.Errorf("credentials = %q/%q", opts.Username, opts.Password)
		}
	})
}

func TestConfigureLWT(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{Host: "h", Port: 1883, ClientID: "irrigation-core"},
	}
	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg.Broker.ClientID)

	if opts.WillTopic != StatusTopic() {
		t.Errorf("WillTopic = %q, want %q", opts.WillTopic, StatusTopic())
	}
	if !opts.WillRetained {
		t.Error("LWT should be retained")
	}
	payload := string(opts.WillPayload)
	if !strings.Contains(payload, `"status":"offline"`) {
		t.Errorf("LWT payload missing offline status: %s", payload)
	}
	if !strings.Contains(payload, `"reason":"unexpected_disconnect"`) {
		t.Errorf("LWT payload missing reason: %s", payload)
	}
}

func TestPublishValidation(t *testing.T) {
	c := &Client{cfg: config.MQTTConfig{QoS: 1}}

	if err := c.Publish("", []byte("x"), 1, false); err != ErrInvalidTopic {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("t", []byte("x"), 3, false); err != ErrInvalidQoS {
		t.Errorf("bad qos error = %v, want ErrInvalidQoS", err)
	}
	if err := c.Publish("t", []byte("x"), 1, false); err != ErrNotConnected {
		t.Errorf("disconnected publish error = %v, want ErrNotConnected", err)
	}
}
