// Package config loads tunables for the castctl command-line driver from
// a YAML file. The client library itself takes no configuration of its
// own (spec.md §6); this package exists solely for the CLI.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/castgo/castv2/pkg/transport"
)

// Config holds the tunables castctl exposes to the operator.
type Config struct {
	// MaxMessageSize bounds a single decoded CastMessage body. Passed to
	// device.ConnectWithMaxSize by castctl's dial, overriding
	// transport.DefaultMaxMessageSize for that device's connection.
	MaxMessageSize int `yaml:"max_message_size"`

	// ConnectTimeout bounds how long castctl waits for a device's TCP+TLS
	// handshake to complete before giving up.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// DiscoveryWindow is how long an mDNS browse runs before castctl
	// stops waiting for more devices.
	DiscoveryWindow time.Duration `yaml:"discovery_window"`

	// ReactorPollTimeoutMillis is the timeout passed to Reactor.Poll on
	// each iteration of castctl's host loop.
	ReactorPollTimeoutMillis int `yaml:"reactor_poll_timeout_millis"`
}

// Default returns the tunables castctl uses when no config file is given.
func Default() Config {
	return Config{
		MaxMessageSize:           transport.DefaultMaxMessageSize,
		ConnectTimeout:           10 * time.Second,
		DiscoveryWindow:          5 * time.Second,
		ReactorPollTimeoutMillis: 250,
	}
}

// Load reads and parses a YAML config file, starting from Default and
// overriding only the fields the file sets.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
