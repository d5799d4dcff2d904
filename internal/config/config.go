// Package config holds the runtime settings for the snoop proxy.
// Everything here is validated once at startup; nothing is reloaded
// mid-session.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ethDreamer/json-rpc-snoop/internal/filter"
)

// DefaultRPCModules is returned by the rpc_modules override when no
// explicit module list is configured.
var DefaultRPCModules = []string{"eth", "net", "web3"}

// Duration wraps time.Duration so YAML files can use strings like
// "250ms" or "12s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	dur, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(dur)
	return nil
}

// Settings is the full configuration for the serve command. Flags and
// the optional YAML file produce the same structure; flags win on
// conflict.
type Settings struct {
	BindAddress      string   `yaml:"bind_address"`
	Port             int      `yaml:"port"`
	Upstream         string   `yaml:"upstream"`
	DropRequestRate  int      `yaml:"drop_request_rate"`
	DropResponseRate int      `yaml:"drop_response_rate"`
	DropDelay        Duration `yaml:"drop_delay"`
	LogHeaders       bool     `yaml:"log_headers"`
	NoColor          bool     `yaml:"no_color"`
	NoStats          bool     `yaml:"no_stats"`
	SuppressMethods  []string `yaml:"suppress_methods"`
	SuppressPaths    []string `yaml:"suppress_paths"`
	FixGethAttach    bool     `yaml:"fix_geth_attach"`
	RPCModules       []string `yaml:"rpc_modules"`
}

// Default returns the baseline settings before flags or a file apply.
func Default() Settings {
	return Settings{
		BindAddress: "127.0.0.1",
		Port:        3000,
	}
}

// LoadFile reads settings from a YAML file on top of the defaults.
func LoadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML bytes into Settings. Unknown keys are rejected so
// typos fail loudly at startup.
func Parse(data []byte) (Settings, error) {
	s := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("parsing config YAML: %w", err)
	}
	return s, nil
}

// Validate checks the settings. Every failure here is fatal at startup;
// nothing is clamped or papered over.
func (s *Settings) Validate() error {
	if s.Upstream == "" {
		return fmt.Errorf("upstream endpoint is required")
	}
	u, err := url.Parse(s.Upstream)
	if err != nil {
		return fmt.Errorf("parsing upstream endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("upstream endpoint %q: scheme must be http or https", s.Upstream)
	}
	if u.Host == "" {
		return fmt.Errorf("upstream endpoint %q: missing host", s.Upstream)
	}

	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port %d: out of range", s.Port)
	}
	if s.DropRequestRate < 0 || s.DropRequestRate > 100 {
		return fmt.Errorf("drop request rate %d: must be between 0 and 100", s.DropRequestRate)
	}
	if s.DropResponseRate < 0 || s.DropResponseRate > 100 {
		return fmt.Errorf("drop response rate %d: must be between 0 and 100", s.DropResponseRate)
	}
	if s.DropDelay < 0 {
		return fmt.Errorf("drop delay must not be negative")
	}

	if _, err := s.Rules(); err != nil {
		return err
	}
	return nil
}

// Rules parses the configured suppression selectors, method rules
// first, then path rules, each in registration order.
func (s *Settings) Rules() ([]filter.Rule, error) {
	methods, err := filter.ParseRules(filter.SelectMethod, s.SuppressMethods)
	if err != nil {
		return nil, err
	}
	paths, err := filter.ParseRules(filter.SelectPath, s.SuppressPaths)
	if err != nil {
		return nil, err
	}
	return append(methods, paths...), nil
}

// Modules returns the module list for the rpc_modules override, or nil
// when the override is disabled.
func (s *Settings) Modules() []string {
	if len(s.RPCModules) > 0 {
		return s.RPCModules
	}
	if s.FixGethAttach {
		return DefaultRPCModules
	}
	return nil
}

// ListenAddr returns the bind address in host:port form.
func (s *Settings) ListenAddr() string {
	return net.JoinHostPort(s.BindAddress, strconv.Itoa(s.Port))
}
