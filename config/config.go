// Package config holds the settings shared by the hwtest command line tools.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/MoochMcGee/wiiu-emu/compare"
	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/hwtest"
	"github.com/MoochMcGee/wiiu-emu/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	EngineInterp  = "interp"
	EngineUnicorn = "unicorn"
)

type Config struct {
	InputDir        string        `yaml:"input_dir" json:"input_dir"`
	OutputDir       string        `yaml:"output_dir" json:"output_dir"`
	FindingsDB      string        `yaml:"findings_db" json:"findings_db"`
	ListenAddr      string        `yaml:"listen_addr" json:"listen_addr"`
	DistributorAddr string        `yaml:"distributor_addr" json:"distributor_addr"`
	ProtocolVersion uint32        `yaml:"protocol_version" json:"protocol_version"`
	ReplyTimeout    time.Duration `yaml:"reply_timeout" json:"reply_timeout"`
	MaxPacketSize   int           `yaml:"max_packet_size" json:"max_packet_size"`
	FPSCRPolicy     string        `yaml:"fpscr_policy" json:"fpscr_policy"`
	Engine          string        `yaml:"engine" json:"engine"`
	LogLevel        string        `yaml:"log_level" json:"log_level"`
	DebugModules    string        `yaml:"debug_modules" json:"debug_modules"`
}

func Default() *Config {
	return &Config{
		InputDir:        "tests/cpu/input",
		OutputDir:       "tests/cpu/wiiu",
		FindingsDB:      "tests/cpu/findings",
		ListenAddr:      "0.0.0.0:8008",
		DistributorAddr: "127.0.0.1:8008",
		ProtocolVersion: hwtest.ProtocolVersion,
		ReplyTimeout:    30 * time.Second,
		MaxPacketSize:   hwtest.MaxPacketSize,
		FPSCRPolicy:     compare.FPSCRExcludeOnNaN.String(),
		Engine:          EngineInterp,
		LogLevel:        "info",
	}
}

// Load overlays the YAML file at path on the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.MaxPacketSize < hwtest.GeneralTestPacketSize || c.MaxPacketSize > hwtest.MaxPacketSize {
		return errors.Wrapf(hwerrors.ErrKInvalidConfig, "max_packet_size %d outside [%d, %d]", c.MaxPacketSize, hwtest.GeneralTestPacketSize, hwtest.MaxPacketSize)
	}
	if c.ReplyTimeout < 0 {
		return errors.Wrapf(hwerrors.ErrKInvalidConfig, "reply_timeout %v is negative", c.ReplyTimeout)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if c.Engine != EngineInterp && c.Engine != EngineUnicorn {
		return errors.Wrapf(hwerrors.ErrKInvalidConfig, "unknown engine %q", c.Engine)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(hwerrors.ErrKInvalidConfig, "%v", err)
	}
	return nil
}

func (c *Config) Policy() (compare.Policy, error) {
	return compare.ParsePolicy(c.FPSCRPolicy)
}

// SessionOptions returns the protocol settings for a distributor or agent.
func (c *Config) SessionOptions() hwtest.Options {
	return hwtest.Options{
		Version:       c.ProtocolVersion,
		MaxPacketSize: c.MaxPacketSize,
		ReplyTimeout:  c.ReplyTimeout,
	}
}

// String method returns the Config as a formatted JSON string
func (c *Config) String() string {
	jsonData, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error marshaling JSON: %v", err)
	}
	return string(jsonData)
}
