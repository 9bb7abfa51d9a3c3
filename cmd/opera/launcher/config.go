// This file maps the config file and CLI context to the Config struct.

package launcher

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/naoina/toml"
	"github.com/pkg/errors"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-asset-chain/integration"
	"github.com/rony4d/go-asset-chain/opera/genesis"
)

// Config aggregates every subsystem's configuration the launcher needs.
type Config struct {
	Node  NodeConfig
	Opera OperaConfig
}

type NodeConfig struct {
	Name    string
	Logging LoggingConfig
	Metrics MetricsConfig
}

type LoggingConfig struct {
	Verbosity int
	Format    string
	Color     bool
	SentryDSN string `toml:",omitempty"`
}

type MetricsConfig struct {
	Enabled  bool
	HTTPAddr string
	HTTPPort int
}

// OperaConfig selects the protocol network and the operator's activation
// overrides, see package genesis for the override format.
type OperaConfig struct {
	Network     string
	Activations []genesis.Activation `toml:",omitempty"`
}

// Settings converts the section into the input of integration.MakeResolver.
func (c OperaConfig) Settings() integration.NetworkSettings {
	return integration.NetworkSettings{
		Network:     c.Network,
		Activations: c.Activations,
	}
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// MakeAllConfigs merges defaults, the optional config file, then CLI flag
// overrides into a single config struct.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := DefaultConfig()

	if file := ctx.String("config"); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return cfg, err
		}
	}

	applyCLIOverrides(ctx, &cfg)

	if v := cfg.Node.Logging.Verbosity; v < 0 || v > 5 {
		return cfg, errors.Errorf("log verbosity %d out of range 0..5", v)
	}
	return cfg, nil
}

func loadConfigFile(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return errors.Wrap(err, "config file")
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.IsSet("identity") {
		cfg.Node.Name = ctx.String("identity")
	}
	if ctx.IsSet("network") {
		cfg.Opera.Network = ctx.String("network")
	}

	if ctx.IsSet("log.format") {
		cfg.Node.Logging.Format = ctx.String("log.format")
	}
	if ctx.IsSet("log.verbosity") {
		cfg.Node.Logging.Verbosity = ctx.Int("log.verbosity")
	}
	if ctx.IsSet("log.color") {
		cfg.Node.Logging.Color = ctx.Bool("log.color")
	}
	if ctx.IsSet("sentry.dsn") {
		cfg.Node.Logging.SentryDSN = ctx.String("sentry.dsn")
	}

	if ctx.Bool("metrics") {
		cfg.Node.Metrics.Enabled = true
	}
	if ctx.IsSet("metrics.addr") {
		cfg.Node.Metrics.HTTPAddr = ctx.String("metrics.addr")
	}
	if ctx.IsSet("metrics.port") {
		cfg.Node.Metrics.HTTPPort = ctx.Int("metrics.port")
	}
}

// dumpConfig writes cfg in the format read by --config.
func dumpConfig(w io.Writer, cfg Config) error {
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
