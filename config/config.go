package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/frizinak/liveview/render"
	"github.com/frizinak/liveview/viewer"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Width  int    `json:"width" yaml:"width" toml:"width"`
	Height int    `json:"height" yaml:"height" toml:"height"`
	Title  string `json:"title" yaml:"title" toml:"title"`

	SettleDelay  Duration `json:"settle_delay" yaml:"settle_delay" toml:"settle_delay"`
	GracePeriod  Duration `json:"grace_period" yaml:"grace_period" toml:"grace_period"`
	KillGrace    Duration `json:"kill_grace" yaml:"kill_grace" toml:"kill_grace"`
	RenderBudget Duration `json:"render_budget" yaml:"render_budget" toml:"render_budget"`

	Scaler   string  `json:"scaler" yaml:"scaler" toml:"scaler"`
	Font     string  `json:"font" yaml:"font" toml:"font"`
	FontSize float64 `json:"font_size" yaml:"font_size" toml:"font_size"`

	LogLevel    string `json:"log_level" yaml:"log_level" toml:"log_level"`
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr" toml:"metrics_addr"`
}

// Duration is a time.Duration written as "100ms", "5s" in config files.
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func Defaults() Config {
	return Config{
		Width:        1280,
		Height:       720,
		Title:        "Maxpixel",
		SettleDelay:  Duration(viewer.DefaultSettleDelay),
		GracePeriod:  Duration(viewer.DefaultGracePeriod),
		KillGrace:    Duration(viewer.DefaultKillGrace),
		RenderBudget: Duration(viewer.DefaultRenderBudget),
		Scaler:       render.ScalerBilinear,
		FontSize:     12,
		LogLevel:     "info",
	}
}

func (c Config) ToViewerConfig() viewer.Config {
	return viewer.Config{
		Width:        c.Width,
		Height:       c.Height,
		Title:        c.Title,
		SettleDelay:  time.Duration(c.SettleDelay),
		GracePeriod:  time.Duration(c.GracePeriod),
		KillGrace:    time.Duration(c.KillGrace),
		RenderBudget: time.Duration(c.RenderBudget),
		Render: render.Config{
			Scaler:   c.Scaler,
			Font:     c.Font,
			FontSize: c.FontSize,
		},
	}
}

func (c Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(c.LogLevel)
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Width, c.Height)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("negative settle_delay %s", c.SettleDelay)
	}
	if _, err := render.Scaler(c.Scaler); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func DefaultConfigFile() (string, error) {
	home, err := os.UserHomeDir()
	return filepath.Join(home, ".config", "liveview", "config.json"), err
}

// LoadConfig reads file on top of Defaults, the format is picked by
// extension: .json, .yaml/.yml or .toml.
func LoadConfig(file string) (Config, error) {
	c := Defaults()
	b, err := os.ReadFile(file)
	if err != nil {
		return c, err
	}

	switch ext := strings.ToLower(filepath.Ext(file)); ext {
	case ".json":
		err = json.Unmarshal(b, &c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &c)
	case ".toml":
		err = toml.Unmarshal(b, &c)
	default:
		return c, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return c, fmt.Errorf("%s: %w", file, err)
	}

	return c, c.Validate()
}

// EnsureConfig writes the defaults to file unless it already exists.
func EnsureConfig(file string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return false, err
	}
	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if os.IsExist(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	defer f.Close()

	c := Defaults()
	switch ext := strings.ToLower(filepath.Ext(file)); ext {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(f)
		if err = enc.Encode(c); err == nil {
			err = enc.Close()
		}
	case ".toml":
		err = toml.NewEncoder(f).Encode(c)
	default:
		enc := json.NewEncoder(f)
		enc.SetIndent("", "    ")
		err = enc.Encode(c)
	}
	return err == nil, err
}
