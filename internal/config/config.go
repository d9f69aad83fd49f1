package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/torozsom/gondola/internal/gondola"
	"github.com/torozsom/gondola/internal/sim"
)

const (
	EnvPrefix      = "GONDOLA"
	DefaultTrack   = "valley"
	DefaultDataDir = ".gondola"

	DefaultWidth  = 600
	DefaultHeight = 600
	DefaultSize   = 20.0
	DefaultFPS    = 60
)

type Config struct {
	Physics gondola.Params `yaml:"physics" mapstructure:"physics"`
	Sim     sim.Config     `yaml:"sim" mapstructure:"sim"`
	View    ViewConfig     `yaml:"view" mapstructure:"view"`
	Track   string         `yaml:"track" mapstructure:"track"`
	Logger  LoggerConfig   `yaml:"logger" mapstructure:"logger"`
	DataDir string         `yaml:"data_dir" mapstructure:"data_dir"`
}

// ViewConfig describes the window and the square of world space it shows.
type ViewConfig struct {
	Width   int     `yaml:"width" mapstructure:"width"`
	Height  int     `yaml:"height" mapstructure:"height"`
	CenterX float64 `yaml:"center_x" mapstructure:"center_x"`
	CenterY float64 `yaml:"center_y" mapstructure:"center_y"`
	Size    float64 `yaml:"size" mapstructure:"size"`
	FPS     int     `yaml:"fps" mapstructure:"fps"`
}

type LoggerConfig struct {
	Level       string      `yaml:"level" mapstructure:"level"`
	Format      string      `yaml:"format" mapstructure:"format"`
	AddSource   bool        `yaml:"add_source" mapstructure:"add_source"`
	ServiceName string      `yaml:"service_name" mapstructure:"service_name"`
	LogFile     string      `yaml:"log_file" mapstructure:"log_file"`
	MaxSize     int         `yaml:"max_size" mapstructure:"max_size"`
	MaxBackups  int         `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge      int         `yaml:"max_age" mapstructure:"max_age"`
	Compress    bool        `yaml:"compress" mapstructure:"compress"`
	Colors      ColorConfig `yaml:"colors" mapstructure:"colors"`
}

// ColorConfig names the console color of each log level.
type ColorConfig struct {
	Debug string `yaml:"debug" mapstructure:"debug"`
	Info  string `yaml:"info" mapstructure:"info"`
	Warn  string `yaml:"warn" mapstructure:"warn"`
	Error string `yaml:"error" mapstructure:"error"`
}

func DefaultConfig() *Config {
	return &Config{
		Physics: gondola.DefaultParams(),
		Sim:     sim.DefaultConfig(),
		View: ViewConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Size:   DefaultSize,
			FPS:    DefaultFPS,
		},
		Track: DefaultTrack,
		Logger: LoggerConfig{
			Level:       "info",
			Format:      "console",
			ServiceName: "gondola",
			MaxSize:     10,
			MaxBackups:  3,
			MaxAge:      28,
			Colors: ColorConfig{
				Debug: "cyan",
				Info:  "green",
				Warn:  "yellow",
				Error: "red",
			},
		},
		DataDir: DefaultDataDir,
	}
}

// SetDefaults registers every key of DefaultConfig with v so that
// environment variables can override keys that no config file mentions.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("physics.gravity", d.Physics.Gravity)
	v.SetDefault("physics.radius", d.Physics.Radius)
	v.SetDefault("physics.start_offset", d.Physics.StartOffset)
	v.SetDefault("physics.epsilon", d.Physics.Epsilon)
	v.SetDefault("physics.energy_offset", d.Physics.EnergyOffset)

	v.SetDefault("sim.dt", d.Sim.Dt)
	v.SetDefault("sim.duration", d.Sim.Duration)

	v.SetDefault("view.width", d.View.Width)
	v.SetDefault("view.height", d.View.Height)
	v.SetDefault("view.center_x", d.View.CenterX)
	v.SetDefault("view.center_y", d.View.CenterY)
	v.SetDefault("view.size", d.View.Size)
	v.SetDefault("view.fps", d.View.FPS)

	v.SetDefault("track", d.Track)
	v.SetDefault("data_dir", d.DataDir)

	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.format", d.Logger.Format)
	v.SetDefault("logger.add_source", d.Logger.AddSource)
	v.SetDefault("logger.service_name", d.Logger.ServiceName)
	v.SetDefault("logger.log_file", d.Logger.LogFile)
	v.SetDefault("logger.max_size", d.Logger.MaxSize)
	v.SetDefault("logger.max_backups", d.Logger.MaxBackups)
	v.SetDefault("logger.max_age", d.Logger.MaxAge)
	v.SetDefault("logger.compress", d.Logger.Compress)
	v.SetDefault("logger.colors.debug", d.Logger.Colors.Debug)
	v.SetDefault("logger.colors.info", d.Logger.Colors.Info)
	v.SetDefault("logger.colors.warn", d.Logger.Colors.Warn)
	v.SetDefault("logger.colors.error", d.Logger.Colors.Error)
}

// Load reads the configuration from path, or from ./gondola.yaml when path is
// empty, layered over the defaults and under GONDOLA_* environment variables.
// A missing default file is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("gondola")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	positive := func(field string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", field, v))
		}
	}

	positive("physics.gravity", c.Physics.Gravity)
	positive("physics.radius", c.Physics.Radius)
	positive("physics.epsilon", c.Physics.Epsilon)
	if c.Physics.StartOffset < 0 {
		errs = append(errs, fmt.Errorf("physics.start_offset must not be negative, got %v", c.Physics.StartOffset))
	}
	positive("sim.dt", c.Sim.Dt)
	positive("sim.duration", c.Sim.Duration)
	positive("view.size", c.View.Size)
	positive("view.width", float64(c.View.Width))
	positive("view.height", float64(c.View.Height))
	positive("view.fps", float64(c.View.FPS))

	if c.Track != "" {
		if _, ok := GetTrack(c.Track); !ok {
			errs = append(errs, fmt.Errorf("track %q is not a built-in track", c.Track))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", sim.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
