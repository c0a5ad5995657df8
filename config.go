package main

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// defaultConfigPath is the default filename for the configuration file.
const defaultConfigPath = "growbox.yaml"

// Config is the top-level structure read from the YAML configuration file.
type Config struct {
	HTTP HTTPConfig `yaml:"http"`
	GPIO GPIOConfig `yaml:"gpio"`
	Page PageConfig `yaml:"page"`
	Log  LogConfig  `yaml:"log"`
}

// HTTPConfig controls the listener.  Port 80 needs root or
// CAP_NET_BIND_SERVICE.
type HTTPConfig struct {
	Host              string   `yaml:"host"`
	Port              int      `yaml:"port"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
}

// Addr returns the host:port to listen on.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GPIOConfig selects the pin driver and the pin of each actuator.
type GPIOConfig struct {
	Driver string     `yaml:"driver"` // "periph", "gpiocdev" or "fake"
	Chip   string     `yaml:"chip"`   // character device, gpiocdev only
	Pins   PinsConfig `yaml:"pins"`
}

// PageConfig holds values passed to the landing page template.
type PageConfig struct {
	Title string `yaml:"title"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	JSON   bool   `yaml:"json"`
	Colors bool   `yaml:"colors"`
	File   string `yaml:"file"` // optional event log, appended to
}

// Duration is a wrapper around time.Duration for YAML (un)marshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// defaultConfig mirrors the wiring of the original box: pump on BCM 17,
// light on BCM 27, served on port 80.
func defaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Host:              "0.0.0.0",
			Port:              80,
			ReadHeaderTimeout: Duration(5 * time.Second),
			IdleTimeout:       Duration(60 * time.Second),
			ShutdownTimeout:   Duration(5 * time.Second),
		},
		GPIO: GPIOConfig{
			Driver: "periph",
			Chip:   "gpiochip0",
			Pins:   PinsConfig{Pump: 17, Light: 27},
		},
		Page: PageConfig{Title: "Growbox"},
		Log:  LogConfig{Level: "info", Colors: true},
	}
}

// LoadConfig reads configuration from path.  If the file does not exist, the
// default configuration is written there and returned.  Environment
// variables, including those from an optional .env file, are expanded before
// parsing.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("unable to read .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := defaultConfig()
			if err := SaveConfig(path, cfg); err != nil {
				return Config{}, fmt.Errorf("unable to write default config: %w", err)
			}
			return cfg, nil
		}
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	// Start from the defaults so that omitted keys keep their default value.
	cfg := defaultConfig()
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path through a temporary file so that a crash
// never leaves a truncated config behind.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Validate checks values that would otherwise only fail once the hardware or
// the listener is touched.
func (c Config) Validate() error {
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.HTTP.Port)
	}
	switch strings.ToLower(c.GPIO.Driver) {
	case "periph", "gpiocdev", "fake":
	default:
		return fmt.Errorf("gpio.driver: %w: %q", ErrUnknownDriver, c.GPIO.Driver)
	}
	if c.GPIO.Pins.Pump < 0 || c.GPIO.Pins.Light < 0 {
		return errors.New("gpio.pins must not be negative")
	}
	if c.GPIO.Pins.Pump == c.GPIO.Pins.Light {
		return fmt.Errorf("gpio.pins: pump and light share pin %d", c.GPIO.Pins.Pump)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with values from the
// environment.  Unset variables without a default expand to "".
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if v, ok := os.LookupEnv(parts[1]); ok {
			return v
		}
		return parts[2]
	})
}
