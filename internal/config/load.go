package config

import (
	"errors"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "lowcarbon"

// Load reads the configuration from defaults, LOWCARBON_* environment variables
// and the optional YAML file named by CONFIG_FILE.
func Load() (*Config, error) {

	// alias PORT => LOWCARBON_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("LOWCARBON_PORT", port)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			v.SetConfigFile(cfgFile)

			err = v.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = ParseLogLevel(v.GetString("log_level"))

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks bounds and normalises the REST base url and MQTT topic.
func Validate(cfg *Config) error {
	baseURL, err := CheckRESTBaseURL(cfg.REST.BaseURL)
	if err != nil {
		return err
	}
	cfg.REST.BaseURL = baseURL

	if cfg.REST.TimeoutMillis < 100 {
		return errors.New("config param rest.timeout_millis should be >= 100")
	}
	if cfg.Refresh.IntervalMillis > 0 && cfg.Refresh.IntervalMillis < 1000 {
		return errors.New("config param refresh.interval_millis should be 0 or >= 1000")
	}

	// check and fix base topic
	baseTopic, err := CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	if cfg.MQTT.Enable && cfg.MQTT.Host == "" {
		return errors.New("config param mqtt.host is required when mqtt.enable is set")
	}
	return nil
}

func ParseLogLevel(level string) zapcore.Level {
	switch level {
	case "trace":
		return zap.DebugLevel
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "error":
		return zap.ErrorLevel
	case "warn":
		return zap.WarnLevel
	case "fatal":
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

// Redacted returns a copy without credentials, for printing.
func Redacted(cfg Config) Config {
	if cfg.MQTT.Username != "" {
		cfg.MQTT.Username = "*redacted*"
	}
	if cfg.MQTT.Password != "" {
		cfg.MQTT.Password = "*redacted*"
	}
	if cfg.REST.AccessToken != "" {
		cfg.REST.AccessToken = "*redacted*"
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "warn")
	v.SetDefault("port", 8080)
	v.SetDefault("http_log", false)
	v.SetDefault("rest.base_url", "http://localhost:3000/api")
	v.SetDefault("rest.access_token", "")
	v.SetDefault("rest.timeout_millis", 10000)
	v.SetDefault("refresh.interval_millis", 0)
	v.SetDefault("mqtt.enable", false)
	v.SetDefault("mqtt.host", "")
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.base_topic", "lowcarbon")
}
