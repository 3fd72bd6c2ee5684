package config

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level
	REST     RESTConfig    `mapstructure:"rest"`
	MQTT     MQTTConfig    `mapstructure:"mqtt"`
	Refresh  RefreshConfig `mapstructure:"refresh"`
	Port     uint          `mapstructure:"port"`
	HttpLog  bool          `mapstructure:"http_log"`
}

type RESTConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	AccessToken   string `mapstructure:"access_token"`
	TimeoutMillis uint32 `mapstructure:"timeout_millis"`
}

type RefreshConfig struct {
	IntervalMillis uint32 `mapstructure:"interval_millis"`
}

type MQTTConfig struct {
	Enable    bool
	Host      string
	Port      int
	Username  string
	Password  string
	BaseTopic string `mapstructure:"base_topic"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}

// CheckRESTBaseURL accepts absolute http(s) URLs and strips trailing slashes.
func CheckRESTBaseURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.New("invalid REST base url. must be an absolute http(s) url")
	}
	return strings.TrimRight(baseURL, "/"), nil
}
