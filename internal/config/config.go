package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env       string          `yaml:"env" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	WebRTC    WebRTCConfig    `yaml:"webrtc"`
	Signaling SignalingConfig `yaml:"signaling"`
	Database  DatabaseConfig  `yaml:"database"`
}

type HTTPConfig struct {
	Address string `yaml:"address" env-default:""`
}

type WebRTCConfig struct {
	STUNServers []string `yaml:"stun_servers" env-default:""`
}

type SignalingConfig struct {
	// How long a failed peer connection may try to recover before the
	// client tears it down.
	ICERecoveryWindow time.Duration `yaml:"ice_recovery_window" env-default:"12s"`

	ReconnectBaseDelay   time.Duration `yaml:"reconnect_base_delay" env-default:"1s"`
	ReconnectMaxDelay    time.Duration `yaml:"reconnect_max_delay" env-default:"30s"`
	ReconnectMaxAttempts int           `yaml:"reconnect_max_attempts" env-default:"8"`

	TargetLanguage string `yaml:"target_language" env-default:"pt"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_DSN"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	cfg.setDefaults()

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

func (c *Config) setDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if len(c.WebRTC.STUNServers) == 0 {
		c.WebRTC.STUNServers = []string{
			"stun:stun.l.google.com:19302",
			"stun:stun1.l.google.com:19302",
		}
	}
	if c.Signaling.ICERecoveryWindow <= 0 {
		c.Signaling.ICERecoveryWindow = 12 * time.Second
	}
	if c.Signaling.ReconnectBaseDelay <= 0 {
		c.Signaling.ReconnectBaseDelay = time.Second
	}
	if c.Signaling.ReconnectMaxDelay <= 0 {
		c.Signaling.ReconnectMaxDelay = 30 * time.Second
	}
	if c.Signaling.ReconnectMaxAttempts <= 0 {
		c.Signaling.ReconnectMaxAttempts = 8
	}
}
