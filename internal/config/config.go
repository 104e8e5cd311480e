package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Channels ChannelsConfig `mapstructure:"channels"`
	Motion   MotionConfig   `mapstructure:"motion"`
}

type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type AuthConfig struct {
	JWTSecretEnv   string        `mapstructure:"jwt_secret_env"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	Users          []UserConfig  `mapstructure:"users"`
}

type UserConfig struct {
	Username     string `mapstructure:"username"`
	Role         string `mapstructure:"role"`
	PasswordHash string `mapstructure:"password_hash"` // argon2id encoded
}

type MotionConfig struct {
	// SegmentLimit caps the number of segments the API accepts into the
	// backlog at once; 0 means unlimited.
	SegmentLimit int `mapstructure:"segment_limit"`
}

type ChannelsConfig struct {
	UpdateInterval time.Duration   `mapstructure:"update_interval"`
	ProfilePaths   []string        `mapstructure:"profile_paths"`
	Outputs        []ChannelConfig `mapstructure:"outputs"`
}

// ChannelConfig is the static per-channel configuration: which channel
// numbers exist, their output line, PWM resource and initial parameters.
// A profile supplies defaults; explicit fields override it.
type ChannelConfig struct {
	Number     int    `mapstructure:"number"`
	PWMChannel uint8  `mapstructure:"pwm_channel"`
	Profile    string `mapstructure:"profile"`

	Mode           string `mapstructure:"mode"`
	PWMFreqHz      uint32 `mapstructure:"pwm_freq_hz"`
	ResolutionBits uint8  `mapstructure:"resolution_bits"`
	SpikeLengthMs  uint16 `mapstructure:"spike_length_ms"`
	SpikePercent   uint8  `mapstructure:"spike_percent"`
	HoldPercent    uint8  `mapstructure:"hold_percent"`
	DutyLow        uint16 `mapstructure:"duty_low"`
	DutyHigh       uint16 `mapstructure:"duty_high"`

	Line LineConfig `mapstructure:"line"`
}

type LineConfig struct {
	// Driver selects the backend: "memory" (simulation) or "modbus".
	Driver string `mapstructure:"driver"`
	Name   string `mapstructure:"name"`

	Modbus ModbusConfig `mapstructure:"modbus"`
}

type ModbusConfig struct {
	Address            string        `mapstructure:"address"`
	UnitID             uint8         `mapstructure:"unit_id"`
	CoilAddress        uint16        `mapstructure:"coil_address"`
	DutyRegister       uint16        `mapstructure:"duty_register"`
	FrequencyRegister  uint16        `mapstructure:"frequency_register"`
	ResolutionRegister uint16        `mapstructure:"resolution_register"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.shutdown_timeout", "30s")
	viper.SetDefault("channels.update_interval", "10ms")
	viper.SetDefault("channels.profile_paths", []string{"configs/profiles"})
	viper.SetDefault("motion.segment_limit", 0)

	viper.SetDefault("auth.jwt_secret_env", "JWT_SECRET")
	viper.SetDefault("auth.access_token_ttl", "60m")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("AUXIO")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// JWT secret from environment variable
func (a *AuthConfig) GetJWTSecret() string {
	envVar := a.JWTSecretEnv
	if envVar == "" {
		envVar = "JWT_SECRET"
	}

	secret := os.Getenv(envVar)
	if secret == "" {
		// Development fallback
		return "dev-secret-change-in-production-min-32-chars"
	}
	return secret
}
