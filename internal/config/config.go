// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

type Config struct {
	FeeBasisPoints      uint64 `mapstructure:"fee_basis_points"`
	FeeRecipient        string `mapstructure:"fee_recipient"`
	GraduationThreshold uint64 `mapstructure:"graduation_threshold"`
	PresaleWindow       int64  `mapstructure:"presale_window"`
	PostgresURL         string `mapstructure:"postgres_url"`
	EventBuffer         int    `mapstructure:"event_buffer"`
	PriceDelay          int    `mapstructure:"price_delay"`
	Workers             int    `mapstructure:"workers"`
	Retries             int    `mapstructure:"retries"`
	DebugLogging        bool   `mapstructure:"debug_logging"`
	LogFile             string `mapstructure:"log_file"`
}

const (
	DefaultFeeBasisPoints      = 100
	DefaultGraduationThreshold = 85_000_000_000
	DefaultPresaleWindow       = 30
	DefaultEventBuffer         = 100
	DefaultPriceDelay          = 500
	DefaultWorkers             = 5
	DefaultRetries             = 3
	DefaultLogFile             = "launchd.log"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"fee_basis_points":     DefaultFeeBasisPoints,
		"graduation_threshold": DefaultGraduationThreshold,
		"presale_window":       DefaultPresaleWindow,
		"event_buffer":         DefaultEventBuffer,
		"price_delay":          DefaultPriceDelay,
		"workers":              DefaultWorkers,
		"retries":              DefaultRetries,
		"log_file":             DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.FeeBasisPoints > 10_000 {
		return errors.New("fee_basis_points exceeds 10000")
	}
	if cfg.FeeBasisPoints > 0 && cfg.FeeRecipient == "" {
		return errors.New("fee_recipient required when fee_basis_points is set")
	}
	if cfg.FeeRecipient != "" {
		if _, err := solana.PublicKeyFromBase58(cfg.FeeRecipient); err != nil {
			return errors.New("invalid fee_recipient address")
		}
	}
	if cfg.GraduationThreshold == 0 {
		return errors.New("invalid graduation_threshold")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.PresaleWindow <= 0 {
		return errors.New("invalid presale_window")
	}
	if cfg.EventBuffer <= 0 {
		return errors.New("invalid event_buffer")
	}
	if cfg.PriceDelay <= 0 {
		return errors.New("invalid price_delay")
	}
	if cfg.Workers <= 0 {
		return errors.New("invalid workers count")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("LAUNCH_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envPostgres := v.GetString("POSTGRES_URL")
	if envPostgres != "" {
		cfg.PostgresURL = envPostgres
	}

	envFeeRecipient := v.GetString("FEE_RECIPIENT")
	if envFeeRecipient != "" {
		cfg.FeeRecipient = strings.TrimSpace(envFeeRecipient)
	}
	return nil
}

// FeeRecipientKey parses the configured fee recipient. Zero key when
// fees are disabled.
func (c *Config) FeeRecipientKey() solana.PublicKey {
	if c.FeeRecipient == "" {
		return solana.PublicKey{}
	}
	key, err := solana.PublicKeyFromBase58(c.FeeRecipient)
	if err != nil {
		return solana.PublicKey{}
	}
	return key
}
