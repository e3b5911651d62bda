package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API      APIConfig      `mapstructure:"api"`
	Gin      GinConfig      `mapstructure:"gin"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	S3       S3Config       `mapstructure:"s3"`
	Business BusinessConfig `mapstructure:"business"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
	OpsAPIKey          string   `mapstructure:"ops_api_key"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type SMTPConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	SenderName string `mapstructure:"sender_name"`
	Email      string `mapstructure:"email"`
	Password   string `mapstructure:"password"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// BusinessConfig holds the tunable constants of the purchase lifecycle.
type BusinessConfig struct {
	PaymentWindowHours      int `mapstructure:"payment_window_hours"`
	ConfirmationTimeoutDays int `mapstructure:"confirmation_timeout_days"`
	RewardPercent           int `mapstructure:"reward_percent"`
	ReferralBonusPoints     int `mapstructure:"referral_bonus_points"`
	WelcomeCouponPercent    int `mapstructure:"welcome_coupon_percent"`
	SweepIntervalSeconds    int `mapstructure:"sweep_interval_seconds"`
	SweepBatchSize          int `mapstructure:"sweep_batch_size"`
}

func (c BusinessConfig) PaymentWindow() time.Duration {
	return time.Duration(c.PaymentWindowHours) * time.Hour
}

func (c BusinessConfig) ConfirmationTimeout() time.Duration {
	return time.Duration(c.ConfirmationTimeoutDays) * 24 * time.Hour
}

func (c BusinessConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

func Load(path string) (*AppConfig, error) {
	viper.SetConfigFile(path)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig -> %w", err)
	}

	var conf AppConfig
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal -> %w", err)
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		zap.L().Info("config file changed", zap.String("file", e.Name))

		if err := viper.Unmarshal(&conf); err != nil {
			zap.L().Error("failed to reload config", zap.Error(err))
		}
	})
	viper.WatchConfig()

	return &conf, nil
}
