package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	JWT struct {
		SecretKey string `mapstructure:"secret_key"`
		// PreviousSecretKey is optional. When set, verifiers accept tokens
		// signed with either key so the secret can be rotated without a
		// mass logout.
		PreviousSecretKey string        `mapstructure:"previous_secret_key"`
		AccessTokenTTL    time.Duration `mapstructure:"access_token_ttl"`
		RefreshTokenTTL   time.Duration `mapstructure:"refresh_token_ttl"`
		ClockSkew         time.Duration `mapstructure:"clock_skew"`
	} `mapstructure:"jwt"`
	Redis struct {
		Host     string        `mapstructure:"host"`
		Port     string        `mapstructure:"port"`
		Password string        `mapstructure:"password"`
		Timeout  time.Duration `mapstructure:"timeout"`
	} `mapstructure:"redis"`
	Directory struct {
		// Mode selects the user directory backend: "http" talks to the
		// remote user service, "postgres" reads a local users table.
		Mode    string        `mapstructure:"mode"`
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"directory"`
	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Security struct {
		PublicPaths     []string `mapstructure:"public_paths"`
		LoginRatePerMin int      `mapstructure:"login_rate_per_min"`
		LoginBurst      int      `mapstructure:"login_burst"`
	} `mapstructure:"security"`
}

var AppConfig Config

func LoadConfig(path string) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("jwt.access_token_ttl", "15m")
	viper.SetDefault("jwt.refresh_token_ttl", "168h")
	viper.SetDefault("jwt.clock_skew", "0s")
	viper.SetDefault("redis.timeout", "2s")
	viper.SetDefault("directory.mode", "http")
	viper.SetDefault("directory.timeout", "3s")
	viper.SetDefault("security.public_paths", []string{"/auth/**", "/health", "/metrics", "/swagger/**"})
	viper.SetDefault("security.login_rate_per_min", 10)
	viper.SetDefault("security.login_burst", 5)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
