package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string      `mapstructure:"database_url"`
	ServerPort  string      `mapstructure:"server_port"`
	JWTSecret   string      `mapstructure:"jwt_secret"`
	FrontendURL string      `mapstructure:"frontend_url"`
	Email       EmailConfig `mapstructure:"email"`
}

type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	From     string `mapstructure:"from"`
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// InvitationLinkTemplate is the redemption link format sent to invitees.
func (c *Config) InvitationLinkTemplate() string {
	return c.FrontendURL + "/invitations/%s"
}

// Load reads the configuration from a YAML file and returns a Config instance.
func Load() *Config {
	v := viper.New()

	// Look for config in the current directory and ./config
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.AddConfigPath("./config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("Error unmarshalling config: %v", err)
	}

	// Fallback defaults
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}

	if config.JWTSecret == "" {
		log.Fatal("JWT secret must be set in the config file")
	}

	if config.FrontendURL == "" {
		config.FrontendURL = "http://localhost:3000"
	}

	if config.Email.SMTPPort == 0 {
		config.Email.SMTPPort = 587
	}

	return &config
}
