// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `mapstructure:"server_address"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `mapstructure:"database_dsn"`

	// Config is the path to the Config file.
	Config string `mapstructure:"-"`

	// Redis connection used for the session store.
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	// AMQPURL is the RabbitMQ broker for domain events. Empty disables publishing.
	AMQPURL string `mapstructure:"amqp_url"`

	// SessionTTL is how long a login session stays valid.
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	// LockoutThreshold is the number of consecutive failed logins that locks an account.
	LockoutThreshold int `mapstructure:"lockout_threshold"`
	// LockoutWindow is how long a locked account rejects logins.
	LockoutWindow time.Duration `mapstructure:"lockout_window"`

	// AdminEmail and AdminPassword seed the administrator account when it does not exist.
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`

	// AllowedOrigins lists the browser origins allowed to call the API with credentials.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `mapstructure:"tls_cert"`
	TLSKey  string `mapstructure:"tls_key"`

	// CleanupSchedule is the cron spec of the orphan payroll cleanup job.
	CleanupSchedule string `mapstructure:"cleanup_schedule"`

	// LogLevel is the minimum zap level that is written.
	LogLevel string `mapstructure:"log_level"`
}

// TLSEnabled reports whether both TLS files are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It exits the process on invalid configuration.
func Parse() *Options {
	options, err := Load(os.Args[1:])
	if err != nil {
		log.Fatalf("error while loading config: %v", err)
	}
	return options
}

// Load builds Options from args, the config file and the environment.
// Flags provide the base values, the config file overrides flags and
// environment variables override both.
func Load(args []string) (*Options, error) {
	var (
		flags      Options
		configPath string
	)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&flags.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&flags.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&flags.RedisAddr, "r", "localhost:6379", "redis address")
	fs.StringVar(&flags.LogLevel, "l", "info", "log level")
	fs.StringVar(&configPath, "config", "config.json", "path to config file")
	fs.StringVar(&configPath, "c", "config.json", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("server_address", flags.Port)
	v.SetDefault("database_dsn", flags.DatabaseDSN)
	v.SetDefault("redis_addr", flags.RedisAddr)
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("amqp_url", "")
	v.SetDefault("session_ttl", time.Hour)
	v.SetDefault("lockout_threshold", 5)
	v.SetDefault("lockout_window", 10*time.Minute)
	v.SetDefault("admin_email", "")
	v.SetDefault("admin_password", "")
	v.SetDefault("allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("tls_cert", "")
	v.SetDefault("tls_key", "")
	v.SetDefault("cleanup_schedule", "@every 1h")
	v.SetDefault("log_level", flags.LogLevel)
	v.AutomaticEnv()

	if p := os.Getenv("CONFIG"); p != "" {
		configPath = p
	}
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	var options Options
	if err := v.Unmarshal(&options); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	options.Config = configPath

	if err := options.validate(); err != nil {
		return nil, err
	}
	return &options, nil
}

func (o *Options) validate() error {
	if o.LockoutThreshold <= 0 {
		return errors.New("lockout_threshold must be positive")
	}
	if o.LockoutWindow <= 0 {
		return errors.New("lockout_window must be positive")
	}
	if o.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if (o.AdminEmail == "") != (o.AdminPassword == "") {
		return errors.New("admin_email and admin_password must be set together")
	}
	return nil
}
