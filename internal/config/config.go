// Package config provides functionality for managing configuration options
// for the feed server and the client using command-line flags, environment
// variables and an optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// Options holds the configuration values for the feed server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port"`

	// DatabaseDSN holds the PostgreSQL connection string. Empty selects the
	// in-memory store.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// AllowedOrigins lists CORS origins for the browser client.
	AllowedOrigins []string `json:"allowed_origins"`

	// Retention is how old a chat message must be before the store-level
	// sweep removes it.
	Retention time.Duration `json:"-"`

	// RetentionInterval enables the store-level sweep when positive.
	RetentionInterval time.Duration `json:"-"`

	// LogLevel is passed to logger.Init.
	LogLevel string `json:"log_level"`
}

// fileOptions mirrors the durations of Options as strings so the JSON file
// can say "24h".
type fileOptions struct {
	*Options
	Retention         string `json:"retention"`
	RetentionInterval string `json:"retention_interval"`
}

// Parse parses os.Args and the environment. It exits the process on a
// malformed config file, like flag.Parse does on malformed flags.
func Parse() *Options {
	opts, err := parse(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return opts
}

func parse(fs *flag.FlagSet, args []string, getenv func(string) string) (*Options, error) {
	options := &Options{}
	var origins string

	fs.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&options.TLSKey, "tls-key", "", "path to TLS key")
	fs.StringVar(&origins, "origins", "*", "comma-separated CORS origins")
	fs.DurationVar(&options.Retention, "retention", 24*time.Hour, "age after which the sweep removes chat messages")
	fs.DurationVar(&options.RetentionInterval, "retention-interval", 0, "store-level sweep interval (0 disables)")
	fs.StringVar(&options.LogLevel, "log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	options.AllowedOrigins = splitList(origins)

	// Override flags with environment variables if set
	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if err := loadFile(options.Config, options); err != nil {
			return nil, err
		}
	}

	if serverAddress := getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if level := getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}

	return options, nil
}

func loadFile(path string, options *Options) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	fo := fileOptions{Options: options}
	if err := json.Unmarshal(data, &fo); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	if fo.Retention != "" {
		d, err := time.ParseDuration(fo.Retention)
		if err != nil {
			return fmt.Errorf("config retention: %w", err)
		}
		options.Retention = d
	}
	if fo.RetentionInterval != "" {
		d, err := time.ParseDuration(fo.RetentionInterval)
		if err != nil {
			return fmt.Errorf("config retention_interval: %w", err)
		}
		options.RetentionInterval = d
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
