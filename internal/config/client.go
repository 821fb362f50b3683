package config

import (
	"flag"
	"fmt"
	"os"
)

// ClientOptions holds the configuration values for the REPL client.
type ClientOptions struct {
	// ServerURL is the feed server base URL.
	ServerURL string
	// PrefsPath is the JSON file backing the preference store.
	PrefsPath string
	// BadgerDir, when set, selects the BadgerDB preference backend instead
	// of the JSON file.
	BadgerDir string
	// CAFile, when set, is the only CA trusted for https and wss.
	CAFile string
	// LogLevel is passed to logger.Init.
	LogLevel string
	// ShowVersion prints build metadata and exits.
	ShowVersion bool
}

// ParseClient parses os.Args and the environment into ClientOptions.
func ParseClient() *ClientOptions {
	opts, err := parseClient(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return opts
}

func parseClient(fs *flag.FlagSet, args []string, getenv func(string) string) (*ClientOptions, error) {
	opts := &ClientOptions{}
	fs.StringVar(&opts.ServerURL, "url", "http://localhost:8080", "feed server base URL")
	fs.StringVar(&opts.PrefsPath, "prefs", "prefs.json", "path to the preference file")
	fs.StringVar(&opts.BadgerDir, "badger", "", "directory for the badger preference store")
	fs.StringVar(&opts.CAFile, "ca", "", "path to the CA certificate that signed the server certificate")
	fs.StringVar(&opts.LogLevel, "log-level", "warn", "log level")
	fs.BoolVar(&opts.ShowVersion, "version", false, "show build version and date")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if u := getenv("SERVER_URL"); u != "" {
		opts.ServerURL = u
	}
	return opts, nil
}
