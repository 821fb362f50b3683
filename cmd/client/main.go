package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/atinyakov/ourstory/internal/client/core"
	"github.com/atinyakov/ourstory/internal/client/feed"
	"github.com/atinyakov/ourstory/internal/client/prefs"
	"github.com/atinyakov/ourstory/internal/config"
	"github.com/atinyakov/ourstory/internal/logger"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

// openPrefs selects the badger backend when a directory is configured and
// the JSON file otherwise. The returned func releases the backend.
func openPrefs(opts *config.ClientOptions, log *zap.Logger) (prefs.KV, func(), error) {
	if opts.BadgerDir != "" {
		kv, err := prefs.OpenBadger(opts.BadgerDir, log)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { _ = kv.Close() }, nil
	}
	return prefs.NewFileKV(opts.PrefsPath), func() {}, nil
}

// main parses flags, wires the sync core to the feed server and runs the shell.
func main() {
	options := config.ParseClient()
	if options.ShowVersion {
		fmt.Printf("Bizim Hikayemiz Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	l := logger.New()
	if err := l.Init(options.LogLevel); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Log.Sync() }()

	var feedOpts []feed.Option
	if options.CAFile != "" {
		tlsCfg, err := feed.LoadCA(options.CAFile)
		if err != nil {
			l.Log.Fatal("failed to load CA", zap.Error(err))
		}
		feedOpts = append(feedOpts, feed.WithTLSConfig(tlsCfg))
	}
	client, err := feed.New(options.ServerURL, feedOpts...)
	if err != nil {
		l.Log.Fatal("invalid server url", zap.Error(err))
	}
	kv, release, err := openPrefs(options, l.Log.Named("prefs"))
	if err != nil {
		l.Log.Fatal("failed to open preferences", zap.Error(err))
	}
	defer release()

	out := &syncWriter{w: os.Stdout}
	app := core.New(core.Config{
		Messages: core.FromFeed(feed.Messages(client)),
		Recipes:  core.FromFeed(feed.Recipes(client)),
		Seen:     client,
		Identity: client,
		Prefs:    prefs.New(kv, l.Log.Named("prefs")),
		Alerter: core.AlertFunc(func(op string, err error) {
			fmt.Fprintf(out, "! %s başarısız: %v\n", op, err)
		}),
		Log: l.Log,
	})
	defer app.Close()

	in := bufio.NewReader(os.Stdin)
	fmt.Fprintln(out, "Bizim Hikayemiz. 'help' ile komutları görebilirsin.")
	newShell(app, in, out, secretReader(in, out)).run()
}
