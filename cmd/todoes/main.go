package main

import (
	"context"

	"github.com/nicolagi/todoes"
	"github.com/nicolagi/todoes/internal/config"
	log "github.com/sirupsen/logrus"
)

var client *todoes.Client

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithField("cause", err).Fatal("Could not load configuration")
	}
	log.SetLevel(cfg.LogLevel)
	client = mustCreateClient(cfg)

	// Create initial window listing all todoes.
	newAllWindow()

	// The program will be terminated when the last acme window owned by this process is deleted.
	select {}
}

func mustCreateClient(cfg *config.Config) *todoes.Client {
	opts := []todoes.ClientOption{
		todoes.WithBaseURL(cfg.URL),
		todoes.WithErrorLogger(todoes.NewLogrusErrorLogger(log.WithField("url", cfg.URL))),
	}
	if cfg.WireLog != "" {
		opts = append(opts, todoes.WithWireLog(cfg.WireLog))
	}
	client, err := todoes.NewClient(opts...)
	if err != nil {
		log.WithFields(log.Fields{
			"url":   cfg.URL,
			"cause": err,
		}).Fatal("Could not create client")
	}
	return client
}

// ctx is used for all client calls. Window actions are not cancellable.
var ctx = context.Background()
