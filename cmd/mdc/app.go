package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Zuo-Peng/mdc/internal/backend"
	"github.com/Zuo-Peng/mdc/internal/config"
	"github.com/Zuo-Peng/mdc/internal/controller"
	"github.com/Zuo-Peng/mdc/internal/logger"
	"github.com/Zuo-Peng/mdc/internal/session"
	"github.com/Zuo-Peng/mdc/internal/store"
)

// app is everything a client command needs, wired from the config.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	store   *store.Store
	sess    *session.ClientSession
	client  *backend.Client
	indexer *controller.Indexer
	chatter *controller.Chatter
}

func loadConfig(serverURL string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return cfg, nil
}

func openApp(ctx context.Context, serverURL string) (*app, error) {
	cfg, err := loadConfig(serverURL)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.StatePath)
	if err != nil {
		return nil, err
	}

	sess, err := session.New(ctx, st, session.WithLogger(log))
	if err != nil {
		st.Close()
		return nil, err
	}

	client := backend.NewClient(cfg.ServerURL, backend.WithTimeout(cfg.RequestTimeout))
	log.Debug("client ready", zap.String("server_url", client.BaseURL()), zap.String("state_path", st.Path()))

	return &app{
		cfg:     cfg,
		log:     log,
		store:   st,
		sess:    sess,
		client:  client,
		indexer: controller.NewIndexer(sess, client, controller.WithIndexerLogger(log)),
		chatter: controller.NewChatter(sess, client, log),
	}, nil
}

func (a *app) Close() error {
	_ = a.log.Sync()
	return a.store.Close()
}
