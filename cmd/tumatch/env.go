package main

import (
	"context"
	"fmt"
	"net/http"

	"tumatch/client/internal/api"
	"tumatch/client/internal/app"
	"tumatch/client/internal/blob"
	"tumatch/client/internal/config"
	"tumatch/client/internal/mockapi"
	"tumatch/client/internal/store"
	"tumatch/client/pkg/jwt"

	"github.com/sirupsen/logrus"
)

// env is everything a command needs.
type env struct {
	cfg     *config.Config
	log     logrus.FieldLogger
	session *app.Session
	close   func() error
}

// openStore opens the configured blob backend and wraps it in an entity store.
func openStore(cfg *config.Config) (*store.Store, func() error, error) {
	blobs, closer, err := blob.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	return store.New(blobs), closer, nil
}

// newEnv builds a session. Offline, the API is served in-process from the local store.
func newEnv(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*env, error) {
	e := &env{cfg: cfg, log: log, close: func() error { return nil }}

	var transport http.RoundTripper
	if cfg.Offline {
		s, closer, err := openStore(cfg)
		if err != nil {
			return nil, err
		}
		e.close = closer
		router, err := mockapi.Open(ctx, s, mockapi.Options{
			JWTSecret:     cfg.JWTSecret,
			DefaultUserID: cfg.CurrentUserID,
			Logger:        log,
		})
		if err != nil {
			_ = closer()
			return nil, fmt.Errorf("seed offline store: %w", err)
		}
		transport = &mockapi.Transport{Handler: router}
	}

	var token string
	if cfg.JWTSecret != "" {
		var err error
		token, err = jwt.GenerateToken(cfg.JWTSecret, cfg.CurrentUserID, jwt.DefaultTTL)
		if err != nil {
			_ = e.close()
			return nil, fmt.Errorf("sign session token: %w", err)
		}
	}

	client := api.New(api.Config{
		BaseURL:     cfg.APIBaseURL,
		Timeout:     cfg.HTTPTimeout,
		Transport:   transport,
		BearerToken: token,
		Logger:      log,
	})
	session, err := app.NewSession(cfg.CurrentUserID, client, app.WithLogger(log))
	if err != nil {
		_ = e.close()
		return nil, err
	}
	e.session = session
	return e, nil
}
