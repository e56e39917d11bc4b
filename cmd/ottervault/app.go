package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/its-jojoo/ottervault/internal/adapter/storage"
	"github.com/its-jojoo/ottervault/internal/adapter/storage/file"
	"github.com/its-jojoo/ottervault/internal/adapter/storage/memory"
	"github.com/its-jojoo/ottervault/internal/adapter/storage/sqlite"
	"github.com/its-jojoo/ottervault/internal/clierr"
	"github.com/its-jojoo/ottervault/internal/config"
	"github.com/its-jojoo/ottervault/internal/core"
	"github.com/its-jojoo/ottervault/internal/logger"
	"github.com/its-jojoo/ottervault/internal/usecase/capture"
	"github.com/its-jojoo/ottervault/internal/usecase/search"
	"github.com/its-jojoo/ottervault/internal/usecase/vault"
)

// app is the wired vault one command works against.
type app struct {
	kv       storage.KV
	notifier *storage.Notifier
	store    *vault.Store
	query    *vault.Query
	capture  *capture.Service
	search   *search.Service
	log      zerolog.Logger
}

func (o *options) open(ctx context.Context) (*app, error) {
	log := logger.Get()

	kv, err := openKV(o.cfg, log)
	if err != nil {
		return nil, clierr.Wrap(clierr.ExitCodeStorage, "failed to open storage", err).
			WithSuggestion("Check storage.path or pass --path")
	}

	pf, err := core.NewPrivacyFilter(o.cfg.Capture.Ignore, o.cfg.Capture.IgnoreRegex)
	if err != nil {
		_ = kv.Close()
		return nil, clierr.Wrap(clierr.ExitCodeConfig, "invalid capture.ignore pattern", err)
	}

	n := storage.NewNotifier()
	items, err := vault.NewItemsValue(kv, n, log)
	if err != nil {
		_ = kv.Close()
		return nil, clierr.Wrap(clierr.ExitCodeStorage, "failed to bind items", err)
	}
	q, err := vault.OpenQuery(kv, n, log)
	if err != nil {
		_ = kv.Close()
		return nil, clierr.Wrap(clierr.ExitCodeStorage, "failed to bind query", err)
	}

	store := vault.Open(ctx, items, log)
	return &app{
		kv:       kv,
		notifier: n,
		store:    store,
		query:    q,
		capture:  capture.New(store, pf, capture.Config{}, log),
		search:   search.New(store, q),
		log:      log,
	}, nil
}

func openKV(cfg *config.Config, log zerolog.Logger) (storage.KV, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendFile:
		st, err := file.Open(cfg.StoragePath(), log)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		st, err := sqlite.Open(cfg.StoragePath())
		if err != nil {
			return nil, err
		}
		return st, nil
	}
}

// follow keeps the store and query current while another process edits a
// watchable backend. Other backends are left alone.
func (a *app) follow(ctx context.Context) error {
	w, ok := a.kv.(storage.Watchable)
	if !ok {
		return nil
	}
	if err := a.store.Follow(ctx, w); err != nil {
		return err
	}
	if err := a.query.Follow(ctx, w); err != nil {
		return err
	}
	a.log.Info().Msg("following external changes")
	return nil
}

// Close waits for in-flight pastes before releasing the backend.
func (a *app) Close(ctx context.Context) error {
	return errors.Join(a.capture.Drain(ctx), a.kv.Close())
}

// close is Close for defer: failures are logged since nothing is left to
// return them to.
func (a *app) close(ctx context.Context) {
	if err := a.Close(ctx); err != nil {
		a.log.Error().Err(err).Msg("failed to close vault")
	}
}
