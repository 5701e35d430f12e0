/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"

	"github.com/Seednode/wordimposter/games/imposter"
	"github.com/Seednode/wordimposter/games/words"
	"github.com/Seednode/wordimposter/internal/storage"
	"github.com/Seednode/wordimposter/internal/storage/sqlite"
)

type closer func() error

// openStore opens the backend that keeps the saved roster and the custom
// categories between runs.
func openStore(cfg *Config) (storage.KV, closer, error) {
	switch cfg.store {
	case storeFile:
		f, err := storage.OpenFile(cfg.data)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		return f, f.Close, nil
	case storeSQLite:
		s, err := sqlite.Open(cfg.data)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, s.Close, nil
	default:
		return storage.NewMemory(), func() error { return nil }, nil
	}
}

func newGameDeps(cfg *Config, kv storage.KV) *gameDeps {
	storeLog := func(format string, args ...any) {
		logf(cfg, "STORE: "+format, args...)
	}

	return &gameDeps{
		roster: imposter.NewPersistedRoster(kv, storeLog),
		categories: words.NewStore(kv,
			words.WithLogger(storeLog),
			words.WithMaxNameLength(cfg.maxCategoryName),
		),
	}
}
