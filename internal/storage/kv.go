/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package storage holds the key-value persistence used for saved rosters
// and custom word categories. Values are JSON-encoded strings.
package storage

import (
	"encoding/json"
	"errors"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("storage is closed")

// KV is a string-keyed store of string values.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Logf receives persistence failures. A nil Logf discards them.
type Logf func(format string, args ...any)

func (l Logf) printf(format string, args ...any) {
	if l == nil {
		return
	}
	l(format, args...)
}

// LoadJSON decodes the value at key into v. A missing key, a read failure
// or a corrupt value all leave v untouched and report false; failures are
// logged rather than returned.
func LoadJSON(kv KV, key string, v any, logf Logf) bool {
	if kv == nil {
		return false
	}

	raw, ok, err := kv.Get(key)
	if err != nil {
		logf.printf("STORAGE: failed to read %q: %v", key, err)
		return false
	}
	if !ok || raw == "" {
		return false
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		logf.printf("STORAGE: discarding corrupt value at %q: %v", key, err)
		return false
	}

	return true
}

// SaveJSON encodes v and writes it at key. Writes are best-effort: errors
// are logged and reported as false.
func SaveJSON(kv KV, key string, v any, logf Logf) bool {
	if kv == nil {
		return false
	}

	data, err := json.Marshal(v)
	if err != nil {
		logf.printf("STORAGE: failed to encode %q: %v", key, err)
		return false
	}

	if err := kv.Set(key, string(data)); err != nil {
		logf.printf("STORAGE: failed to write %q: %v", key, err)
		return false
	}

	return true
}

// Remove deletes key, logging any failure.
func Remove(kv KV, key string, logf Logf) {
	if kv == nil {
		return
	}

	if err := kv.Delete(key); err != nil {
		logf.printf("STORAGE: failed to delete %q: %v", key, err)
	}
}
