/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"strings"

	"github.com/Seednode/wordimposter/internal/fold"
	"github.com/Seednode/wordimposter/internal/storage"
)

// RosterKey is the storage key holding saved player names.
const RosterKey = "wordImposterPlayers"

// Roster persists player names between sessions. Implementations must not
// fail: problems are logged and the roster degrades to empty.
type Roster interface {
	Load() []string
	Save(names []string)
	Clear()
}

// PersistedRoster stores names as a JSON array in a key-value store.
type PersistedRoster struct {
	kv   storage.KV
	logf storage.Logf
}

// NewPersistedRoster returns a roster backed by kv.
func NewPersistedRoster(kv storage.KV, logf storage.Logf) *PersistedRoster {
	return &PersistedRoster{
		kv:   kv,
		logf: logf,
	}
}

// Load returns the saved names. Blank names, case-insensitive repeats and
// names beyond MaxPlayers are dropped so a hand-edited store cannot break
// the roster rules.
func (r *PersistedRoster) Load() []string {
	var saved []string
	if !storage.LoadJSON(r.kv, RosterKey, &saved, r.logf) {
		return nil
	}

	names := make([]string, 0, len(saved))
	for _, name := range saved {
		name = strings.TrimSpace(name)
		if name == "" || fold.Contains(names, name) {
			continue
		}
		if len(names) == MaxPlayers {
			break
		}
		names = append(names, name)
	}

	return names
}

func (r *PersistedRoster) Save(names []string) {
	if names == nil {
		names = []string{}
	}
	storage.SaveJSON(r.kv, RosterKey, names, r.logf)
}

func (r *PersistedRoster) Clear() {
	storage.Remove(r.kv, RosterKey, r.logf)
}
