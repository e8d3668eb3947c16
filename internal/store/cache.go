// Package store persists small conveniences between runs: the last
// player list, the last player count, and user-defined categories.
// Everything here is best-effort; a missing or corrupted file behaves
// exactly like an empty one, and write failures are ignored since the
// cache is never required for correctness.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/Alvington/ImposterGame/internal/game"
)

const (
	keyPlayerNames      = "imposter_player_names_cache"
	keyPlayerCount      = "imposter_player_count_cache"
	keyCustomCategories = "imposter_game_custom_categories"
)

// Cache is a file-backed key-value store holding one JSON object.
type Cache struct {
	path string

	mu   sync.RWMutex
	data map[string]json.RawMessage
}

// Open loads the cache at path. Any read or parse failure yields an
// empty cache rather than an error.
func Open(path string) *Cache {
	c := &Cache{
		path: path,
		data: make(map[string]json.RawMessage),
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		return c
	}
	c.data = data
	return c
}

// DefaultPath places the cache under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".imposter-cache.json"
	}
	return filepath.Join(dir, "imposter", "cache.json")
}

func (c *Cache) get(key string, out any) bool {
	c.mu.RLock()
	raw, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (c *Cache) set(key string, val any) {
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.data[key] = raw
	c.mu.Unlock()
	c.flush()
}

func (c *Cache) flush() {
	c.mu.RLock()
	raw, err := json.MarshalIndent(c.data, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(c.path, raw, 0o644)
}

// PlayerNames returns the cached name list, or nil when absent.
func (c *Cache) PlayerNames() []string {
	var names []string
	if !c.get(keyPlayerNames, &names) {
		return nil
	}
	return names
}

func (c *Cache) SetPlayerNames(names []string) {
	c.set(keyPlayerNames, names)
}

// PlayerCount returns the cached player count clamped to the playable
// range, with fallback when absent.
func (c *Cache) PlayerCount(fallback int) int {
	var count int
	if !c.get(keyPlayerCount, &count) {
		return fallback
	}
	if count < game.MinPlayers {
		return game.MinPlayers
	}
	if count > game.MaxPlayers {
		return game.MaxPlayers
	}
	return count
}

func (c *Cache) SetPlayerCount(count int) {
	c.set(keyPlayerCount, count)
}

// CustomCategories returns all saved user-defined categories.
func (c *Cache) CustomCategories() []game.CustomCategory {
	var cats []game.CustomCategory
	if !c.get(keyCustomCategories, &cats) {
		return nil
	}
	return cats
}

// SaveCustomCategory upserts by id, generating one for new entries,
// and returns the stored category.
func (c *Cache) SaveCustomCategory(cat game.CustomCategory) game.CustomCategory {
	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	cats := c.CustomCategories()
	replaced := false
	for i := range cats {
		if cats[i].ID == cat.ID {
			cats[i] = cat
			replaced = true
			break
		}
	}
	if !replaced {
		cats = append(cats, cat)
	}
	c.set(keyCustomCategories, cats)
	return cat
}

// DeleteCustomCategory removes a saved category by id.
func (c *Cache) DeleteCustomCategory(id string) {
	cats := c.CustomCategories()
	kept := cats[:0]
	for _, cat := range cats {
		if cat.ID != id {
			kept = append(kept, cat)
		}
	}
	c.set(keyCustomCategories, kept)
}
