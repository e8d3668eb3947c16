package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alvington/ImposterGame/internal/game"
)

func tempCachePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "cache.json")
}

func TestRoundTripThroughFile(t *testing.T) {
	path := tempCachePath(t)

	c := Open(path)
	c.SetPlayerNames([]string{"Alice", "Bob", "Carol"})
	c.SetPlayerCount(3)

	reopened := Open(path)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, reopened.PlayerNames())
	assert.Equal(t, 3, reopened.PlayerCount(5))
}

func TestMissingFileBehavesLikeEmpty(t *testing.T) {
	c := Open(filepath.Join(t.TempDir(), "does", "not", "exist.json"))
	assert.Nil(t, c.PlayerNames())
	assert.Equal(t, 5, c.PlayerCount(5))
	assert.Nil(t, c.CustomCategories())
}

func TestCorruptFileBehavesLikeEmpty(t *testing.T) {
	path := tempCachePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o644))

	c := Open(path)
	assert.Nil(t, c.PlayerNames())

	// writing through a cache opened from a corrupt file heals it
	c.SetPlayerCount(4)
	assert.Equal(t, 4, Open(path).PlayerCount(3))
}

func TestPlayerCountClamping(t *testing.T) {
	path := tempCachePath(t)

	c := Open(path)
	c.SetPlayerCount(1)
	assert.Equal(t, game.MinPlayers, c.PlayerCount(5))

	c.SetPlayerCount(50)
	assert.Equal(t, game.MaxPlayers, c.PlayerCount(5))

	c.SetPlayerCount(7)
	assert.Equal(t, 7, c.PlayerCount(5))
}

func TestSaveCustomCategoryGeneratesID(t *testing.T) {
	c := Open(tempCachePath(t))

	saved := c.SaveCustomCategory(game.CustomCategory{
		Name:  "My Wizards",
		Items: []game.CustomItem{{Word: "Gandalf", Hint: "You shall not pass"}},
	})
	assert.NotEmpty(t, saved.ID)

	cats := c.CustomCategories()
	require.Len(t, cats, 1)
	assert.Equal(t, saved, cats[0])
}

func TestSaveCustomCategoryUpserts(t *testing.T) {
	path := tempCachePath(t)
	c := Open(path)

	first := c.SaveCustomCategory(game.CustomCategory{Name: "Original"})
	second := c.SaveCustomCategory(game.CustomCategory{Name: "Unrelated"})

	first.Name = "Renamed"
	first.Items = []game.CustomItem{{Word: "Kraken", Hint: "Release it"}}
	c.SaveCustomCategory(first)

	cats := Open(path).CustomCategories()
	require.Len(t, cats, 2)
	assert.Equal(t, "Renamed", cats[0].Name)
	assert.Equal(t, first.ID, cats[0].ID)
	assert.Equal(t, second.ID, cats[1].ID)
}

func TestDeleteCustomCategory(t *testing.T) {
	path := tempCachePath(t)
	c := Open(path)

	keep := c.SaveCustomCategory(game.CustomCategory{Name: "Keep"})
	drop := c.SaveCustomCategory(game.CustomCategory{Name: "Drop"})

	c.DeleteCustomCategory(drop.ID)

	cats := Open(path).CustomCategories()
	require.Len(t, cats, 1)
	assert.Equal(t, keep.ID, cats[0].ID)

	// deleting an unknown id is a no-op
	c.DeleteCustomCategory("nope")
	assert.Len(t, c.CustomCategories(), 1)
}
