package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSystems_DefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadSystems(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, []string{"alice in borderland", "ordem paranormal", "pokemon ttrpg", "tormenta20"}, cfg.Names())

	entry, err := cfg.Get("Tormenta20")
	require.NoError(t, err)
	assert.Contains(t, entry.Attributes, "Mana")
}

func TestSystemsConfig_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &SystemsConfig{}
	cfg.Add("Mork Borg", SystemEntry{Attributes: []string{"HP", "Omens"}, Description: "Doom metal"})
	require.NoError(t, cfg.Save(tmpDir))

	loaded, err := LoadSystems(tmpDir)
	require.NoError(t, err)

	assert.True(t, loaded.Exists("MORK BORG"))
	entry, err := loaded.Get("mork borg")
	require.NoError(t, err)
	assert.Equal(t, []string{"HP", "Omens"}, entry.Attributes)
	assert.Equal(t, "Doom metal", entry.Description)
}

func TestLoadSystems_FoldsHandEditedKeys(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, ".sheetkeeper")
	require.NoError(t, os.MkdirAll(configDir, 0755))

	content := `systems:
  Vampiro:
    attributes: [Força, Vitalidade]
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "systems.yaml"), []byte(content), 0600))

	cfg, err := LoadSystems(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"vampiro"}, cfg.Names())
}

func TestSystemsConfig_Get(t *testing.T) {
	t.Run("empty config", func(t *testing.T) {
		cfg := &SystemsConfig{}
		_, err := cfg.Get("tormenta20")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no systems configured")
	})

	t.Run("unknown system lists available", func(t *testing.T) {
		cfg := DefaultSystems()
		_, err := cfg.Get("gurps")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `system "gurps" not found`)
		assert.Contains(t, err.Error(), "tormenta20")
	})
}

func TestSystemsConfig_Remove(t *testing.T) {
	cfg := DefaultSystems()
	cfg.Remove("Pokemon TTRPG")

	assert.False(t, cfg.Exists("pokemon ttrpg"))
	assert.Len(t, cfg.Names(), 3)

	var empty SystemsConfig
	empty.Remove("anything")
	assert.False(t, empty.Exists("anything"))
}
