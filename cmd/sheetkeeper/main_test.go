package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"init", "systems", "character", "money", "item", "effect", "npc", "roll", "import", "export", "play"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestNegativeAmountsAreNotFlags(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{{"money"}, {"character", "modify"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err)
		require.NoError(t, cmd.ParseFlags([]string{"tormenta20", "camp1", "Aria", "-5"}))
		assert.Equal(t, []string{"tormenta20", "camp1", "Aria", "-5"}, cmd.Flags().Args())
	}
}
