package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleList = `
[[servers]]
ip = "play.example.com"
icon = "grass_block"
name = "Example SMP"
description = "A survival server.\nCome build with us."

[[servers]]
ip = "mini.example.com"
port = 25570
icon = "diamond_sword"
name = "Minigames"
description = "PvP arenas"
`

func TestParse(t *testing.T) {
	servers, err := Parse(sampleList)
	require.NoError(t, err)
	require.Len(t, servers, 2)

	// Missing port stays zero: SRV with default-port fallback.
	assert.Equal(t, "play.example.com", servers[0].IP)
	assert.Zero(t, servers[0].Port)
	assert.Equal(t, "grass_block", servers[0].Icon)
	assert.Equal(t, "Example SMP", servers[0].Name)
	assert.Equal(t, "A survival server.\nCome build with us.", servers[0].Description)

	assert.Equal(t, "mini.example.com", servers[1].IP)
	assert.Equal(t, uint16(25570), servers[1].Port)
}

func TestParse_Empty(t *testing.T) {
	servers, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, servers)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse("[[servers]\nip = ")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleList), 0o644))

	servers, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, servers, 2)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
