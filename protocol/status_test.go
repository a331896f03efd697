package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenDescription(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		expected string
	}{
		{"bare string", `"A Minecraft Server"`, "A Minecraft Server"},
		{"empty object", `{}`, ""},
		{"text only", `{"text":"Hello"}`, "Hello"},
		{
			"text with extra",
			`{"text":"Hello, ","extra":[{"text":"World"}]}`,
			"Hello, World",
		},
		{
			"nested extra",
			`{"text":"a","extra":[{"text":"b","extra":[{"text":"c"}]},{"text":"d"}]}`,
			"abcd",
		},
		{
			"styling ignored",
			`{"extra":[{"text":"A "},{"text":"Multi-Line","color":"gold"},{"text":"\n"},{"text":"MOTD!","bold":true}],"text":"Welcome!"}`,
			"Welcome!A Multi-Line\nMOTD!",
		},
		{"string inside extra", `{"extra":["plain"],"text":""}`, "plain"},
		{"array of components", `[{"text":"x"},"y",{"text":"z"}]`, "xyz"},
		{"unknown node type", `42`, ""},
		{"unknown nested types", `{"text":"ok","extra":[42,null,true]}`, "ok"},
		{"null", `null`, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var v interface{}
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &v))
			assert.Equal(t, tc.expected, FlattenDescription(v))
		})
	}
}

func TestStatus_Decode(t *testing.T) {
	raw := `{
		"version": {"name": "1.20.1", "protocol": 763},
		"players": {"max": 100, "online": 7, "sample": [{"name": "Player1", "id": "uuid1"}]},
		"description": {"text": "Hello, ", "extra": [{"text": "World"}]}
	}`

	var status Status
	require.NoError(t, json.Unmarshal([]byte(raw), &status))

	assert.Equal(t, "1.20.1", status.Version.Name)
	assert.Equal(t, 763, status.Version.Protocol)
	assert.Equal(t, 7, status.Players.Online)
	assert.Equal(t, 100, status.Players.Max)
	require.Len(t, status.Players.Sample, 1)
	assert.Equal(t, "Player1", status.Players.Sample[0].Name)
	assert.Equal(t, "Hello, World", status.MOTD())
}

func TestStripColorCodes(t *testing.T) {
	assert.Equal(t, "MOTD!", StripColorCodes("§cMOTD!"))
	assert.Equal(t, "A B", StripColorCodes("  §lA §rB  "))
	assert.Equal(t, "plain", StripColorCodes("plain"))
}
