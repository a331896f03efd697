// Package config loads the static server list the poller probes.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Server is one configured Minecraft server entry.
type Server struct {
	// IP is the logical hostname or address players use.
	IP string `toml:"ip"`
	// Port is the explicit server port. Zero means "look up SRV, fall
	// back to the default port".
	Port uint16 `toml:"port"`
	// Icon names the item rendered next to the entry.
	Icon string `toml:"icon"`
	// Name is the display name of the server.
	Name string `toml:"name"`
	// Description is the operator-written blurb, newlines allowed.
	Description string `toml:"description"`
}

type serverList struct {
	Servers []Server `toml:"servers"`
}

// Load reads and decodes a TOML server list from path.
func Load(path string) ([]Server, error) {
	var list serverList
	if _, err := toml.DecodeFile(path, &list); err != nil {
		return nil, fmt.Errorf("load server list %s: %w", path, err)
	}
	return list.Servers, nil
}

// Parse decodes a TOML server list from a string.
func Parse(data string) ([]Server, error) {
	var list serverList
	if _, err := toml.Decode(data, &list); err != nil {
		return nil, fmt.Errorf("parse server list: %w", err)
	}
	return list.Servers, nil
}
