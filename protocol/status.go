package protocol

import (
	"regexp"
	"strings"
)

// Status represents the JSON document a server returns to a status request.
type Status struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int    `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int `json:"max"`
		Online int `json:"online"`
		Sample []struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		} `json:"sample,omitempty"`
	} `json:"players"`
	Description interface{} `json:"description"`
	Favicon     string      `json:"favicon,omitempty"`
}

// MOTD returns the server's description flattened to plain text.
func (s *Status) MOTD() string {
	return FlattenDescription(s.Description)
}

// FlattenDescription reduces a description value to plain text. Servers send
// either a bare string or a chat-component tree; components concatenate in
// pre-order: the node's own text first, then each child of extra recursively.
// Arrays flatten element-wise and anything unrecognized contributes nothing.
func FlattenDescription(v interface{}) string {
	var sb strings.Builder
	flattenInto(&sb, v)
	return sb.String()
}

func flattenInto(sb *strings.Builder, v interface{}) {
	switch node := v.(type) {
	case string:
		sb.WriteString(node)
	case map[string]interface{}:
		if text, ok := node["text"].(string); ok {
			sb.WriteString(text)
		}
		if extra, ok := node["extra"].([]interface{}); ok {
			for _, child := range extra {
				flattenInto(sb, child)
			}
		}
	case []interface{}:
		for _, item := range node {
			flattenInto(sb, item)
		}
	}
}

var colorCodeRe = regexp.MustCompile(`§[0-9a-fk-or]`)

// StripColorCodes removes legacy §-style formatting codes and surrounding
// whitespace, for display surfaces that want an undecorated MOTD.
func StripColorCodes(s string) string {
	return strings.TrimSpace(colorCodeRe.ReplaceAllString(s, ""))
}
