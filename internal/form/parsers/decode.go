package parsers

import (
	"strings"

	"github.com/bytedance/sonic"
)

// Tools emit their payload in a handful of incompatible wrappings. Each step
// below tries one wrapping and reports whether it produced a usable JSON
// document; the first success wins. Steps never return an error, only (nil,
// false), so the chain as a whole cannot fail loudly.

const trailingNoteMarker = "\n\n---\nNote:"

// basic safety limits to avoid pathological inputs
const (
	maxOutputLen = 256 * 1024 // 256KB
)

// contentBlock is the MCP-style content wrapper some tools answer with.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type decodeStep func(raw string) ([]byte, bool)

// decodeContentBlocks handles [{type:"text", text:"<json>"}]: the array is
// decoded, then the first text block's payload is decoded again.
func decodeContentBlocks(raw string) ([]byte, bool) {
	inner, ok := unwrapContentBlocks(raw)
	if !ok {
		return nil, false
	}
	if !looksLikeJSON(inner) {
		return nil, false
	}
	return []byte(inner), true
}

// decodeBare handles a raw JSON object or array.
func decodeBare(raw string) ([]byte, bool) {
	trimmed := strings.TrimSpace(raw)
	if !looksLikeJSON(trimmed) {
		return nil, false
	}
	var probe any
	if err := sonic.UnmarshalString(trimmed, &probe); err != nil {
		return nil, false
	}
	return []byte(trimmed), true
}

// decodeTrailingNote handles free text of the shape "<json>\n\n---\nNote: ...":
// the note suffix is stripped before decoding.
func decodeTrailingNote(raw string) ([]byte, bool) {
	idx := strings.Index(raw, trailingNoteMarker)
	if idx < 0 {
		return nil, false
	}
	return decodeBare(raw[:idx])
}

// decodeDoublyWrapped handles content blocks whose inner text is itself a
// wrapped content-block array. Markdown-bearing tool results arrive this way
// and need two sequential unwraps.
func decodeDoublyWrapped(raw string) ([]byte, bool) {
	inner, ok := unwrapContentBlocks(raw)
	if !ok {
		return nil, false
	}
	return decodeContentBlocks(inner)
}

func unwrapContentBlocks(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[") {
		return "", false
	}
	var blocks []contentBlock
	if err := sonic.UnmarshalString(trimmed, &blocks); err != nil {
		return "", false
	}
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			return strings.TrimSpace(b.Text), true
		}
	}
	return "", false
}

func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

var decodeChain = []decodeStep{
	decodeContentBlocks,
	decodeBare,
	decodeTrailingNote,
	decodeDoublyWrapped,
}

// decodePayload runs the raw tool output through the decode chain and returns
// the first usable JSON document. The bool result is the only failure signal.
func decodePayload(raw string) ([]byte, bool) {
	if raw == "" || len(raw) > maxOutputLen {
		return nil, false
	}
	for _, step := range decodeChain {
		if doc, ok := step(raw); ok {
			return doc, true
		}
	}
	return nil, false
}
