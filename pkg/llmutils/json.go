// Package llmutils contains helpers to clean up and render
// text exchanged with language models.
package llmutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// CleanJSON returns the JSON document found in the model output,
// dropping any text around it, including markdown fences.
// Models often reply like `Here you go: {json}`.
func CleanJSON(bs []byte) []byte {
	start := firstIndex(bs, '{', '[')
	if start == -1 {
		return bs
	}
	bs = bs[start:]

	end := max(bytes.LastIndexByte(bs, '}'), bytes.LastIndexByte(bs, ']'))
	if end == -1 {
		return bs
	}
	return bs[:end+1]
}

func firstIndex(bs []byte, a, b byte) int {
	ia := bytes.IndexByte(bs, a)
	ib := bytes.IndexByte(bs, b)
	switch {
	case ia == -1:
		return ib
	case ib == -1:
		return ia
	default:
		return min(ia, ib)
	}
}

// ToJSON returns JSON encoded value
func ToJSON(val any) string {
	js, _ := json.Marshal(val)
	return string(js)
}

// ToJSONIndent returns indented JSON encoded value
func ToJSONIndent(val any) string {
	js, _ := json.MarshalIndent(val, "", "\t")
	return string(js)
}

// ToYAML returns YAML encoded value
func ToYAML(val any) string {
	js, _ := yaml.Marshal(val)
	return string(js)
}

// BackticksJSON wraps js in ```json fence
func BackticksJSON(js string) string {
	return "\n```json\n" + strings.TrimSpace(js) + "\n```\n"
}

// Stringify returns a text form of the tool output
func Stringify(s any) string {
	switch v := s.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return ToJSON(s)
}
