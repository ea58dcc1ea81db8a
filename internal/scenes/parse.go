package scenes

import (
	"encoding/json"
	"fmt"
	"strings"
)

type sceneEnvelope struct {
	Scenes *[]Scene `json:"scenes"`
}

// Parse reads scenes from a model response. It accepts an object with a
// "scenes" array, a bare array, or a bare `"scenes": [...]` member, optionally
// wrapped in a Markdown code fence.
func Parse(content string) ([]Scene, error) {
	body := strings.TrimSpace(stripFence(content))
	if body == "" {
		return nil, fmt.Errorf("%w; empty response", ErrMalformedScenes)
	}

	if strings.HasPrefix(body, `"scenes"`) {
		body = "{" + body + "}"
	}

	switch body[0] {
	case '{':
		var env sceneEnvelope
		if err := decodeStrict(body, &env); err != nil {
			return nil, fmt.Errorf("%w; %v", ErrMalformedScenes, err)
		}
		if env.Scenes == nil {
			return nil, fmt.Errorf("%w; object has no \"scenes\" array", ErrMalformedScenes)
		}
		return *env.Scenes, nil

	case '[':
		var list []Scene
		if err := decodeStrict(body, &list); err != nil {
			return nil, fmt.Errorf("%w; %v", ErrMalformedScenes, err)
		}
		return list, nil

	default:
		return nil, fmt.Errorf("%w; response is not JSON", ErrMalformedScenes)
	}
}

// decodeStrict decodes a single JSON value and rejects trailing data.
func decodeStrict(body string, v any) error {
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}

	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		// Drop the info string, e.g. "json"
		if !strings.ContainsAny(t[:nl], "{[") {
			t = t[nl+1:]
		}
	}
	return strings.TrimSuffix(strings.TrimSpace(t), "```")
}
