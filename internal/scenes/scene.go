// Package scenes turns narrative text into structured scene descriptions.
package scenes

import "errors"

// ErrMalformedScenes is returned when a model response cannot be read as scenes.
var ErrMalformedScenes = errors.New("malformed scene data")

// Scene is one narrative unit suitable for a single illustrated, narrated clip.
type Scene struct {
	SceneID          int      `json:"scene_id"`
	Summary          string   `json:"summary"`
	Characters       []string `json:"characters"`
	Location         string   `json:"location"`
	Events           []string `json:"events"`
	Atmosphere       string   `json:"atmosphere"`
	TransitionReason string   `json:"transition_reason"`
	OriginalText     string   `json:"original_text"`
}

// Renumber assigns sequential 1-based IDs in slice order.
func Renumber(scenes []Scene) {
	for i := range scenes {
		scenes[i].SceneID = i + 1
	}
}
