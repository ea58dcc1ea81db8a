package scenes

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// DefaultPromptTemplate asks a model to split text into scenes. It receives
// .Text and .ChunkIndex.
const DefaultPromptTemplate = `
You are a professional scriptwriter. Analyze the following novel text and divide it into multiple scenes.
Each scene should include:
- **Scene ID**
- **Scene Summary** (a brief description of what happens)
- **Main Characters**
- **Main Location**
- **Key Events**
- **Scene Transition Reason** (Why is this a new scene?)
- **Original Text** (The original text corresponding to this scene)

**Always return a strict JSON format** with **no extra text or explanations**, only pure JSON.
Return the output in **JSON format array**, following this example:
"scenes":[
{{- range $i, $ex := .Examples }}
    {{ if $i }},{{ end }}{{ toPrettyJson $ex | indent 4 | trim }}
{{- end }}
    ...
]

Here is the novel text:
{{ .Text | trim }}
`

var exampleScenes = []Scene{
	{
		SceneID:          1,
		Summary:          "The protagonist finds a mysterious letter at home.",
		Characters:       []string{"Protagonist"},
		Location:         "Protagonist's house",
		Events:           []string{"Finds the letter", "Reads the content"},
		Atmosphere:       "Mysterious",
		TransitionReason: "A new event begins",
		OriginalText:     "He entered his home, only to find a dusty envelope on the table.",
	},
	{
		SceneID:          2,
		Summary:          "The protagonist visits the mysterious location.",
		Characters:       []string{"Protagonist", "Antagonist"},
		Location:         "Mysterious forest",
		Events:           []string{"Meets the antagonist", "Fights the antagonist"},
		Atmosphere:       "Tense",
		TransitionReason: "The protagonist arrives at the location",
		OriginalText:     "He entered the forest, where he met the antagonist.",
	},
}

// PromptBuilder renders segmentation prompts from a template.
type PromptBuilder struct {
	tmpl *template.Template
}

// NewPromptBuilder parses a prompt template. An empty string selects
// DefaultPromptTemplate.
func NewPromptBuilder(text string) (*PromptBuilder, error) {
	if text == "" {
		text = DefaultPromptTemplate
	}

	tmpl, err := template.New("scenes").Option("missingkey=error").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template; %w", err)
	}
	return &PromptBuilder{tmpl: tmpl}, nil
}

// Build renders the prompt for one chunk.
func (b *PromptBuilder) Build(text string, chunkIndex int) (string, error) {
	var sb strings.Builder
	data := map[string]any{
		"Text":       text,
		"ChunkIndex": chunkIndex,
		"Examples":   exampleScenes,
	}
	if err := b.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render prompt; %w", err)
	}
	return sb.String(), nil
}

// Prompt renders the default segmentation prompt for text.
func Prompt(text string) (string, error) {
	b, err := NewPromptBuilder("")
	if err != nil {
		return "", err
	}
	return b.Build(text, 0)
}
