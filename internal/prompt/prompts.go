package prompt

import (
	"embed"
	"text/template"
)

//go:embed prompts/*.md
var promptFS embed.FS

// stageTemplates holds every stage's system and user templates.
// Parsed once at package init; reused on every Build call.
var stageTemplates = template.Must(template.New("stages").ParseFS(promptFS, "prompts/*.md"))
