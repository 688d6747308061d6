package summarize

import (
	"errors"
	"sort"
	"strings"

	"github.com/civiclens/councilscribe/internal/domain/records"
)

// PromptTemplates holds the two prompts a style uses for one entity kind:
// the chunk pass over a budget-fitting fragment, and the final fold pass.
// Templates may reference {{text}}, {{title}} and {{department}}.
type PromptTemplates struct {
	Chunk string
	Final string
}

// Style names a fixed bundle of prompt templates, backend selection and
// backend parameters. Styles are immutable; experiments add a new style
// rather than mutating an existing one. Summaries are always keyed by
// (entity, style).
type Style struct {
	Name            string
	Model           string
	Temperature     float32
	Budget          int
	MaxOutputTokens int
	MaxFoldDepth    int
	Templates       map[records.EntityKind]PromptTemplates
}

// Validate ensures the style is usable.
func (s Style) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("style name cannot be empty")
	}
	if strings.TrimSpace(s.Model) == "" {
		return errors.New("style model cannot be empty")
	}
	if s.Budget < 1 {
		return errors.New("style budget must be at least 1")
	}
	if s.MaxFoldDepth < 1 {
		return errors.New("style maxFoldDepth must be at least 1")
	}
	for _, kind := range []records.EntityKind{records.EntityDocument, records.EntityLegislation, records.EntityMeeting} {
		tpl, ok := s.Templates[kind]
		if !ok {
			return errors.New("style is missing templates for " + string(kind))
		}
		if strings.TrimSpace(tpl.Chunk) == "" || strings.TrimSpace(tpl.Final) == "" {
			return errors.New("style has empty templates for " + string(kind))
		}
	}
	return nil
}

// TemplateContext carries per-entity substitutions for prompt rendering.
type TemplateContext map[string]string

// RenderTemplate substitutes {{text}} plus any context values into a template.
func RenderTemplate(template, text string, tmplCtx TemplateContext) string {
	pairs := []string{"{{text}}", text}
	for key, value := range tmplCtx {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

const responseFormat = `Respond using the format:
HEADLINE:
<a single compact sentence capturing the most salient detail>

BODY:
<the summary>`

const conciseChunkTemplate = `The following is one portion of a longer municipal record. Write a concise summary of this portion. Include the most important details.

` + responseFormat + `

"{{text}}"`

const conciseDocumentTemplate = `The following is the text of a document published by a city council body, titled "{{title}}". Write a concise summary of the document. Include the most important details.

` + responseFormat + `

"{{text}}"`

const conciseLegislationTemplate = `The following is a set of descriptions of documents related to a single legislative action taken by a city council body. Write a concise summary of the legislative action, which is titled "{{title}}". Include the most important details.

` + responseFormat + `

"{{text}}"`

const conciseMeetingTemplate = `The following is a set of descriptions of items on the agenda for an upcoming {{department}} meeting. Write a concise summary of the agenda. Include the most important details.

` + responseFormat + `

"{{text}}"`

// DefaultStyleName is the style used when a caller does not request one.
const DefaultStyleName = "concise"

// BuiltinStyles returns the styles shipped with the service.
func BuiltinStyles() []Style {
	return []Style{
		{
			Name:            DefaultStyleName,
			Model:           "gpt-4o-mini",
			Temperature:     0.2,
			Budget:          3500,
			MaxOutputTokens: 450,
			MaxFoldDepth:    8,
			Templates: map[records.EntityKind]PromptTemplates{
				records.EntityDocument: {
					Chunk: conciseChunkTemplate,
					Final: conciseDocumentTemplate,
				},
				records.EntityLegislation: {
					Chunk: conciseChunkTemplate,
					Final: conciseLegislationTemplate,
				},
				records.EntityMeeting: {
					Chunk: conciseChunkTemplate,
					Final: conciseMeetingTemplate,
				},
			},
		},
	}
}

// Registry resolves styles by name.
type Registry struct {
	styles map[string]Style
}

// NewRegistry indexes the provided styles.
func NewRegistry(styles []Style) (*Registry, error) {
	indexed := make(map[string]Style, len(styles))
	for _, style := range styles {
		if err := style.Validate(); err != nil {
			return nil, err
		}
		if _, exists := indexed[style.Name]; exists {
			return nil, errors.New("duplicate style name: " + style.Name)
		}
		indexed[style.Name] = style
	}
	if len(indexed) == 0 {
		return nil, errors.New("at least one style is required")
	}
	return &Registry{styles: indexed}, nil
}

// ByName looks up a style.
func (r *Registry) ByName(name string) (Style, bool) {
	style, ok := r.styles[name]
	return style, ok
}

// Names lists registered style names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.styles))
	for name := range r.styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
