package summarize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuiltinStylesValidate(t *testing.T) {
	for _, style := range BuiltinStyles() {
		require.NoError(t, style.Validate(), "style %s", style.Name)
	}
}

func TestRegistryResolvesStyles(t *testing.T) {
	registry, err := NewRegistry(BuiltinStyles())
	require.NoError(t, err)

	style, ok := registry.ByName(DefaultStyleName)
	require.True(t, ok)
	require.Equal(t, DefaultStyleName, style.Name)

	_, ok = registry.ByName("nonexistent")
	require.False(t, ok)

	require.Equal(t, []string{DefaultStyleName}, registry.Names())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	styles := append(BuiltinStyles(), BuiltinStyles()...)
	_, err := NewRegistry(styles)
	require.Error(t, err)
}

func TestRegistryRejectsEmpty(t *testing.T) {
	_, err := NewRegistry(nil)
	require.Error(t, err)
}

func TestRegistryRejectsInvalidStyle(t *testing.T) {
	style := BuiltinStyles()[0]
	style.Budget = 0
	_, err := NewRegistry([]Style{style})
	require.Error(t, err)
}

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		text     string
		ctx      TemplateContext
		want     string
	}{
		{
			name:     "text only",
			template: `summarize: "{{text}}"`,
			text:     "body",
			want:     `summarize: "body"`,
		},
		{
			name:     "with title",
			template: `doc "{{title}}": {{text}}`,
			text:     "body",
			ctx:      TemplateContext{"title": "Ordinance 12"},
			want:     `doc "Ordinance 12": body`,
		},
		{
			name:     "unknown placeholder left alone",
			template: "{{department}} agenda: {{text}}",
			text:     "items",
			want:     "{{department}} agenda: items",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, RenderTemplate(tc.template, tc.text, tc.ctx))
		})
	}
}

func TestConciseTemplatesRequireStructuredResponse(t *testing.T) {
	registry, err := NewRegistry(BuiltinStyles())
	require.NoError(t, err)
	style, _ := registry.ByName(DefaultStyleName)

	for kind, tpl := range style.Templates {
		for _, template := range []string{tpl.Chunk, tpl.Final} {
			require.True(t, strings.Contains(template, "HEADLINE:"), "kind %s", kind)
			require.True(t, strings.Contains(template, "BODY:"), "kind %s", kind)
			require.True(t, strings.Contains(template, "{{text}}"), "kind %s", kind)
		}
	}
}
