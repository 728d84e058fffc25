package messaging

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeEnvelopeShape(t *testing.T) {
	tpl := TemplateSpec{Name: "order_update", LanguageCode: "en"}

	env := ComposeEnvelope("15551234567", tpl)

	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"product": "whatsapp",
		"to": "15551234567",
		"type": "template",
		"template": {"name": "order_update", "language": {"code": "en"}}
	}`, string(data))
}

func TestComposeEnvelopeForwardsComponentsVerbatim(t *testing.T) {
	components := []interface{}{
		map[string]interface{}{
			"type": "body",
			"parameters": []interface{}{
				map[string]interface{}{"type": "text", "text": "Ada"},
			},
		},
	}
	tpl := TemplateSpec{Name: "welcome", LanguageCode: "es_MX", Components: components}

	env := ComposeEnvelope("15550001111", tpl)

	require.NotNil(t, env.Template)
	assert.Equal(t, components, env.Template.Components)

	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"product": "whatsapp",
		"to": "15550001111",
		"type": "template",
		"template": {
			"name": "welcome",
			"language": {"code": "es_MX"},
			"components": [
				{"type": "body", "parameters": [{"type": "text", "text": "Ada"}]}
			]
		}
	}`, string(data))
}

func TestComposeEnvelopeOmitsEmptyComponents(t *testing.T) {
	tests := []struct {
		name       string
		components []interface{}
	}{
		{name: "nil components", components: nil},
		{name: "empty components", components: []interface{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := ComposeEnvelope("1", TemplateSpec{Name: "t", LanguageCode: "en", Components: tt.components})

			require.NotNil(t, env.Template)
			assert.Nil(t, env.Template.Components)

			data, err := json.Marshal(env)
			require.NoError(t, err)
			assert.NotContains(t, string(data), "components")
		})
	}
}

func TestComposeTextEnvelope(t *testing.T) {
	env := ComposeTextEnvelope("15551234567", "hello there")

	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"product": "whatsapp",
		"to": "15551234567",
		"type": "text",
		"text": {"body": "hello there"}
	}`, string(data))
}
