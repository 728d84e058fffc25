package messaging

// ComposeEnvelope builds the provider payload for one recipient.
// Components are forwarded untouched and omitted entirely when absent;
// the composer never synthesizes them.
func ComposeEnvelope(recipient string, tpl TemplateSpec) *Envelope {
	payload := &TemplatePayload{
		Name:     tpl.Name,
		Language: LanguageCode{Code: tpl.LanguageCode},
	}
	if len(tpl.Components) > 0 {
		payload.Components = tpl.Components
	}

	return &Envelope{
		Product:  productWhatsApp,
		To:       recipient,
		Type:     typeTemplate,
		Template: payload,
	}
}

// ComposeTextEnvelope builds the provider payload for a plain text send.
func ComposeTextEnvelope(recipient, body string) *Envelope {
	return &Envelope{
		Product: productWhatsApp,
		To:      recipient,
		Type:    typeText,
		Text:    &TextPayload{Body: body},
	}
}
