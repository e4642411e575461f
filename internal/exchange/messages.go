// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

// Messages are the fixed user-visible strings. All of them are plain text.
type Messages struct {
	Placeholder        string
	Typing             string
	Connecting         string
	NotUnderstood      string
	ServerError        string
	GreetingFailed     string
	UnexpectedError    string
	ConnectionLost     string
	ConnectionRestored string
}

// DefaultMessages returns the stock Spanish copy.
func DefaultMessages() Messages {
	return Messages{
		Placeholder:        "Hazme una pregunta...",
		Typing:             "Escribiendo...",
		Connecting:         "Conectando con el asistente...",
		NotUnderstood:      "🤖 No entendí eso, ¿puedes intentarlo de otra forma?",
		ServerError:        "⚠️ Lo siento, ocurrió un error en el servidor. Inténtalo de nuevo.",
		GreetingFailed:     "👋 Hola! Pero no pude conectarme al servidor. Por favor, intenta de nuevo más tarde.",
		UnexpectedError:    "⚠️ Lo siento, ocurrió un error inesperado.",
		ConnectionLost:     "⚠️ Sin conexión con el asistente.",
		ConnectionRestored: "✅ Conexión restaurada",
	}
}

// withDefaults fills blank fields from DefaultMessages.
func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&m.Placeholder, d.Placeholder)
	fill(&m.Typing, d.Typing)
	fill(&m.Connecting, d.Connecting)
	fill(&m.NotUnderstood, d.NotUnderstood)
	fill(&m.ServerError, d.ServerError)
	fill(&m.GreetingFailed, d.GreetingFailed)
	fill(&m.UnexpectedError, d.UnexpectedError)
	fill(&m.ConnectionLost, d.ConnectionLost)
	fill(&m.ConnectionRestored, d.ConnectionRestored)
	return m
}
