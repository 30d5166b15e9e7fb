// Package flash implements one-shot messages carried in a cookie
// across a redirect: set on the POST, popped on the next GET.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const cookieName = "flash"

// Categories steer styling in the templates.
const (
	Success = "exito"
	Error   = "error"
	Info    = "info"
)

// Message is one flash entry.
type Message struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Set appends a message to the flash cookie.
func Set(w http.ResponseWriter, r *http.Request, category, text string) {
	messages := peek(r)
	messages = append(messages, Message{Category: category, Text: text})

	payload, err := json.Marshal(messages)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns all pending messages and clears the cookie.
func Pop(w http.ResponseWriter, r *http.Request) []Message {
	messages := peek(r)
	if len(messages) == 0 {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return messages
}

func peek(r *http.Request) []Message {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var messages []Message
	err = json.Unmarshal(payload, &messages)
	if err != nil {
		return nil
	}
	return messages
}
