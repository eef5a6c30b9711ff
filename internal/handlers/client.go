package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const clientCookieName = "runpal_client"

// clientID returns the browser's client id, issuing a cookie on first use.
// Pointer keys are scoped to it so two browsers never share a capture.
func clientID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(clientCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     clientCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
	return id
}
