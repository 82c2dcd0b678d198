// Package google talks to the Google Calendar and Tasks APIs and owns the
// OAuth pieces around them: the consent URL, the localhost callback
// listener, and the conversion between remote payloads and local records.
package google

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/tasks/v1"
)

const (
	// CallbackAddr is where the one-shot OAuth listener binds.
	CallbackAddr = "127.0.0.1:8085"

	// RedirectURL must match the redirect URI registered for the OAuth
	// client in the Google console.
	RedirectURL = "http://localhost:8085/callback"
)

// OAuthConfig builds the oauth2 configuration covering both the calendar
// and tasks scopes.
func OAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  RedirectURL,
		Scopes:       []string{calendar.CalendarScope, tasks.TasksScope},
		Endpoint:     google.Endpoint,
	}
}

// AuthURL returns the browser URL that starts the consent flow. Offline
// access with a forced consent screen makes Google hand back a refresh
// token even on repeat authorizations.
func AuthURL(cfg *oauth2.Config) string {
	return cfg.AuthCodeURL("",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}
