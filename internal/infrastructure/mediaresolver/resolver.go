// Package mediaresolver turns stored media paths into client-fetchable URLs.
package mediaresolver

import (
	"strings"

	"crewlink-server/services/messaging-api/internal/config"
	"crewlink-server/services/messaging-api/internal/domain/chat"
)

// Resolver prefixes stored paths with the public media base URL. Paths that
// already are absolute URLs pass through unchanged.
type Resolver struct {
	baseURL string
}

// New builds a Resolver from configuration.
func New(cfg *config.Config) *Resolver {
	return &Resolver{baseURL: strings.TrimRight(cfg.MediaBaseURL, "/")}
}

var _ chat.MediaResolver = (*Resolver)(nil)

// ResolveURL returns the public URL for a stored path, or nil when the path
// is empty or no base URL is configured.
func (r *Resolver) ResolveURL(path string) *string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return &path
	}
	if r.baseURL == "" {
		return nil
	}
	url := r.baseURL + "/" + strings.TrimLeft(path, "/")
	return &url
}
