package mediaresolver

import (
	"testing"

	"crewlink-server/services/messaging-api/internal/config"
)

func TestResolveURL(t *testing.T) {
	r := New(&config.Config{MediaBaseURL: "https://media.example.com/"})

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "relative path", path: "avatars/u1.png", want: "https://media.example.com/avatars/u1.png"},
		{name: "leading slash", path: "/avatars/u1.png", want: "https://media.example.com/avatars/u1.png"},
		{name: "absolute url passes through", path: "https://cdn.example.com/x.png", want: "https://cdn.example.com/x.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ResolveURL(tt.path)
			if got == nil || *got != tt.want {
				t.Errorf("ResolveURL(%q) = %v, want %q", tt.path, got, tt.want)
			}
		})
	}

	if got := r.ResolveURL("  "); got != nil {
		t.Errorf("ResolveURL(blank) = %v, want nil", got)
	}
}

func TestResolveURLLocalBase(t *testing.T) {
	r := New(&config.Config{MediaBaseURL: "/media"})

	if got := r.ResolveURL("avatars/u1.png"); got == nil || *got != "/media/avatars/u1.png" {
		t.Errorf("ResolveURL() = %v, want /media/avatars/u1.png", got)
	}
}

func TestResolveURLWithoutBase(t *testing.T) {
	r := New(&config.Config{})

	if got := r.ResolveURL("avatars/u1.png"); got != nil {
		t.Errorf("ResolveURL() without base = %v, want nil", got)
	}
	if got := r.ResolveURL("https://cdn.example.com/x.png"); got == nil {
		t.Error("absolute URL should pass through without base")
	}
}
