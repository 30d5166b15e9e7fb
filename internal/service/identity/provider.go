// Package identity abstracts OAuth identity providers behind a small
// capability: build the consent URL, then exchange a callback code for
// a verified profile. Providers are registered from configuration, so
// handlers never branch on provider names.
package identity

import (
	"context"
	"errors"
)

var (
	ErrUnknownProvider = errors.New("unknown identity provider")
	// ErrIncompleteProfile is a hard failure for the login attempt:
	// without a subject id and an email the account cannot be matched
	// or created.
	ErrIncompleteProfile = errors.New("provider profile missing subject id or email")
)

// Profile is the provider-verified identity of the person logging in.
type Profile struct {
	Subject string // stable user id at the provider
	Email   string
	Name    string
	Picture string
}

func (p *Profile) Validate() error {
	if p.Subject == "" || p.Email == "" {
		return ErrIncompleteProfile
	}
	return nil
}

type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Profile(ctx context.Context, code string) (*Profile, error)
}

// Registry holds the configured providers keyed by name.
type Registry struct {
	providers map[string]Provider
	names     []string
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if _, ok := r.providers[p.Name()]; ok {
			continue
		}
		r.providers[p.Name()] = p
		r.names = append(r.names, p.Name())
	}
	return r
}

func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

// Names returns provider names in registration order, for rendering
// login buttons.
func (r *Registry) Names() []string {
	return r.names
}
