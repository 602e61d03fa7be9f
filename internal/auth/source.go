package auth

import (
	"context"
	"os"
	"strings"

	"autoposter/internal/config"
)

// EnvToken is the environment variable consulted when no token is configured.
const EnvToken = "AUTOPOSTER_TOKEN"

// TokenSource yields the bearer token for the next request. An empty token
// means requests go out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Static is a fixed token.
type Static string

// Token returns the fixed token.
func (s Static) Token(context.Context) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// ChainSource returns the first non-empty token from its sources.
type ChainSource struct {
	sources []TokenSource
}

// NewChainSource builds a ChainSource; nil sources are skipped.
func NewChainSource(sources ...TokenSource) *ChainSource {
	filtered := make([]TokenSource, 0, len(sources))
	for _, src := range sources {
		if src != nil {
			filtered = append(filtered, src)
		}
	}
	return &ChainSource{sources: filtered}
}

// Token walks the chain in order. A source error stops the walk.
func (c *ChainSource) Token(ctx context.Context) (string, error) {
	if c == nil {
		return "", nil
	}
	for _, src := range c.sources {
		token, err := src.Token(ctx)
		if err != nil {
			return "", err
		}
		if token != "" {
			return token, nil
		}
	}
	return "", nil
}

// EnvSource reads the token from an environment variable on every call.
type EnvSource string

// Token returns the variable's trimmed value.
func (e EnvSource) Token(context.Context) (string, error) {
	return strings.TrimSpace(os.Getenv(string(e))), nil
}

// Token reads the access token from the file on every call so rotations by
// an external tool are picked up without a restart.
func (s *FileTokenStore) Token(context.Context) (string, error) {
	state, err := s.Load()
	if err != nil {
		return "", err
	}
	return state.AccessToken, nil
}

// FromConfig builds the token chain: [auth] token, AUTOPOSTER_TOKEN, then
// [auth] token_file.
func FromConfig(cfg *config.Config) TokenSource {
	if cfg == nil {
		return NewChainSource(EnvSource(EnvToken))
	}
	sources := []TokenSource{Static(cfg.Auth.Token), EnvSource(EnvToken)}
	if strings.TrimSpace(cfg.Auth.TokenFile) != "" {
		sources = append(sources, NewFileTokenStore(cfg.Auth.TokenFile))
	}
	return NewChainSource(sources...)
}
