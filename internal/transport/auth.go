package transport

import (
	"net/http"
	"strings"

	"github.com/agentstation/sedmap/pkg/errors"
)

// Auth schemes accepted by NewAuthenticator.
const (
	AuthNone   = "none"
	AuthBearer = "bearer"
	AuthHeader = "header"
	AuthQuery  = "query"
)

// Authenticator applies credentials to outgoing spectrum archive requests.
type Authenticator interface {
	Apply(req *http.Request)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(req *http.Request)

// Apply calls f.
func (f AuthenticatorFunc) Apply(req *http.Request) { f(req) }

// Bearer sends token in the Authorization header.
func Bearer(token string) Authenticator {
	return Header("Authorization", "Bearer "+token)
}

// Header sends value in the named header.
func Header(name, value string) Authenticator {
	return AuthenticatorFunc(func(req *http.Request) {
		req.Header.Set(name, value)
	})
}

// Query adds value as the named query parameter.
func Query(param, value string) Authenticator {
	return AuthenticatorFunc(func(req *http.Request) {
		if req.URL == nil {
			return
		}
		q := req.URL.Query()
		q.Set(param, value)
		req.URL.RawQuery = q.Encode()
	})
}

// AuthConfig describes archive credentials as read from configuration.
type AuthConfig struct {
	Scheme string // none, bearer, header or query
	Name   string // header or query parameter name
	Token  string
	// Host restricts the credentials to one archive host. Empty sends
	// them with every HTTP(S) spectrum request.
	Host string
}

// NewAuthenticator builds the authenticator cfg describes. It returns nil
// when no credentials are configured.
func NewAuthenticator(cfg AuthConfig) (Authenticator, error) {
	scheme := strings.ToLower(strings.TrimSpace(cfg.Scheme))
	if scheme == "" || scheme == AuthNone {
		return nil, nil
	}
	if cfg.Token == "" {
		return nil, errors.NewValidationError("token", "", "a token is required for "+scheme+" auth")
	}

	var auth Authenticator
	switch scheme {
	case AuthBearer:
		auth = Bearer(cfg.Token)
	case AuthHeader, AuthQuery:
		if cfg.Name == "" {
			return nil, errors.NewValidationError("name", "", scheme+" auth needs a name")
		}
		if scheme == AuthHeader {
			auth = Header(cfg.Name, cfg.Token)
		} else {
			auth = Query(cfg.Name, cfg.Token)
		}
	default:
		return nil, errors.NewValidationError("scheme", cfg.Scheme, "unknown auth scheme")
	}

	if cfg.Host == "" {
		return auth, nil
	}
	return ForHost(cfg.Host, auth), nil
}

// ForHost applies auth only to requests addressed to host.
func ForHost(host string, auth Authenticator) Authenticator {
	return AuthenticatorFunc(func(req *http.Request) {
		if req.URL != nil && strings.EqualFold(req.URL.Hostname(), host) {
			auth.Apply(req)
		}
	})
}
