package validation

import (
	"net/url"
	"slices"
	"strings"

	apperrors "github.com/anime-shed/recycling-guide-go/internal/errors"
)

// EndpointPolicy restricts which remote classifier endpoints may be used
type EndpointPolicy struct {
	Schemes []string
	// Hosts limits endpoints to the listed hostnames; empty allows any host
	Hosts []string
}

// DefaultEndpointPolicy accepts any http or https host
func DefaultEndpointPolicy() EndpointPolicy {
	return EndpointPolicy{Schemes: []string{"http", "https"}}
}

// Validate checks that endpoint is an absolute URL the policy allows.
// Embedded credentials are rejected since they would end up in logs.
func (p EndpointPolicy) Validate(endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return apperrors.NewValidationError("endpoint URL cannot be empty", nil)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return apperrors.NewValidationError("invalid endpoint URL", err)
	}
	if !slices.ContainsFunc(p.Schemes, func(s string) bool { return strings.EqualFold(s, u.Scheme) }) {
		return apperrors.NewValidationError("endpoint scheme not allowed: "+u.Scheme, nil)
	}
	if u.Hostname() == "" {
		return apperrors.NewValidationError("endpoint URL must have a host", nil)
	}
	if u.User != nil {
		return apperrors.NewValidationError("endpoint URL must not carry credentials", nil)
	}
	if len(p.Hosts) > 0 && !slices.Contains(p.Hosts, strings.ToLower(u.Hostname())) {
		return apperrors.NewValidationError("endpoint host not allowed: "+u.Hostname(), nil)
	}
	return nil
}
