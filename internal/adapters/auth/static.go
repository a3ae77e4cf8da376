// Package auth resolves request credentials to principals.
package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/PabloGalante/planora/internal/domain"
)

// StaticTokens authenticates against a fixed token to user map, typically
// loaded from configuration.
type StaticTokens struct {
	tokens map[string]domain.UserID
}

func NewStaticTokens(tokens map[string]string) *StaticTokens {
	m := make(map[string]domain.UserID, len(tokens))
	for tok, user := range tokens {
		tok, user = strings.TrimSpace(tok), strings.TrimSpace(user)
		if tok == "" || user == "" {
			continue
		}
		m[tok] = domain.UserID(user)
	}
	return &StaticTokens{tokens: m}
}

// Authenticate accepts a raw token or an "Authorization: Bearer" value.
func (a *StaticTokens) Authenticate(_ context.Context, credential string) (domain.Principal, error) {
	cred := strings.TrimSpace(credential)
	if len(cred) > 7 && strings.EqualFold(cred[:7], "bearer ") {
		cred = strings.TrimSpace(cred[7:])
	}
	if cred == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}

	for tok, user := range a.tokens {
		if subtle.ConstantTimeCompare([]byte(tok), []byte(cred)) == 1 {
			return domain.Principal{UserID: user}, nil
		}
	}
	return domain.Principal{}, domain.ErrUnauthorized
}
