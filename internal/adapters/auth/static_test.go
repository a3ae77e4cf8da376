package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/planora/internal/adapters/auth"
	"github.com/PabloGalante/planora/internal/domain"
)

func TestStaticTokens(t *testing.T) {
	a := auth.NewStaticTokens(map[string]string{"tok-1": "alice", " ": "nobody", "tok-2": ""})

	tests := []struct {
		name    string
		cred    string
		want    domain.UserID
		wantErr bool
	}{
		{name: "raw token", cred: "tok-1", want: "alice"},
		{name: "bearer", cred: "Bearer tok-1", want: "alice"},
		{name: "bearer lowercase", cred: "bearer  tok-1 ", want: "alice"},
		{name: "unknown", cred: "Bearer nope", wantErr: true},
		{name: "empty", cred: "", wantErr: true},
		{name: "token without user", cred: "tok-2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := a.Authenticate(context.Background(), tt.cred)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.UserID)
		})
	}
}
