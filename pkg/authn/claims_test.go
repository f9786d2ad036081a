package authn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClaimsSubjectPriority(t *testing.T) {
	priority := []string{"preferred_username", "upn", "email", "oid", "sub"}

	tests := []struct {
		name   string
		claims Claims
		want   string
		found  bool
	}{
		{
			name:   "highest priority wins",
			claims: Claims{"preferred_username": "alice", "email": "alice@example.com", "sub": "guid"},
			want:   "alice",
			found:  true,
		},
		{
			name:   "empty string is skipped",
			claims: Claims{"preferred_username": "", "upn": "alice@corp"},
			want:   "alice@corp",
			found:  true,
		},
		{
			name:   "non-string value is skipped",
			claims: Claims{"oid": 12345, "sub": "guid"},
			want:   "guid",
			found:  true,
		},
		{
			name:   "nothing usable",
			claims: Claims{"role": "admin"},
			found:  false,
		},
		{
			name:   "nil claims",
			claims: nil,
			found:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.claims.Subject(priority)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
