package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromRef(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"plain id", "abc123", "abc123"},
		{"path style ref", "users/abc123", "abc123"},
		{"deep path", "v1/users/abc123", "abc123"},
		{"empty", "", ""},
		{"trailing slash", "users/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IDFromRef(tt.ref))
		})
	}
}
