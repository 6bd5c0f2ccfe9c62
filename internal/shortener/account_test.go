package shortener_test

import (
	"context"
	"testing"

	"github.com/serroba/shorty/internal/shortener"
	"github.com/stretchr/testify/assert"
)

func TestParseBearer(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer 1234", "1234", true},
		{"bearer 1234", "1234", true},
		{"  Bearer   abc  ", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"1234", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := shortener.ParseBearer(tt.header)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestAccountContext(t *testing.T) {
	assert.Nil(t, shortener.AccountFromContext(context.Background()))

	ctx := shortener.ContextWithAccount(context.Background(), &shortener.Account{ID: "a1"})

	assert.Equal(t, "a1", shortener.AccountFromContext(ctx).ID)
}
