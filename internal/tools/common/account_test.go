package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teemow/bookify/internal/server"
)

func TestGetAccountFromArgs(t *testing.T) {
	proxied := server.ContextWithAccount(context.Background(), "proxy-user@example.com")
	emptyProxy := server.ContextWithAccount(context.Background(), "")

	tests := []struct {
		name string
		ctx  context.Context
		args map[string]any
		want string
	}{
		{name: "fallback", ctx: context.Background(), args: map[string]any{}, want: "default"},
		{name: "nil args", ctx: context.Background(), want: "default"},
		{name: "argument", ctx: context.Background(), args: map[string]any{"account": "work"}, want: "work"},
		{name: "empty argument", ctx: context.Background(), args: map[string]any{"account": ""}, want: "default"},
		{name: "non-string argument", ctx: context.Background(), args: map[string]any{"account": 123}, want: "default"},
		{name: "proxy over fallback", ctx: proxied, args: map[string]any{}, want: "proxy-user@example.com"},
		{name: "proxy over argument", ctx: proxied, args: map[string]any{"account": "work"}, want: "proxy-user@example.com"},
		{name: "empty proxy account", ctx: emptyProxy, args: map[string]any{"account": "work"}, want: "work"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetAccountFromArgs(tt.ctx, tt.args, "default"))
		})
	}
}
