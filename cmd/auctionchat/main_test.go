package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"auction-chat/internal"
)

func TestResolveToken(t *testing.T) {
	// Explicit token wins over the cookie string.
	require.Equal(t, "tok.a.b", resolveToken(internal.Config{
		ChatToken:  "tok.a.b",
		ChatCookie: "token=tok.c.d",
	}))

	// Cookie fallback extracts the token cookie.
	require.Equal(t, "tok.c.d", resolveToken(internal.Config{
		ChatCookie: "theme=dark; token=tok.c.d; lang=en",
	}))

	// Neither source configured.
	require.Empty(t, resolveToken(internal.Config{}))
	require.Empty(t, resolveToken(internal.Config{ChatCookie: "theme=dark"}))
}
