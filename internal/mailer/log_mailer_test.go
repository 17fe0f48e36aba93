package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer(zap.New(core))

	require.NoError(t, m.SendOTP(context.Background(), "alice@x.com", "Alice", "123456"))
	require.NoError(t, m.SendWelcome(context.Background(), "alice@x.com", "Alice"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "123456", entries[0].ContextMap()["code"])
	assert.Equal(t, "alice@x.com", entries[1].ContextMap()["to"])
}
