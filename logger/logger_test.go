package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultLoggerIsUsable(t *testing.T) {
	assert.NotNil(t, L())
	assert.NotPanics(t, func() { L().Infow("hello", "key", "value") })
}

func TestNewInstallsLogger(t *testing.T) {
	original := L()
	defer Set(original)

	l, err := New(Config{Development: true, Level: "debug"})
	require.NoError(t, err)
	assert.Same(t, l, L())
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestSetRoutesEntries(t *testing.T) {
	original := L()
	defer Set(original)

	core, logs := observer.New(zap.InfoLevel)
	Set(zap.New(core).Sugar())

	L().Infow("product created", "productId", 7)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "product created", entry.Message)
	assert.Equal(t, int64(7), entry.ContextMap()["productId"])
}
