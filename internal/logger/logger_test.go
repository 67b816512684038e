package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dev := Init(true, "")
	assert.Same(t, dev, slog.Default())
	assert.True(t, dev.Enabled(context.Background(), slog.LevelDebug))

	prod := Init(false, "")
	assert.False(t, prod.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, prod.Enabled(context.Background(), slog.LevelInfo))
}
