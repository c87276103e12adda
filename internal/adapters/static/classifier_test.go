package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestClassifier_Analyze(t *testing.T) {
	c := NewClassifier("Classification: Legitimate", zaptest.NewLogger(t))

	report, err := c.Analyze(context.Background(), "Subject: hi")
	require.NoError(t, err)
	assert.Equal(t, "Classification: Legitimate", report)
}

func TestClassifier_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClassifier("x", zaptest.NewLogger(t)).Analyze(ctx, "Subject: hi")
	assert.ErrorIs(t, err, context.Canceled)
}
