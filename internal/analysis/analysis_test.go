package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/forestguardian/forest-guardian/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestObjectDetection(t *testing.T) {
	a := &MockAnalyzer{}
	res, err := a.Analyze(context.Background(), "/img.jpg", ModeObject, "spruce")
	require.NoError(t, err)

	assert.Equal(t, "detection", res.Type)
	assert.Equal(t, "Lýkožrout smrkový", res.Label)
	assert.Equal(t, 0.94, res.Confidence)
	assert.Equal(t, model.SeverityHigh, res.Severity)
	require.NotNil(t, res.Box)
	assert.Equal(t, Box{X: 50, Y: 100, W: 200, H: 200}, *res.Box)
	assert.Equal(t, "spruce", res.TreeType)
}

func TestSegmentation(t *testing.T) {
	a := &MockAnalyzer{}
	res, err := a.Analyze(context.Background(), "/img.jpg", ModeSegmentation, "pine")
	require.NoError(t, err)

	assert.Equal(t, "segmentation", res.Type)
	assert.Equal(t, 0.88, res.Confidence)
	assert.Equal(t, model.SeverityMedium, res.Severity)
	assert.Nil(t, res.Box)
	assert.NotEmpty(t, res.Mask)
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	a := &MockAnalyzer{}
	_, err := a.Analyze(context.Background(), "/img.jpg", "heatmap", "spruce")
	assert.Error(t, err)

	_, err = a.Analyze(context.Background(), "/img.jpg", ModeObject, "birch")
	assert.Error(t, err)
}

func TestAnalyzeWaitsForDelay(t *testing.T) {
	a := &MockAnalyzer{Delay: 20 * time.Millisecond}
	start := time.Now()
	_, err := a.Analyze(context.Background(), "/img.jpg", ModeObject, "oak")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestAnalyzeCancelled(t *testing.T) {
	a := &MockAnalyzer{Delay: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := a.Analyze(ctx, "/img.jpg", ModeObject, "oak")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestToAppend(t *testing.T) {
	res, err := (&MockAnalyzer{}).Analyze(context.Background(), "/img.jpg", ModeObject, "spruce")
	require.NoError(t, err)

	p := res.ToAppend("/images/img_1.jpg")
	assert.Equal(t, res.Label, p.Label)
	assert.Equal(t, res.Confidence, p.Confidence)
	assert.Equal(t, res.Severity, p.Severity)
	assert.Equal(t, "/images/img_1.jpg", p.ImageURI)
	assert.Equal(t, "object_detection", p.Mode)
	assert.Equal(t, "spruce", p.TreeType)
}

func TestTreeTypes(t *testing.T) {
	pine, ok := LookupTreeType("pine")
	require.True(t, ok)
	assert.Equal(t, ModeSegmentation, pine.DefaultMode)

	_, ok = LookupTreeType("birch")
	assert.False(t, ok)

	m, err := ParseMode("segmentation")
	require.NoError(t, err)
	assert.Equal(t, ModeSegmentation, m)
}
