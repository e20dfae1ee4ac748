package normalised

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(context.Context, string) ([]float32, error) { return []float32{3, 4}, nil }
func (fixedEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0, float32(i + 2)}
	}
	return out, nil
}
func (fixedEmbedder) Dimensions() int { return 2 }
func (fixedEmbedder) ModelName() string { return "fixed" }
func (fixedEmbedder) Ping(context.Context) error { return nil }
func (fixedEmbedder) Close() error { return nil }

func norm(v []float32) float64 {
	var s float64
	for _, f := range v {
		s += float64(f) * float64(f)
	}
	return math.Sqrt(s)
}

func TestWrap_Embed(t *testing.T) {
	svc := Wrap(fixedEmbedder{})
	v, err := svc.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, norm(v), 1e-6)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.Equal(t, "fixed", svc.ModelName())
	assert.Equal(t, 2, svc.Dimensions())
}

func TestWrap_EmbedBatch(t *testing.T) {
	svc := Wrap(fixedEmbedder{})
	vs, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	for _, v := range vs {
		assert.InDelta(t, 1.0, norm(v), 1e-6)
	}
}

func TestWrap_Idempotent(t *testing.T) {
	once := Wrap(fixedEmbedder{})
	assert.Same(t, once, Wrap(once))
	assert.Nil(t, Wrap(nil))
}
