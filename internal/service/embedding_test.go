package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/fridgechef/backend/internal/models"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func TestGenerateEmbedding(t *testing.T) {
	v := GenerateEmbedding("Chicken Fried Rice with egg").Slice()
	require.Len(t, v, models.EmbeddingDimensions)

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)

	assert.Equal(t, v, GenerateEmbedding("chicken fried rice WITH EGG").Slice())
}

func TestGenerateEmbeddingEmpty(t *testing.T) {
	v := GenerateEmbedding("a ! ?").Slice()
	require.Len(t, v, models.EmbeddingDimensions)
	for _, x := range v {
		assert.Zero(t, x)
	}
}

func TestGenerateEmbeddingSimilarity(t *testing.T) {
	query := GenerateEmbedding("chicken rice").Slice()
	near := GenerateEmbedding("Chicken fried rice").Slice()
	far := GenerateEmbedding("chocolate lava cake").Slice()

	assert.Greater(t, cosine(query, near), cosine(query, far))
}
