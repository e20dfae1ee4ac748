package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreview(t *testing.T) {
	long := strings.Repeat("é", 200)

	assert.Equal(t, "court", Preview("court", SourcePreviewLength))
	assert.Equal(t, strings.Repeat("é", 150)+"...", Preview(long, SourcePreviewLength))
	assert.Equal(t, strings.Repeat("a", 150), Preview(strings.Repeat("a", 150), SourcePreviewLength))
}

func TestRetrievalMode_String(t *testing.T) {
	assert.Equal(t, "vector", RetrievalModeVector.String())
	assert.Equal(t, "follow_up", RetrievalModeFollowUp.String())
}
