package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/nomatterpluda/browser-history-search/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalContent(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name    string
		content *core.ExtractedContent
	}{
		{
			name: "minimal content",
			content: &core.ExtractedContent{
				URL:         "https://example.com",
				Content:     "Hello",
				ExtractedAt: now,
			},
		},
		{
			name: "processed content",
			content: &core.ExtractedContent{
				URL:                  "https://example.com/post",
				Title:                "A post",
				Content:              "Body",
				ExtractedAt:          now,
				StoredAt:             now,
				TimeOnPage:           core.DwellOf(90 * time.Second),
				Processed:            true,
				EmbeddingGeneratedAt: now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalContent(tt.content)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalContent(data)
			require.NoError(t, err)
			assert.Equal(t, tt.content.URL, decoded.URL)
			assert.Equal(t, tt.content.Title, decoded.Title)
			assert.Equal(t, tt.content.Processed, decoded.Processed)
			assert.Equal(t, tt.content.TimeOnPage, decoded.TimeOnPage)
			assert.True(t, tt.content.StoredAt.Equal(decoded.StoredAt))
		})
	}
}

func TestMarshalUnmarshalSettings(t *testing.T) {
	in := core.DefaultSettings()
	in.APIKey = "sk-test"

	decoded, err := UnmarshalSettings(MarshalSettings(in))
	require.NoError(t, err)
	assert.Equal(t, in.DataRetentionDays, decoded.DataRetentionDays)
	assert.Equal(t, in.MaxResults, decoded.MaxResults)
	assert.Equal(t, in.EnablePreview, decoded.EnablePreview)
	assert.Equal(t, "sk-test", decoded.APIKey)
}

func TestMarshalUnmarshalStats(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	decoded, err := UnmarshalStats(MarshalStats(&core.Stats{TotalPages: 12, LastUpdate: now}))
	require.NoError(t, err)
	assert.Equal(t, 12, decoded.TotalPages)
	assert.True(t, now.Equal(decoded.LastUpdate))
}

func TestUnmarshal_Invalid(t *testing.T) {
	_, err := UnmarshalContent([]byte{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSerializationFailed))

	_, err = UnmarshalEmbedding([]byte{0x02})
	assert.Error(t, err)
}
