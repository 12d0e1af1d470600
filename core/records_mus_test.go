package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractedContentMUS_RoundTrip(t *testing.T) {
	extracted := time.UnixMicro(time.Now().Add(-time.Hour).UnixMicro())
	in := ExtractedContent{
		URL:         "https://example.com/go",
		Title:       "Go — ünïcode title",
		Content:     "Body text",
		ExtractedAt: extracted,
		StoredAt:    extracted.Add(time.Second),
		TimeOnPage:  DwellOf(42 * time.Second),
		Processed:   true,
	}

	buf := make([]byte, ExtractedContentMUS.Size(in))
	n := ExtractedContentMUS.Marshal(in, buf)
	require.Equal(t, len(buf), n)

	out, m, err := ExtractedContentMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, n, m)
	assert.Equal(t, in.URL, out.URL)
	assert.Equal(t, in.Title, out.Title)
	assert.Equal(t, in.Content, out.Content)
	assert.True(t, in.ExtractedAt.Equal(out.ExtractedAt))
	assert.True(t, in.StoredAt.Equal(out.StoredAt))
	assert.Equal(t, in.TimeOnPage, out.TimeOnPage)
	assert.True(t, out.Processed)
	assert.True(t, out.EmbeddingGeneratedAt.IsZero(), "zero time must survive encoding")
}

func TestEmbeddingRecordMUS_RoundTrip(t *testing.T) {
	in := EmbeddingRecord{
		URL:           "https://example.com",
		Embedding:     []float32{0.25, -1, 3.5},
		Tokens:        17,
		ContentLength: 68,
	}

	buf := make([]byte, EmbeddingRecordMUS.Size(in))
	EmbeddingRecordMUS.Marshal(in, buf)

	out, _, err := EmbeddingRecordMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, in.Embedding, out.Embedding)
	assert.Equal(t, 17, out.Tokens)
	assert.Equal(t, 68, out.ContentLength)
}

func TestScreenshotMUS_RoundTrip(t *testing.T) {
	in := Screenshot{URL: "https://example.com", Data: []byte{0xff, 0xd8, 0x00, 0x01}}

	buf := make([]byte, ScreenshotMUS.Size(in))
	ScreenshotMUS.Marshal(in, buf)

	out, _, err := ScreenshotMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, in.Data, out.Data)
}

func TestUnmarshal_Truncated(t *testing.T) {
	in := EmbeddingRecord{URL: "https://example.com", Embedding: []float32{1, 2, 3, 4}}
	buf := make([]byte, EmbeddingRecordMUS.Size(in))
	EmbeddingRecordMUS.Marshal(in, buf)

	_, _, err := EmbeddingRecordMUS.Unmarshal(buf[:len(buf)-6])
	assert.Error(t, err)
}

func TestStatsMUS_Skip(t *testing.T) {
	in := Stats{TotalPages: 300, LastUpdate: time.UnixMicro(1_700_000_000_000_000)}
	buf := make([]byte, StatsMUS.Size(in)+1)
	n := StatsMUS.Marshal(in, buf)
	buf[n] = 0x7f

	skipped, err := StatsMUS.Skip(buf)
	require.NoError(t, err)
	assert.Equal(t, n, skipped)

	out, _, err := StatsMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, 300, out.TotalPages)
	assert.True(t, in.LastUpdate.Equal(out.LastUpdate))
}
