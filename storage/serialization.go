// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"

	"github.com/nomatterpluda/browser-history-search/core"
)

// MarshalContent serializes an ExtractedContent to bytes.
func MarshalContent(content *core.ExtractedContent) []byte {
	buf := make([]byte, core.ExtractedContentMUS.Size(*content))
	core.ExtractedContentMUS.Marshal(*content, buf)
	return buf
}

// UnmarshalContent deserializes an ExtractedContent from bytes.
func UnmarshalContent(data []byte) (*core.ExtractedContent, error) {
	content, _, err := core.ExtractedContentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &content, nil
}

// MarshalEmbedding serializes an EmbeddingRecord to bytes.
func MarshalEmbedding(record *core.EmbeddingRecord) []byte {
	buf := make([]byte, core.EmbeddingRecordMUS.Size(*record))
	core.EmbeddingRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalEmbedding deserializes an EmbeddingRecord from bytes.
func UnmarshalEmbedding(data []byte) (*core.EmbeddingRecord, error) {
	record, _, err := core.EmbeddingRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalScreenshot serializes a Screenshot to bytes.
func MarshalScreenshot(shot *core.Screenshot) []byte {
	buf := make([]byte, core.ScreenshotMUS.Size(*shot))
	core.ScreenshotMUS.Marshal(*shot, buf)
	return buf
}

// UnmarshalScreenshot deserializes a Screenshot from bytes.
func UnmarshalScreenshot(data []byte) (*core.Screenshot, error) {
	shot, _, err := core.ScreenshotMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &shot, nil
}

// MarshalSettings serializes Settings to bytes.
func MarshalSettings(settings *core.Settings) []byte {
	buf := make([]byte, core.SettingsMUS.Size(*settings))
	core.SettingsMUS.Marshal(*settings, buf)
	return buf
}

// UnmarshalSettings deserializes Settings from bytes.
func UnmarshalSettings(data []byte) (*core.Settings, error) {
	settings, _, err := core.SettingsMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &settings, nil
}

// MarshalStats serializes Stats to bytes.
func MarshalStats(stats *core.Stats) []byte {
	buf := make([]byte, core.StatsMUS.Size(*stats))
	core.StatsMUS.Marshal(*stats, buf)
	return buf
}

// UnmarshalStats deserializes Stats from bytes.
func UnmarshalStats(data []byte) (*core.Stats, error) {
	stats, _, err := core.StatsMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &stats, nil
}
