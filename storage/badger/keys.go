package badger

// Key prefixes for different data types. Page-scoped records are keyed
// by prefix + URL so a prefix scan enumerates one record type.
const (
	contentPrefix    = "content_"
	embeddingPrefix  = "embeddings_"
	screenshotPrefix = "screenshot_"
	settingsKey      = "settings"
	statsKey         = "stats"
)

var recordPrefixes = []string{contentPrefix, embeddingPrefix, screenshotPrefix}

// makeContentKey generates a key for the content stored for url.
func makeContentKey(url string) []byte {
	return []byte(contentPrefix + url)
}

// makeEmbeddingKey generates a key for the embedding stored for url.
func makeEmbeddingKey(url string) []byte {
	return []byte(embeddingPrefix + url)
}

// makeScreenshotKey generates a key for the screenshot stored for url.
func makeScreenshotKey(url string) []byte {
	return []byte(screenshotPrefix + url)
}
