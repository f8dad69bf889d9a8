package store

import "encoding/base64"

// Key is the stable on-disk identifier for a cached document.
// It is the filename stem of the entry (the file is <key>.pdf).
type Key string

// KeyFor derives the cache key for a document URL.
//
// The key is the URL string encoded with the unpadded URL-safe base64
// alphabet. The encoding is a bijection on the URL string: identical URLs
// always produce identical keys across process restarts, and distinct URLs
// always produce distinct keys. It is intentionally not a hash - there is
// no accidental-collision risk to reason about.
func KeyFor(rawURL string) Key {
	return Key(base64.RawURLEncoding.EncodeToString([]byte(rawURL)))
}

// Filename returns the file name for the entry inside the cache directory.
func (k Key) Filename() string {
	return string(k) + ".pdf"
}

// String returns the key as a plain string (for logging and redis keys).
func (k Key) String() string {
	return string(k)
}
