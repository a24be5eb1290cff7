package cache

import (
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// ETag: сильный ETag по xxh3 от тела ответа.
func ETag(body []byte) string {
	return `"` + strconv.FormatUint(xxh3.Hash(body), 16) + `"`
}

// MatchesIfNoneMatch: совпадает ли etag с одним из значений If-None-Match.
// Слабые значения (W/) сравниваются по телу, "*" совпадает всегда.
func MatchesIfNoneMatch(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimPrefix(strings.TrimSpace(part), "W/")
		if tag == etag {
			return true
		}
	}
	return false
}
