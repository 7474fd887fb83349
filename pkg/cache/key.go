package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"
)

// responseKeyPrefix namespaces response cache entries so they never collide
// with data-level keys such as the property id set.
const responseKeyPrefix = "response:"

// RequestKey identifies a cacheable inbound request.
type RequestKey struct {
	// Method is the HTTP method (e.g., "GET")
	Method string

	// Path is the request path (e.g., "/properties")
	Path string

	// QueryParams are the query parameters (e.g., {"ordering": "price"})
	QueryParams url.Values
}

// KeyFunc derives a RequestKey from an inbound request.
type KeyFunc func(r *http.Request) RequestKey

// RequestKeyFromRequest is the default KeyFunc.
func RequestKeyFromRequest(r *http.Request) RequestKey {
	return RequestKey{
		Method:      r.Method,
		Path:        r.URL.Path,
		QueryParams: r.URL.Query(),
	}
}

// Signature generates the deterministic, human-readable request signature.
// Format: METHOD:path?query, with the query escaped and sorted by key.
//
// Example:
//
//	GET:properties?ordering=price
func (k RequestKey) Signature() string {
	sig := strings.ToUpper(k.Method) + ":" + normalizePath(k.Path)
	if query := k.QueryParams.Encode(); query != "" {
		sig += "?" + query
	}
	return sig
}

// String returns the store key: the path prefix followed by a SHA-256 of the signature.
//
// Example:
//
//	response:/properties:3f2a...
func (k RequestKey) String() string {
	sum := sha256.Sum256([]byte(k.Signature()))
	return PathPrefix(k.Path) + hex.EncodeToString(sum[:])
}

// PathPrefix returns the key prefix shared by every cached response for path,
// regardless of method or query.
func PathPrefix(path string) string {
	return responseKeyPrefix + "/" + normalizePath(path) + ":"
}

func normalizePath(path string) string {
	return strings.Trim(path, "/")
}
