package cache

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
)

const (
	// HeaderCache reports whether a response came from the response cache
	HeaderCache = "X-Cache"

	cacheHit  = "HIT"
	cacheMiss = "MISS"
)

// hopHeaders are never replayed from a cached entry.
var hopHeaders = []string{"Date", "Connection", "X-Request-Id", HeaderCache}

// Middleware wraps a handler so its responses are served from the response
// cache. keyFunc derives the cache key; nil uses RequestKeyFromRequest.
//
// The wrapped handler renders into a buffer; only 200 responses are stored.
// Mount it on the routes that should be cached and nowhere else.
func (c *ResponseCache) Middleware(keyFunc KeyFunc) func(http.Handler) http.Handler {
	if keyFunc == nil {
		keyFunc = RequestKeyFromRequest
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)

			entry, hit, err := c.GetOrRenderEntry(r.Context(), key, func(ctx context.Context) (*CacheEntry, error) {
				rec := newResponseRecorder()
				next.ServeHTTP(rec, r.WithContext(ctx))
				return rec.Entry(), nil
			})
			if err != nil {
				// The recorder never fails, but keep the contract honest.
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			writeEntry(w, entry, hit)
		})
	}
}

// writeEntry replays a cache entry onto the response writer.
func writeEntry(w http.ResponseWriter, entry *CacheEntry, hit bool) {
	header := w.Header()
	for key, values := range entry.Headers {
		header[key] = append([]string(nil), values...)
	}

	if hit {
		header.Set(HeaderCache, cacheHit)
	} else {
		header.Set(HeaderCache, cacheMiss)
	}
	header.Set("Content-Length", strconv.Itoa(len(entry.Data)))

	w.WriteHeader(entry.StatusCode)
	_, _ = w.Write(entry.Data)
}

// responseRecorder captures a handler's output without writing it anywhere.
type responseRecorder struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{
		header: make(http.Header),
		status: http.StatusOK,
	}
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

func (r *responseRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.status = code
	r.wroteHeader = true
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	r.wroteHeader = true
	return r.body.Write(p)
}

// Entry converts the recorded response to a CacheEntry.
func (r *responseRecorder) Entry() *CacheEntry {
	headers := r.header.Clone()
	for _, key := range hopHeaders {
		headers.Del(key)
	}
	headers.Del("Content-Length")

	return &CacheEntry{
		Data:       bytes.Clone(r.body.Bytes()),
		StatusCode: r.status,
		Headers:    headers,
	}
}
