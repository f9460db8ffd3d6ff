package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	cacheHitKey     = "cache_hit"
)

type responseMeta struct {
	started time.Time
	values  map[string]interface{}
}

// WithResponseMeta stamps the request start so handlers can attach envelope metadata.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, &responseMeta{started: time.Now(), values: map[string]interface{}{}})
		c.Next()
	}
}

// SetCacheHit flags whether the payload was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	if m := metaFrom(c); m != nil {
		m.values[cacheHitKey] = hit
	}
}

// ExtractMeta snapshots the collected metadata including elapsed processing time.
// It returns nil when WithResponseMeta is not installed.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	m := metaFrom(c)
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m.values)+1)
	for k, v := range m.values {
		out[k] = v
	}
	out["processing_time_ms"] = time.Since(m.started).Milliseconds()
	return out
}

func metaFrom(c *gin.Context) *responseMeta {
	if c == nil {
		return nil
	}
	raw, ok := c.Get(responseMetaKey)
	if !ok {
		return nil
	}
	m, _ := raw.(*responseMeta)
	return m
}
