// internal/analysis/collab/cache.go
package collab

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"sitedesk-workers/internal/common/database"
)

// CachedClassifier is a read-through cache over a FlagClassifier. Identical
// messages produce identical flag lists, so responses are safe to reuse for
// the configured TTL. Cache errors degrade to a direct upstream call.
type CachedClassifier struct {
	next   FlagClassifier
	redis  *database.RedisClient
	ttl    time.Duration
	logger Logger
}

func NewCachedClassifier(next FlagClassifier, redis *database.RedisClient, ttl time.Duration, log Logger) *CachedClassifier {
	return &CachedClassifier{
		next:  next,
		redis: redis,
		ttl:   ttl,
		logger: log.With(map[string]interface{}{
			"component": "flag-cache",
		}),
	}
}

func (c *CachedClassifier) FlagIntents(ctx context.Context, text string, allowedFlags []string, contextHints []string) ([]string, error) {
	key := cacheKey("flags", text, strings.Join(allowedFlags, ","))

	if raw, err := c.redis.Get(ctx, key); err == nil {
		var flags []string
		if err := json.Unmarshal([]byte(raw), &flags); err == nil {
			return flags, nil
		}
	}

	flags, err := c.next.FlagIntents(ctx, text, allowedFlags, contextHints)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(flags); err == nil {
		if err := c.redis.Set(ctx, key, string(raw), c.ttl); err != nil {
			c.logger.Warn("cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return flags, nil
}

// CachedExtractor is the same read-through wrapper for subject extraction.
type CachedExtractor struct {
	next   SubjectExtractor
	redis  *database.RedisClient
	ttl    time.Duration
	logger Logger
}

func NewCachedExtractor(next SubjectExtractor, redis *database.RedisClient, ttl time.Duration, log Logger) *CachedExtractor {
	return &CachedExtractor{
		next:  next,
		redis: redis,
		ttl:   ttl,
		logger: log.With(map[string]interface{}{
			"component": "subject-cache",
		}),
	}
}

func (c *CachedExtractor) ExtractSubjects(ctx context.Context, text string, max int) ([]Subject, error) {
	key := cacheKey("subjects", text, "")

	if raw, err := c.redis.Get(ctx, key); err == nil {
		var subjects []Subject
		if err := json.Unmarshal([]byte(raw), &subjects); err == nil {
			if max > 0 && len(subjects) > max {
				subjects = subjects[:max]
			}
			return subjects, nil
		}
	}

	subjects, err := c.next.ExtractSubjects(ctx, text, max)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(subjects); err == nil {
		if err := c.redis.Set(ctx, key, string(raw), c.ttl); err != nil {
			c.logger.Warn("cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return subjects, nil
}

func cacheKey(kind, text, extra string) string {
	sum := sha256.Sum256([]byte(text + "\x00" + extra))
	return "analysis:" + kind + ":" + hex.EncodeToString(sum[:])
}
