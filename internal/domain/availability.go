package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"registrar/internal/epp"
	id "registrar/pkg/domain"
)

// Availability is one name's registration availability as reported by the
// registry.
type Availability struct {
	Name      string    `json:"name"`
	Available bool      `json:"available"`
	Reason    string    `json:"reason,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// AvailabilityChecker answers "can this name be registered" with a short-TTL
// Redis cache in front of CheckDomain, since applicants poll availability
// while typing. A nil redis client disables caching.
type AvailabilityChecker struct {
	client epp.Client
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewAvailabilityChecker(client epp.Client, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *AvailabilityChecker {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &AvailabilityChecker{client: client, cache: cache, ttl: ttl, logger: logger}
}

// Check returns availability for one name, serving from cache when fresh.
// Cache failures degrade to a live registry check, never to an error.
func (c *AvailabilityChecker) Check(ctx context.Context, name id.DomainName) (*Availability, error) {
	key := "availability:" + name.String()
	if c.cache != nil {
		raw, err := c.cache.Get(ctx, key).Bytes()
		if err == nil {
			var cached Availability
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			c.logger.WarnContext(ctx, "availability cache read failed", "error", err)
		}
	}

	resp, err := c.client.Send(ctx, epp.CheckDomain{Names: []string{name.String()}}, true)
	if err != nil {
		return nil, err
	}
	data, ok := resp.First().(epp.CheckDomainData)
	if !ok {
		return nil, fmt.Errorf("check domain %s: response missing chkData", name)
	}
	result := &Availability{
		Name:      data.Name,
		Available: data.Avail,
		Reason:    data.Reason,
		CheckedAt: time.Now(),
	}

	if c.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			if err := c.cache.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.logger.WarnContext(ctx, "availability cache write failed", "error", err)
			}
		}
	}
	return result, nil
}
