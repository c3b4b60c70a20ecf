package transcript

import (
	"context"
	"fmt"

	"threadscribe.app/bot/internal/model"
)

// UserResolver resolves a Slack user id to an Identity.
type UserResolver interface {
	Resolve(ctx context.Context, userID string) (model.Identity, error)
}

// FallbackIdentity is the substitute used when a user lookup fails. The
// failure is recovered per-identity: the transcript keeps going with a
// placeholder label instead of aborting the request.
func FallbackIdentity(userID string) model.Identity {
	return model.Identity{ID: userID, DisplayName: fmt.Sprintf("User %s", userID)}
}

type cacheEntry struct {
	identity model.Identity
	err      error
}

// CachingResolver memoizes lookups for the duration of one request, both
// successes and failures: at most one upstream lookup per unique user id.
// Not safe for concurrent use; each request gets its own instance.
type CachingResolver struct {
	upstream UserResolver
	cache    map[string]cacheEntry
}

func NewCachingResolver(upstream UserResolver) *CachingResolver {
	return &CachingResolver{
		upstream: upstream,
		cache:    make(map[string]cacheEntry),
	}
}

func (r *CachingResolver) Resolve(ctx context.Context, userID string) (model.Identity, error) {
	if entry, ok := r.cache[userID]; ok {
		return entry.identity, entry.err
	}

	identity, err := r.upstream.Resolve(ctx, userID)
	r.cache[userID] = cacheEntry{identity: identity, err: err}
	return identity, err
}
