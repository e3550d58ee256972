package auth

import (
	"context"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/openbrewed/barback/pkg/utils"
)

// KeyFetcher retrieves the issuer's published key set.
type KeyFetcher interface {
	FetchKeys(ctx context.Context, jwksUrl string) (jwk.Set, error)
}

// DefaultKeyFetcher fetches the key set over HTTP. A non-zero Timeout
// bounds each fetch independently of the enclosing request deadline.
type DefaultKeyFetcher struct {
	Timeout time.Duration
}

func (f *DefaultKeyFetcher) FetchKeys(ctx context.Context, jwksUrl string) (jwk.Set, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	return jwk.Fetch(ctx, jwksUrl)
}

// KeyResolver maps token key identifiers to the issuer's public signing
// keys. The fetched set is cached for the life of the process and
// refreshed only when a lookup misses, which covers routine key
// rotation. Reads run concurrently; a refresh takes the write lock.
type KeyResolver struct {
	jwksUrl string
	fetcher KeyFetcher

	mu   sync.RWMutex
	keys jwk.Set
}

func NewKeyResolver(jwksUrl string, fetcher KeyFetcher) *KeyResolver {
	if fetcher == nil {
		fetcher = &DefaultKeyFetcher{}
	}
	return &KeyResolver{jwksUrl: jwksUrl, fetcher: fetcher}
}

// Resolve returns the signing key for kid, fetching the key set on
// first use or when kid is absent from the cached set.
func (r *KeyResolver) Resolve(ctx context.Context, kid string) (jwk.Key, *AuthError) {
	r.mu.RLock()
	cached := r.keys
	r.mu.RUnlock()

	if cached != nil {
		if key, ok := cached.LookupKeyID(kid); ok {
			return key, nil
		}
	}

	fetched, err := r.fetcher.FetchKeys(ctx, r.jwksUrl)
	if err != nil {
		utils.GetLogger().Error("[AUTH]: failed to fetch key set", err)
		return nil, invalidHeader("Unable to verify authentication token.")
	}
	if fetched == nil || fetched.Len() == 0 {
		return nil, invalidHeader("Unable to verify authentication token.")
	}

	r.mu.Lock()
	r.keys = fetched
	r.mu.Unlock()

	key, ok := fetched.LookupKeyID(kid)
	if !ok {
		return nil, invalidHeader("Unable to find the appropriate key.")
	}
	return key, nil
}
