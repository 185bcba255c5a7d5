package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"NewsAnalyzer/internal/config"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

const keyPrefix = "newsanalyzer:article:"

// ValkeyCache stores fetched articles as JSON with a TTL.
type ValkeyCache struct {
	client valkey.Client
	ttl    time.Duration
}

var _ ports.ArticleCache = (*ValkeyCache)(nil)

// NewValkeyCache connects and pings the server; callers skip caching on error.
func NewValkeyCache(ctx context.Context, cfg config.CacheConfig) (*ValkeyCache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:      []string{cfg.Address},
		Password:         cfg.Password,
		SelectDB:         cfg.DB,
		ConnWriteTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ValkeyCache{client: client, ttl: ttl}, nil
}

// Get returns the cached article for url, if any.
func (c *ValkeyCache) Get(ctx context.Context, url string) (domain.RawArticle, bool, error) {
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(Key(url)).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return domain.RawArticle{}, false, nil
	}
	if err != nil {
		return domain.RawArticle{}, false, fmt.Errorf("get cached article: %w", err)
	}

	article, err := decode(raw)
	if err != nil {
		return domain.RawArticle{}, false, err
	}
	return article, true, nil
}

// Put stores article under url for the configured TTL.
func (c *ValkeyCache) Put(ctx context.Context, url string, article domain.RawArticle) error {
	raw, err := encode(article)
	if err != nil {
		return err
	}
	cmd := c.client.B().Set().Key(Key(url)).Value(raw).Ex(c.ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("cache article: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *ValkeyCache) Close() {
	if c != nil && c.client != nil {
		c.client.Close()
	}
}

// Key hashes url so arbitrary query strings make safe, bounded keys.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func encode(article domain.RawArticle) (string, error) {
	raw, err := json.Marshal(article)
	if err != nil {
		return "", fmt.Errorf("marshal article: %w", err)
	}
	return string(raw), nil
}

func decode(raw string) (domain.RawArticle, error) {
	var article domain.RawArticle
	if err := json.Unmarshal([]byte(raw), &article); err != nil {
		return domain.RawArticle{}, fmt.Errorf("decode cached article: %w", err)
	}
	return article, nil
}
