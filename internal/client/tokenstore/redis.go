package tokenstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldAccess  = "access_token"
	fieldRefresh = "refresh_token"
)

// Redis はプロファイルごとに1つのハッシュへ保存する
type Redis struct {
	client  *redis.Client
	profile string
	ttl     time.Duration // 0なら期限なし
}

func NewRedis(client *redis.Client, profile string, ttl time.Duration) *Redis {
	return &Redis{client: client, profile: profile, ttl: ttl}
}

func (r *Redis) Load(ctx context.Context) (Tokens, error) {
	vals, err := r.client.HGetAll(ctx, r.key()).Result()
	if err != nil {
		return Tokens{}, fmt.Errorf("redis hgetall failed: %w", err)
	}

	return Tokens{
		AccessToken:  vals[fieldAccess],
		RefreshToken: vals[fieldRefresh],
	}, nil
}

func (r *Redis) Save(ctx context.Context, tokens Tokens) error {
	key := r.key()

	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, fieldAccess, tokens.AccessToken, fieldRefresh, tokens.RefreshToken)
		if r.ttl > 0 {
			p.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save tokens failed: %w", err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key()).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *Redis) key() string {
	return fmt.Sprintf("storefront:tokens:%s", r.profile)
}
