package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "auth:token:"

// ErrInvalidToken is returned when a presented token is unknown, revoked or expired.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenService issues and resolves opaque bearer tokens backed by Redis.
// Only the SHA-256 digest of a token is ever stored; the plaintext value
// exists once, in the response that issued it.
type TokenService struct {
	redis redis.UniversalClient
	ttl   time.Duration
}

// NewTokenService constructs a token service with the given token lifetime.
func NewTokenService(client redis.UniversalClient, ttl time.Duration) *TokenService {
	return &TokenService{redis: client, ttl: ttl}
}

// Issue creates a new token for the user and records it for later revocation.
func (s *TokenService) Issue(ctx context.Context, userID uint) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	token := hex.EncodeToString(buf)
	digest := hashToken(token)

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, tokenKeyPrefix+digest, strconv.FormatUint(uint64(userID), 10), s.ttl)
	pipe.SAdd(ctx, userTokensKey(userID), digest)
	pipe.Expire(ctx, userTokensKey(userID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	return token, nil
}

// Resolve maps a presented token back to the owning user ID.
func (s *TokenService) Resolve(ctx context.Context, token string) (uint, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}

	val, err := s.redis.Get(ctx, tokenKeyPrefix+hashToken(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrInvalidToken
	}
	if err != nil {
		return 0, fmt.Errorf("lookup token: %w", err)
	}

	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse token owner %q: %w", val, err)
	}
	return uint(userID), nil
}

// Revoke invalidates a single token. Revoking an unknown token is a no-op.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	digest := hashToken(token)

	val, err := s.redis.Get(ctx, tokenKeyPrefix+digest).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup token: %w", err)
	}

	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, tokenKeyPrefix+digest)
	if userID, err := strconv.ParseUint(val, 10, 64); err == nil {
		pipe.SRem(ctx, userTokensKey(uint(userID)), digest)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// RevokeAll invalidates every token issued to the user in a single pipeline.
func (s *TokenService) RevokeAll(ctx context.Context, userID uint) error {
	digests, err := s.redis.SMembers(ctx, userTokensKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list user tokens: %w", err)
	}

	pipe := s.redis.TxPipeline()
	for _, digest := range digests {
		pipe.Del(ctx, tokenKeyPrefix+digest)
	}
	pipe.Del(ctx, userTokensKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

func userTokensKey(userID uint) string {
	return fmt.Sprintf("auth:user:%d:tokens", userID)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
