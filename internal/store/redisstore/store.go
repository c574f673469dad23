package redisstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const CaptchaTTL = 10 * time.Minute

var ErrCaptchaNotFound = errors.New("captcha not found or expired")

// Store keeps short lived registration codes in redis.
type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})}
}

func NewWithClient(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func captchaKey(email string) string {
	return "beely:captcha:" + strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) SetCaptcha(ctx context.Context, email, code string) error {
	return s.rdb.Set(ctx, captchaKey(email), code, CaptchaTTL).Err()
}

func (s *Store) GetCaptcha(ctx context.Context, email string) (string, error) {
	code, err := s.rdb.Get(ctx, captchaKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCaptchaNotFound
	}
	return code, err
}

func (s *Store) DeleteCaptcha(ctx context.Context, email string) error {
	return s.rdb.Del(ctx, captchaKey(email)).Err()
}
