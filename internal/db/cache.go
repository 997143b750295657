package db

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	model "github.com/glkeru/skn/internal/models"
	redis "github.com/redis/go-redis/v9"
)

const balanceTTL = 5 * time.Minute

type CacheService struct {
	client *redis.Client
}

func NewCacheService() (serv *CacheService, err error) {
	// config
	addr := os.Getenv("SKN_CACHE_URL")
	if addr == "" {
		return nil, fmt.Errorf("env SKN_CACHE_URL is not set")
	}
	user := os.Getenv("SKN_CACHE_USER")
	pwd := os.Getenv("SKN_CACHE_PWD")

	// redis
	db := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    pwd,
		Username:    user,
		DB:          0,
		MaxRetries:  5,
		DialTimeout: 10 * time.Second,
	})
	err = db.Ping(context.Background()).Err()
	if err != nil {
		return nil, err
	}

	return &CacheService{db}, nil
}

func NewCacheWithClient(client *redis.Client) *CacheService {
	return &CacheService{client}
}

func balanceKey(member string) string {
	return "balance:" + member
}

func (c *CacheService) GetBalance(ctx context.Context, member string) (amount int64, err error) {
	val, err := c.client.Get(ctx, balanceKey(member)).Result()
	if err == redis.Nil {
		return 0, model.ErrNotFound
	} else if err != nil {
		return 0, err
	}

	amount, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, err
	}
	return amount, nil
}

func (c *CacheService) SetBalance(ctx context.Context, member string, amount int64) (err error) {
	return c.client.Set(ctx, balanceKey(member), amount, balanceTTL).Err()
}

func (c *CacheService) InvalidateBalance(ctx context.Context, member string) error {
	return c.client.Del(ctx, balanceKey(member)).Err()
}

func (c *CacheService) Close() error {
	return c.client.Close()
}
