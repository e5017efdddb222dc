package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Multitienda-api/internal/application/inventory"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
)

var _ inventory.StockCache = (*RedisStockCache)(nil)

// RedisStockCache caché de lectura de niveles de stock. Las escrituras del libro la invalidan tras el commit.
type RedisStockCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStockCache(addr, password string, db int, ttl time.Duration) *RedisStockCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStockCache{client: client, ttl: ttl}
}

func (c *RedisStockCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisStockCache) Close() error {
	return c.client.Close()
}

// StockKey clave de una fila store+producto.
func StockKey(storeID, productID string) string {
	return fmt.Sprintf("stock:%s:%s", storeID, productID)
}

type cachedLevel struct {
	StoreID   string    `json:"store_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	MinStock  int       `json:"min_stock"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *RedisStockCache) Get(ctx context.Context, storeID, productID string) (*entity.StockLevel, error) {
	val, err := c.client.Get(ctx, StockKey(storeID, productID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cl cachedLevel
	if err := json.Unmarshal([]byte(val), &cl); err != nil {
		return nil, err
	}
	return &entity.StockLevel{
		StoreID:   cl.StoreID,
		ProductID: cl.ProductID,
		Quantity:  cl.Quantity,
		MinStock:  cl.MinStock,
		UpdatedAt: cl.UpdatedAt,
	}, nil
}

func (c *RedisStockCache) Set(ctx context.Context, level *entity.StockLevel) error {
	if level == nil {
		return nil
	}
	payload, err := json.Marshal(cachedLevel{
		StoreID:   level.StoreID,
		ProductID: level.ProductID,
		Quantity:  level.Quantity,
		MinStock:  level.MinStock,
		UpdatedAt: level.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, StockKey(level.StoreID, level.ProductID), payload, c.ttl).Err()
}

func (c *RedisStockCache) Delete(ctx context.Context, storeID string, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, StockKey(storeID, id))
	}
	return c.client.Del(ctx, keys...).Err()
}
