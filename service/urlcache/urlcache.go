/*
 * @module service/urlcache
 * @description Caché TTL opcional para URLs firmadas de lectura de PDF,
 *              respaldada en Redis; sin Redis configurado se usa un noop
 * @architecture Capa de utilidades - caché distribuida
 * @stateFlow consulta de URL -> hit de caché | firma nueva + set con TTL
 * @rules El TTL de caché debe ser menor que la expiración de la firma para no
 *        servir jamás una URL vencida
 * @dependencies github.com/go-redis/redis/v8
 * @refs service/report
 */

package urlcache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache es el contrato mínimo de caché de URLs firmadas.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// Noop es la caché nula: nunca acierta, nunca guarda.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool)         { return "", false }
func (Noop) Set(context.Context, string, string, time.Duration) {}

// RedisCache implementa Cache sobre un cliente de Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache crea la caché y verifica la conexión con un ping.
func NewRedisCache(host, port, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("conexión a redis fallida: %w", err)
	}

	slog.Info("caché de URLs firmadas inicializada", "redis_host", host, "redis_port", port)
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("fallo leyendo caché de URLs", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		// La caché es mejora, no requisito: se registra y se sigue
		slog.Warn("fallo guardando en caché de URLs", "key", key, "error", err)
	}
}

// Close libera la conexión subyacente.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
