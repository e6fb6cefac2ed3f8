package yacache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/YaCodeDev/GoYaTgBotAPI/yalogger"
	"github.com/redis/go-redis/v9"
)

// Redis wraps a go-redis client. DragonFly servers are detected on creation
// and only change the name used in error messages.
type Redis struct {
	backendName string
	client      *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	const (
		dragonfly = "DRAGONFLY"
		server    = "server"
	)

	backendName := "REDIS"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	info, err := client.Info(ctx, server).Result()
	if err == nil && strings.Contains(info, strings.ToLower(dragonfly)) {
		backendName = dragonfly
	}

	return &Redis{
		backendName: backendName,
		client:      client,
	}
}

// NewRedisClient connects to Redis and exits through log.Fatalf when the
// server does not answer a ping.
func NewRedisClient(
	host string,
	port uint16,
	password string,
	db int,
	log yalogger.Logger,
) *redis.Client {
	redisAddr := net.JoinHostPort(host, strconv.Itoa(int(port)))

	if log == nil {
		log = yalogger.NewBaseLogger(nil).NewLogger()
	}

	log.Infof("Redis connecting to addr %s", redisAddr)

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}

	log.Infof("Redis connected to addr %s", redisAddr)

	return client
}

func (r *Redis) Raw() *redis.Client {
	return r.client
}

func (r *Redis) wrap(err error, sentinel error, msg string) yaerrors.Error {
	if errors.Is(err, redis.Nil) {
		return yaerrors.FromError(
			http.StatusNotFound,
			errors.Join(err, ErrNotFound),
			fmt.Sprintf("[%s] %s", r.backendName, msg),
		)
	}

	return yaerrors.FromError(
		http.StatusInternalServerError,
		errors.Join(err, sentinel),
		fmt.Sprintf("[%s] %s", r.backendName, msg),
	)
}

func (r *Redis) Set(ctx context.Context, key string, value string, ttl time.Duration) yaerrors.Error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return r.wrap(err, ErrFailedToSetValue, "failed `SET` by "+key)
	}

	return nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, yaerrors.Error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", r.wrap(err, ErrFailedToGetValue, "failed `GET` by "+key)
	}

	return value, nil
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, yaerrors.Error) {
	count, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, r.wrap(err, ErrFailedToGetValue, "failed `EXISTS` by "+key)
	}

	return count > 0, nil
}

func (r *Redis) Del(ctx context.Context, key string) yaerrors.Error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return r.wrap(err, ErrFailedToDelValue, "failed `DEL` by "+key)
	}

	return nil
}

func (r *Redis) HSet(ctx context.Context, mainKey string, childKey string, value string) yaerrors.Error {
	if err := r.client.HSet(ctx, mainKey, childKey, value).Err(); err != nil {
		return r.wrap(err, ErrFailedToHSet, fmt.Sprintf("failed `HSET` by `%s:%s`", mainKey, childKey))
	}

	return nil
}

func (r *Redis) HGet(ctx context.Context, mainKey string, childKey string) (string, yaerrors.Error) {
	value, err := r.client.HGet(ctx, mainKey, childKey).Result()
	if err != nil {
		return "", r.wrap(err, ErrFailedToGetValue, fmt.Sprintf("failed `HGET` by `%s:%s`", mainKey, childKey))
	}

	return value, nil
}

func (r *Redis) HGetAll(ctx context.Context, mainKey string) (map[string]string, yaerrors.Error) {
	result, err := r.client.HGetAll(ctx, mainKey).Result()
	if err != nil {
		return nil, r.wrap(err, ErrFailedToGetValues, "failed `HGETALL` by "+mainKey)
	}

	return result, nil
}

func (r *Redis) HDelSingle(ctx context.Context, mainKey string, childKey string) yaerrors.Error {
	if err := r.client.HDel(ctx, mainKey, childKey).Err(); err != nil {
		return r.wrap(err, ErrFailedToDelValue, fmt.Sprintf("failed `HDEL` by `%s:%s`", mainKey, childKey))
	}

	return nil
}

func (r *Redis) Ping(ctx context.Context) yaerrors.Error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return r.wrap(err, ErrFailedToPing, "failed `PING`")
	}

	return nil
}

func (r *Redis) Close() yaerrors.Error {
	if err := r.client.Close(); err != nil {
		return r.wrap(err, ErrFailedToClose, "failed to close client")
	}

	return nil
}
