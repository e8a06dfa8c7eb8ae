package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
	"github.com/comitanigiacomo/kanso-analytics/internal/logger"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testConfig() Config {
	_ = godotenv.Load("../../../.env")

	db, _ := strconv.Atoi(getEnv("REDIS_TEST_DB", "1"))
	return Config{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", "secret_redis_pass_local"),
		DB:       db,
	}
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	rdb, err := NewRedisClient(context.Background(), testConfig())
	if err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	require.NoError(t, rdb.FlushDB(context.Background()).Err(), "Failed to flush test DB")
	return rdb
}

func TestConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", Config{Host: "cache", Port: "6380"}.Addr())
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := NewRedisClient(ctx, Config{Host: "127.0.0.1", Port: "1"})
	assert.Error(t, err)
}

func TestRedisClient_Integration(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()

	t.Run("Connection Ping", func(t *testing.T) {
		pong, err := rdb.Ping(ctx).Result()
		assert.NoError(t, err)
		assert.Equal(t, "PONG", pong)
	})

	t.Run("Expire Check", func(t *testing.T) {
		key := "test_expire"
		require.NoError(t, rdb.Set(ctx, key, "expire_me", 1*time.Second).Err())

		time.Sleep(1100 * time.Millisecond)

		_, err := rdb.Get(ctx, key).Result()
		assert.ErrorIs(t, err, redis.Nil, "Errors need to be of type 'redis.Nil'")
	})
}

func TestRedisNotifier_Integration(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()

	sub := rdb.Subscribe(ctx, StreakChannel("user-1"))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err, "subscription not confirmed")

	event := domain.StreakEvent{
		UserID:     "user-1",
		HabitID:    "habit-1",
		HabitName:  "Read",
		Streak:     domain.StreakState{CurrentStreak: 4, LongestStreak: 9},
		ComputedAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, NewRedisNotifier(rdb).NotifyStreak(ctx, event))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "streaks:user-1", msg.Channel)

		var got domain.StreakEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "habit-1", got.HabitID)
		assert.Equal(t, 4, got.Streak.CurrentStreak)
		assert.Equal(t, 9, got.Streak.LongestStreak)
		assert.True(t, event.ComputedAt.Equal(got.ComputedAt))
	case <-time.After(2 * time.Second):
		t.Fatal("no streak event received")
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.Logger
	logger.Logger = logger.New(&buf, "info", "json")
	defer func() { logger.Logger = prev }()

	err := LogNotifier{}.NotifyStreak(context.Background(), domain.StreakEvent{
		UserID:  "user-1",
		HabitID: "habit-1",
		Streak:  domain.StreakState{CurrentStreak: 3, LongestStreak: 5},
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "streak updated", line["msg"])
	assert.Equal(t, "habit-1", line["habit_id"])
	assert.EqualValues(t, 3, line["current_streak"])
}
