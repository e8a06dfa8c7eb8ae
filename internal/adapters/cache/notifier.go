package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
	"github.com/comitanigiacomo/kanso-analytics/internal/logger"
)

// StreakChannel is the pub/sub channel carrying one user's streak events.
func StreakChannel(userID string) string {
	return "streaks:" + userID
}

// RedisNotifier publishes streak events for real-time clients to pick up.
type RedisNotifier struct {
	rdb *redis.Client
}

func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

func (n *RedisNotifier) NotifyStreak(ctx context.Context, event domain.StreakEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode streak event: %w", err)
	}

	channel := StreakChannel(event.UserID)
	receivers, err := n.rdb.Publish(ctx, channel, payload).Result()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}

	logger.Debug("streak event published",
		"channel", channel,
		"habit_id", event.HabitID,
		"receivers", receivers,
	)
	return nil
}

// LogNotifier is used when Redis is not configured.
type LogNotifier struct{}

func (LogNotifier) NotifyStreak(ctx context.Context, event domain.StreakEvent) error {
	logger.Info("streak updated",
		"user_id", event.UserID,
		"habit_id", event.HabitID,
		"current_streak", event.Streak.CurrentStreak,
		"longest_streak", event.Streak.LongestStreak,
	)
	return nil
}
