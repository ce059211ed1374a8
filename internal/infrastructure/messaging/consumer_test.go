package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsumer(t *testing.T) (*Consumer, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewConsumer(rdb, ConsumerConfig{
		Stream:       StreamRatingEvents,
		Group:        ConsumerGroupFeedbackWorker,
		ConsumerName: "worker-test",
	})

	err := rdb.XGroupCreateMkStream(context.Background(),
		string(StreamRatingEvents), string(ConsumerGroupFeedbackWorker), "0").Err()
	require.NoError(t, err)
	return c, rdb
}

func ratingXMessage(t *testing.T, streamID, recID string, rating int) redis.XMessage {
	t.Helper()
	msg, err := NewMessage(recID, MessageTypeRating, "proj-1", RatingEvent{
		RecommendationID: recID,
		ProjectID:        "proj-1",
		Rating:           rating,
	})
	require.NoError(t, err)
	msg.SetMetadata("rating", fmt.Sprintf("%d", rating))

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	return redis.XMessage{
		ID:     streamID,
		Values: map[string]interface{}{"data": string(data)},
	}
}

func TestDecodeXMessage(t *testing.T) {
	xmsg := ratingXMessage(t, "1-1", "rec-1", 2)
	msg := decodeXMessage(xmsg)
	require.NotNil(t, msg)
	assert.Equal(t, "rec-1", msg.ID)
	assert.Equal(t, MessageTypeRating, msg.Type)

	var event RatingEvent
	require.NoError(t, msg.UnmarshalPayload(&event))
	assert.Equal(t, 2, event.Rating)

	assert.Nil(t, decodeXMessage(redis.XMessage{ID: "1-2", Values: map[string]interface{}{"data": "{broken"}}))
	assert.Nil(t, decodeXMessage(redis.XMessage{ID: "1-3", Values: map[string]interface{}{}}))
}

// 同一逻辑消息重复投递只能触发一次回写
func TestConsumer_DuplicateDeliveryHandledOnce(t *testing.T) {
	c, _ := newTestConsumer(t)
	ctx := context.Background()

	handled := 0
	c.RegisterHandler(MessageTypeRating, func(ctx context.Context, msg *Message) error {
		handled++
		return nil
	})

	c.processMessage(ctx, ratingXMessage(t, "1-1", "rec-1", 2))
	// 超时重投会带新的流条目 ID，但逻辑消息不变
	c.processMessage(ctx, ratingXMessage(t, "1-2", "rec-1", 2))

	assert.Equal(t, 1, handled)
}

// 同一推荐的改评分载荷不同，不能被去重挡掉
func TestConsumer_RerateIsNotDeduplicated(t *testing.T) {
	c, _ := newTestConsumer(t)
	ctx := context.Background()

	var ratings []int
	c.RegisterHandler(MessageTypeRating, func(ctx context.Context, msg *Message) error {
		var event RatingEvent
		if err := msg.UnmarshalPayload(&event); err != nil {
			return err
		}
		ratings = append(ratings, event.Rating)
		return nil
	})

	c.processMessage(ctx, ratingXMessage(t, "1-1", "rec-1", 2))
	c.processMessage(ctx, ratingXMessage(t, "1-2", "rec-1", -1))

	assert.Equal(t, []int{2, -1}, ratings)
}

// 处理失败不落幂等标记，重投后仍会执行
func TestConsumer_FailureLeavesRetryable(t *testing.T) {
	c, _ := newTestConsumer(t)
	ctx := context.Background()

	calls := 0
	c.RegisterHandler(MessageTypeRating, func(ctx context.Context, msg *Message) error {
		calls++
		if calls == 1 {
			return errors.New("profile store unavailable")
		}
		return nil
	})

	xmsg := ratingXMessage(t, "1-1", "rec-1", 1)
	c.processMessage(ctx, xmsg)
	c.processMessage(ctx, xmsg)

	assert.Equal(t, 2, calls)
}

func TestConsumer_UnknownTypeAcked(t *testing.T) {
	c, rdb := newTestConsumer(t)
	ctx := context.Background()

	msg, err := NewMessage("m1", "unknown.type", "proj-1", map[string]string{"k": "v"})
	require.NoError(t, err)
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	id, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: string(StreamRatingEvents),
		Values: map[string]interface{}{"data": string(data)},
	}).Result()
	require.NoError(t, err)

	streams, err := rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    string(ConsumerGroupFeedbackWorker),
		Consumer: "worker-test",
		Streams:  []string{string(StreamRatingEvents), ">"},
		Count:    1,
		Block:    time.Millisecond,
	}).Result()
	require.NoError(t, err)
	require.Len(t, streams, 1)
	require.Len(t, streams[0].Messages, 1)

	c.processMessage(ctx, streams[0].Messages[0])

	pending, err := rdb.XPending(ctx, string(StreamRatingEvents), string(ConsumerGroupFeedbackWorker)).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count, "message %s should be acked", id)
}

func TestBackoffConfig_CalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{Initial: time.Second, Max: 10 * time.Second, Multiplier: 2}

	assert.Equal(t, time.Second, cfg.CalculateBackoff(0))
	assert.Equal(t, 2*time.Second, cfg.CalculateBackoff(1))
	assert.Equal(t, 8*time.Second, cfg.CalculateBackoff(3))
	assert.Equal(t, 10*time.Second, cfg.CalculateBackoff(10))
}
