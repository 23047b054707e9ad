package queue_test

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"polar.sh/ghsync/internal/queue"
)

var _ = Describe("ParseMessage", func() {
	It("parses a webhook task as written by the producer", func() {
		msg, err := queue.ParseMessage(redis.XMessage{
			ID: "1700000000000-0",
			Values: map[string]any{
				"task_type":       "github_webhook",
				"delivery_row_id": "1734019284",
				"delivery_id":     "72d3162e-cc78-11e3-81ab-4c9367dc0958",
				"event":           "installation_repositories",
				"action":          "added",
				"installation_id": "30560232",
				"attempt":         "2",
				"trace_id":        "abc",
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.TaskType).To(Equal(queue.TaskTypeGitHubWebhook))
		Expect(msg.DeliveryRowID).To(Equal(int64(1734019284)))
		Expect(msg.DeliveryID).To(Equal("72d3162e-cc78-11e3-81ab-4c9367dc0958"))
		Expect(msg.Event).To(Equal("installation_repositories"))
		Expect(msg.Action).To(Equal("added"))
		Expect(msg.InstallationID).To(HaveValue(Equal(int64(30560232))))
		Expect(msg.Attempt).To(Equal(2))
		Expect(msg.TraceID).To(Equal("abc"))
	})

	It("defaults the attempt to 1", func() {
		msg, err := queue.ParseMessage(redis.XMessage{
			ID: "1-0",
			Values: map[string]any{
				"task_type":       "github_webhook",
				"delivery_row_id": "1",
				"delivery_id":     "d",
				"event":           "issues",
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Attempt).To(Equal(1))
		Expect(msg.InstallationID).To(BeNil())
	})

	It("rejects unknown task types", func() {
		_, err := queue.ParseMessage(redis.XMessage{
			ID:     "1-0",
			Values: map[string]any{"task_type": "issue_event"},
		})
		Expect(err).To(MatchError(ContainSubstring("unknown task_type")))
	})

	It("rejects a message without a delivery row", func() {
		_, err := queue.ParseMessage(redis.XMessage{
			ID:     "1-0",
			Values: map[string]any{"task_type": "github_webhook", "event": "issues"},
		})
		Expect(err).To(MatchError(ContainSubstring("delivery_row_id")))
	})
})

// fakeStreams records stream calls in order.
type fakeStreams struct {
	calls   []string
	added   []*redis.XAddArgs
	addErr  error
	ackErr  error
	groupOK bool
}

func (f *fakeStreams) XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd {
	f.groupOK = true
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStreams) XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	return redis.NewXStreamSliceCmdResult(nil, redis.Nil)
}

func (f *fakeStreams) XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd {
	f.calls = append(f.calls, "xack")
	return redis.NewIntResult(int64(len(ids)), f.ackErr)
}

func (f *fakeStreams) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.calls = append(f.calls, "xadd "+a.Stream)
	f.added = append(f.added, a)
	return redis.NewStringResult("2-0", f.addErr)
}

var _ = Describe("RedisConsumer", func() {
	var (
		ctx      context.Context
		streams  *fakeStreams
		consumer *queue.RedisConsumer
		msg      queue.Message
	)

	BeforeEach(func() {
		ctx = context.Background()
		streams = &fakeStreams{}

		var err error
		consumer, err = queue.NewConsumerWithClient(streams, queue.ConsumerConfig{
			Stream:    "github_webhooks",
			Group:     "ghsync_group",
			Consumer:  "ghsync-worker",
			DLQStream: "github_webhooks_dlq",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(streams.groupOK).To(BeTrue())

		msg = queue.Message{
			ID:            "1-0",
			TaskType:      queue.TaskTypeGitHubWebhook,
			DeliveryRowID: 7,
			DeliveryID:    "72d3162e",
			Event:         "issues",
			Action:        "opened",
			Attempt:       1,
		}
	})

	It("re-adds a requeued message before acking it", func() {
		Expect(consumer.Requeue(ctx, msg, "boom")).To(Succeed())
		Expect(streams.calls).To(Equal([]string{"xadd github_webhooks", "xack"}))
		Expect(streams.added[0].Values).To(HaveKeyWithValue("attempt", 2))
		Expect(streams.added[0].Values).To(HaveKeyWithValue("last_error", "boom"))
	})

	It("keeps the message pending when the requeue add fails", func() {
		streams.addErr = errors.New("connection reset")
		Expect(consumer.Requeue(ctx, msg, "boom")).To(MatchError(ContainSubstring("connection reset")))
		Expect(streams.calls).To(Equal([]string{"xadd github_webhooks"}))
	})

	It("keeps the message pending when the dead letter add fails", func() {
		streams.addErr = errors.New("connection reset")
		Expect(consumer.SendDLQ(ctx, msg, "bad payload")).To(HaveOccurred())
		Expect(streams.calls).To(Equal([]string{"xadd github_webhooks_dlq"}))
	})

	It("dead letters before acking", func() {
		Expect(consumer.SendDLQ(ctx, msg, "bad payload")).To(Succeed())
		Expect(streams.calls).To(Equal([]string{"xadd github_webhooks_dlq", "xack"}))
		Expect(streams.added[0].Values).To(HaveKeyWithValue("error", "bad payload"))
	})

	It("stops waiting out the requeue delay when the context ends", func() {
		var err error
		consumer, err = queue.NewConsumerWithClient(streams, queue.ConsumerConfig{
			Stream:       "github_webhooks",
			Group:        "ghsync_group",
			DLQStream:    "github_webhooks_dlq",
			RequeueDelay: time.Hour,
		})
		Expect(err).NotTo(HaveOccurred())

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err = consumer.Requeue(cancelled, msg, "boom")
		Expect(err).To(MatchError(context.Canceled))
		Expect(streams.calls).To(BeEmpty())
	})
})
