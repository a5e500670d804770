package worker_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agentcomm.app/relay/common/llm"
	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/queue"
	"agentcomm.app/relay/internal/store"
	"agentcomm.app/relay/internal/worker"
)

var _ = Describe("Worker", func() {
	var (
		ctx      context.Context
		consumer *mockConsumer
		requests *mockRequestStore
		users    *mockUserStore
		writer   *mockWriter
		recorder *mockRecorder
		w        *worker.Worker
		pending  model.Request
		msg      queue.Message
	)

	BeforeEach(func() {
		ctx = context.Background()
		assignee := int64(11)
		pending = model.Request{
			ID: 500, OrgID: 1, FromUserID: 10, ToUserID: &assignee,
			Subject: "Q3 numbers", Content: "Please send the Q3 numbers",
			Status: model.StatusPending, FollowUpCount: 1,
			CreatedAt: time.Now().Add(-72 * time.Hour),
		}
		msg = queue.Message{ID: "1-0", TaskType: queue.TaskTypeFollowUp, RequestID: 500, ExpectedCount: 1, Attempt: 1}

		consumer = &mockConsumer{}
		requests = &mockRequestStore{
			getByIDFn: func(_ context.Context, id int64) (*model.Request, error) {
				Expect(id).To(Equal(int64(500)))
				r := pending
				return &r, nil
			},
		}
		users = &mockUserStore{
			getByIDFn: func(_ context.Context, id int64) (*model.User, error) {
				return &model.User{ID: id, Name: "Alice", IsActive: true}, nil
			},
		}
		writer = &mockWriter{}
		recorder = &mockRecorder{}
		w = worker.New(consumer, &mockStores{requests: requests, users: users}, writer, recorder, worker.Config{MaxAttempts: 3})
	})

	It("writes and records a follow-up, then acks", func() {
		recorder.recordFn = func(_ context.Context, req model.Request, from model.User, text string) (bool, error) {
			Expect(req.ID).To(Equal(int64(500)))
			Expect(from.Name).To(Equal("Alice"))
			Expect(text).To(Equal("Just checking in on this one."))
			return true, nil
		}

		Expect(w.Handle(ctx, msg)).To(Succeed())
		Expect(recorder.calls).To(Equal(1))
		Expect(consumer.acked).To(ConsistOf("1-0"))
		Expect(consumer.requeued).To(BeEmpty())
		Expect(consumer.dlq).To(BeEmpty())
	})

	DescribeTable("drops jobs whose request moved on without calling the model",
		func(mutate func(r *model.Request)) {
			requests.getByIDFn = func(context.Context, int64) (*model.Request, error) {
				r := pending
				mutate(&r)
				return &r, nil
			}

			Expect(w.Handle(ctx, msg)).To(Succeed())
			Expect(writer.calls).To(BeZero())
			Expect(recorder.calls).To(BeZero())
			Expect(consumer.acked).To(ConsistOf("1-0"))
		},
		Entry("completed", func(r *model.Request) { r.Status = model.StatusCompleted }),
		Entry("cancelled", func(r *model.Request) { r.Status = model.StatusCancelled }),
		Entry("followed up since", func(r *model.Request) { r.FollowUpCount = 2 }),
		Entry("no assignee", func(r *model.Request) { r.ToUserID = nil }),
	)

	It("acks jobs for deleted requests", func() {
		requests.getByIDFn = func(context.Context, int64) (*model.Request, error) {
			return nil, store.ErrNotFound
		}
		Expect(w.Handle(ctx, msg)).To(Succeed())
		Expect(consumer.acked).To(ConsistOf("1-0"))
	})

	It("acks when the guarded update loses", func() {
		recorder.recordFn = func(context.Context, model.Request, model.User, string) (bool, error) {
			return false, nil
		}
		Expect(w.Handle(ctx, msg)).To(Succeed())
		Expect(consumer.acked).To(ConsistOf("1-0"))
	})

	It("requeues gateway failures while attempts remain", func() {
		writer.generateFn = func(context.Context, model.Request, model.User) (string, error) {
			return "", &llm.ProviderError{Provider: "anthropic", StatusCode: 529, Retryable: true}
		}

		err := w.Handle(ctx, msg)
		var pe *worker.ProcessingError
		Expect(errors.As(err, &pe)).To(BeTrue())
		Expect(pe.Retryable).To(BeTrue())
		Expect(consumer.requeued).To(ConsistOf("1-0"))
		Expect(consumer.acked).To(BeEmpty())
		Expect(recorder.calls).To(BeZero())
	})

	It("sends retryable failures to the DLQ once attempts are exhausted", func() {
		writer.generateFn = func(context.Context, model.Request, model.User) (string, error) {
			return "", errors.New("connection reset")
		}
		msg.Attempt = 3

		Expect(w.Handle(ctx, msg)).NotTo(Succeed())
		Expect(consumer.dlq).To(ConsistOf("1-0"))
		Expect(consumer.requeued).To(BeEmpty())
	})

	It("sends a missing provider straight to the DLQ", func() {
		writer.generateFn = func(context.Context, model.Request, model.User) (string, error) {
			return "", llm.ErrProviderUnavailable
		}

		Expect(w.Handle(ctx, msg)).NotTo(Succeed())
		Expect(consumer.dlq).To(ConsistOf("1-0"))
	})

	It("turns a panic into a fatal failure", func() {
		writer.generateFn = func(context.Context, model.Request, model.User) (string, error) {
			panic("boom")
		}

		err := w.Handle(ctx, msg)
		Expect(err).To(MatchError(ContainSubstring("panic: boom")))
		Expect(consumer.dlq).To(ConsistOf("1-0"))
	})
})

var _ = Describe("Scheduler", func() {
	It("enqueues one job per stale request with its current follow-up count", func() {
		now := time.Now()
		requests := &mockRequestStore{
			listStaleFn: func(_ context.Context, before time.Time, maxFollowUps int, limit int32) ([]model.Request, error) {
				Expect(before).To(BeTemporally("~", now.Add(-48*time.Hour), time.Minute))
				Expect(maxFollowUps).To(Equal(3))
				Expect(limit).To(Equal(int32(100)))
				return []model.Request{{ID: 1, FollowUpCount: 0}, {ID: 2, FollowUpCount: 2}}, nil
			},
		}
		producer := &mockProducer{}
		s := worker.NewScheduler(requests, producer, worker.SchedulerConfig{
			Interval: time.Hour, StaleAfter: 48 * time.Hour, MaxCount: 3,
		})

		n, err := s.ScanOnce(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
		Expect(producer.tasks).To(HaveLen(2))
		Expect(producer.tasks[0].RequestID).To(Equal(int64(1)))
		Expect(producer.tasks[1].ExpectedCount).To(Equal(2))
		Expect(producer.tasks[1].TraceID).NotTo(BeNil())
	})

	It("stops at the first enqueue failure", func() {
		requests := &mockRequestStore{
			listStaleFn: func(context.Context, time.Time, int, int32) ([]model.Request, error) {
				return []model.Request{{ID: 1}, {ID: 2}}, nil
			},
		}
		producer := &mockProducer{enqueueFn: func(_ context.Context, task queue.FollowUpTask) error {
			if task.RequestID == 2 {
				return errors.New("redis down")
			}
			return nil
		}}
		s := worker.NewScheduler(requests, producer, worker.SchedulerConfig{Interval: time.Hour, StaleAfter: time.Hour, MaxCount: 3})

		n, err := s.ScanOnce(context.Background())
		Expect(err).To(MatchError(ContainSubstring("redis down")))
		Expect(n).To(Equal(1))
	})
})
