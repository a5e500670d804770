package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agentcomm.app/relay/common/logger"
	"agentcomm.app/relay/internal/brain"
	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/service"
	"agentcomm.app/relay/internal/store"
)

var _ = Describe("AgentService", func() {
	var (
		ctx       context.Context
		users     *mockUserStore
		handler   *mockMessageHandler
		lifecycle *mockLifecycle
		svc       service.AgentService
	)

	BeforeEach(func() {
		ctx = context.Background()
		users = &mockUserStore{
			getByIDFn: func(_ context.Context, id int64) (*model.User, error) {
				if id == 10 {
					return activeUser(10, int64Ptr(1)), nil
				}
				return nil, store.ErrNotFound
			},
		}
		handler = &mockMessageHandler{}
		lifecycle = &mockLifecycle{}
		svc = service.NewAgentService(users, handler, lifecycle)
	})

	Describe("Chat", func() {
		It("hands the message to the agent with the user's organization", func() {
			handler.handleFn = func(ctx context.Context, user model.User, message string, orgID int64) (*brain.Reply, error) {
				Expect(user.ID).To(Equal(int64(10)))
				Expect(message).To(Equal("show my tasks"))
				Expect(orgID).To(Equal(int64(1)))
				fields := logger.GetLogFields(ctx)
				Expect(fields.UserID).To(HaveValue(Equal(int64(10))))
				return &brain.Reply{Text: "🎉 No pending tasks! You're all caught up.", Intent: brain.IntentTasks}, nil
			}

			reply, err := svc.Chat(ctx, 10, "show my tasks")
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Intent).To(Equal(brain.IntentTasks))
		})

		It("rejects unknown users", func() {
			_, err := svc.Chat(ctx, 99, "hello")
			Expect(err).To(MatchError(service.ErrUserNotFound))
		})

		It("rejects users outside any organization", func() {
			users.getByIDFn = func(context.Context, int64) (*model.User, error) {
				return activeUser(10, nil), nil
			}
			_, err := svc.Chat(ctx, 10, "hello")
			Expect(err).To(MatchError(brain.ErrNoOrganization))
		})

		It("wraps agent failures", func() {
			handler.handleFn = func(context.Context, model.User, string, int64) (*brain.Reply, error) {
				return nil, errors.New("database is locked")
			}
			_, err := svc.Chat(ctx, 10, "hello")
			Expect(err).To(MatchError(ContainSubstring("database is locked")))
		})
	})

	Describe("listings", func() {
		It("passes a parsed status filter", func() {
			lifecycle.listOutgoingFn = func(_ context.Context, userID int64, status *model.Status, limit int32) ([]model.Request, error) {
				Expect(userID).To(Equal(int64(10)))
				Expect(status).To(HaveValue(Equal(model.StatusPending)))
				Expect(limit).To(BeNumerically(">", 0))
				return []model.Request{{ID: 1}}, nil
			}
			reqs, err := svc.ListRequests(ctx, 10, "PENDING")
			Expect(err).NotTo(HaveOccurred())
			Expect(reqs).To(HaveLen(1))
		})

		It("treats an empty filter as all statuses", func() {
			lifecycle.listTasksFn = func(_ context.Context, _ int64, status *model.Status, _ int32) ([]model.Task, error) {
				Expect(status).To(BeNil())
				return nil, nil
			}
			_, err := svc.ListTasks(ctx, 10, "")
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects unknown statuses", func() {
			_, err := svc.ListTasks(ctx, 10, "archived")
			Expect(err).To(MatchError(service.ErrInvalidStatus))
		})
	})

	Describe("CompleteTask", func() {
		It("requires a response", func() {
			called := false
			lifecycle.completeTaskFn = func(context.Context, model.User, int64, string) (*brain.Completion, error) {
				called = true
				return nil, nil
			}
			_, err := svc.CompleteTask(ctx, 10, 5, "   ")
			Expect(err).To(MatchError(service.ErrEmptyResponse))
			Expect(called).To(BeFalse())
		})

		It("completes as the calling user", func() {
			lifecycle.completeTaskFn = func(_ context.Context, responder model.User, taskID int64, response string) (*brain.Completion, error) {
				Expect(responder.ID).To(Equal(int64(10)))
				Expect(taskID).To(Equal(int64(5)))
				Expect(response).To(Equal("done"))
				return &brain.Completion{Task: model.Task{ID: 5, Status: model.StatusCompleted}}, nil
			}
			c, err := svc.CompleteTask(ctx, 10, 5, " done ")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Task.Status).To(Equal(model.StatusCompleted))
		})

		It("surfaces lifecycle errors unchanged", func() {
			lifecycle.completeTaskFn = func(context.Context, model.User, int64, string) (*brain.Completion, error) {
				return nil, brain.ErrInvalidState
			}
			_, err := svc.CompleteTask(ctx, 10, 5, "done")
			Expect(err).To(MatchError(brain.ErrInvalidState))
		})
	})

	Describe("CancelRequest", func() {
		It("cancels as the calling user", func() {
			lifecycle.cancelRequestFn = func(_ context.Context, requester model.User, requestID int64) (*brain.Cancellation, error) {
				Expect(requester.ID).To(Equal(int64(10)))
				Expect(requestID).To(Equal(int64(7)))
				return &brain.Cancellation{Request: model.Request{ID: 7, Status: model.StatusCancelled}}, nil
			}
			c, err := svc.CancelRequest(ctx, 10, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Request.Status).To(Equal(model.StatusCancelled))
		})
	})
})
