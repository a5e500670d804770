package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agentcomm.app/relay/internal/brain"
	"agentcomm.app/relay/internal/http/handler"
	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/service"
)

var _ = Describe("AgentHandler", func() {
	var (
		router *gin.Engine
		svc    *mockAgentService
	)

	BeforeEach(func() {
		svc = &mockAgentService{}
		router = newAuthedRouter(testUser())
		h := handler.NewAgentHandler(svc)
		router.POST("/chat", h.Chat)
		router.GET("/requests", h.ListRequests)
		router.POST("/requests/:id/cancel", h.CancelRequest)
		router.GET("/tasks", h.ListTasks)
		router.POST("/tasks/:id/complete", h.CompleteTask)
	})

	Describe("Chat", func() {
		It("returns the agent reply with the created request", func() {
			bob := int64(11)
			svc.chatFn = func(_ context.Context, userID int64, message string) (*brain.Reply, error) {
				Expect(userID).To(Equal(int64(10)))
				Expect(message).To(Equal("ask finance for Q3 numbers"))
				return &brain.Reply{
					Text:    "✅ I've sent your request to **Bob**.",
					Intent:  brain.IntentRequest,
					Action:  brain.ActionRequestCreated,
					Request: &model.Request{ID: 1790000000000000001, FromUserID: 10, ToUserID: &bob, Status: model.StatusPending},
				}, nil
			}

			w := do(router, http.MethodPost, "/chat", `{"message":"ask finance for Q3 numbers"}`)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["intent"]).To(Equal("request"))
			Expect(resp["action"]).To(Equal("request_created"))
			req := resp["request"].(map[string]any)
			Expect(req["id"]).To(Equal("1790000000000000001"))
			Expect(req["to_user_id"]).To(Equal("11"))
		})

		It("rejects an empty message", func() {
			w := do(router, http.MethodPost, "/chat", `{"message":""}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 403 for users without an organization", func() {
			svc.chatFn = func(context.Context, int64, string) (*brain.Reply, error) {
				return nil, brain.ErrNoOrganization
			}
			w := do(router, http.MethodPost, "/chat", `{"message":"hi"}`)
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("hides internal errors", func() {
			svc.chatFn = func(context.Context, int64, string) (*brain.Reply, error) {
				return nil, errors.New("pq: connection refused")
			}
			w := do(router, http.MethodPost, "/chat", `{"message":"hi"}`)
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).NotTo(ContainSubstring("pq:"))
		})
	})

	It("requires authentication", func() {
		req, _ := http.NewRequest(http.MethodGet, "/tasks", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		w := doRaw(router, req)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("lists tasks with the status filter", func() {
		svc.listTasksFn = func(_ context.Context, _ int64, status string) ([]model.Task, error) {
			Expect(status).To(Equal("pending"))
			return []model.Task{{ID: 5, Title: "Request from Bob", Status: model.StatusPending}}, nil
		}
		w := do(router, http.MethodGet, "/tasks?status=pending", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp []map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp).To(HaveLen(1))
		Expect(resp[0]["title"]).To(Equal("Request from Bob"))
	})

	It("returns 400 for an unknown status filter", func() {
		svc.listRequestsFn = func(context.Context, int64, string) ([]model.Request, error) {
			return nil, fmt.Errorf("%w: %q", service.ErrInvalidStatus, "archived")
		}
		w := do(router, http.MethodGet, "/requests?status=archived", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	DescribeTable("CompleteTask error mapping",
		func(err error, code int) {
			svc.completeTaskFn = func(context.Context, int64, int64, string) (*brain.Completion, error) {
				return nil, err
			}
			w := do(router, http.MethodPost, "/tasks/5/complete", `{"response":"done"}`)
			Expect(w.Code).To(Equal(code))
		},
		Entry("unknown or foreign task", brain.ErrTaskNotFound, http.StatusNotFound),
		Entry("already completed", fmt.Errorf("task already completed: %w", brain.ErrInvalidState), http.StatusConflict),
		Entry("missing request", brain.ErrRequestNotFound, http.StatusNotFound),
	)

	It("completes a task", func() {
		svc.completeTaskFn = func(_ context.Context, userID, taskID int64, response string) (*brain.Completion, error) {
			Expect(taskID).To(Equal(int64(5)))
			Expect(response).To(Equal("done"))
			return &brain.Completion{
				Task:    model.Task{ID: 5, Status: model.StatusCompleted},
				Request: model.Request{ID: 4, Status: model.StatusCompleted, Response: &response},
			}, nil
		}
		w := do(router, http.MethodPost, "/tasks/5/complete", `{"response":"done"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"response":"done"`))
	})

	It("rejects a malformed task id", func() {
		w := do(router, http.MethodPost, "/tasks/abc/complete", `{"response":"done"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("maps cancelling someone else's request to 403", func() {
		svc.cancelRequestFn = func(context.Context, int64, int64) (*brain.Cancellation, error) {
			return nil, brain.ErrNotOwner
		}
		w := do(router, http.MethodPost, "/requests/4/cancel", "")
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("reports how many tasks a cancel closed", func() {
		svc.cancelRequestFn = func(context.Context, int64, int64) (*brain.Cancellation, error) {
			return &brain.Cancellation{
				Request: model.Request{ID: 4, Status: model.StatusCancelled},
				Tasks:   []model.Task{{ID: 5}},
			}, nil
		}
		w := do(router, http.MethodPost, "/requests/4/cancel", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["cancelled_tasks"]).To(BeEquivalentTo(1))
	})
})
