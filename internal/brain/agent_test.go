package brain_test

import (
	"fmt"
	"strings"

	"agentcomm.app/relay/common/llm"
	"agentcomm.app/relay/internal/brain"
	"agentcomm.app/relay/internal/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Agent", func() {
	var f *fixture

	BeforeEach(func() {
		f = newFixture()
	})

	Describe("HandleUserMessage", func() {
		It("rejects users outside the organization", func() {
			agent := f.agent(scriptedLLM{classify: `{"intent":"general"}`}.client())

			_, err := agent.HandleUserMessage(f.ctx, f.eve, "hello", 1)
			Expect(err).To(MatchError(brain.ErrNoOrganization))
		})
	})

	Describe("request intent", func() {
		const message = "Can someone send me the Q3 revenue numbers?"

		It("creates one request, one task and one notification for a routed user", func() {
			client := scriptedLLM{
				classify: `{"intent":"request","task_number":null,"details":""}`,
				route:    `{"target_user_id":"11","target_team_id":null,"confidence":0.9,"reasoning":"Bob owns revenue reporting","formatted_request":"Please send the Q3 revenue numbers.","subject":"Q3 revenue numbers"}`,
			}.client()

			reply, err := f.agent(client).HandleUserMessage(f.ctx, f.alice, message, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Intent).To(Equal(brain.IntentRequest))
			Expect(reply.Action).To(Equal(brain.ActionRequestCreated))
			Expect(reply.Text).To(HavePrefix("✅ I've sent your request to **Bob**."))
			Expect(reply.Text).To(ContainSubstring("**Request:** Please send the Q3 revenue numbers."))

			reqs := f.outgoing(f.alice)
			Expect(reqs).To(HaveLen(1))
			Expect(reqs[0].Status).To(Equal(model.StatusPending))
			Expect(*reqs[0].ToUserID).To(Equal(f.bob.ID))
			Expect(reqs[0].Subject).To(Equal("Q3 revenue numbers"))
			Expect(reqs[0].Response).To(BeNil())
			Expect(reply.Request.ID).To(Equal(reqs[0].ID))

			tasks := f.tasksOf(f.bob)
			Expect(tasks).To(HaveLen(1))
			Expect(tasks[0].RequestID).To(Equal(reqs[0].ID))
			Expect(tasks[0].Title).To(Equal("Request from Alice"))

			notes := f.notificationsOf(f.bob)
			Expect(notes).To(HaveLen(1))
			Expect(notes[0].Title).To(Equal("Request from Alice"))
			Expect(*notes[0].Link).To(Equal("/tasks"))
			Expect(f.publisher.count()).To(Equal(1))
		})

		It("routes a team-only decision to the first active member other than the requester", func() {
			client := scriptedLLM{
				classify: `{"intent":"request"}`,
				route:    `{"target_user_id":null,"target_team_id":20,"confidence":0.7,"reasoning":"Finance","formatted_request":"Send Q3 numbers","subject":"Q3"}`,
			}.client()

			reply, err := f.agent(client).HandleUserMessage(f.ctx, f.alice, message, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Action).To(Equal(brain.ActionRequestCreated))

			reqs := f.outgoing(f.alice)
			Expect(reqs).To(HaveLen(1))
			Expect(*reqs[0].ToUserID).To(Equal(f.bob.ID))
			Expect(*reqs[0].ToTeamID).To(Equal(f.finance.ID))
			Expect(f.tasksOf(f.dave)).To(BeEmpty())
		})

		It("asks for clarification when the router names no target", func() {
			client := scriptedLLM{
				classify: `{"intent":"request"}`,
				route:    `{"target_user_id":null,"target_team_id":null,"confidence":0,"reasoning":"Nobody handles travel."}`,
			}.client()

			reply, err := f.agent(client).HandleUserMessage(f.ctx, f.alice, message, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Action).To(Equal(brain.ActionNone))
			Expect(reply.Request).To(BeNil())
			Expect(reply.Text).To(Equal("I couldn't determine who should handle this. Nobody handles travel.\n\nCould you tell me who to ask, or which team this is for?"))
			Expect(f.outgoing(f.alice)).To(BeEmpty())
			Expect(f.publisher.count()).To(BeZero())
		})

		It("asks who to send to when the routing reply is malformed", func() {
			client := scriptedLLM{classify: `{"intent":"request"}`, route: "Bob, probably."}.client()

			reply, err := f.agent(client).HandleUserMessage(f.ctx, f.alice, message, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(ContainSubstring("Could you tell me specifically who you'd like me to send this to?"))
			Expect(f.outgoing(f.alice)).To(BeEmpty())
		})

		DescribeTable("refuses targets that do not resolve",
			func(route string) {
				client := scriptedLLM{classify: `{"intent":"request"}`, route: route}.client()

				reply, err := f.agent(client).HandleUserMessage(f.ctx, f.alice, message, 1)
				Expect(err).NotTo(HaveOccurred())
				Expect(reply.Text).To(HavePrefix("I found a potential match but couldn't locate the specific person."))
				Expect(f.outgoing(f.alice)).To(BeEmpty())
				Expect(f.notificationsOf(f.bob)).To(BeEmpty())
			},
			Entry("unknown user", `{"target_user_id":"999"}`),
			Entry("inactive user", `{"target_user_id":"13"}`),
			Entry("user in another org", `{"target_user_id":"14"}`),
			Entry("the requester", `{"target_user_id":"10"}`),
			Entry("unknown team", `{"target_team_id":"77"}`),
		)

		DescribeTable("routes to the named user and keeps the team only when it resolves",
			func(route string, wantTeam *int64) {
				client := scriptedLLM{classify: `{"intent":"request"}`, route: route}.client()

				reply, err := f.agent(client).HandleUserMessage(f.ctx, f.alice, message, 1)
				Expect(err).NotTo(HaveOccurred())
				Expect(reply.Action).To(Equal(brain.ActionRequestCreated))

				reqs := f.outgoing(f.alice)
				Expect(reqs).To(HaveLen(1))
				Expect(*reqs[0].ToUserID).To(Equal(f.bob.ID))
				if wantTeam == nil {
					Expect(reqs[0].ToTeamID).To(BeNil())
				} else {
					Expect(*reqs[0].ToTeamID).To(Equal(*wantTeam))
				}
				Expect(f.tasksOf(f.bob)).To(HaveLen(1))
			},
			Entry("unknown team", `{"target_user_id":"11","target_team_id":"999"}`, nil),
			Entry("known team", `{"target_user_id":"11","target_team_id":"21"}`, ptr(int64(21))),
		)
	})

	Describe("classifier fallback", func() {
		It("treats a malformed classification as general chat with no side effects", func() {
			client := scriptedLLM{
				classify: "I think this is a request",
				route:    `{"target_user_id":"11"}`,
				general:  "Happy to help!",
			}.client()

			reply, err := f.agent(client).HandleUserMessage(f.ctx, f.alice, "ask Bob for the numbers", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Intent).To(Equal(brain.IntentGeneral))
			Expect(reply.Text).To(Equal("Happy to help!"))
			Expect(f.outgoing(f.alice)).To(BeEmpty())
			Expect(f.tasksOf(f.bob)).To(BeEmpty())
		})

		It("answers in plain language when no provider is configured", func() {
			client, err := llm.New(llm.Config{})
			Expect(err).NotTo(HaveOccurred())

			reply, err := f.agent(client).HandleUserMessage(f.ctx, f.alice, "hi", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Intent).To(Equal(brain.IntentGeneral))
			Expect(reply.Text).To(ContainSubstring("isn't configured"))
		})

		It("gives the general persona the org directory", func() {
			client := scriptedLLM{classify: `{"intent":"general"}`, general: "Hello Alice"}.client()

			_, err := f.agent(client).HandleUserMessage(f.ctx, f.alice, "who is on my team?", 1)
			Expect(err).NotTo(HaveOccurred())

			Expect(client.calls).To(HaveLen(2))
			prompt := client.calls[1]
			Expect(prompt).To(HavePrefix("You're helping Alice (Engineer).\n\nTeam members: Alice, Dave, Bob, Carol\n"))
			Expect(prompt).To(ContainSubstring("Teams: Design, Finance\n"))
			Expect(prompt).To(HaveSuffix("User message: who is on my team?"))
		})
	})

	Describe("respond intent", func() {
		var t1, t2, t3 model.Task

		BeforeEach(func() {
			// Listing order is newest first, so T1 is the newest.
			_, t3 = f.seedRequest(100, f.alice, f.bob, "Budget", 0)
			_, t2 = f.seedRequest(101, f.alice, f.bob, "Forecast", 1)
			_, t1 = f.seedRequest(102, f.carol, f.bob, "Invoice", 2)
		})

		respond := func(classification, message string) *brain.Reply {
			client := scriptedLLM{classify: classification}.client()
			reply, err := f.agent(client).HandleUserMessage(f.ctx, f.bob, message, 1)
			Expect(err).NotTo(HaveOccurred())
			return reply
		}

		It("completes the numbered task with the prefix stripped", func() {
			reply := respond(`{"intent":"respond","task_number":null}`, "2: approved")

			Expect(reply.Action).To(Equal(brain.ActionTaskCompleted))
			Expect(reply.Text).To(Equal("✅ Response sent to Alice!\n\n**Your response:** \"approved\""))

			task, err := f.stores.Tasks().GetByID(f.ctx, t2.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(task.Status).To(Equal(model.StatusCompleted))
			Expect(task.CompletedAt).NotTo(BeNil())

			req, err := f.stores.Requests().GetByID(f.ctx, t2.RequestID)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(model.StatusCompleted))
			Expect(*req.Response).To(Equal("approved"))
			Expect(req.CompletedAt.Equal(*task.CompletedAt)).To(BeTrue())

			notes := f.notificationsOf(f.alice)
			Expect(notes).To(HaveLen(1))
			Expect(notes[0].Title).To(Equal("Response from Bob"))
			Expect(*notes[0].Body).To(Equal("approved"))
			Expect(*notes[0].Link).To(Equal("/requests"))

			for _, other := range []model.Task{t1, t3} {
				got, err := f.stores.Tasks().GetByID(f.ctx, other.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(got.Status).To(Equal(model.StatusPending))
			}
		})

		It("defaults to the first task when no number is given", func() {
			reply := respond(`{"intent":"respond"}`, "approved")

			Expect(reply.Text).To(HavePrefix("✅ Response sent to Carol!"))
			task, err := f.stores.Tasks().GetByID(f.ctx, t1.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(task.Status).To(Equal(model.StatusCompleted))
		})

		It("prefers the classifier's task number", func() {
			respond(`{"intent":"respond","task_number":"3"}`, "looks good")

			task, err := f.stores.Tasks().GetByID(f.ctx, t3.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(task.Status).To(Equal(model.StatusCompleted))
		})

		DescribeTable("rejects out-of-range task numbers without mutating",
			func(n int) {
				reply := respond(fmt.Sprintf(`{"intent":"respond","task_number":%d}`, n), "done")

				Expect(reply.Action).To(Equal(brain.ActionNone))
				Expect(reply.Text).To(Equal(fmt.Sprintf("Task %d not found. You have 3 pending tasks. Use 'tasks' to see them.", n)))
				pending := model.StatusPending
				count, err := f.stores.Tasks().CountByUser(f.ctx, f.bob.ID, &pending)
				Expect(err).NotTo(HaveOccurred())
				Expect(count).To(Equal(int64(3)))
				Expect(f.notificationsOf(f.alice)).To(BeEmpty())
			},
			Entry("past the end", 5),
			Entry("zero", 0),
			Entry("negative", -1),
		)

		It("asks for the answer when only a number is given", func() {
			reply := respond(`{"intent":"respond","task_number":1}`, "1: ")
			Expect(reply.Action).To(Equal(brain.ActionNone))
			Expect(reply.Text).To(ContainSubstring("What would you like to say?"))
		})

		It("says so when there is nothing to respond to", func() {
			reply := respond(`{"intent":"respond"}`, "approved")
			Expect(reply.Action).To(Equal(brain.ActionTaskCompleted))

			client := scriptedLLM{classify: `{"intent":"respond"}`}.client()
			agent := f.agent(client)
			for i := 0; i < 2; i++ {
				_, err := agent.HandleUserMessage(f.ctx, f.bob, "ok", 1)
				Expect(err).NotTo(HaveOccurred())
			}
			reply, err := agent.HandleUserMessage(f.ctx, f.bob, "ok", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(Equal("You don't have any pending tasks to respond to."))
		})
	})

	Describe("status and tasks summaries", func() {
		BeforeEach(func() {
			for i := 0; i < 12; i++ {
				f.seedRequest(int64(200+i), f.alice, f.bob, fmt.Sprintf("Subject %02d", i), i)
			}
		})

		It("lists at most ten active requests, newest first", func() {
			client := scriptedLLM{classify: `{"intent":"status"}`}.client()

			reply, err := f.agent(client).HandleUserMessage(f.ctx, f.alice, "what's the status?", 1)
			Expect(err).NotTo(HaveOccurred())

			lines := strings.Split(reply.Text, "\n")
			Expect(lines[0]).To(Equal("**Your Active Requests (12):**"))
			entries := lines[2:]
			Expect(entries).To(HaveLen(10))
			Expect(entries[0]).To(Equal("⏳ **Subject 11** → Bob (pending)"))
			Expect(entries[9]).To(Equal("⏳ **Subject 02** → Bob (pending)"))
		})

		It("lists at most ten pending tasks, newest first", func() {
			client := scriptedLLM{classify: `{"intent":"tasks"}`}.client()

			reply, err := f.agent(client).HandleUserMessage(f.ctx, f.bob, "what do I need to do?", 1)
			Expect(err).NotTo(HaveOccurred())

			Expect(reply.Text).To(HavePrefix("**Your Task Queue (12):**\n\n1. 🔵 **Request from Alice** (from Alice)\n   Subject 11 please"))
			Expect(reply.Text).To(ContainSubstring("10. 🔵 **Request from Alice** (from Alice)\n   Subject 02 please"))
			Expect(reply.Text).NotTo(ContainSubstring("11. "))
			Expect(reply.Text).To(HaveSuffix("*Reply with a number to respond to that task.*"))
		})

		It("reports empty queues", func() {
			client := scriptedLLM{classify: `{"intent":"tasks"}`}.client()
			reply, err := f.agent(client).HandleUserMessage(f.ctx, f.carol, "tasks", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(Equal("🎉 No pending tasks! You're all caught up."))

			client = scriptedLLM{classify: `{"intent":"status"}`}.client()
			reply, err = f.agent(client).HandleUserMessage(f.ctx, f.carol, "status", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(Equal("You don't have any active outgoing requests. Need to send one?"))
		})
	})
})
