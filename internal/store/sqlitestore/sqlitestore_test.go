package sqlitestore_test

import (
	"context"
	"time"

	"agentcomm.app/relay/core/db/sqlite"
	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/store"
	"agentcomm.app/relay/internal/store/sqlitestore"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Stores", func() {
	var (
		ctx    context.Context
		db     *sqlite.DB
		stores *sqlitestore.Stores
		base   time.Time
		alice  model.User
		bob    model.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = sqlite.New(ctx, ":memory:")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)
		Expect(db.Migrate(ctx)).To(Succeed())

		stores = sqlitestore.NewStores(db.Conn())
		base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

		org := model.Organization{ID: 1, Name: "Acme", Slug: "acme", CreatedAt: base}
		Expect(stores.Organizations().Create(ctx, &org)).To(Succeed())

		orgID := int64(1)
		alice = model.User{ID: 10, OrgID: &orgID, Name: "Alice", Email: "alice@acme.test", IsActive: true, CreatedAt: base}
		bob = model.User{ID: 11, OrgID: &orgID, Name: "Bob", Email: "bob@acme.test", IsActive: true, CreatedAt: base.Add(time.Minute)}
		Expect(stores.Users().Create(ctx, &alice)).To(Succeed())
		Expect(stores.Users().Create(ctx, &bob)).To(Succeed())
	})

	newRequest := func(id int64, at time.Time) model.Request {
		req := model.Request{
			ID:         id,
			OrgID:      1,
			FromUserID: alice.ID,
			ToUserID:   &bob.ID,
			Subject:    "Numbers",
			Content:    "send the Q3 numbers",
			Status:     model.StatusPending,
			Priority:   model.PriorityNormal,
			CreatedAt:  at,
		}
		Expect(stores.Requests().Create(ctx, &req)).To(Succeed())
		return req
	}

	newTask := func(id int64, req model.Request) model.Task {
		task := model.Task{
			ID:        id,
			UserID:    bob.ID,
			RequestID: req.ID,
			Title:     "Request from Alice",
			Status:    model.StatusPending,
			Priority:  model.PriorityNormal,
			CreatedAt: req.CreatedAt,
		}
		Expect(stores.Tasks().Create(ctx, &task)).To(Succeed())
		return task
	}

	Describe("users", func() {
		It("round-trips nullable fields and lists oldest first", func() {
			got, err := stores.Users().GetByEmail(ctx, "bob@acme.test")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(bob.ID))
			Expect(got.Role).To(BeNil())
			Expect(got.IsActive).To(BeTrue())
			Expect(got.CreatedAt.Equal(bob.CreatedAt)).To(BeTrue())

			users, err := stores.Users().ListByOrg(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
			Expect(users[0].ID).To(Equal(alice.ID))
		})

		It("returns ErrNotFound for a missing user", func() {
			_, err := stores.Users().GetByID(ctx, 999)
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("updates in place", func() {
			role := "Engineer"
			bob.Role = &role
			bob.IsActive = false
			Expect(stores.Users().Update(ctx, &bob)).To(Succeed())

			got, err := stores.Users().GetByID(ctx, bob.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.RoleOr("")).To(Equal("Engineer"))
			Expect(got.IsActive).To(BeFalse())
		})
	})

	Describe("requests", func() {
		It("lists outgoing newest first and honours the limit", func() {
			for i := int64(0); i < 3; i++ {
				newRequest(100+i, base.Add(time.Duration(i)*time.Hour))
			}

			reqs, err := stores.Requests().ListActiveOutgoing(ctx, alice.ID, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(reqs).To(HaveLen(2))
			Expect(reqs[0].ID).To(Equal(int64(102)))
			Expect(reqs[1].ID).To(Equal(int64(101)))

			all, err := stores.Requests().ListOutgoing(ctx, alice.ID, nil, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))

			n, err := stores.Requests().CountActiveOutgoing(ctx, alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(3)))
		})

		It("completes once", func() {
			req := newRequest(100, base)

			ok, got, err := stores.Requests().Complete(ctx, req.ID, "done", base.Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(got.Status).To(Equal(model.StatusCompleted))
			Expect(*got.Response).To(Equal("done"))
			Expect(got.CompletedAt).NotTo(BeNil())

			ok, got, err = stores.Requests().Complete(ctx, req.ID, "again", base.Add(2*time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(got).To(BeNil())

			completed := model.StatusCompleted
			reqs, err := stores.Requests().ListOutgoing(ctx, alice.ID, &completed, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(reqs).To(HaveLen(1))
			Expect(*reqs[0].Response).To(Equal("done"))
		})

		It("cancels pending tasks with the request", func() {
			req := newRequest(100, base)
			first := newTask(200, req)
			newTask(201, req)

			ok, _, err := stores.Tasks().Complete(ctx, first.ID, base.Add(time.Minute))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, cancelled, err := stores.Requests().Cancel(ctx, req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(cancelled.Status).To(Equal(model.StatusCancelled))

			tasks, err := stores.Tasks().CancelByRequest(ctx, req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(1))
			Expect(tasks[0].ID).To(Equal(int64(201)))
			Expect(tasks[0].Status).To(Equal(model.StatusCancelled))
		})

		It("finds stale requests and records follow-ups with a count guard", func() {
			req := newRequest(100, base)
			newRequest(101, base.Add(48*time.Hour))

			stale, err := stores.Requests().ListStale(ctx, base.Add(24*time.Hour), 3, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(stale).To(HaveLen(1))
			Expect(stale[0].ID).To(Equal(req.ID))

			at := base.Add(25 * time.Hour)
			ok, got, err := stores.Requests().RecordFollowUp(ctx, req.ID, 0, at)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(got.FollowUpCount).To(Equal(1))
			Expect(got.LastTouched().Equal(at)).To(BeTrue())

			ok, _, err = stores.Requests().RecordFollowUp(ctx, req.ID, 0, at)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			stale, err = stores.Requests().ListStale(ctx, base.Add(24*time.Hour), 3, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(stale).To(BeEmpty())
		})
	})

	Describe("tasks", func() {
		It("completes a pending task exactly once", func() {
			task := newTask(200, newRequest(100, base))

			ok, got, err := stores.Tasks().Complete(ctx, task.ID, base.Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(got.Status).To(Equal(model.StatusCompleted))

			ok, _, err = stores.Tasks().Complete(ctx, task.ID, base.Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			pending := model.StatusPending
			n, err := stores.Tasks().CountByUser(ctx, bob.ID, &pending)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})
	})

	Describe("notifications", func() {
		It("filters unread and marks read per owner", func() {
			for i := int64(0); i < 2; i++ {
				n := model.Notification{ID: 300 + i, UserID: bob.ID, Title: "New request", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
				Expect(stores.Notifications().Create(ctx, &n)).To(Succeed())
			}

			ok, err := stores.Notifications().MarkRead(ctx, 300, alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			ok, err = stores.Notifications().MarkRead(ctx, 300, bob.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			unread, err := stores.Notifications().ListByUser(ctx, bob.ID, true, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(unread).To(HaveLen(1))
			Expect(unread[0].ID).To(Equal(int64(301)))

			n, err := stores.Notifications().MarkAllRead(ctx, bob.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(1)))
		})
	})

	Describe("transactions", func() {
		It("binds stores to the transaction", func() {
			err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
				txStores := sqlitestore.NewStores(tx)
				req := model.Request{ID: 100, OrgID: 1, FromUserID: alice.ID, ToUserID: &bob.ID, Subject: "s", Content: "c", Status: model.StatusPending, Priority: model.PriorityNormal}
				if err := txStores.Requests().Create(ctx, &req); err != nil {
					return err
				}
				return context.Canceled
			})
			Expect(err).To(MatchError(context.Canceled))

			_, err = stores.Requests().GetByID(ctx, 100)
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})
})
