package brain_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"agentcomm.app/relay/common/llm"
	"agentcomm.app/relay/core/db/sqlite"
	"agentcomm.app/relay/internal/brain"
	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/store"
	"agentcomm.app/relay/internal/store/sqlitestore"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// mockLLMClient implements llm.Client for testing.
type mockLLMClient struct {
	chatFn func(ctx context.Context, messages []llm.Message, systemPrompt string) (string, error)

	mu    sync.Mutex
	calls []string
}

func (m *mockLLMClient) Chat(ctx context.Context, messages []llm.Message, systemPrompt string, _ ...llm.ChatOption) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, messages[0].Content)
	m.mu.Unlock()
	if m.chatFn != nil {
		return m.chatFn(ctx, messages, systemPrompt)
	}
	return "", errors.New("mock not configured")
}

func (m *mockLLMClient) Model() string {
	return "test-model"
}

// scriptedLLM answers each agent stage with a fixed reply, keyed on how the
// stage's prompt begins.
type scriptedLLM struct {
	classify string
	route    string
	general  string
	followUp string
	err      error
}

func (s scriptedLLM) client() *mockLLMClient {
	return &mockLLMClient{chatFn: func(_ context.Context, messages []llm.Message, _ string) (string, error) {
		if s.err != nil {
			return "", s.err
		}
		prompt := messages[0].Content
		switch {
		case strings.HasPrefix(prompt, "Message to classify:"):
			return s.classify, nil
		case strings.HasPrefix(prompt, "Route this request"):
			return s.route, nil
		case strings.HasPrefix(prompt, "Generate a follow-up"):
			return s.followUp, nil
		default:
			return s.general, nil
		}
	}}
}

// mockPublisher implements brain.NotificationPublisher for testing.
type mockPublisher struct {
	mu        sync.Mutex
	published []model.Notification
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, n model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, n)
	return m.err
}

func (m *mockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}

// fixture is an in-memory database seeded with one organization:
//
//	org 1 "Acme": team 20 Finance, team 21 Design
//	  10 Alice  (Engineer, Finance, oldest)
//	  13 Dave   (Finance, inactive)
//	  11 Bob    (Analyst, Finance)
//	  12 Carol  (Design)
//	org 2 "Other": 14 Eve
type fixture struct {
	ctx       context.Context
	db        *sqlite.DB
	stores    *sqlitestore.Stores
	txRunner  brain.TxRunner
	publisher *mockPublisher
	lifecycle *brain.Lifecycle
	base      time.Time

	alice, bob, carol, dave, eve model.User
	finance, design              model.Team
}

func newFixture() *fixture {
	f := &fixture{ctx: context.Background(), base: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	var err error
	f.db, err = sqlite.New(f.ctx, ":memory:")
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(f.db.Close)
	Expect(f.db.Migrate(f.ctx)).To(Succeed())

	f.stores = sqlitestore.NewStores(f.db.Conn())
	f.txRunner = brain.NewSQLiteTxRunner(f.db)
	f.publisher = &mockPublisher{}
	f.lifecycle = brain.NewLifecycle(f.stores, f.txRunner, f.publisher)

	for _, org := range []model.Organization{
		{ID: 1, Name: "Acme", Slug: "acme", CreatedAt: f.base},
		{ID: 2, Name: "Other", Slug: "other", CreatedAt: f.base},
	} {
		Expect(f.stores.Organizations().Create(f.ctx, &org)).To(Succeed())
	}

	f.finance = model.Team{ID: 20, OrgID: 1, Name: "Finance", CreatedAt: f.base}
	f.design = model.Team{ID: 21, OrgID: 1, Name: "Design", CreatedAt: f.base}
	Expect(f.stores.Teams().Create(f.ctx, &f.finance)).To(Succeed())
	Expect(f.stores.Teams().Create(f.ctx, &f.design)).To(Succeed())

	f.alice = f.user(10, 1, &f.finance.ID, "Alice", "Engineer", true, 0)
	f.dave = f.user(13, 1, &f.finance.ID, "Dave", "", false, 1)
	f.bob = f.user(11, 1, &f.finance.ID, "Bob", "Analyst", true, 2)
	f.carol = f.user(12, 1, &f.design.ID, "Carol", "", true, 3)
	f.eve = f.user(14, 2, nil, "Eve", "", true, 4)
	return f
}

func (f *fixture) user(userID, orgID int64, teamID *int64, name, role string, active bool, minute int) model.User {
	u := model.User{
		ID:        userID,
		OrgID:     &orgID,
		TeamID:    teamID,
		Name:      name,
		Email:     strings.ToLower(name) + "@acme.test",
		IsActive:  active,
		CreatedAt: f.base.Add(time.Duration(minute) * time.Minute),
	}
	if role != "" {
		u.Role = &role
	}
	Expect(f.stores.Users().Create(f.ctx, &u)).To(Succeed())
	return u
}

// seedRequest inserts a pending request from -> to with its task, created
// minute minutes after the fixture base time.
func (f *fixture) seedRequest(reqID int64, from, to model.User, subject string, minute int) (model.Request, model.Task) {
	at := f.base.Add(time.Duration(minute) * time.Minute)
	req := model.Request{
		ID:         reqID,
		OrgID:      1,
		FromUserID: from.ID,
		ToUserID:   &to.ID,
		Subject:    subject,
		Content:    subject + " please",
		Status:     model.StatusPending,
		Priority:   model.PriorityNormal,
		CreatedAt:  at,
	}
	Expect(f.stores.Requests().Create(f.ctx, &req)).To(Succeed())

	task := model.Task{
		ID:          reqID + 1000,
		UserID:      to.ID,
		RequestID:   req.ID,
		Title:       "Request from " + from.Name,
		Description: &req.Content,
		Status:      model.StatusPending,
		Priority:    model.PriorityNormal,
		CreatedAt:   at,
	}
	Expect(f.stores.Tasks().Create(f.ctx, &task)).To(Succeed())
	return req, task
}

func (f *fixture) agent(client llm.Client) *brain.Agent {
	return brain.NewAgent(f.stores, client, f.lifecycle, brain.NewEvalRecorder(f.stores.LLMEvals(), client.Model()))
}

func (f *fixture) outgoing(user model.User) []model.Request {
	reqs, err := f.stores.Requests().ListOutgoing(f.ctx, user.ID, nil, 0)
	Expect(err).NotTo(HaveOccurred())
	return reqs
}

func (f *fixture) tasksOf(user model.User) []model.Task {
	tasks, err := f.stores.Tasks().ListByUser(f.ctx, user.ID, nil, 0)
	Expect(err).NotTo(HaveOccurred())
	return tasks
}

func (f *fixture) notificationsOf(user model.User) []model.Notification {
	ns, err := f.stores.Notifications().ListByUser(f.ctx, user.ID, false, 0)
	Expect(err).NotTo(HaveOccurred())
	return ns
}

func ptr[T any](v T) *T {
	return &v
}

// failingNotificationsTx runs transactions on an inner TxRunner but fails
// every notification insert made inside them.
type failingNotificationsTx struct {
	inner brain.TxRunner
	err   error
}

func (r failingNotificationsTx) WithTx(ctx context.Context, fn func(stores brain.StoreProvider) error) error {
	return r.inner.WithTx(ctx, func(stores brain.StoreProvider) error {
		return fn(failingNotificationsStores{StoreProvider: stores, err: r.err})
	})
}

type failingNotificationsStores struct {
	brain.StoreProvider
	err error
}

func (s failingNotificationsStores) Notifications() store.NotificationStore {
	return failingNotificationStore{NotificationStore: s.StoreProvider.Notifications(), err: s.err}
}

type failingNotificationStore struct {
	store.NotificationStore
	err error
}

func (s failingNotificationStore) Create(context.Context, *model.Notification) error {
	return s.err
}
