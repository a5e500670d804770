package service_test

import (
	"context"
	"time"

	"agentcomm.app/relay/internal/brain"
	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/service"
	"agentcomm.app/relay/internal/store"
)

type mockUserStore struct {
	getByIDFn       func(ctx context.Context, id int64) (*model.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*model.User, error)
	getByWorkOSIDFn func(ctx context.Context, workosID string) (*model.User, error)
	createFn        func(ctx context.Context, user *model.User) error
	updateFn        func(ctx context.Context, user *model.User) error
}

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) GetByWorkOSID(ctx context.Context, workosID string) (*model.User, error) {
	if m.getByWorkOSIDFn != nil {
		return m.getByWorkOSIDFn(ctx, workosID)
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) ListByOrg(context.Context, int64) ([]model.User, error) {
	return nil, nil
}

func (m *mockUserStore) ListByTeam(context.Context, int64) ([]model.User, error) {
	return nil, nil
}

func (m *mockUserStore) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserStore) Update(ctx context.Context, user *model.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

type mockSessionStore struct {
	getValidFn func(ctx context.Context, id int64) (*model.Session, error)
	deleteFn   func(ctx context.Context, id int64) error
}

func (m *mockSessionStore) GetByID(ctx context.Context, id int64) (*model.Session, error) {
	return m.GetValid(ctx, id)
}

func (m *mockSessionStore) GetValid(ctx context.Context, id int64) (*model.Session, error) {
	if m.getValidFn != nil {
		return m.getValidFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockSessionStore) Create(context.Context, *model.Session) error { return nil }

func (m *mockSessionStore) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockSessionStore) DeleteExpired(context.Context) error { return nil }

type mockOrganizationStore struct {
	getByIDFn   func(ctx context.Context, id int64) (*model.Organization, error)
	createFn    func(ctx context.Context, org *model.Organization) error
	createCalls int
}

func (m *mockOrganizationStore) GetByID(ctx context.Context, id int64) (*model.Organization, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &model.Organization{ID: id}, nil
}

func (m *mockOrganizationStore) Create(ctx context.Context, org *model.Organization) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, org)
	}
	return nil
}

type mockTeamStore struct {
	getByIDFn func(ctx context.Context, id int64) (*model.Team, error)
	createFn  func(ctx context.Context, team *model.Team) error
}

func (m *mockTeamStore) GetByID(ctx context.Context, id int64) (*model.Team, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockTeamStore) ListByOrg(context.Context, int64) ([]model.Team, error) { return nil, nil }

func (m *mockTeamStore) Create(ctx context.Context, team *model.Team) error {
	if m.createFn != nil {
		return m.createFn(ctx, team)
	}
	return nil
}

type mockNotificationStore struct {
	listByUserFn  func(ctx context.Context, userID int64, unreadOnly bool, limit int32) ([]model.Notification, error)
	markReadFn    func(ctx context.Context, id, userID int64) (bool, error)
	markAllReadFn func(ctx context.Context, userID int64) (int64, error)
}

func (m *mockNotificationStore) Create(context.Context, *model.Notification) error { return nil }

func (m *mockNotificationStore) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int32) ([]model.Notification, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, unreadOnly, limit)
	}
	return nil, nil
}

func (m *mockNotificationStore) MarkRead(ctx context.Context, id, userID int64) (bool, error) {
	if m.markReadFn != nil {
		return m.markReadFn(ctx, id, userID)
	}
	return false, nil
}

func (m *mockNotificationStore) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	if m.markAllReadFn != nil {
		return m.markAllReadFn(ctx, userID)
	}
	return 0, nil
}

type mockStoreProvider struct {
	orgs     *mockOrganizationStore
	teams    *mockTeamStore
	users    *mockUserStore
	sessions *mockSessionStore
}

func (m *mockStoreProvider) Organizations() store.OrganizationStore { return m.orgs }
func (m *mockStoreProvider) Teams() store.TeamStore                 { return m.teams }
func (m *mockStoreProvider) Users() store.UserStore                 { return m.users }
func (m *mockStoreProvider) Sessions() store.SessionStore           { return m.sessions }

type mockTxRunner struct {
	stores   service.StoreProvider
	txCalls  int
	withTxFn func(ctx context.Context, fn func(stores service.StoreProvider) error) error
}

func (m *mockTxRunner) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	m.txCalls++
	if m.withTxFn != nil {
		return m.withTxFn(ctx, fn)
	}
	return fn(m.stores)
}

type mockMessageHandler struct {
	handleFn func(ctx context.Context, user model.User, message string, orgID int64) (*brain.Reply, error)
}

func (m *mockMessageHandler) HandleUserMessage(ctx context.Context, user model.User, message string, orgID int64) (*brain.Reply, error) {
	if m.handleFn != nil {
		return m.handleFn(ctx, user, message, orgID)
	}
	return &brain.Reply{Text: "ok"}, nil
}

type mockLifecycle struct {
	completeTaskFn  func(ctx context.Context, responder model.User, taskID int64, response string) (*brain.Completion, error)
	cancelRequestFn func(ctx context.Context, requester model.User, requestID int64) (*brain.Cancellation, error)
	listOutgoingFn  func(ctx context.Context, userID int64, status *model.Status, limit int32) ([]model.Request, error)
	listTasksFn     func(ctx context.Context, userID int64, status *model.Status, limit int32) ([]model.Task, error)
}

func (m *mockLifecycle) CompleteTask(ctx context.Context, responder model.User, taskID int64, response string) (*brain.Completion, error) {
	if m.completeTaskFn != nil {
		return m.completeTaskFn(ctx, responder, taskID, response)
	}
	return &brain.Completion{}, nil
}

func (m *mockLifecycle) CancelRequest(ctx context.Context, requester model.User, requestID int64) (*brain.Cancellation, error) {
	if m.cancelRequestFn != nil {
		return m.cancelRequestFn(ctx, requester, requestID)
	}
	return &brain.Cancellation{}, nil
}

func (m *mockLifecycle) ListOutgoing(ctx context.Context, userID int64, status *model.Status, limit int32) ([]model.Request, error) {
	if m.listOutgoingFn != nil {
		return m.listOutgoingFn(ctx, userID, status, limit)
	}
	return nil, nil
}

func (m *mockLifecycle) ListTasks(ctx context.Context, userID int64, status *model.Status, limit int32) ([]model.Task, error) {
	if m.listTasksFn != nil {
		return m.listTasksFn(ctx, userID, status, limit)
	}
	return nil, nil
}

func activeUser(id int64, orgID *int64) *model.User {
	return &model.User{ID: id, OrgID: orgID, Name: "Alice", Email: "alice@example.com", IsActive: true, CreatedAt: time.Now()}
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(s string) *string { return &s }
