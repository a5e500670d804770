// Package sqlitestore implements the store interfaces on the local SQLite
// backend. Queries mirror core/db/queries with sqlite placeholders.
package sqlitestore

import (
	"database/sql"
	"errors"
	"time"

	"agentcomm.app/relay/internal/store"
	"github.com/jmoiron/sqlx"
)

// Stores binds every store to one handle: the database or an open transaction.
type Stores struct {
	ext sqlx.ExtContext
}

func NewStores(ext sqlx.ExtContext) *Stores {
	return &Stores{ext: ext}
}

var _ store.Provider = (*Stores)(nil)

func (s *Stores) Organizations() store.OrganizationStore {
	return &organizationStore{ext: s.ext}
}

func (s *Stores) Teams() store.TeamStore {
	return &teamStore{ext: s.ext}
}

func (s *Stores) Users() store.UserStore {
	return &userStore{ext: s.ext}
}

func (s *Stores) Requests() store.RequestStore {
	return &requestStore{ext: s.ext}
}

func (s *Stores) Tasks() store.TaskStore {
	return &taskStore{ext: s.ext}
}

func (s *Stores) Notifications() store.NotificationStore {
	return &notificationStore{ext: s.ext}
}

func (s *Stores) Sessions() store.SessionStore {
	return &sessionStore{ext: s.ext}
}

func (s *Stores) LLMEvals() store.LLMEvalStore {
	return &llmEvalStore{ext: s.ext}
}

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// sqlite treats a negative LIMIT as unbounded.
func limitArg(limit int32) int32 {
	if limit <= 0 {
		return -1
	}
	return limit
}

func statusArg[S ~string](s *S) any {
	if s == nil {
		return nil
	}
	return string(*s)
}
