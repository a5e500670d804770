package brain

import (
	"errors"
	"fmt"

	"agentcomm.app/relay/internal/store"
)

var (
	// ErrTaskNotFound also covers tasks owned by someone else.
	ErrTaskNotFound    = fmt.Errorf("task %w", store.ErrNotFound)
	ErrRequestNotFound = fmt.Errorf("request %w", store.ErrNotFound)

	// ErrInvalidState is returned when the entity is no longer in a state the
	// operation applies to, including losing a concurrent completion.
	ErrInvalidState = errors.New("invalid state")

	ErrNotOwner = errors.New("not the owner")

	// ErrUnresolvedTarget means the routed user or team does not resolve to an
	// active member of the requester's organization.
	ErrUnresolvedTarget = errors.New("routing target could not be resolved")

	ErrNoOrganization = errors.New("user does not belong to the organization")
)
