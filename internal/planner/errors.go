package planner

import (
	"errors"
	"fmt"

	"group-planner/internal/storage"
)

// ValidationError reports malformed or missing required input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

// NotFoundError reports an unknown session, participant, or plan id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// StateError reports an operation that is invalid for the entity's current
// state. The entity is left untouched.
type StateError struct {
	Op     string
	Entity string
	State  string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s is in state %s", e.Op, e.Entity, e.State)
}

// OracleError reports a failed or timed-out plan oracle call. The
// generation or revision aborts and no new plan version is persisted.
type OracleError struct {
	Op  string
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("plan oracle %s failed: %v", e.Op, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

// translateNotFound maps the storage sentinel onto the engine's taxonomy.
func translateNotFound(err error, entity, id string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return err
}
