package domain

import "errors"

// Sentinel errors for the business-rule taxonomy. Services wrap these with
// %w and handlers match with errors.Is, so the HTTP mapping lives in exactly
// one place.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Tree and slug specific errors. Each carries its generic sentinel in the
// errors.Is chain: handlers only need to know about the five sentinels above,
// while services and tests can still distinguish the exact rule that fired.
var (
	// ErrDepthExceeded means a create or move would push a node past MaxDepth.
	ErrDepthExceeded = &ruleError{msg: "maximum nesting depth exceeded", is: ErrValidation}

	// ErrCyclicMove means a move target is the node itself or one of its descendants.
	ErrCyclicMove = &ruleError{msg: "cannot move a node under itself or its descendants", is: ErrValidation}

	// ErrHasChildren blocks deletion of a node that still has children.
	ErrHasChildren = &ruleError{msg: "node has children", is: ErrConflict}

	// ErrDuplicateSlug means a slug collides with an existing entity of the same kind.
	ErrDuplicateSlug = &ruleError{msg: "slug already in use", is: ErrConflict}
)

type ruleError struct {
	msg string
	is  error
}

func (e *ruleError) Error() string { return e.msg }

// Is lets errors.Is match both the rule error itself and its generic sentinel.
func (e *ruleError) Is(target error) bool {
	return target == error(e) || target == e.is
}

// ConflictError is a conflict that knows which resource already exists, so
// handlers can return the existing resource alongside the 409.
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string
}

func (e *ConflictError) Error() string { return e.Message }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
