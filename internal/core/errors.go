package core

import "errors"

var (
	// ErrNotFound means the post or another resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStaleAction means the post's status is no longer Reviewing, so the
	// attempted transition lost to an earlier one.
	ErrStaleAction = errors.New("post is not reviewing anymore")

	// ErrForbidden means the actor lacks the right for the action.
	ErrForbidden = errors.New("not authorized")

	// ErrInvalidInput covers empty reason text, unknown tags and malformed
	// command arguments.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotApplicable means the operation has no meaning for the post, e.g.
	// a spoiler toggle on media without spoiler support.
	ErrNotApplicable = errors.New("not applicable")
)
