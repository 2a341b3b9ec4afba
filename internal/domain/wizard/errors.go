package wizard

import "errors"

var (
	ErrDraftNotFound  = errors.New("draft not found")
	ErrStepIncomplete = errors.New("current step is incomplete")
	ErrLastStep       = errors.New("already at the last step")
	ErrFirstStep      = errors.New("already at the first step")
	ErrNotReady       = errors.New("booking form is not ready to submit")
	ErrDraftBusy      = errors.New("draft is being changed by another request")

	// ErrUnresolvedImage means illustration_url still holds a data: URI.
	ErrUnresolvedImage = errors.New("illustration must be uploaded before booking")
)
