package request

import "errors"

var (
	ErrRequestNotFound  = errors.New("request not found")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrDuplicateRequest = errors.New("an open request of this type already exists for the same dates")
	ErrNotAuthorized    = errors.New("not authorized to decide this request")
	ErrAlreadyTerminal  = errors.New("request already reached a final status")
	ErrCannotWithdraw   = errors.New("request cannot be withdrawn")
	ErrForbiddenView    = errors.New("not allowed to view this request")
)
