package user

import "errors"

var (
	ErrNotFound = errors.New("user not found")
	// ErrConflict: UPDATE не затронул ни одной строки, хотя строка с таким id существует.
	ErrConflict = errors.New("user update conflict")
)
