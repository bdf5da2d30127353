package repositories

import "errors"

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateCode = errors.New("model code already exists")
	// ErrStateChanged means the row exists but was not in the state a
	// conditional update required.
	ErrStateChanged = errors.New("record state changed")
)
