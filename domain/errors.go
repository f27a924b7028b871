package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("internal server error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("your requested item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("your item already exists")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("given param is not valid")
	// ErrForbidden will throw if the actor does not own the resource it mutates
	ErrForbidden = errors.New("you are not allowed to perform this action")
	// ErrUnauthenticated will throw if no authenticated identity is present
	ErrUnauthenticated = errors.New("user not authenticated")
	// ErrCacheMiss will throw if a cache lookup has no entry for the key
	ErrCacheMiss = errors.New("cache miss")
)
