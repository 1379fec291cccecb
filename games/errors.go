/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrUnauthorized = errors.New("unauthorized")
	ErrAlreadyActed = errors.New("already acted")
	ErrValidation   = errors.New("validation error")
	ErrUpstream     = errors.New("upstream failure")
)

// Code maps err onto the short identifier sent to clients alongside the
// human-readable message.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrAlreadyActed):
		return "already_acted"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	default:
		return "internal"
	}
}
