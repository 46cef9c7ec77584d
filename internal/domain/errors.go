package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrRateLimited        = errors.New("rate limited")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrBadResponse        = errors.New("unexpected response shape")
	ErrRPCUnavailable     = errors.New("rpc unavailable")
	ErrAmbiguousWallet    = errors.New("ambiguous wallet topology")
	ErrNotDispatchOwner   = errors.New("signer not authorized for owner contract dispatch")
	ErrMissingCredentials = errors.New("missing credentials")
)
