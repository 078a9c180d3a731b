// Package client talks to the Glider vault service.
//
// # Overview
//
// Client is the API the CLI programs against. GRPCClient implements it over
// gRPC with the JSON codec: an interceptor attaches the session token and
// device descriptors to every call, gives create calls an idempotency key,
// and retries those once on Unavailable with the same key so the server
// replays the first result instead of creating a second password.
//
// # Error Handling
//
// Status codes are mapped back to the sentinels in internal/common
// (ErrNotFound, ErrForbidden, ErrUnauthenticated, a *common.FieldError for
// invalid arguments, ...) plus ErrUnavailable and ErrInProgress from this
// package. Match them with errors.Is.
package client
