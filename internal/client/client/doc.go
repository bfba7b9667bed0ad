// Package client talks to the visitorhub gRPC service.
//
// GRPCClient keeps the access token returned by Register or Login and sends
// it as "authorization: Bearer <token>" metadata on every later call. gRPC
// status codes are mapped back onto sentinel errors (ErrUnavailable,
// ErrUnauthorized, ErrAlreadyExists, ErrInvalidInput, ErrRateLimited) so
// callers can match them with errors.Is.
package client
