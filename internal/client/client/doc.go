// Package client is the authenticated HTTP client for the gym platform API.
//
// # Overview
//
// HTTPClient wraps every outbound call with the session policy:
//  1. The access token from the token store is attached as a bearer
//     credential; calls without a token go out unauthenticated.
//  2. A 401 with a stored refresh token triggers exactly one reissue
//     (POST /reissue over a bare transport) and one replay of the original
//     call. Concurrent reissues for the same refresh token are coalesced.
//  3. No response at all, a 401 that cannot be recovered, a failed reissue,
//     and any 403 clear the token store.
//
// # Error Handling
//
// Authentication-class failures map to sentinel errors (ErrUnavailable,
// ErrUnauthorized, ErrForbidden, ErrRefreshFailed) matched with errors.Is.
// Feature-level failures are returned as *APIError whose Message is taken
// from the response body when present.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept a
// context.Context; cancelling it never clears tokens.
package client
