// Package services implements clients for the wiki REST API's correction endpoints.
//
// # Correction API
//
// [CorrectionAPI] is the read surface the query cache and page loader depend on:
// one correction, its revisions, its baseline diff, a diff between two corrections,
// an entity's correction history and its pending correction.
//
// [Moderator] is the write surface (approve or reject). The diff resolution core never calls it.
//
// # Transport
//
// [APIService] is the raw HTTP client. It resolves paths against the configured base URL and attaches:
//   - a bearer token via [oauth2.StaticTokenSource] when api.token is set
//   - the session cookie and extra headers from api.cookie / api.headers
//   - a client-side rate limit via [rate.Limiter] when api.rate_limit is positive
//
// Responses are either bare JSON or a {"status": ..., "data": ...} envelope; both decode the same way.
//
// # Error Handling
//
// Non-2xx responses become an [APIError] whose Unwrap maps the status code to a shared sentinel:
//   - 404 : [shared.ErrNotFound]
//   - 400, 422 : [shared.ErrValidation]
//   - 401, 403 : [shared.ErrNotAuthenticated]
//   - 5xx : [shared.ErrServerError]
//   - transport failure : [shared.ErrAPIRequest]
//
// Malformed payloads (including a diff entry with both sides null) return [shared.ErrInvalidResponse].
package services
