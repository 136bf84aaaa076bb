// Package session holds the client's view of the current authenticated
// identity: the Session value, the owned State that guards it, and the
// Persistence adapter that mirrors it to a durable slot.
//
// Invariants:
//   - IsAuthenticated implies a non-empty AccessToken.
//   - A TokenExpiry in the past means the session must be treated as
//     unauthenticated, even if the tokens are still present.
//   - User is only meaningful while authenticated, and may be nil right
//     after login until the profile has been fetched.
package session
