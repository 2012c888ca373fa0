// Package http provides HTTP handlers and middleware for the eventboard API.
//
// The router exposes the following endpoints:
//   - POST /register: creates a user from {"user_name","surname","email",
//     "password","user_group","phone"}. Returns 201 {"success":true}; 409 when
//     the e-mail is taken.
//   - POST /login: returns {"token","expiresAt"} for valid credentials.
//   - GET /me: token required. Returns {"id","email","isAdmin","exp"} where
//     isAdmin is recomputed from the current allow-list.
//   - GET /events, GET /events/{id}: public listing and lookup.
//   - POST /events, PATCH /events/{id}, DELETE /events/{id}: require a token
//     whose admin claim is set.
//   - POST /subscribe, POST /unsubscribe with {"event_id"}, GET
//     /subscriptions/{eventId} and GET /my-subscriptions: any authenticated user.
//   - GET /time: {"nowMs","nowIso"} for clock skew diagnostics.
//   - GET /debug-token: unverified decode of the bearer or ?t= token.
//
// Errors share one body shape, {"error","code"} plus "fields" for validation
// failures and "expiredAt"/"now" for expired tokens.
package http
