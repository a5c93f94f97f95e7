// Package webauth provides the authentication and session subsystem for
// a web application: bcrypt credential hashing, stateless JWT bearer
// tokens, the register/login/who-am-i flows, an HTTP middleware gate,
// and Bun-backed account storage.
//
// Tokens:
//   - A token is a single long-lived bearer credential bound to one
//     account id. There is no revocation list; a token stays valid until
//     it expires or the signing secret rotates.
//   - Validation is uniform: malformed, badly signed, expired, and
//     wrong-algorithm tokens all produce the same negative result so the
//     verifier cannot be used as an oracle.
//
// Accounts:
//   - The account store owns the email uniqueness constraint. The
//     register flow pre-checks the email but treats a constraint
//     violation from the store as the same conflict, which keeps
//     concurrent registrations correct without extra locking.
//
// The session subpackage mirrors the server-side identity into a
// client-held state machine; see session.Manager.
package webauth
