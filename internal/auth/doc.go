// Package auth provides token-based authentication for the task manager.
//
// # Tokens
//
// Identities authenticate with HS256-signed JWTs issued at login or
// registration. Tokens carry the username in the "sub" claim and expire
// after a fixed hour; there is no refresh or rotation, so re-login is
// the only renewal path. The signing secret is injected at construction
// from configuration, never read from ambient globals, so tests can use
// distinct secrets per run.
//
// # Namespaces
//
// Users and admins are separate identity namespaces. A token says who
// the caller is, not which namespace they meant: the caller declares a
// role per request and the gateway resolves the username against that
// namespace. The same username can therefore denote two different
// identities depending on the declared role.
//
// # Request Context
//
// The access gateway attaches an AuthContext to the request context via
// WithAuth; handlers retrieve it with FromContext.
package auth
