// Package httpapi is the HTTP transport for the boardauth service: chi
// routes under /v1/auth, the JSON response envelope, auth cookies and the
// mapping from Engine errors to status codes.
package httpapi
