// Package observability builds the console's zap logger and carries
// request-scoped fields (request ID, analysis run ID) through context.
package observability
