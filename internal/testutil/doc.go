// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing raw event streams and shared states. They
// are not intended for production usage.
package testutil
