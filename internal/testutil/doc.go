// Package testutil contains helper builders and fakes used across tests to
// reduce boilerplate when constructing tick contexts and host oracles.
// These helpers are intentionally minimal. They are not intended for
// production usage.
package testutil
