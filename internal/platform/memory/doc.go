// Package memory provides in-process implementations of the store interfaces.
//
// Every store guards its map with a mutex and copies values on the way in and
// out, so callers can never mutate stored state through a returned value.
// The stores back the test suites and the "memory" database driver used for
// demos and local experiments.
package memory
