// Package redlock implements a distributed mutual-exclusion lock over a set
// of independent key-value servers, following the Redlock quorum algorithm.
// A caller names a resource (one key, or a set of keys that must be locked
// atomically) and requests a lease of bounded duration; the returned Lock can
// be extended or released until it expires.
//
// The package talks to servers only through the ServerClient interface, so
// any backend capable of an atomic compare-and-set script (Redis, or
// anything EVAL-shaped) can be plugged in; see the redisclient package for a
// ready-made adapter.
package redlock
