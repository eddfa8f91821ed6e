// Package cache provides a TTL cache for expensive generation results such
// as keyword research and outlines. The cache front-end handles JSON
// encoding, hit/miss accounting, and a global bypass switch; storage is
// pluggable behind the Backend interface, with in-memory and Redis
// implementations.
package cache
