// Package cache implements the content-addressed result store for
// synthesized audio. Entries are keyed by a hash over the request
// inputs; payloads above a threshold are zstd-compressed on disk.
package cache
