// Package state persists the workspace hash state.
//
// Hashing large data files is the expensive part of status and pull. The
// hash state remembers, per workspace file, the size and modification time
// it had when it was last hashed together with the resulting digest, so an
// unchanged file is never read twice. The state lives in .dsync/tmp and is
// only a cache: deleting it is always safe.
//
// Key concepts:
//   - HashState: the persisted path -> (size, mtime, digest) table
//   - Store: loads and saves a HashState
//   - CachedHasher: a hash.Hasher front end consulting and updating the state
package state
