// Package llmcache implements a content-addressed cache for LLM results keyed by
// (prompt, llm key) pairs. Keys are digests of the joined inputs and come in two
// generations: the current SHA3-256 scheme and the legacy SHA-1 scheme. Writes
// only ever use the current scheme. Reads check current first, then legacy, and
// a legacy hit is migrated to the current key before the legacy entry is removed.
//
// Components:
//   - Key / LegacyKey: pure key derivation for both schemes.
//   - InMemory[V]: values held directly in a MemoryStore[V]; Global() shares one
//     process-wide store across handles.
//   - New[V]: provider-backed cache. Values go through a Codec[V] and are framed
//     before hitting a Provider (Ristretto, BigCache, Redis, SQLite, ...).
//   - Locker: per-key serialization of the migrate step and of Update, local
//     (striped mutexes) or Redis-backed for stores shared across processes.
//
// Slot states per logical key (current, legacy):
//
//	Empty        (no,  no)  miss
//	CurrentOnly  (yes, no)  hit current
//	LegacyOnly   (no,  yes) hit legacy, migrate -> CurrentOnly
//	Both         (yes, yes) hit current, legacy left untouched
package llmcache
