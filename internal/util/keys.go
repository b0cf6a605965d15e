package util

import "strings"

const storagePrefix = "llm:"

// StorageKey namespaces a derived cache key for a shared provider:
// llm:<ns>:<digest>
func StorageKey(ns, digest string) string {
	return storagePrefix + ns + ":" + digest
}

// SplitStorageKey reverses StorageKey. ok is false for keys this package did
// not build.
func SplitStorageKey(storageKey string) (ns, digest string, ok bool) {
	rest, found := strings.CutPrefix(storageKey, storagePrefix)
	if !found {
		return "", "", false
	}
	i := strings.LastIndexByte(rest, ':')
	if i < 0 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
