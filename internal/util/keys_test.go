package util

import "testing"

func TestStorageKeyRoundTrip(t *testing.T) {
	cases := []struct{ ns, digest string }{
		{"chat", "abc123"},
		{"app:prod:chat", "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{"", "x"},
	}
	for _, tc := range cases {
		k := StorageKey(tc.ns, tc.digest)
		ns, d, ok := SplitStorageKey(k)
		if !ok || ns != tc.ns || d != tc.digest {
			t.Fatalf("SplitStorageKey(%q) = %q,%q,%v; want %q,%q", k, ns, d, ok, tc.ns, tc.digest)
		}
	}
}

func TestSplitStorageKeyRejectsForeign(t *testing.T) {
	for _, k := range []string{"single:user:1", "llm:nocolon", ""} {
		if _, _, ok := SplitStorageKey(k); ok {
			t.Fatalf("expected %q to be rejected", k)
		}
	}
}
