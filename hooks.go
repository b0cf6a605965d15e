package llmcache

// Hooks are lightweight callbacks for high-signal cache events.
// Implementations MUST be cheap and non-blocking; they run on the lookup path.
type Hooks interface {
	// Every Lookup/Resolve reports where it was served from.
	LookupResolved(namespace string, src Source)

	// A legacy entry was copied to its current key and the legacy key removed.
	Migrated(legacyKey, currentKey string)

	// Both slots were populated; the current value won and legacy was left as is.
	// InMemory reports it on every such lookup. ProviderCache only reports it
	// when a migration finds the current key already written, since its
	// current-key hit path does not read the legacy slot.
	LegacyShadowed(currentKey, legacyKey string)

	// An entry was deleted on read.
	// reason ∈ {"corrupt", "scheme_mismatch", "value_decode"}
	SelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// The migrate step failed after the legacy entry was read.
	MigrationFailed(legacyKey string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) LookupResolved(string, Source) {}
func (NopHooks) Migrated(string, string)       {}
func (NopHooks) LegacyShadowed(string, string) {}
func (NopHooks) SelfHeal(string, string)       {}
func (NopHooks) ProviderSetRejected(string)    {}
func (NopHooks) MigrationFailed(string, error) {}
