package llmcache

import (
	"fmt"
)

// MigrationError reports a failed legacy -> current migration.
// WriteErr means the value is still only reachable under the legacy key.
// DeleteErr alone means the value was written under the current key and the
// legacy entry is left behind as a shadow.
type MigrationError struct {
	LegacyKey  string
	CurrentKey string
	WriteErr   error
	DeleteErr  error
}

func (e *MigrationError) Error() string {
	switch {
	case e.WriteErr != nil && e.DeleteErr != nil:
		return fmt.Sprintf("migrate %q -> %q failed: write=%v; delete=%v",
			e.LegacyKey, e.CurrentKey, e.WriteErr, e.DeleteErr)
	case e.WriteErr != nil:
		return fmt.Sprintf("migrate %q -> %q: write current failed: %v", e.LegacyKey, e.CurrentKey, e.WriteErr)
	case e.DeleteErr != nil:
		return fmt.Sprintf("migrate %q -> %q: delete legacy failed: %v", e.LegacyKey, e.CurrentKey, e.DeleteErr)
	default:
		return fmt.Sprintf("migrate %q -> %q: unknown error", e.LegacyKey, e.CurrentKey)
	}
}

func (e *MigrationError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.WriteErr != nil {
		errs = append(errs, e.WriteErr)
	}
	if e.DeleteErr != nil {
		errs = append(errs, e.DeleteErr)
	}
	return errs
}
