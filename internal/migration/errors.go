package migration

import "fmt"

// MigrationError is the single error type the migration engine returns to
// callers. The underlying package-level cause is preserved for diagnostics
// via Unwrap.
type MigrationError struct {
	Message string
	Err     error
}

func (e *MigrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("migration failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("migration failed: %s", e.Message)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}
