package localize

import (
	"fmt"

	"github.com/google/renameio/v2"
)

// Persist atomically replaces path with text. The content goes to a pending
// file next to path which is renamed over it only after a complete write, so
// a failure leaves the original file as it was. Existing permissions are kept.
func Persist(path, text string) error {
	pending, err := renameio.NewPendingFile(path,
		renameio.WithPermissions(0o644),
		renameio.WithExistingPermissions(),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersistFailed, path, err)
	}
	defer pending.Cleanup()

	if _, err := pending.WriteString(text); err != nil {
		return fmt.Errorf("%w: %s: write: %w", ErrPersistFailed, path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("%w: %s: replace: %w", ErrPersistFailed, path, err)
	}
	return nil
}
