// Package installer fetches the prebuilt pingtunnel binary and places it
// into the managed install tree. The fetcher is an interface so the
// lifecycle controller can be tested without network access.
package installer

import (
	"context"
)

// BinaryInstaller downloads a release of the tunnel binary and places it
// under targetDir, returning the path of the executable.
type BinaryInstaller interface {
	FetchAndPlaceBinary(ctx context.Context, version string, targetDir string) (string, error)
}
