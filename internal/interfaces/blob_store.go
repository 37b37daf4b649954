package interfaces

import (
	"context"
	"io"
)

// BlobStore durably persists raw page images under the core's exclusive
// control, addressed by opaque locator.
type BlobStore interface {
	// Put copies the source's bytes into storage before returning; the
	// caller's reader may be ephemeral. A failed copy leaves no partial file
	// behind. nameHint is the original filename, used only for its extension.
	Put(ctx context.Context, source io.Reader, nameHint string) (string, error)

	// Open returns a reader over a stored blob.
	Open(locator string) (io.ReadCloser, error)

	// Delete removes a blob. A missing blob is not an error: callers must
	// tolerate already-absent files.
	Delete(locator string) error
}
