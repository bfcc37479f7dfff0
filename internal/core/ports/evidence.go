package ports

import "context"

// EvidenceStore is the opaque blob-reference registry for delivery proof
// photos. Uploads happen outside this core; the store only answers whether a
// reference points at a stored blob.
type EvidenceStore interface {
	Register(ctx context.Context, reference, uploadedBy string) error
	Exists(ctx context.Context, reference string) (bool, error)
}
