package ledgerstore

import "errors"

// ErrCorrupt indicates the persisted document could not be decoded.
// It is not recoverable by retrying; operator intervention is required.
var ErrCorrupt = errors.New("ledger document corrupt")
