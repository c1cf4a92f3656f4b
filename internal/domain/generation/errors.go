package generation

import "errors"

// ErrInvalidContent indicates the final model output did not parse as JSON.
// Terminal for the attempt; never retried.
var ErrInvalidContent = errors.New("generated content is not valid JSON")

// ErrVersionConflict indicates the atomic version insert kept colliding with
// concurrent generations for the same cluster.
var ErrVersionConflict = errors.New("generation version conflict")
