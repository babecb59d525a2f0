package notify

import "errors"

// ErrStaleHandle is returned by Slots.Release when the handle's observer has
// already been released.
var ErrStaleHandle = errors.New("stale observer handle")
