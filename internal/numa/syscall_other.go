//go:build !linux

package numa

import "errors"

// move_pages(2) has no equivalent outside Linux; PageNode degrades to the
// round-robin fallback path on these platforms.
const sysMovePages = 0

var errNoMovePages = errors.New("numa: move_pages unsupported on this platform")
