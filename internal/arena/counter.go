// SPDX-License-Identifier: Unlicense OR MIT

package arena

import "sync/atomic"

// atomicCounter hands out monotonically increasing ids, the Go stand-in
// for using an object's own address as its identity.
type atomicCounter struct {
	n atomic.Uint64
}

func (c *atomicCounter) next() uint64 {
	return c.n.Add(1)
}
