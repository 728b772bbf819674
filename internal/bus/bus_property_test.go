//go:build property
// +build property

package bus

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestBusFanoutProperties checks the broadcast invariants over generated
// publish/attach interleavings.
func TestBusFanoutProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property: a receiver drains exactly as many notifications as were
	// published while it was attached.
	properties.Property("exact delivery count", prop.ForAll(
		func(before, after int) bool {
			b := New()
			defer b.Close()

			for i := 0; i < before; i++ {
				if err := b.Publish(); err != nil {
					return false
				}
			}

			r := b.Attach()
			defer r.Detach()

			for i := 0; i < after; i++ {
				if err := b.Publish(); err != nil {
					return false
				}
			}

			drained := 0
			for r.TryReceive() {
				drained++
			}

			return drained == after
		},
		gen.IntRange(0, 64),
		gen.IntRange(0, 64),
	))

	// Property: every concurrently attached receiver counts the same
	// stream, independent of the others.
	properties.Property("uniform fanout", prop.ForAll(
		func(receivers, published int) bool {
			b := New()
			defer b.Close()

			rs := make([]*Receiver, receivers)
			for i := range rs {
				rs[i] = b.Attach()
			}

			for i := 0; i < published; i++ {
				if err := b.Publish(); err != nil {
					return false
				}
			}

			for _, r := range rs {
				if r.Pending() != published {
					return false
				}
				r.Detach()
			}

			return true
		},
		gen.IntRange(1, 16),
		gen.IntRange(0, 64),
	))

	properties.TestingRun(t)
}
