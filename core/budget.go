package core

import (
	"fmt"
	"sync/atomic"
)

// modelBudget counts the model calls of one run. Every RunContext derived
// from the run shares it. A zero max never runs out.
type modelBudget struct {
	max  int64
	used atomic.Int64
}

func (b *modelBudget) spend() error {
	n := b.used.Add(1)
	if b.max > 0 && n > b.max {
		return fmt.Errorf("%w: %d", ErrModelCallLimit, b.max)
	}
	return nil
}
