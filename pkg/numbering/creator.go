// Package numbering implements the sequential creation protocol that keeps
// item numbers identical between the source project and the target
// repository. The target assigns numbers itself and never reuses them, so
// the only way to land an item on a specific number is to create items
// strictly in order, filling the gaps with placeholders that get deleted at
// the end. Every single creation is verified: if the target ever hands back
// an unexpected number, the migration cannot be salvaged and aborts.
package numbering

import (
	"sort"

	"github.com/go-logr/logr"
)

// Ops defines the operations the protocol needs for one item kind. The
// implementation owns everything item-specific: what a placeholder looks
// like, how the real item is assembled, and how a placeholder is discarded
// (deleted, or closed and marked when the target forbids deletion).
type Ops interface {
	// Kind returns the item kind name, used in logs and errors
	Kind() string

	// Create creates the real item for the given source number and returns
	// the number the target assigned
	Create(number int) (int, error)

	// CreatePlaceholder creates a gap-filling placeholder and returns the
	// number the target assigned
	CreatePlaceholder() (int, error)

	// DiscardPlaceholder removes a placeholder created earlier
	DiscardPlaceholder(number int) error
}

// Result summarizes one protocol run
type Result struct {
	Created      int
	Placeholders int
}

// Creator runs the sequential creation protocol
type Creator struct {
	logger logr.Logger
}

// NewCreator creates a protocol runner
func NewCreator(logger logr.Logger) *Creator {
	return &Creator{logger: logger}
}

// Run creates one item per source number, at that exact number, on a target
// whose numbering space for this kind is empty. Numbers need not be
// contiguous; gaps are filled with placeholders that are discarded after all
// real items exist. Input order does not matter. Duplicate or non-positive
// numbers are rejected before anything is created.
func (c *Creator) Run(ops Ops, numbers []int) (*Result, error) {
	sorted := make([]int, len(numbers))
	copy(sorted, numbers)
	sort.Ints(sorted)

	for i, n := range sorted {
		if n < 1 {
			return nil, &SequenceError{
				Kind:    ops.Kind(),
				Message: "numbers must be positive",
			}
		}
		if i > 0 && sorted[i-1] == n {
			return nil, &SequenceError{
				Kind:    ops.Kind(),
				Message: "duplicate number in sequence",
			}
		}
	}

	result := &Result{}
	var placeholders []int
	next := 1

	for _, n := range sorted {
		for next < n {
			assigned, err := ops.CreatePlaceholder()
			if err != nil {
				return nil, err
			}
			if assigned != next {
				return nil, &VerificationError{Kind: ops.Kind(), Expected: next, Actual: assigned}
			}
			c.logger.V(1).Info("created placeholder", "kind", ops.Kind(), "number", assigned)
			placeholders = append(placeholders, assigned)
			next++
		}

		assigned, err := ops.Create(n)
		if err != nil {
			return nil, err
		}
		if assigned != n {
			return nil, &VerificationError{Kind: ops.Kind(), Expected: n, Actual: assigned}
		}
		result.Created++
		next++
	}

	for _, number := range placeholders {
		if err := ops.DiscardPlaceholder(number); err != nil {
			return nil, err
		}
	}
	result.Placeholders = len(placeholders)

	if result.Placeholders > 0 {
		c.logger.Info("discarded gap placeholders",
			"kind", ops.Kind(), "count", result.Placeholders)
	}

	return result, nil
}
