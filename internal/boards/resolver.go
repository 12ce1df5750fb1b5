package boards

import (
	"fmt"

	"github.com/bartekus/microdrive/internal/target"
)

// ResolvedTarget is the outcome of board resolution.
type ResolvedTarget struct {
	// Board is the identifier that was resolved.
	Board string
	// Target is the compilation target string for the board's model.
	Target string
	// Platform is the family whose registry contained the board.
	Platform Platform
}

// Resolver answers board lookups against an ordered set of registries.
type Resolver struct {
	registries []Registry
}

// NewResolver creates a resolver over the given registries. The registries
// are checked in slice order and must already be free of duplicate board
// identifiers (enforced at load).
func NewResolver(registries []Registry) *Resolver {
	return &Resolver{registries: registries}
}

// Resolve maps a board identifier to its compilation target and platform
// family. It returns ErrUnsupportedBoard when the board is absent from
// every registry. Resolution has no side effects and is deterministic for
// a given resolver.
func (r *Resolver) Resolve(board string) (ResolvedTarget, error) {
	if board == "" {
		return ResolvedTarget{}, fmt.Errorf("%w: empty board name", ErrUnsupportedBoard)
	}
	for _, reg := range r.registries {
		if model, ok := reg.models[board]; ok {
			return ResolvedTarget{
				Board:    board,
				Target:   target.Micro(model),
				Platform: reg.Platform,
			}, nil
		}
	}
	return ResolvedTarget{}, fmt.Errorf("%w: %q", ErrUnsupportedBoard, board)
}

// Boards lists every board the resolver can resolve.
func (r *Resolver) Boards() []Board {
	return List(r.registries)
}
