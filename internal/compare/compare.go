package compare

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dshills/compare-changesets/internal/gitctx"
	"go.uber.org/zap"
)

// ErrInvalidArgumentCount is returned when anything other than five refs is supplied.
var ErrInvalidArgumentCount = errors.New("invalid argument count")

// Refs names the target and the two change-sets being compared.
type Refs struct {
	Target string `json:"target" yaml:"target"`
	BaseA  string `json:"baseA" yaml:"baseA"`
	TipA   string `json:"tipA" yaml:"tipA"`
	BaseB  string `json:"baseB" yaml:"baseB"`
	TipB   string `json:"tipB" yaml:"tipB"`
}

// ParseRefs maps positional arguments TARGET BASE_A TIP_A BASE_B TIP_B onto
// Refs. The refs themselves are not checked; the backend resolves them.
func ParseRefs(args []string) (Refs, error) {
	if len(args) != 5 {
		return Refs{}, fmt.Errorf("%w: got %d, want 5", ErrInvalidArgumentCount, len(args))
	}
	return Refs{
		Target: args[0],
		BaseA:  args[1],
		TipA:   args[2],
		BaseB:  args[3],
		TipB:   args[4],
	}, nil
}

// Swap exchanges change-set A and change-set B.
func (r Refs) Swap() Refs {
	return Refs{
		Target: r.Target,
		BaseA:  r.BaseB,
		TipA:   r.TipB,
		BaseB:  r.BaseA,
		TipB:   r.TipA,
	}
}

// Backend is the version-control collaborator the comparator drives.
type Backend interface {
	// Synthesize replays mergeBase..theirs onto ours and returns the tree.
	Synthesize(ctx context.Context, mergeBase, ours, theirs string) (gitctx.Tree, error)
	// Diff writes the rename-aware textual diff of two trees to w.
	Diff(ctx context.Context, from, to gitctx.Tree, w io.Writer) error
	// Changes lists file-level differences between two trees.
	Changes(ctx context.Context, from, to gitctx.Tree) ([]gitctx.Change, error)
}

// Trees holds the two synthetic trees of a comparison.
type Trees struct {
	A gitctx.Tree `json:"a" yaml:"a"`
	B gitctx.Tree `json:"b" yaml:"b"`
}

// Summary totals a structured comparison.
type Summary struct {
	Files     int `json:"files" yaml:"files"`
	Additions int `json:"additions" yaml:"additions"`
	Deletions int `json:"deletions" yaml:"deletions"`
}

// Result is the structured form of a comparison.
type Result struct {
	Refs    Refs            `json:"refs" yaml:"refs"`
	Trees   Trees           `json:"trees" yaml:"trees"`
	Changes []gitctx.Change `json:"changes" yaml:"changes"`
	Summary Summary         `json:"summary" yaml:"summary"`
}

// Comparator runs comparisons against a Backend.
type Comparator struct {
	backend Backend
	logger  *zap.Logger
}

// New returns a Comparator. A nil logger disables logging.
func New(backend Backend, logger *zap.Logger) *Comparator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Comparator{backend: backend, logger: logger}
}

// Synthesize builds tree A and then tree B. A failure on either side aborts
// the comparison; tree B is not attempted when tree A fails.
func (c *Comparator) Synthesize(ctx context.Context, refs Refs) (Trees, error) {
	a, err := c.backend.Synthesize(ctx, refs.BaseA, refs.Target, refs.TipA)
	if err != nil {
		return Trees{}, fmt.Errorf("synthesizing %s..%s onto %s: %w", refs.BaseA, refs.TipA, refs.Target, err)
	}
	c.logger.Debug("synthesized tree", zap.String("side", "a"), zap.Stringer("tree", a))

	b, err := c.backend.Synthesize(ctx, refs.BaseB, refs.Target, refs.TipB)
	if err != nil {
		return Trees{}, fmt.Errorf("synthesizing %s..%s onto %s: %w", refs.BaseB, refs.TipB, refs.Target, err)
	}
	c.logger.Debug("synthesized tree", zap.String("side", "b"), zap.Stringer("tree", b))

	return Trees{A: a, B: b}, nil
}

// Compare writes the textual diff from tree A to tree B to w.
func (c *Comparator) Compare(ctx context.Context, refs Refs, w io.Writer) error {
	trees, err := c.Synthesize(ctx, refs)
	if err != nil {
		return err
	}
	return c.backend.Diff(ctx, trees.A, trees.B, w)
}

// Summarize returns the structured difference from tree A to tree B.
func (c *Comparator) Summarize(ctx context.Context, refs Refs) (*Result, error) {
	trees, err := c.Synthesize(ctx, refs)
	if err != nil {
		return nil, err
	}
	changes, err := c.backend.Changes(ctx, trees.A, trees.B)
	if err != nil {
		return nil, err
	}
	if changes == nil {
		changes = []gitctx.Change{}
	}

	summary := Summary{Files: len(changes)}
	for _, ch := range changes {
		summary.Additions += ch.Additions
		summary.Deletions += ch.Deletions
	}
	return &Result{
		Refs:    refs,
		Trees:   trees,
		Changes: changes,
		Summary: summary,
	}, nil
}
