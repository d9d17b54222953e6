package physics

import (
	"fmt"
	"sort"

	"github.com/san-kum/blocksim/internal/dynamo"
)

// RigidBody is an immutable set of blocks indexed by lattice coordinate.
// It is safe to share between goroutines.
type RigidBody struct {
	coords []Coord
	blocks []Block
	index  map[Coord]int
	mass   float64
}

// NewRigidBody copies blocks into a sorted arena. Blocks with a negative or
// non-finite density or thrust are rejected with ErrInvalidBody. A body
// whose total mass is zero is accepted here and rejected by Accumulate.
func NewRigidBody(blocks map[Coord]Block) (*RigidBody, error) {
	coords := make([]Coord, 0, len(blocks))
	for c, b := range blocks {
		if err := b.validate(); err != nil {
			return nil, fmt.Errorf("%w: block %s: %v", dynamo.ErrInvalidBody, c, err)
		}
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })

	body := &RigidBody{
		coords: coords,
		blocks: make([]Block, len(coords)),
		index:  make(map[Coord]int, len(coords)),
	}
	for i, c := range coords {
		body.blocks[i] = blocks[c]
		body.index[c] = i
		body.mass += blocks[c].Density
	}
	return body, nil
}

// Len returns the number of blocks.
func (b *RigidBody) Len() int {
	if b == nil {
		return 0
	}
	return len(b.blocks)
}

// Mass returns the sum of block densities.
func (b *RigidBody) Mass() float64 {
	if b == nil {
		return 0
	}
	return b.mass
}

func (b *RigidBody) Block(c Coord) (Block, bool) {
	if b == nil {
		return Block{}, false
	}
	i, ok := b.index[c]
	if !ok {
		return Block{}, false
	}
	return b.blocks[i], true
}

// Each visits blocks in lexicographic coordinate order.
func (b *RigidBody) Each(fn func(Coord, Block)) {
	if b == nil {
		return
	}
	for i, c := range b.coords {
		fn(c, b.blocks[i])
	}
}

// Coords returns a copy of the sorted coordinates.
func (b *RigidBody) Coords() []Coord {
	if b == nil {
		return nil
	}
	out := make([]Coord, len(b.coords))
	copy(out, b.coords)
	return out
}

// Bounds returns the inclusive min and max coordinates of the lattice.
func (b *RigidBody) Bounds() (lo, hi Coord) {
	if b.Len() == 0 {
		return Coord{}, Coord{}
	}
	lo, hi = b.coords[0], b.coords[0]
	for _, c := range b.coords[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], c[k])
			hi[k] = max(hi[k], c[k])
		}
	}
	return lo, hi
}

// Map returns a mutable copy of the blocks, for deriving new bodies.
func (b *RigidBody) Map() map[Coord]Block {
	out := make(map[Coord]Block, b.Len())
	b.Each(func(c Coord, blk Block) { out[c] = blk })
	return out
}
