package physics

// Box fills an axis-aligned box of size[0]*size[1]*size[2] blocks starting
// at origin with copies of tmpl.
func Box(origin Coord, size [3]int, tmpl Block) map[Coord]Block {
	out := make(map[Coord]Block, max(size[0]*size[1]*size[2], 0))
	for x := 0; x < size[0]; x++ {
		for y := 0; y < size[1]; y++ {
			for z := 0; z < size[2]; z++ {
				out[Coord{origin[0] + x, origin[1] + y, origin[2] + z}] = tmpl
			}
		}
	}
	return out
}

// Bar places tmpl at every x in [from, to] on the x axis.
func Bar(from, to int, tmpl Block) map[Coord]Block {
	if to < from {
		return map[Coord]Block{}
	}
	return Box(Coord{from, 0, 0}, [3]int{to - from + 1, 1, 1}, tmpl)
}

// Merge overlays each map onto the previous; later entries win.
func Merge(layers ...map[Coord]Block) map[Coord]Block {
	out := make(map[Coord]Block)
	for _, l := range layers {
		for c, b := range l {
			out[c] = b
		}
	}
	return out
}

// Where returns a copy of blocks with fn applied to every block for which
// keep reports true.
func Where(blocks map[Coord]Block, keep func(Coord) bool, fn func(Block) Block) map[Coord]Block {
	out := make(map[Coord]Block, len(blocks))
	for c, b := range blocks {
		if keep(c) {
			b = fn(b)
		}
		out[c] = b
	}
	return out
}
