// Package viz draws block lattices in the terminal.
//
// A [Canvas] is a grid of Braille characters giving 2x4 dots per cell.
// [LatticeWireframe] turns a rigid body and its pose into unit-cube edges,
// which [Render3D] projects through a [Camera] onto the canvas. The styles
// here are shared by the live view and the CLI tables.
package viz
