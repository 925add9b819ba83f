// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package geom provides the small amount of world-space math the marker
// engine needs.
package geom

import (
	"fmt"
	"math"
)

// Vec3 is a world-space position. Y is up; the map overlay projects onto X/Z.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// V returns a Vec3 from its components.
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// String returns a compact representation with one decimal place.
func (v Vec3) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", v.X, v.Y, v.Z)
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Distance returns the Euclidean distance between two positions.
func Distance(a, b Vec3) float64 {
	d := a.Sub(b)
	return math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// PlanarDistance returns the distance between two positions on the X/Z plane.
func PlanarDistance(a, b Vec3) float64 {
	d := a.Sub(b)
	return math.Hypot(d.X, d.Z)
}

// Cell identifies a square of the X/Z grid.
type Cell struct {
	X int64
	Z int64
}

// Bucket snaps a position onto a grid of the given size on the X/Z plane.
// A non-positive size panics; callers validate configuration up front.
func Bucket(v Vec3, size float64) Cell {
	if size <= 0 {
		panic("geom: bucket size must be positive")
	}
	return Cell{
		X: int64(math.Round(v.X / size)),
		Z: int64(math.Round(v.Z / size)),
	}
}

// Neighbors returns c and the eight cells around it.
func (c Cell) Neighbors() [9]Cell {
	var out [9]Cell
	i := 0
	for dx := int64(-1); dx <= 1; dx++ {
		for dz := int64(-1); dz <= 1; dz++ {
			out[i] = Cell{X: c.X + dx, Z: c.Z + dz}
			i++
		}
	}
	return out
}
