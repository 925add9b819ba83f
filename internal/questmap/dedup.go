// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package questmap

import "github.com/holomush/questmap/internal/geom"

// DefaultBucketSize is the dedup grid resolution in world units.
const DefaultBucketSize = 0.1

type dedupKey struct {
	quest string
	sub   string
	cell  geom.Cell
}

// Dedup keeps the first marker of every (quest name, sub-scene, position
// bucket) group, preserving input order. Buckets are laid on the horizontal
// x/z plane. A marker closer than one bucket to a kept marker in an adjacent
// cell also counts as a duplicate, so two points straddling a cell boundary
// do not both survive.
func Dedup(markers []Marker, bucketSize float64) []Marker {
	if bucketSize <= 0 {
		bucketSize = DefaultBucketSize
	}
	out := make([]Marker, 0, len(markers))
	seen := make(map[dedupKey][]geom.Vec3, len(markers))

	for _, m := range markers {
		cell := geom.Bucket(m.Position, bucketSize)
		if isDuplicate(seen, m, cell, bucketSize) {
			continue
		}
		k := dedupKey{quest: m.QuestName, sub: m.SubSceneID, cell: cell}
		seen[k] = append(seen[k], m.Position)
		out = append(out, m)
	}
	return out
}

func isDuplicate(seen map[dedupKey][]geom.Vec3, m Marker, cell geom.Cell, size float64) bool {
	if _, ok := seen[dedupKey{quest: m.QuestName, sub: m.SubSceneID, cell: cell}]; ok {
		return true
	}
	for _, n := range cell.Neighbors() {
		for _, p := range seen[dedupKey{quest: m.QuestName, sub: m.SubSceneID, cell: n}] {
			if geom.PlanarDistance(p, m.Position) < size {
				return true
			}
		}
	}
	return false
}
