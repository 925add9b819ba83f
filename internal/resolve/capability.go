// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package resolve

import (
	"github.com/holomush/questmap/internal/host"
)

// MapElementCarrier is a task variant with an attached static location
// descriptor. MapElement may return (nil, nil) when nothing is attached.
type MapElementCarrier interface {
	MapElement() (host.MapElement, error)
}

// EventKeyed is a task variant completed by a named task event. It may also
// carry a prefab spawner whose locations span several scenes.
type EventKeyed interface {
	EventKey() (string, error)
	PrefabSpawner() (host.PrefabSpawner, error)
}

// ReachLocationTarget is a task variant completed by reaching a location.
type ReachLocationTarget interface {
	TargetLocation() (host.Location, error)
	TargetRadius() (float64, error)
}

// Capabilities is the set of variant interfaces a concrete task type
// implements.
type Capabilities uint8

// Capability flags.
const (
	CapMapElement Capabilities = 1 << iota
	CapEventKeyed
	CapReachLocation
)

// Has reports whether all flags in c2 are set in c.
func (c Capabilities) Has(c2 Capabilities) bool {
	return c&c2 == c2
}

// String lists the capability names.
func (c Capabilities) String() string {
	if c == 0 {
		return "none"
	}
	out := ""
	add := func(name string) {
		if out != "" {
			out += "|"
		}
		out += name
	}
	if c.Has(CapMapElement) {
		add("map_element")
	}
	if c.Has(CapEventKeyed) {
		add("event_keyed")
	}
	if c.Has(CapReachLocation) {
		add("reach_location")
	}
	return out
}

func detect(task host.Task) Capabilities {
	var c Capabilities
	if _, ok := task.(MapElementCarrier); ok {
		c |= CapMapElement
	}
	if _, ok := task.(EventKeyed); ok {
		c |= CapEventKeyed
	}
	if _, ok := task.(ReachLocationTarget); ok {
		c |= CapReachLocation
	}
	return c
}
