// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package resolve finds a current world position for a quest task of unknown
// concrete type by trying a fixed chain of strategies.
package resolve

import (
	"fmt"
	"log/slog"

	"github.com/holomush/questmap/internal/geom"
	"github.com/holomush/questmap/internal/host"
)

// Radius defaults.
const (
	DefaultRadius = 10.0
	MinRadius     = 0.1
)

// Strategy names a position source, in priority order.
type Strategy string

// Strategies in the order they are tried.
const (
	StrategyMapElement      Strategy = "map_element"
	StrategyPrefabLocations Strategy = "prefab_locations"
	StrategySceneTrigger    Strategy = "scene_trigger"
	StrategyEventEmitter    Strategy = "event_emitter"
	StrategyReachLocation   Strategy = "reach_location"
)

// Strategies returns every strategy in priority order.
func Strategies() []Strategy {
	return []Strategy{
		StrategyMapElement,
		StrategyPrefabLocations,
		StrategySceneTrigger,
		StrategyEventEmitter,
		StrategyReachLocation,
	}
}

// Resolution is a resolved objective position.
type Resolution struct {
	Position   geom.Vec3
	Radius     float64
	SubSceneID string
	Strategy   Strategy
}

// TriggerIndex looks up scene triggers by quest id.
type TriggerIndex interface {
	Lookup(questID int) (host.SceneTrigger, bool)
}

// Input is everything a strategy may consult for one task.
type Input struct {
	Task         host.Task
	Quest        host.Quest
	CurrentScene string
	Scene        host.Scene
	Triggers     TriggerIndex
}

type strategyFunc func(r *Resolver, in Input, caps Capabilities) (Resolution, bool)

type step struct {
	name Strategy
	fn   strategyFunc
}

// Resolver runs the strategy chain against one task at a time.
type Resolver struct {
	steps         []step
	matcher       *SceneMatcher
	accessors     *accessorCache
	defaultRadius float64
	minRadius     float64
	logger        *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSceneMatcher replaces the default scene matcher.
func WithSceneMatcher(m *SceneMatcher) Option {
	return func(r *Resolver) {
		if m != nil {
			r.matcher = m
		}
	}
}

// WithRadiusPolicy overrides the default radius and the minimum radius that
// is kept as resolved.
func WithRadiusPolicy(defaultRadius, minRadius float64) Option {
	return func(r *Resolver) {
		if defaultRadius > 0 {
			r.defaultRadius = defaultRadius
		}
		if minRadius >= 0 {
			r.minRadius = minRadius
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a resolver with the standard strategy chain.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		matcher:       &SceneMatcher{},
		defaultRadius: DefaultRadius,
		minRadius:     MinRadius,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "resolver")
	r.accessors = newAccessorCache(r.logger)
	r.steps = []step{
		{StrategyMapElement, (*Resolver).fromMapElement},
		{StrategyPrefabLocations, (*Resolver).fromPrefabLocations},
		{StrategySceneTrigger, (*Resolver).fromSceneTrigger},
		{StrategyEventEmitter, (*Resolver).fromEventEmitter},
		{StrategyReachLocation, (*Resolver).fromReachLocation},
	}
	return r
}

// Reset forgets memoized capabilities and logged failures.
func (r *Resolver) Reset() {
	r.accessors.reset()
}

// Resolve tries each strategy in order and returns the first success. A task
// no strategy can place yields false; that is not an error.
func (r *Resolver) Resolve(in Input) (Resolution, bool) {
	if in.Task == nil {
		return Resolution{}, false
	}
	caps := r.accessors.capabilities(in.Task)
	for _, s := range r.steps {
		res, ok := r.run(s, in, caps)
		if !ok {
			continue
		}
		res.Strategy = s.name
		res.Radius = r.normalizeRadius(res.Radius)
		return res, true
	}
	return Resolution{}, false
}

// Guard runs fn and reports whether it returned normally. A panic inside fn
// is recovered and logged once per concrete type of subject, the same way a
// failing task accessor is. Callers skip subject when Guard returns false.
func (r *Resolver) Guard(subject any, accessor string, fn func()) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.accessors.fail(subject, accessor, fmt.Errorf("panic: %v", rec))
			ok = false
		}
	}()
	fn()
	return true
}

// run isolates one strategy so a panicking host accessor only disables that
// strategy for this task.
func (r *Resolver) run(s step, in Input, caps Capabilities) (res Resolution, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.accessors.fail(in.Task, string(s.name), fmt.Errorf("panic: %v", rec))
			res, ok = Resolution{}, false
		}
	}()
	return s.fn(r, in, caps)
}

// normalizeRadius applies the radius policy: values at or below the minimum
// are replaced by the default.
func (r *Resolver) normalizeRadius(radius float64) float64 {
	if radius > r.minRadius {
		return radius
	}
	return r.defaultRadius
}

// firstMatch returns the first non-nil location belonging to the current
// scene whose position resolves.
func (r *Resolver) firstMatch(locs []host.Location, current string) (host.Location, geom.Vec3, bool) {
	for _, loc := range locs {
		if loc == nil || !r.matcher.Match(loc.SceneID(), current) {
			continue
		}
		if pos, ok := loc.TryPosition(); ok {
			return loc, pos, true
		}
	}
	return nil, geom.Vec3{}, false
}

func (r *Resolver) fromMapElement(in Input, caps Capabilities) (Resolution, bool) {
	if !caps.Has(CapMapElement) {
		return Resolution{}, false
	}
	carrier, _ := in.Task.(MapElementCarrier)
	elem, err := carrier.MapElement()
	if err != nil {
		r.accessors.fail(in.Task, "MapElement", err)
		return Resolution{}, false
	}
	if elem == nil {
		return Resolution{}, false
	}
	loc, pos, ok := r.firstMatch(elem.Locations(), in.CurrentScene)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Position: pos, Radius: elem.Range(), SubSceneID: loc.SceneID()}, true
}

func (r *Resolver) fromPrefabLocations(in Input, caps Capabilities) (Resolution, bool) {
	if !caps.Has(CapEventKeyed) {
		return Resolution{}, false
	}
	keyed, _ := in.Task.(EventKeyed)
	spawner, err := keyed.PrefabSpawner()
	if err != nil {
		r.accessors.fail(in.Task, "PrefabSpawner", err)
		return Resolution{}, false
	}
	if spawner == nil {
		return Resolution{}, false
	}
	locs, err := spawner.SpawnLocations()
	if err != nil {
		r.accessors.fail(in.Task, "PrefabSpawner.SpawnLocations", err)
		return Resolution{}, false
	}
	loc, pos, ok := r.firstMatch(locs, in.CurrentScene)
	if !ok {
		return Resolution{}, false
	}
	r.logger.Debug("position from prefab spawn locations",
		"task_id", string(in.Task.ID()),
		"scene_id", loc.SceneID(),
		"position", pos.String())
	return Resolution{Position: pos, Radius: r.defaultRadius, SubSceneID: loc.SceneID()}, true
}

func (r *Resolver) fromSceneTrigger(in Input, _ Capabilities) (Resolution, bool) {
	if in.Triggers == nil {
		return Resolution{}, false
	}
	trig, ok := in.Triggers.Lookup(in.Task.QuestID())
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Position: trig.Position(), Radius: r.defaultRadius}, true
}

func (r *Resolver) fromEventEmitter(in Input, caps Capabilities) (Resolution, bool) {
	if !caps.Has(CapEventKeyed) || in.Scene == nil {
		return Resolution{}, false
	}
	keyed, _ := in.Task.(EventKeyed)
	key, err := keyed.EventKey()
	if err != nil {
		r.accessors.fail(in.Task, "EventKey", err)
		return Resolution{}, false
	}
	if key == "" {
		return Resolution{}, false
	}
	for _, emitter := range in.Scene.Emitters() {
		if emitter == nil || !emitter.Alive() {
			continue
		}
		emitterKey, err := emitter.EventKey()
		if err != nil {
			continue
		}
		if emitterKey == key {
			return Resolution{Position: emitter.Position(), Radius: r.defaultRadius}, true
		}
	}
	return Resolution{}, false
}

func (r *Resolver) fromReachLocation(in Input, caps Capabilities) (Resolution, bool) {
	if !caps.Has(CapReachLocation) {
		return Resolution{}, false
	}
	target, _ := in.Task.(ReachLocationTarget)
	loc, err := target.TargetLocation()
	if err != nil {
		r.accessors.fail(in.Task, "TargetLocation", err)
		return Resolution{}, false
	}
	matched, pos, ok := r.firstMatch([]host.Location{loc}, in.CurrentScene)
	if !ok {
		return Resolution{}, false
	}
	radius, err := target.TargetRadius()
	if err != nil {
		r.accessors.fail(in.Task, "TargetRadius", err)
		radius = r.defaultRadius
	}
	return Resolution{Position: pos, Radius: radius, SubSceneID: matched.SceneID()}, true
}
