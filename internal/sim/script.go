// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package sim

import (
	"context"
	"strings"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/questmap/internal/geom"
)

// Refresher forces a marker refresh. A Listener that also implements it is
// reachable from scripts as sim.refresh().
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Runner executes scenario scripts against a world.
type Runner struct {
	world    *World
	renderer *Renderer
}

// NewRunner creates a runner. renderer may be nil, in which case
// sim.markers() returns an empty table.
func NewRunner(world *World, renderer *Renderer) *Runner {
	return &Runner{world: world, renderer: renderer}
}

// Run executes src in a fresh sandbox. name identifies the script in errors.
func (r *Runner) Run(ctx context.Context, name, src string) error {
	L, err := newSandbox(ctx)
	if err != nil {
		return err
	}
	defer L.Close()

	L.SetGlobal("sim", r.module(ctx, L))
	if err := L.DoString(src); err != nil {
		return oops.Code(CodeScriptFailed).With("script", name).Wrap(err)
	}
	return nil
}

func (r *Runner) module(ctx context.Context, L *lua.LState) *lua.LTable {
	w := r.world
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"spawn_item": func(L *lua.LState) int {
			id, err := w.SpawnItem(L.CheckString(1), checkVec(L, 2))
			raise(L, err)
			L.Push(lua.LString(id.String()))
			return 1
		},
		"spawn_prefab": func(L *lua.LState) int {
			id, ok, err := w.SpawnPrefab(L.CheckString(1), optVec(L, 2))
			raise(L, err)
			pushID(L, id.String(), ok)
			return 1
		},
		"instantiate": func(L *lua.LState) int {
			id, ok := w.Instantiate(L.CheckString(1), optVec(L, 2))
			pushID(L, id.String(), ok)
			return 1
		},
		"destroy": func(L *lua.LState) int {
			raise(L, w.Destroy(L.CheckString(1)))
			return 0
		},
		"set_visibility": func(L *lua.LState) int {
			raise(L, w.SetVisibility(L.CheckString(1), L.CheckBool(2)))
			return 0
		},
		"despawn_all": func(L *lua.LState) int {
			raise(L, w.DespawnAll(L.CheckString(1)))
			return 0
		},
		"finish_task": func(L *lua.LState) int {
			raise(L, w.FinishTask(L.CheckString(1)))
			return 0
		},
		"load_scene": func(L *lua.LState) int {
			w.LoadScene(ctx, L.CheckString(1))
			return 0
		},
		"open_map": func(*lua.LState) int {
			w.OpenMap(ctx)
			return 0
		},
		"close_map": func(*lua.LState) int {
			w.CloseMap(ctx)
			return 0
		},
		"refresh": func(L *lua.LState) int {
			ref, ok := w.listener.(Refresher)
			if !ok {
				L.Push(lua.LFalse)
				return 1
			}
			if err := ref.Refresh(ctx); err != nil {
				L.Push(lua.LFalse)
				L.Push(lua.LString(err.Error()))
				return 2
			}
			L.Push(lua.LTrue)
			return 1
		},
		"markers": func(L *lua.LState) int {
			L.Push(r.markersTable(L))
			return 1
		},
		"visible": func(L *lua.LState) int {
			t := L.NewTable()
			for _, name := range w.VisibleElements() {
				t.Append(lua.LString(name))
			}
			L.Push(t)
			return 1
		},
		"log": func(L *lua.LState) int {
			parts := make([]string, 0, L.GetTop())
			for i := 1; i <= L.GetTop(); i++ {
				parts = append(parts, L.ToStringMeta(L.Get(i)).String())
			}
			w.logger.InfoContext(ctx, "script", "message", strings.Join(parts, " "))
			return 0
		},
	})
}

func (r *Runner) markersTable(L *lua.LState) *lua.LTable {
	t := L.NewTable()
	if r.renderer == nil {
		return t
	}
	for _, m := range r.renderer.Drawn() {
		row := L.NewTable()
		row.RawSetString("label", lua.LString(m.Label))
		row.RawSetString("x", lua.LNumber(m.Position.X))
		row.RawSetString("y", lua.LNumber(m.Position.Y))
		row.RawSetString("z", lua.LNumber(m.Position.Z))
		row.RawSetString("radius", lua.LNumber(m.Radius))
		t.Append(row)
	}
	return t
}

func raise(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
}

func pushID(L *lua.LState, id string, ok bool) {
	if !ok {
		L.Push(lua.LNil)
		return
	}
	L.Push(lua.LString(id))
}

func checkVec(L *lua.LState, at int) geom.Vec3 {
	return geom.V(
		float64(L.CheckNumber(at)),
		float64(L.CheckNumber(at+1)),
		float64(L.CheckNumber(at+2)),
	)
}

// optVec reads x, y, z starting at argument at, or nil if absent.
func optVec(L *lua.LState, at int) *geom.Vec3 {
	if L.GetTop() < at {
		return nil
	}
	v := checkVec(L, at)
	return &v
}
