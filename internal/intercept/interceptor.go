// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package intercept observes simulation operations the marker engine does not
// own. The Interceptor contract hides whatever patching mechanism the host
// offers; Table is an in-process implementation for hosts that route their
// operations through it.
package intercept

import (
	"sync"

	"github.com/samber/oops"
)

// Operation identifies an interceptable simulation entry point.
type Operation string

// Operations observed by the marker engine.
const (
	OpSpawnItem     Operation = "SpawnItemForTask.SpawnItem"
	OpSpawnPrefab   Operation = "SpawnPrefabForTask.Spawn"
	OpInstantiate   Operation = "Object.Instantiate"
	OpSetVisibility Operation = "MapElementForTask.SetVisibility"
	OpDespawnAll    Operation = "MapElementForTask.DespawnAll"
)

// Call is the view a hook gets of one operation invocation.
type Call struct {
	Op       Operation
	Receiver any
	Args     []any
	// Result is only meaningful in After hooks.
	Result any
}

// Arg returns the i-th argument, or nil if absent.
func (c *Call) Arg(i int) any {
	if c == nil || i < 0 || i >= len(c.Args) {
		return nil
	}
	return c.Args[i]
}

// Hook runs immediately before and/or after an operation. Either may be nil.
type Hook struct {
	Before func(*Call)
	After  func(*Call)
}

// Interceptor installs hooks by operation identity.
//
// Install is idempotent per (owner, op): installing again replaces the
// previous hook. UninstallAll removes every hook the owner installed and
// restores original behavior.
type Interceptor interface {
	Install(owner string, op Operation, hook Hook) error
	UninstallAll(owner string)
}

// CodeUnknownOperation marks an install against an operation the host does
// not expose.
const CodeUnknownOperation = "UNKNOWN_OPERATION"

type installed struct {
	owner string
	hook  Hook
}

// Table dispatches hooks for operations that hosts invoke through it.
type Table struct {
	mu        sync.RWMutex
	supported map[Operation]bool
	hooks     map[Operation][]installed
}

// NewTable creates a table exposing the given operations. With no
// operations listed, every operation is accepted.
func NewTable(ops ...Operation) *Table {
	t := &Table{hooks: make(map[Operation][]installed)}
	if len(ops) > 0 {
		t.supported = make(map[Operation]bool, len(ops))
		for _, op := range ops {
			t.supported[op] = true
		}
	}
	return t
}

// Install implements Interceptor.
func (t *Table) Install(owner string, op Operation, hook Hook) error {
	if owner == "" {
		return oops.Code(CodeInvalidOwner).With("operation", op).Errorf("hook owner cannot be empty")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.supported != nil && !t.supported[op] {
		return oops.Code(CodeUnknownOperation).
			With("operation", op).
			Errorf("operation %s is not interceptable", op)
	}
	list := t.hooks[op]
	for i := range list {
		if list[i].owner == owner {
			list[i].hook = hook
			return nil
		}
	}
	t.hooks[op] = append(list, installed{owner: owner, hook: hook})
	return nil
}

// UninstallAll implements Interceptor.
func (t *Table) UninstallAll(owner string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for op, list := range t.hooks {
		kept := list[:0]
		for _, h := range list {
			if h.owner != owner {
				kept = append(kept, h)
			}
		}
		if len(kept) == 0 {
			delete(t.hooks, op)
			continue
		}
		t.hooks[op] = kept
	}
}

// Installed returns the number of hooks on op.
func (t *Table) Installed(op Operation) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.hooks[op])
}

// Invoke runs before hooks, then fn, then after hooks with fn's result.
// fn is the original operation and always runs exactly once.
func (t *Table) Invoke(op Operation, receiver any, args []any, fn func() any) any {
	t.mu.RLock()
	hooks := append([]installed(nil), t.hooks[op]...)
	t.mu.RUnlock()

	call := &Call{Op: op, Receiver: receiver, Args: args}
	for _, h := range hooks {
		if h.hook.Before != nil {
			h.hook.Before(call)
		}
	}
	if fn != nil {
		call.Result = fn()
	}
	for _, h := range hooks {
		if h.hook.After != nil {
			h.hook.After(call)
		}
	}
	return call.Result
}
