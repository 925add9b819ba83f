// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package resolve

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/holomush/questmap/internal/host"
	"github.com/holomush/questmap/pkg/errutil"
)

// accessorCache memoizes the capability set of each concrete task type and
// remembers which types already failed so a broken variant is logged once,
// whichever accessor failed first.
type accessorCache struct {
	mu       sync.Mutex
	caps     map[reflect.Type]Capabilities
	failures map[reflect.Type]struct{}
	logger   *slog.Logger
}

func newAccessorCache(logger *slog.Logger) *accessorCache {
	return &accessorCache{
		caps:     make(map[reflect.Type]Capabilities),
		failures: make(map[reflect.Type]struct{}),
		logger:   logger,
	}
}

func (a *accessorCache) capabilities(task host.Task) Capabilities {
	typ := reflect.TypeOf(task)

	a.mu.Lock()
	defer a.mu.Unlock()

	if c, ok := a.caps[typ]; ok {
		return c
	}
	c := detect(task)
	a.caps[typ] = c
	if c == 0 {
		a.logger.Debug("task variant carries no location capability",
			"task_type", typeName(typ))
	}
	return c
}

// fail records an accessor failure on a host object and logs it the first
// time any accessor fails for the object's concrete type.
func (a *accessorCache) fail(subject any, accessor string, err error) {
	typ := reflect.TypeOf(subject)

	a.mu.Lock()
	_, seen := a.failures[typ]
	if !seen {
		a.failures[typ] = struct{}{}
	}
	a.mu.Unlock()

	if seen {
		return
	}
	errutil.LogWarn(a.logger, "task introspection failed",
		ErrIntrospection(typeName(typ), accessor, err))
}

func (a *accessorCache) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.caps)
	clear(a.failures)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
