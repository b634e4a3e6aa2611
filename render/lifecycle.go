package render

import (
	"github.com/gogpu/quad"
)

// lifecycle tracks created resources so a failed setup can unwind in
// reverse creation order. Once setup succeeds the renderer takes over
// and releases resources in its own fixed order.
type lifecycle struct {
	names    []string
	releases []func()
}

// track records a resource and its release function.
func (l *lifecycle) track(name string, release func()) {
	l.names = append(l.names, name)
	l.releases = append(l.releases, release)
}

// unwind releases everything tracked so far, newest first.
func (l *lifecycle) unwind() {
	for i := len(l.releases) - 1; i >= 0; i-- {
		quad.Logger().Debug("releasing after failed setup", "resource", l.names[i])
		l.releases[i]()
	}
	l.names = nil
	l.releases = nil
}

// pop drops the most recently tracked resource without releasing it.
// Used when a resource is released ahead of any unwind.
func (l *lifecycle) pop() {
	n := len(l.releases)
	if n == 0 {
		return
	}
	l.names = l.names[:n-1]
	l.releases = l.releases[:n-1]
}

// disarm drops the tracked resources without releasing them.
func (l *lifecycle) disarm() {
	l.names = nil
	l.releases = nil
}
