package api

import (
	"sync"

	"github.com/hackgods/gym-member-schedule/internal/schedule"
)

// captureRenderer keeps the last painted views so a handler can return
// them as JSON.
type captureRenderer struct {
	mu      sync.Mutex
	grid    *schedule.GridView
	details *schedule.DetailView
	loading bool
}

func (c *captureRenderer) SetLoading(loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = loading
}

func (c *captureRenderer) RenderGrid(view schedule.GridView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.grid = &view
}

func (c *captureRenderer) ShowDetails(view schedule.DetailView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.details = &view
}

func (c *captureRenderer) HideDetails() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.details = nil
}

func (c *captureRenderer) lastGrid() (schedule.GridView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.grid == nil {
		return schedule.GridView{}, false
	}
	return *c.grid, true
}

// redirectRecorder is the navigation port over HTTP: the redirect target is
// returned to the client instead of being followed.
type redirectRecorder struct {
	path string
}

func (n *redirectRecorder) Redirect(path string) {
	n.path = path
}
