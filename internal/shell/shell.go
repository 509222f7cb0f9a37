// Package shell tracks which feature is active, which panels are visible
// and whether the sidebar overlay is open.
package shell

import (
	"context"
	"strings"

	"github.com/strrl/llmchat/pkg/models"
)

// Initializer is a module the shell starts once after binding navigation
type Initializer interface {
	Init(ctx context.Context) error
}

// Controller is the shell's state. It is not safe for concurrent use; the
// TUI drives it from its update loop.
type Controller struct {
	features    []models.Feature
	panels      []models.Panel
	visible     []bool
	active      int
	title       string
	sidebarOpen bool
	width       int
	narrowWidth int
	started     bool
}

// New creates a controller with no active feature and every panel hidden
func New(features []models.Feature, panels []models.Panel, narrowWidth int) *Controller {
	return &Controller{
		features:    features,
		panels:      panels,
		visible:     make([]bool, len(panels)),
		active:      -1,
		narrowWidth: narrowWidth,
	}
}

// Start invokes the initializer exactly once. Later calls are no-ops.
func (c *Controller) Start(ctx context.Context, initializer Initializer) error {
	if c.started || initializer == nil {
		return nil
	}
	c.started = true
	return initializer.Init(ctx)
}

// Select activates the feature with key, retitles the page and shows every
// panel whose ID contains the key, ignoring case. On a narrow viewport the
// sidebar closes afterwards.
func (c *Controller) Select(key string) {
	c.active = -1
	for i, f := range c.features {
		if f.Key == key {
			c.active = i
			c.title = f.Label
			break
		}
	}

	needle := strings.ToLower(key)
	for i, p := range c.panels {
		c.visible[i] = strings.Contains(strings.ToLower(p.ID), needle)
	}

	if c.width <= c.narrowWidth {
		c.sidebarOpen = false
	}
}

// ToggleSidebar flips the overlay regardless of viewport width
func (c *Controller) ToggleSidebar() {
	c.sidebarOpen = !c.sidebarOpen
}

// Resize records the viewport width used for the narrow check
func (c *Controller) Resize(width int) {
	c.width = width
}

// Active returns the index of the active feature, or -1
func (c *Controller) Active() int {
	return c.active
}

func (c *Controller) ActiveFeature() (models.Feature, bool) {
	if c.active < 0 {
		return models.Feature{}, false
	}
	return c.features[c.active], true
}

func (c *Controller) Title() string {
	return c.title
}

func (c *Controller) SidebarOpen() bool {
	return c.sidebarOpen
}

func (c *Controller) Features() []models.Feature {
	return c.features
}

// VisiblePanels returns the panels currently shown, in configured order
func (c *Controller) VisiblePanels() []models.Panel {
	var out []models.Panel
	for i, p := range c.panels {
		if c.visible[i] {
			out = append(out, p)
		}
	}
	return out
}

// PanelVisible reports whether the panel with id is shown
func (c *Controller) PanelVisible(id string) bool {
	for i, p := range c.panels {
		if p.ID == id {
			return c.visible[i]
		}
	}
	return false
}
