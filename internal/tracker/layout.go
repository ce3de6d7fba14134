package tracker

import "sync"

// ResizeSource reports the viewport width and notifies listeners when it changes
type ResizeSource interface {
	Width() int
	AddResizeListener(fn func(width int)) (remove func())
}

// Mount computes the layout flag from the source's current width and keeps
// it updated on every resize until the returned unmount func is called.
func (c *Controller) Mount(source ResizeSource) (unmount func()) {
	c.Resize(source.Width())
	remove := source.AddResizeListener(func(width int) {
		c.Resize(width)
	})

	var once sync.Once
	return func() { once.Do(remove) }
}

// Resize recomputes the responsive-layout flag for width and reports whether
// it flipped. Subscribers are only notified on a flip.
func (c *Controller) Resize(width int) bool {
	mobile := width < c.breakpoint

	c.mu.Lock()
	changed := mobile != c.mobile
	c.mobile = mobile
	c.mu.Unlock()

	if changed {
		c.logger.Debug().Int("width", width).Bool("mobile", mobile).Msg("Layout changed")
		c.publish()
	}
	return changed
}

// Viewport is a ResizeSource fed by the page, which reports its window
// width whenever the browser fires a resize event.
type Viewport struct {
	mu        sync.Mutex
	width     int
	listeners map[int]func(int)
	nextID    int
}

// NewViewport creates a viewport with an initial width
func NewViewport(width int) *Viewport {
	return &Viewport{width: width, listeners: make(map[int]func(int))}
}

// Width returns the last reported width
func (v *Viewport) Width() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width
}

// SetWidth records a resize and dispatches it to every listener
func (v *Viewport) SetWidth(width int) {
	v.mu.Lock()
	v.width = width
	listeners := make([]func(int), 0, len(v.listeners))
	for _, fn := range v.listeners {
		listeners = append(listeners, fn)
	}
	v.mu.Unlock()

	for _, fn := range listeners {
		fn(width)
	}
}

// AddResizeListener implements ResizeSource
func (v *Viewport) AddResizeListener(fn func(width int)) (remove func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.listeners[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.listeners, id)
		v.mu.Unlock()
	}
}

// Listeners returns the number of registered listeners
func (v *Viewport) Listeners() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.listeners)
}
