package render

// DefaultSlidesPerView is how many cards the carousel shows at once.
const DefaultSlidesPerView = 5

// Carousel pages through a result list a window at a time. The window is
// clamped to the list so it never scrolls past either end, and it jumps back
// to the start whenever the underlying view is rebuilt.
type Carousel struct {
	perView    int
	offset     int
	generation uint64
}

// NewCarousel returns a carousel showing perView items; non-positive values
// fall back to DefaultSlidesPerView.
func NewCarousel(perView int) *Carousel {
	if perView <= 0 {
		perView = DefaultSlidesPerView
	}
	return &Carousel{perView: perView}
}

// PerView reports the window size.
func (c *Carousel) PerView() int { return c.perView }

// Offset reports the index of the first visible item.
func (c *Carousel) Offset() int { return c.offset }

// Sync resets the position when generation differs from the last one seen.
// It reports whether a reset happened.
func (c *Carousel) Sync(generation uint64) bool {
	if generation == c.generation {
		return false
	}
	c.generation = generation
	c.offset = 0
	return true
}

// Next advances one full window, stopping at the last full window.
func (c *Carousel) Next(total int) bool {
	return c.moveTo(c.offset+c.perView, total)
}

// Prev goes back one window, stopping at the start.
func (c *Carousel) Prev(total int) bool {
	return c.moveTo(c.offset-c.perView, total)
}

func (c *Carousel) moveTo(offset, total int) bool {
	maxOffset := total - c.perView
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	moved := offset != c.offset
	c.offset = offset
	return moved
}

// Window returns the start and end indexes of the visible items.
func (c *Carousel) Window(total int) (int, int) {
	c.moveTo(c.offset, total)
	end := c.offset + c.perView
	if end > total {
		end = total
	}
	return c.offset, end
}
