// Package render draws the browser's state to a terminal: the tag shelf, the
// option menus and the result carousel, either as cards or as a table.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/Clark-Hu/movie-browser/internal/browse"
	"github.com/Clark-Hu/movie-browser/internal/event"
)

// Layout selects how result pages are drawn.
type Layout string

const (
	LayoutCards Layout = "cards"
	LayoutTable Layout = "table"
)

// ParseLayout validates a layout name.
func ParseLayout(raw string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(raw))) {
	case LayoutCards, "card":
		return LayoutCards, nil
	case LayoutTable:
		return LayoutTable, nil
	default:
		return "", fmt.Errorf("unknown layout %q (want cards or table)", raw)
	}
}

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

// Options configures a Renderer.
type Options struct {
	SlidesPerView int
	Layout        Layout
	// Colorize forces ANSI colour on or off. Nil means detect from the writer.
	Colorize *bool
}

// Renderer writes controller notifications to out. It keeps the carousel
// position and the last snapshot so paging does not need the controller.
type Renderer struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
	layout   Layout
	carousel *Carousel
	last     browse.Snapshot
}

// New constructs a renderer.
func New(out io.Writer, opts Options) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	colorize := ShouldColorize(out)
	if opts.Colorize != nil {
		colorize = *opts.Colorize
	}
	if opts.Layout == "" {
		opts.Layout = LayoutCards
	}
	return &Renderer{
		out:      out,
		colorize: colorize,
		layout:   opts.Layout,
		carousel: NewCarousel(opts.SlidesPerView),
	}
}

// Subscriber is the part of the controller the renderer listens to.
type Subscriber interface {
	Subscribe(kind event.Kind, handler func(event.Kind, browse.Snapshot))
}

// Attach subscribes the renderer to view, menu and tag notifications.
func (r *Renderer) Attach(c Subscriber) {
	c.Subscribe(browse.ViewChanged, r.onView)
	c.Subscribe(browse.MenuChanged, r.onMenu)
	c.Subscribe(browse.TagsChanged, r.onTags)
}

func (r *Renderer) onView(_ event.Kind, snap browse.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = snap
	r.carousel.Sync(snap.View.Generation)
	r.write(r.headerLocked(), r.viewLocked())
}

func (r *Renderer) onMenu(_ event.Kind, snap browse.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last.State = snap.State
	if snap.State.OpenMenu == browse.MenuNone {
		return
	}
	r.write(MenuString(snap.State, r.colorize))
}

func (r *Renderer) onTags(_ event.Kind, snap browse.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last.Tags = snap.Tags
	r.last.MoreTags = snap.MoreTags
	r.write(TagsString(snap.Tags, snap.MoreTags, snap.State.SelectedTag(), r.colorize))
}

// Next scrolls the carousel forward and redraws. It reports false at the end.
func (r *Renderer) Next() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.carousel.Next(len(r.last.View.Movies)) {
		return false
	}
	r.write(r.viewLocked())
	return true
}

// Prev scrolls the carousel back and redraws. It reports false at the start.
func (r *Renderer) Prev() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.carousel.Prev(len(r.last.View.Movies)) {
		return false
	}
	r.write(r.viewLocked())
	return true
}

// SetLayout switches between cards and table and redraws the current page.
func (r *Renderer) SetLayout(layout Layout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layout = layout
	r.write(r.viewLocked())
}

// Show redraws everything from the last snapshot.
func (r *Renderer) Show() {
	r.mu.Lock()
	defer r.mu.Unlock()
	parts := []string{TagsString(r.last.Tags, r.last.MoreTags, r.last.State.SelectedTag(), r.colorize), r.headerLocked()}
	if r.last.State.OpenMenu != browse.MenuNone {
		parts = append(parts, MenuString(r.last.State, r.colorize))
	}
	parts = append(parts, r.viewLocked())
	r.write(parts...)
}

// Print writes a free-form message, such as help text or a command error.
func (r *Renderer) Print(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.write(fmt.Sprintf(format, args...))
}

// Errorf writes an error message, in red when colour is on.
func (r *Renderer) Errorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.write(r.paint(ansiRed, fmt.Sprintf(format, args...)))
}

func (r *Renderer) headerLocked() string {
	return r.paint(ansiBold, StateLine(r.last.State))
}

func (r *Renderer) viewLocked() string {
	view := r.last.View
	switch view.Status {
	case browse.StatusLoading:
		return r.paint(ansiYellow, "Loading results...")
	case browse.StatusError:
		msg := "Search failed."
		if view.Err != nil {
			msg = fmt.Sprintf("Search failed: %v", view.Err)
		}
		return r.paint(ansiRed, msg)
	case browse.StatusIdle:
		return "Type a search or pick a tag to get started."
	case browse.StatusEmpty:
		return "No movies match the current search and filters."
	}

	start, end := r.carousel.Window(len(view.Movies))
	page := view.Movies[start:end]
	var body string
	if r.layout == LayoutTable {
		body = TableString(page, start)
	} else {
		body = CardsString(page, start, r.colorize)
	}
	footer := fmt.Sprintf("Showing %d-%d of %d", start+1, end, len(view.Movies))
	if len(view.Movies) > r.carousel.PerView() {
		footer += " (next/prev to scroll)"
	}
	return body + "\n" + r.paint(ansiCyan, footer)
}

func (r *Renderer) write(parts ...string) {
	for _, p := range parts {
		if p == "" {
			continue
		}
		fmt.Fprintln(r.out, p)
	}
}

func (r *Renderer) paint(color, s string) string {
	if !r.colorize || s == "" {
		return s
	}
	return color + s + ansiReset
}

// ShouldColorize reports whether writer is a terminal.
func ShouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
