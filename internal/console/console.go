// Package console is the interactive front end of the movie browser. It reads
// commands with readline, turns them into browse actions and leaves drawing
// to the renderer subscribed to the controller.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/chzyer/readline"

	"github.com/Clark-Hu/movie-browser/internal/browse"
	"github.com/Clark-Hu/movie-browser/internal/render"
)

// ErrExit is returned when the user asks to leave.
var ErrExit = errors.New("exit requested")

// Controller is the part of browse.Controller the console drives.
type Controller interface {
	Dispatch(ctx context.Context, a browse.Action) error
	State() browse.QueryState
	LoadTags(ctx context.Context)
}

// Display is the part of render.Renderer the console drives directly.
type Display interface {
	Next() bool
	Prev() bool
	SetLayout(layout render.Layout)
	Show()
	Print(format string, args ...any)
	Errorf(format string, args ...any)
}

// CLI binds a controller and a display to a readline instance.
type CLI struct {
	ctrl    Controller
	display Display
	rl      *readline.Instance
}

// New constructs a CLI. rl may be nil when commands come from Execute or
// ExecuteScript only.
func New(ctrl Controller, display Display, rl *readline.Instance) *CLI {
	return &CLI{ctrl: ctrl, display: display, rl: rl}
}

// Loop reads and executes commands until exit, EOF or ctx is cancelled.
func (c *CLI) Loop(ctx context.Context) error {
	if c.rl == nil {
		return errors.New("console: no readline instance")
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		err := c.Run(ctx)
		switch {
		case err == nil:
		case errors.Is(err, readline.ErrInterrupt):
			c.display.Print("Use 'exit' or 'quit' to leave.")
		case errors.Is(err, io.EOF), errors.Is(err, ErrExit):
			return nil
		default:
			c.display.Errorf("Error: %v", err)
		}
	}
}

// Run reads a single line and executes it.
func (c *CLI) Run(ctx context.Context) error {
	line, err := c.rl.Readline()
	if err != nil {
		return err
	}
	return c.Execute(ctx, ParseArgs(line))
}

// ExecuteScript runs one command per line from r. Blank lines and lines
// starting with '#' are skipped. Command errors are reported and do not stop
// the script; ErrExit does.
func (c *CLI) ExecuteScript(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := c.Execute(ctx, ParseArgs(line)); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			c.display.Errorf("Error: %v", err)
		}
	}
	return scanner.Err()
}

// ParseArgs splits a command line on whitespace, keeping double-quoted
// sections together.
func ParseArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false
	quoted := false

	flush := func() {
		if current.Len() > 0 || quoted {
			args = append(args, current.String())
		}
		current.Reset()
		quoted = false
	}

	for _, char := range input {
		switch {
		case char == '"':
			inQuotes = !inQuotes
			quoted = true
		case unicode.IsSpace(char) && !inQuotes:
			flush()
		default:
			current.WriteRune(char)
		}
	}
	flush()
	return args
}

// Execute runs a parsed command.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}
	name, rest := strings.ToLower(args[0]), args[1:]

	if err := c.dismissMenu(ctx, name); err != nil {
		return err
	}

	switch name {
	case "search", "s", "find":
		return c.ctrl.Dispatch(ctx, browse.SetQuery{Text: strings.Join(rest, " ")})
	case "tag":
		if len(rest) == 0 {
			return fmt.Errorf("usage: tag <name>")
		}
		return c.ctrl.Dispatch(ctx, browse.SelectTag{Tag: strings.Join(rest, " ")})
	case "untag":
		return c.ctrl.Dispatch(ctx, browse.ClearTag{})
	case "tags":
		c.ctrl.LoadTags(ctx)
		return nil
	case "more":
		return c.ctrl.Dispatch(ctx, browse.ShowMoreTags{})
	case "sort":
		return c.handleSort(ctx, rest)
	case "order":
		return c.handleOrder(ctx, rest)
	case "date", "dates":
		return c.handleDate(ctx, rest)
	case "limit":
		return c.handleLimit(ctx, rest)
	case "menu":
		if len(rest) != 1 {
			return fmt.Errorf("usage: menu <sort|date|limit>")
		}
		return c.ctrl.Dispatch(ctx, browse.ToggleMenu{Menu: browse.MenuID(strings.ToLower(rest[0]))})
	case "pick":
		return c.handlePick(ctx, rest)
	case "close":
		return c.ctrl.Dispatch(ctx, browse.ClickOutside{})
	case "next", "n":
		if !c.display.Next() {
			c.display.Print("Already at the last page.")
		}
		return nil
	case "prev", "p":
		if !c.display.Prev() {
			c.display.Print("Already at the first page.")
		}
		return nil
	case "show":
		c.display.Show()
		return nil
	case "table", "cards":
		c.display.SetLayout(render.Layout(name))
		return nil
	case "layout":
		if len(rest) != 1 {
			return fmt.Errorf("usage: layout <cards|table>")
		}
		layout, err := render.ParseLayout(rest[0])
		if err != nil {
			return err
		}
		c.display.SetLayout(layout)
		return nil
	case "refresh":
		return c.ctrl.Dispatch(ctx, browse.Refresh{})
	case "help", "?":
		c.display.Print(helpText(rest))
		return nil
	case "exit", "quit":
		return ErrExit
	default:
		return fmt.Errorf("unknown command: %s (try 'help')", args[0])
	}
}

// dismissMenu closes an open menu before any command that does not work
// inside it.
func (c *CLI) dismissMenu(ctx context.Context, name string) error {
	open := c.ctrl.State().OpenMenu
	if open == browse.MenuNone {
		return nil
	}
	switch name {
	case "menu", "pick", "close":
		return nil
	case "sort", "order":
		if open == browse.MenuSort {
			return nil
		}
	case "date", "dates":
		if open == browse.MenuDate {
			return nil
		}
	case "limit":
		if open == browse.MenuLimit {
			return nil
		}
	}
	return c.ctrl.Dispatch(ctx, browse.ClickOutside{})
}

func (c *CLI) handleSort(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.ctrl.Dispatch(ctx, browse.ToggleMenu{Menu: browse.MenuSort})
	}
	if err := c.ctrl.Dispatch(ctx, browse.SetSortField{Field: browse.SortField(args[0])}); err != nil {
		return err
	}
	if len(args) > 1 {
		return c.handleOrder(ctx, args[1:])
	}
	return nil
}

func (c *CLI) handleOrder(ctx context.Context, args []string) error {
	var order browse.SortOrder
	if len(args) == 0 {
		order = browse.Ascending
		if c.ctrl.State().SortOrder == browse.Ascending {
			order = browse.Descending
		}
	} else {
		parsed, err := browse.ParseSortOrder(args[0])
		if err != nil {
			return err
		}
		order = parsed
	}
	return c.ctrl.Dispatch(ctx, browse.SetSortOrder{Order: order})
}

func (c *CLI) handleDate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.ctrl.Dispatch(ctx, browse.ToggleMenu{Menu: browse.MenuDate})
	}
	window, err := browse.ParseDateWindow(args[0])
	if err != nil {
		return err
	}
	return c.ctrl.Dispatch(ctx, browse.SetDateWindow{Window: window})
}

func (c *CLI) handleLimit(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.ctrl.Dispatch(ctx, browse.ToggleMenu{Menu: browse.MenuLimit})
	}
	limit, err := browse.ParseLimit(args[0])
	if err != nil {
		return err
	}
	return c.ctrl.Dispatch(ctx, browse.SetResultLimit{Limit: limit})
}

// handlePick chooses an option from whichever menu is open.
func (c *CLI) handlePick(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: pick <option>")
	}
	switch c.ctrl.State().OpenMenu {
	case browse.MenuSort:
		field, err := browse.ParseSortField(args[0])
		if err == nil {
			return c.ctrl.Dispatch(ctx, browse.SetSortField{Field: field})
		}
		if order, orderErr := browse.ParseSortOrder(args[0]); orderErr == nil {
			return c.ctrl.Dispatch(ctx, browse.SetSortOrder{Order: order})
		}
		return err
	case browse.MenuDate:
		return c.handleDate(ctx, args)
	case browse.MenuLimit:
		return c.handleLimit(ctx, args)
	default:
		return fmt.Errorf("no menu is open; use sort, date or limit first")
	}
}
