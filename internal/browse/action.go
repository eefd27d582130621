package browse

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAction is returned for actions carrying values outside their allowed set.
var ErrInvalidAction = errors.New("browse: invalid action")

// Action is a user intent. The concrete types below are the only implementations.
type Action interface {
	action()
}

type (
	// SetQuery switches to a free-text search. Blank text is ignored.
	SetQuery struct{ Text string }
	// SelectTag switches to a tag search; selecting the active tag deselects it.
	SelectTag struct{ Tag string }
	// ClearTag drops the active tag without fetching.
	ClearTag struct{}
	// SetSortField picks the comparator.
	SetSortField struct{ Field SortField }
	// SetSortOrder picks the direction.
	SetSortOrder struct{ Order SortOrder }
	// SetDateWindow picks the release-date window.
	SetDateWindow struct{ Window DateWindow }
	// SetResultLimit picks how many results are shown.
	SetResultLimit struct{ Limit Limit }
	// ToggleMenu opens a menu, or closes it when already open.
	ToggleMenu struct{ Menu MenuID }
	// ClickOutside closes whichever menu is open.
	ClickOutside struct{}
	// ShowMoreTags reveals the next batch of common tags.
	ShowMoreTags struct{}
	// Refresh re-runs the current search.
	Refresh struct{}
)

func (SetQuery) action()       {}
func (SelectTag) action()      {}
func (ClearTag) action()       {}
func (SetSortField) action()   {}
func (SetSortOrder) action()   {}
func (SetDateWindow) action()  {}
func (SetResultLimit) action() {}
func (ToggleMenu) action()     {}
func (ClickOutside) action()   {}
func (ShowMoreTags) action()   {}
func (Refresh) action()        {}

// Effect tells the controller what has to happen after a state transition.
type Effect int

const (
	// EffectNone means nothing visible changed.
	EffectNone Effect = iota
	// EffectMenu means only menu state changed.
	EffectMenu
	// EffectTags means the tag shelf changed.
	EffectTags
	// EffectRederive means the view must be re-derived from the cached results.
	EffectRederive
	// EffectRefetch means the backend must be queried again.
	EffectRefetch
)

func (e Effect) String() string {
	switch e {
	case EffectMenu:
		return "menu"
	case EffectTags:
		return "tags"
	case EffectRederive:
		return "rederive"
	case EffectRefetch:
		return "refetch"
	default:
		return "none"
	}
}

// Reduce computes the next state for an action. It is pure: the caller owns
// both the old and new state and decides how to apply the returned effect.
// On error the original state is returned unchanged.
func Reduce(state QueryState, a Action) (QueryState, Effect, error) {
	next := state
	effect := EffectNone

	switch act := a.(type) {
	case SetQuery:
		text := strings.TrimSpace(act.Text)
		if text == "" {
			return state, EffectNone, nil
		}
		next.Mode = FreeText(text)
		effect = EffectRefetch

	case SelectTag:
		tag := strings.TrimSpace(act.Tag)
		if tag == "" {
			return state, EffectNone, fmt.Errorf("%w: empty tag", ErrInvalidAction)
		}
		if state.Mode.Kind == ModeTag && strings.EqualFold(state.Mode.Value, tag) {
			next.Mode = Mode{}
		} else {
			next.Mode = TagFilter(tag)
		}
		effect = EffectRefetch

	case ClearTag:
		if state.Mode.Kind == ModeTag {
			next.Mode = Mode{}
		}

	case SetSortField:
		field, err := ParseSortField(string(act.Field))
		if err != nil {
			return state, EffectNone, err
		}
		next.SortField = field
		next.OpenMenu = closeIf(state.OpenMenu, MenuSort)
		effect = EffectRederive

	case SetSortOrder:
		if act.Order != Ascending && act.Order != Descending {
			return state, EffectNone, fmt.Errorf("%w: unknown sort order %q", ErrInvalidAction, act.Order)
		}
		next.SortOrder = act.Order
		next.OpenMenu = closeIf(state.OpenMenu, MenuSort)
		effect = EffectRederive

	case SetDateWindow:
		switch act.Window {
		case AllYears, PastYear, PastDecade:
		default:
			return state, EffectNone, fmt.Errorf("%w: unknown date window %q", ErrInvalidAction, act.Window)
		}
		next.DateWindow = act.Window
		next.OpenMenu = closeIf(state.OpenMenu, MenuDate)
		effect = EffectRederive

	case SetResultLimit:
		if !act.Limit.Valid() {
			return state, EffectNone, fmt.Errorf("%w: limit %d not allowed", ErrInvalidAction, act.Limit)
		}
		next.Limit = act.Limit
		next.OpenMenu = closeIf(state.OpenMenu, MenuLimit)
		effect = EffectRederive

	case ToggleMenu:
		menu, err := ParseMenuID(string(act.Menu))
		if err != nil {
			return state, EffectNone, err
		}
		if state.OpenMenu == menu {
			next.OpenMenu = MenuNone
		} else {
			next.OpenMenu = menu
		}
		effect = EffectMenu

	case ClickOutside:
		if state.OpenMenu != MenuNone {
			next.OpenMenu = MenuNone
			effect = EffectMenu
		}

	case ShowMoreTags:
		effect = EffectTags

	case Refresh:
		effect = EffectRefetch

	default:
		return state, EffectNone, fmt.Errorf("%w: unsupported action %T", ErrInvalidAction, a)
	}

	// Relevancy has no meaningful ascending order.
	if next.SortField == SortRelevancy {
		next.SortOrder = Descending
	}
	return next, effect, nil
}

func closeIf(open, menu MenuID) MenuID {
	if open == menu {
		return MenuNone
	}
	return open
}
