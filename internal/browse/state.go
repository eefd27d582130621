package browse

import (
	"fmt"
	"strconv"
	"strings"
)

// SortField selects the comparator used to order results.
type SortField string

const (
	SortReleaseDate SortField = "release_date"
	SortBudget      SortField = "budget"
	SortBoxOffice   SortField = "box_office"
	SortProfit      SortField = "profit"
	SortRelevancy   SortField = "relevancy"
)

// SortFields lists the fields in menu order.
var SortFields = []SortField{SortReleaseDate, SortBudget, SortBoxOffice, SortProfit, SortRelevancy}

// ParseSortField accepts the wire names plus a few short aliases.
func ParseSortField(raw string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "release_date", "date", "release":
		return SortReleaseDate, nil
	case "budget":
		return SortBudget, nil
	case "box_office", "boxoffice", "revenue":
		return SortBoxOffice, nil
	case "profit":
		return SortProfit, nil
	case "relevancy", "relevance":
		return SortRelevancy, nil
	}
	return "", fmt.Errorf("%w: unknown sort field %q", ErrInvalidAction, raw)
}

// SortOrder is the direction applied to the comparator.
type SortOrder string

const (
	Ascending  SortOrder = "ascending"
	Descending SortOrder = "descending"
)

// ParseSortOrder accepts ascending/descending and asc/desc.
func ParseSortOrder(raw string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ascending", "asc":
		return Ascending, nil
	case "descending", "desc":
		return Descending, nil
	}
	return "", fmt.Errorf("%w: unknown sort order %q", ErrInvalidAction, raw)
}

// DateWindow restricts results by release date relative to today.
type DateWindow string

const (
	AllYears   DateWindow = "all_years"
	PastYear   DateWindow = "past_year"
	PastDecade DateWindow = "past_decade"
)

// DateWindows lists the windows in menu order.
var DateWindows = []DateWindow{AllYears, PastYear, PastDecade}

// ParseDateWindow accepts the wire names plus all/year/decade.
func ParseDateWindow(raw string) (DateWindow, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "all_years", "all":
		return AllYears, nil
	case "past_year", "year":
		return PastYear, nil
	case "past_decade", "decade":
		return PastDecade, nil
	}
	return "", fmt.Errorf("%w: unknown date window %q", ErrInvalidAction, raw)
}

// Limit caps the number of rendered results. NoLimit renders everything.
type Limit int

// NoLimit is the "all" option.
const NoLimit Limit = 0

// AllowedLimits lists the selectable bounds in menu order; NoLimit is also allowed.
var AllowedLimits = []Limit{5, 10, 25, 50}

// Valid reports whether l is one of the selectable options.
func (l Limit) Valid() bool {
	if l == NoLimit {
		return true
	}
	for _, allowed := range AllowedLimits {
		if l == allowed {
			return true
		}
	}
	return false
}

func (l Limit) String() string {
	if l == NoLimit {
		return "all"
	}
	return strconv.Itoa(int(l))
}

// ParseLimit accepts "all" or one of AllowedLimits.
func ParseLimit(raw string) (Limit, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "all" {
		return NoLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || !Limit(n).Valid() || n == 0 {
		return 0, fmt.Errorf("%w: limit must be one of 5, 10, 25, 50 or all, got %q", ErrInvalidAction, raw)
	}
	return Limit(n), nil
}

// ModeKind distinguishes the active search mode.
type ModeKind int

const (
	ModeNone ModeKind = iota
	ModeFreeText
	ModeTag
)

// Mode is either nothing, a free-text query, or a selected tag. The two
// search kinds are mutually exclusive by construction.
type Mode struct {
	Kind  ModeKind
	Value string
}

// FreeText builds a free-text mode.
func FreeText(text string) Mode { return Mode{Kind: ModeFreeText, Value: text} }

// TagFilter builds a tag mode.
func TagFilter(tag string) Mode { return Mode{Kind: ModeTag, Value: tag} }

func (m Mode) String() string {
	switch m.Kind {
	case ModeFreeText:
		return fmt.Sprintf("query %q", m.Value)
	case ModeTag:
		return fmt.Sprintf("tag %q", m.Value)
	default:
		return "none"
	}
}

// MenuID names one of the filter menus.
type MenuID string

const (
	MenuNone  MenuID = ""
	MenuSort  MenuID = "sort"
	MenuDate  MenuID = "date"
	MenuLimit MenuID = "limit"
)

// ParseMenuID validates a menu name.
func ParseMenuID(raw string) (MenuID, error) {
	switch id := MenuID(strings.ToLower(strings.TrimSpace(raw))); id {
	case MenuSort, MenuDate, MenuLimit:
		return id, nil
	}
	return MenuNone, fmt.Errorf("%w: unknown menu %q", ErrInvalidAction, raw)
}

// Strategy selects which backend endpoints a fetch uses.
type Strategy string

const (
	// StrategyClassic uses /search_disney_movie and /search_by_tag.
	StrategyClassic Strategy = "classic"
	// StrategyRelevancy uses /search_relevancy for every mode.
	StrategyRelevancy Strategy = "relevancy"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(raw string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(raw))); s {
	case StrategyClassic, StrategyRelevancy:
		return s, nil
	}
	return "", fmt.Errorf("unknown search strategy %q", raw)
}

// QueryState is the complete browsing state. It is a value; the controller
// replaces it wholesale after each reducer step.
type QueryState struct {
	Mode       Mode
	SortField  SortField
	SortOrder  SortOrder
	DateWindow DateWindow
	Limit      Limit
	OpenMenu   MenuID
}

// DefaultState returns the initial state for a strategy.
func DefaultState(strategy Strategy) QueryState {
	field := SortReleaseDate
	if strategy == StrategyRelevancy {
		field = SortRelevancy
	}
	return QueryState{
		SortField:  field,
		SortOrder:  Descending,
		DateWindow: AllYears,
		Limit:      NoLimit,
	}
}

// SelectedTag returns the active tag or "".
func (q QueryState) SelectedTag() string {
	if q.Mode.Kind != ModeTag {
		return ""
	}
	return q.Mode.Value
}

// QueryText returns the active free-text query or "".
func (q QueryState) QueryText() string {
	if q.Mode.Kind != ModeFreeText {
		return ""
	}
	return q.Mode.Value
}
