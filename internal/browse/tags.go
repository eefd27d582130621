package browse

// DefaultTagBatch is how many tags each "show more" reveals.
const DefaultTagBatch = 6

// TagShelf pages through the common tags in fixed-size batches.
type TagShelf struct {
	all   []string
	shown int
	batch int
}

// NewTagShelf returns an empty shelf. A non-positive batch uses DefaultTagBatch.
func NewTagShelf(batch int) *TagShelf {
	if batch <= 0 {
		batch = DefaultTagBatch
	}
	return &TagShelf{batch: batch}
}

// Load replaces the tag list and shows the first batch.
func (s *TagShelf) Load(tags []string) {
	s.all = append([]string(nil), tags...)
	s.shown = 0
	s.ShowMore()
}

// ShowMore reveals the next batch and reports whether anything was added.
func (s *TagShelf) ShowMore() bool {
	if s.shown >= len(s.all) {
		return false
	}
	s.shown = min(s.shown+s.batch, len(s.all))
	return true
}

// Visible returns the tags revealed so far.
func (s *TagShelf) Visible() []string {
	return append([]string(nil), s.all[:s.shown]...)
}

// HasMore reports whether another batch is available.
func (s *TagShelf) HasMore() bool {
	return s.shown < len(s.all)
}
