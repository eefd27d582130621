package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-browser/internal/domain"
)

// MoviesRepository provides search helpers over the movie catalog.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    title,
    release_date,
    release_year,
    running_time,
    genre,
    tags,
    summary,
    image_path,
    budget,
    box_office,
    profit
`

// SearchOptions carries the optional ordering and filtering hints a search
// endpoint accepts.
type SearchOptions struct {
	SortBy     string
	Order      string
	DateFilter string
	Limit      int
}

// MovieCreateParams bundles the fields stored for a movie. Profit is derived
// by the database.
type MovieCreateParams struct {
	Title       string
	ReleaseDate *time.Time
	ReleaseYear int
	RunningTime int
	Genre       []string
	Tags        []string
	Summary     string
	ImagePath   string
	Budget      *float64
	BoxOffice   *float64
}

// ScoredTitle pairs a title with its full-text rank.
type ScoredTitle struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

var sortExpressions = map[string]string{
	"release_date": "release_date",
	"budget":       "COALESCE(budget, 0)",
	"box_office":   "COALESCE(box_office, 0)",
	"profit":       "COALESCE(profit, 0)",
	"relevancy":    "relevancy",
}

// ValidSortField reports whether field can be used in SearchOptions.SortBy.
func ValidSortField(field string) bool {
	_, ok := sortExpressions[field]
	return ok
}

// ValidDateFilter reports whether filter can be used in SearchOptions.DateFilter.
func ValidDateFilter(filter string) bool {
	_, ok := dateFilters[filter]
	return ok
}

var dateFilters = map[string]string{
	"all_years":   "",
	"past_year":   "release_date >= (current_date - interval '1 year')",
	"past_decade": "release_date >= (current_date - interval '10 years')",
}

const tagMatch = "EXISTS (SELECT 1 FROM unnest(tags) AS t(tag) WHERE lower(t.tag) = lower(%s))"

// SearchText returns movies whose title or summary match query, ranked by
// full-text relevancy unless opts asks for another order.
func (r *MoviesRepository) SearchText(ctx context.Context, query string, opts SearchOptions) ([]domain.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Movie{}, nil
	}
	args := make([]interface{}, 0, 2)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	q := arg(query)
	relevancy := fmt.Sprintf("ts_rank(search_vector, websearch_to_tsquery('english', %s))", q)
	where := []string{fmt.Sprintf("search_vector @@ websearch_to_tsquery('english', %s)", q)}
	if opts.SortBy == "" {
		opts.SortBy = "relevancy"
	}
	return r.search(ctx, relevancy, where, args, opts)
}

// SearchTag returns movies carrying tag, compared case-insensitively.
func (r *MoviesRepository) SearchTag(ctx context.Context, tag string, opts SearchOptions) ([]domain.Movie, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return []domain.Movie{}, nil
	}
	args := make([]interface{}, 0, 1)
	where := []string{fmt.Sprintf(tagMatch, "$1")}
	args = append(args, tag)
	if opts.SortBy == "" {
		opts.SortBy = "release_date"
	}
	if opts.Order == "" {
		opts.Order = "descending"
	}
	return r.search(ctx, "NULL", where, args, opts)
}

// SearchRelevancy returns movies ranked by relevancy. With isTag the query is
// a tag and only tagged movies match; otherwise a movie matches on text or on
// a tag equal to the query. An empty non-tag query lists every movie with its
// relevancy set to the number of days between 0001-01-01 and its release, so
// that newer releases rank first.
func (r *MoviesRepository) SearchRelevancy(ctx context.Context, query string, isTag bool, limit int) ([]domain.Movie, error) {
	query = strings.TrimSpace(query)
	opts := SearchOptions{SortBy: "relevancy", Order: "descending", Limit: limit}

	if query == "" {
		if isTag {
			return []domain.Movie{}, nil
		}
		relevancy := "COALESCE(release_date - DATE '0001-01-01', 0)"
		return r.search(ctx, relevancy, nil, nil, opts)
	}

	args := []interface{}{query}
	relevancy := "ts_rank(search_vector, plainto_tsquery('english', $1))"
	var where []string
	if isTag {
		where = []string{fmt.Sprintf(tagMatch, "$1")}
	} else {
		where = []string{fmt.Sprintf("(search_vector @@ plainto_tsquery('english', $1) OR "+tagMatch+")", "$1")}
	}
	return r.search(ctx, relevancy, where, args, opts)
}

func (r *MoviesRepository) search(ctx context.Context, relevancy string, where []string, args []interface{}, opts SearchOptions) ([]domain.Movie, error) {
	if filter := dateFilters[opts.DateFilter]; filter != "" {
		where = append(where, filter)
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(movieColumns)
	queryBuilder.WriteString(", (")
	queryBuilder.WriteString(relevancy)
	queryBuilder.WriteString(")::double precision AS relevancy FROM movies")

	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(where, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY ")
	queryBuilder.WriteString(orderClause(opts.SortBy, opts.Order))
	if opts.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d", opts.Limit))
	}

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// orderClause builds ORDER BY from whitelisted expressions only. Ties fall
// back to newest release first, then title.
func orderClause(sortBy, order string) string {
	expr, ok := sortExpressions[sortBy]
	if !ok {
		expr = sortExpressions["release_date"]
	}
	direction := "DESC"
	if order == "ascending" && sortBy != "relevancy" {
		direction = "ASC"
	}
	clause := fmt.Sprintf("%s %s NULLS LAST", expr, direction)
	if expr != "release_date" {
		clause += ", release_date DESC NULLS LAST"
	}
	return clause + ", title ASC"
}

// TopDocuments returns the k best full-text matches with their raw rank.
func (r *MoviesRepository) TopDocuments(ctx context.Context, query string, k int) ([]ScoredTitle, error) {
	query = strings.TrimSpace(query)
	if query == "" || k <= 0 {
		return []ScoredTitle{}, nil
	}
	rows, err := r.pool.Query(ctx, `
        SELECT title, ts_rank(search_vector, websearch_to_tsquery('english', $1))::double precision AS score
        FROM movies
        WHERE search_vector @@ websearch_to_tsquery('english', $1)
        ORDER BY score DESC, title ASC
        LIMIT $2
    `, query, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]ScoredTitle, 0, k)
	for rows.Next() {
		var st ScoredTitle
		if err := rows.Scan(&st.Title, &st.Score); err != nil {
			return nil, err
		}
		results = append(results, st)
	}
	return results, rows.Err()
}

// CommonTags returns lower-cased tags carried by at least minOccurrences
// movies, most frequent first.
func (r *MoviesRepository) CommonTags(ctx context.Context, minOccurrences int) ([]string, error) {
	if minOccurrences < 1 {
		minOccurrences = 1
	}
	rows, err := r.pool.Query(ctx, `
        SELECT lower(t.tag) AS tag
        FROM movies, unnest(tags) AS t(tag)
        WHERE btrim(t.tag) <> ''
        GROUP BY lower(t.tag)
        HAVING count(*) >= $1
        ORDER BY count(*) DESC, tag ASC
    `, minOccurrences)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]string, 0)
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// Insert stores a single movie.
func (r *MoviesRepository) Insert(ctx context.Context, params MovieCreateParams) error {
	params = normalizeParams(params)
	_, err := r.pool.Exec(ctx, `
        INSERT INTO movies (title, release_date, release_year, running_time, genre, tags, summary, image_path, budget, box_office)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    `, params.Title, params.ReleaseDate, params.ReleaseYear, params.RunningTime, params.Genre, params.Tags,
		params.Summary, params.ImagePath, params.Budget, params.BoxOffice)
	return err
}

// InsertMany bulk-loads movies with COPY and reports how many rows were written.
func (r *MoviesRepository) InsertMany(ctx context.Context, movies []MovieCreateParams) (int64, error) {
	if len(movies) == 0 {
		return 0, nil
	}
	columns := []string{"title", "release_date", "release_year", "running_time", "genre", "tags", "summary", "image_path", "budget", "box_office"}
	rows := make([][]interface{}, 0, len(movies))
	for _, m := range movies {
		m = normalizeParams(m)
		rows = append(rows, []interface{}{m.Title, m.ReleaseDate, m.ReleaseYear, m.RunningTime, m.Genre, m.Tags, m.Summary, m.ImagePath, m.Budget, m.BoxOffice})
	}
	return r.pool.CopyFrom(ctx, pgx.Identifier{"movies"}, columns, pgx.CopyFromRows(rows))
}

// Count returns the number of stored movies.
func (r *MoviesRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM movies`).Scan(&n)
	return n, err
}

func normalizeParams(p MovieCreateParams) MovieCreateParams {
	p.Title = strings.TrimSpace(p.Title)
	if p.Genre == nil {
		p.Genre = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.ReleaseYear == 0 && p.ReleaseDate != nil {
		p.ReleaseYear = p.ReleaseDate.Year()
	}
	return p
}

// ParamsFromMovie converts a decoded catalog record into insert parameters.
func ParamsFromMovie(m domain.Movie) MovieCreateParams {
	params := MovieCreateParams{
		Title:       m.Title,
		ReleaseYear: m.ReleaseYear,
		RunningTime: int(m.RunningTime),
		Genre:       m.Genre,
		Tags:        m.Tags,
		Summary:     m.Summary,
		ImagePath:   m.ImagePath,
	}
	if !m.ReleaseDate.IsZero() {
		d := m.ReleaseDate.Time
		params.ReleaseDate = &d
	}
	if m.Budget.Valid {
		v := m.Budget.Value
		params.Budget = &v
	}
	if m.BoxOffice.Valid {
		v := m.BoxOffice.Value
		params.BoxOffice = &v
	}
	return params
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var (
		movie       domain.Movie
		releaseDate *time.Time
		runningTime int
		budget      *float64
		boxOffice   *float64
		profit      *float64
		relevancy   *float64
	)

	err := row.Scan(
		&movie.Title,
		&releaseDate,
		&movie.ReleaseYear,
		&runningTime,
		&movie.Genre,
		&movie.Tags,
		&movie.Summary,
		&movie.ImagePath,
		&budget,
		&boxOffice,
		&profit,
		&relevancy,
	)
	if err != nil {
		return domain.Movie{}, err
	}

	if releaseDate != nil {
		movie.ReleaseDate = domain.DateOf(*releaseDate)
	}
	movie.RunningTime = domain.Minutes(runningTime)
	movie.Budget = optionalNumber(budget)
	movie.BoxOffice = optionalNumber(boxOffice)
	movie.Profit = optionalNumber(profit)
	movie.Relevancy = optionalNumber(relevancy)
	return movie, nil
}

func optionalNumber(v *float64) domain.Number {
	if v == nil {
		return domain.Number{}
	}
	return domain.NewNumber(*v)
}
