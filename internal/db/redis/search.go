package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/specdex/internal/db"
)

// maxLimit mirrors the server's default MAXSEARCHRESULTS.
const maxLimit = 10000

// Search runs a filtered, paginated FT.SEARCH.
func (s *Store) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if q.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}

	limit := q.Limit
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}

	args := []string{q.Index, buildQuery(q.Clauses)}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	if q.SortBy != "" {
		order := "ASC"
		if q.SortDesc {
			order = "DESC"
		}
		args = append(args, "SORTBY", q.SortBy, order)
	}

	args = append(args,
		"LIMIT", strconv.Itoa(max(q.Offset, 0)), strconv.Itoa(limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseListResult(raw)
}

// cursorBatch is the default number of rows per FT.CURSOR READ.
const cursorBatch = 1000

// SearchAll returns every hit of q through an FT.AGGREGATE cursor, reading
// q.Limit rows at a time. Unlike Search it is not capped by MAXSEARCHRESULTS.
// Offset and sorting are ignored; entries carry the key and ReturnFields.
func (s *Store) SearchAll(ctx context.Context, q *db.Query) ([]db.SearchEntry, error) {
	if q.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	batch := strconv.Itoa(cursorBatch)
	if q.Limit > 0 && q.Limit <= maxLimit {
		batch = strconv.Itoa(q.Limit)
	}

	args := []string{q.Index, buildQuery(q.Clauses), "LOAD", strconv.Itoa(len(q.ReturnFields) + 1), "@__key"}
	args = append(args, q.ReturnFields...)
	args = append(args, "WITHCURSOR", "COUNT", batch, "DIALECT", "2")
	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	op := db.OpAggregate

	var out []db.SearchEntry
	var cursor int64
	for {
		entries, next, err := s.readCursor(ctx, cmd, op)
		if err != nil {
			if cursor != 0 {
				s.dropCursor(ctx, q.Index, cursor)
			}
			return nil, err
		}
		out = append(out, entries...)
		if cursor = next; cursor == 0 {
			return out, nil
		}
		if err := ctx.Err(); err != nil {
			s.dropCursor(ctx, q.Index, cursor)
			return nil, err
		}
		cmd = s.b().Arbitrary("FT.CURSOR").
			Args("READ", q.Index, strconv.FormatInt(cursor, 10), "COUNT", batch).
			Build()
		op = db.OpCursorRead
	}
}

// readCursor runs one aggregate or cursor read. The RESP2 reply is
// [[total, row...], cursor] where each row is a flat field/value list.
func (s *Store) readCursor(ctx context.Context, cmd rueidis.Completed, op string) ([]db.SearchEntry, int64, error) {
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
			return nil, 0, db.ErrIndexNotFound
		}
		return nil, 0, &db.Error{Op: op, Err: err}
	}
	if len(raw) != 2 {
		return nil, 0, &db.Error{Op: op, Err: fmt.Errorf("unexpected reply of %d elements", len(raw))}
	}
	rows, err := raw[0].ToArray()
	if err != nil {
		return nil, 0, &db.Error{Op: op, Err: fmt.Errorf("parse rows: %w", err)}
	}
	cursor, err := raw[1].AsInt64()
	if err != nil {
		return nil, 0, &db.Error{Op: op, Err: fmt.Errorf("parse cursor: %w", err)}
	}

	entries := make([]db.SearchEntry, 0, max(len(rows)-1, 0))
	for _, row := range rows[min(1, len(rows)):] {
		pairs, err := row.ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(pairs)
		key := fields["__key"]
		delete(fields, "__key")
		entries = append(entries, db.SearchEntry{Key: key, Fields: fields})
	}
	return entries, cursor, nil
}

// dropCursor releases a server-side cursor that will not be read to the end.
func (s *Store) dropCursor(ctx context.Context, index string, cursor int64) {
	cmd := s.b().Arbitrary("FT.CURSOR").Args("DEL", index, strconv.FormatInt(cursor, 10)).Build()
	_ = s.do(context.WithoutCancel(ctx), cmd).Error()
}

// Count returns the number of matching documents via FT.SEARCH with LIMIT 0 0.
func (s *Store) Count(ctx context.Context, q *db.Query) (int, error) {
	if q.Index == "" {
		return 0, fmt.Errorf("index name is required")
	}

	cmd := s.b().Arbitrary("FT.SEARCH").
		Args(q.Index, buildQuery(q.Clauses), "LIMIT", "0", "0", "DIALECT", "2").
		Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
			return 0, db.ErrIndexNotFound
		}
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// --- Result parsing ---

func parseListResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, min(int(total), len(raw)/2))
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query building ---

// buildQuery translates ANDed clauses into an FT.SEARCH query string.
func buildQuery(clauses []db.Clause) string {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		part := buildClause(c)
		if part == "" {
			continue
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

func buildClause(c db.Clause) string {
	if c.IsTag() {
		return buildTagFilter(c.Field, c.Tags)
	}
	if c.Min == nil && c.Max == nil {
		return ""
	}
	return buildNumericFilter(c.Field, c.Min, c.Max)
}

func buildTagFilter(key string, values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = tagEscaper.Replace(v)
	}
	return fmt.Sprintf("@%s:{%s}", key, strings.Join(escaped, " | "))
}

// buildNumericFilter renders an inclusive range; floats are printed without
// exponent so epoch values keep full precision.
func buildNumericFilter(key string, lo, hi *float64) string {
	minBound := "-inf"
	maxBound := "+inf"

	if lo != nil {
		minBound = strconv.FormatFloat(*lo, 'f', -1, 64)
	}
	if hi != nil {
		maxBound = strconv.FormatFloat(*hi, 'f', -1, 64)
	}

	return fmt.Sprintf("@%s:[%s %s]", key, minBound, maxBound)
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)
