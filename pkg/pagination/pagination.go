package pagination

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any cursor query can request.
	MaxLimit = 100
)

// Params holds cursor pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the position of a row in a newest-first listing. SortAt is an
// optional primary key (e.g. an assignment date); rows tie-break on CreatedAt
// and then ID.
type Cursor struct {
	SortAt    time.Time
	CreatedAt time.Time
	ID        uuid.UUID
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor builds a base64 cursor string from the provided values.
func EncodeCursor(cursor Cursor) string {
	payload := fmt.Sprintf("%s|%s|%s",
		formatTime(cursor.SortAt),
		formatTime(cursor.CreatedAt),
		cursor.ID.String(),
	)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes the cursor string back into its components.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid cursor format")
	}

	sortAt, err := parseTime(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor sort key: %w", err)
	}
	createdAt, err := parseTime(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(parts[2])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &Cursor{
		SortAt:    sortAt,
		CreatedAt: createdAt,
		ID:        id,
	}, nil
}

// Precedes reports whether a is listed before b in newest-first order.
func Precedes(a, b Cursor) bool {
	if !a.SortAt.Equal(b.SortAt) {
		return a.SortAt.After(b.SortAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) > 0
}

// SortNewestFirst orders items in place by their cursor keys.
func SortNewestFirst[T any](items []T, keyOf func(T) Cursor) {
	sort.SliceStable(items, func(i, j int) bool {
		return Precedes(keyOf(items[i]), keyOf(items[j]))
	})
}

// Page slices a newest-first list after the cursor in params. The returned
// cursor is empty on the last page.
func Page[T any](sorted []T, params Params, keyOf func(T) Cursor) ([]T, string, error) {
	cursor, err := ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	limit := NormalizeLimit(params.Limit)

	start := 0
	if cursor != nil {
		start = sort.Search(len(sorted), func(i int) bool {
			return Precedes(*cursor, keyOf(sorted[i]))
		})
	}

	end := start + limit
	if end >= len(sorted) {
		return sorted[start:], "", nil
	}
	page := sorted[start:end]
	return page, EncodeCursor(keyOf(page[len(page)-1])), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}
