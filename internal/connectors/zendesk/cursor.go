package zendesk

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"
)

// CursorFlavor selects which pagination strategy a walk uses. The two
// flavors are mutually incompatible: a walk must use exactly one flavor
// from start to finish, including across a checkpoint resume.
type CursorFlavor string

const (
	// FlavorIncremental walks the time-windowed export feed. The feed is
	// driven by a start_time watermark, may return tickets already seen,
	// and never terminates on its own while new tickets keep arriving.
	FlavorIncremental CursorFlavor = "incremental"

	// FlavorSearch walks the bounded search feed. It terminates naturally
	// when no further page exists.
	FlavorSearch CursorFlavor = "search"
)

// ParseCursorFlavor parses a flavor name from the CLI or a checkpoint.
func ParseCursorFlavor(s string) (CursorFlavor, error) {
	switch CursorFlavor(s) {
	case FlavorIncremental:
		return FlavorIncremental, nil
	case FlavorSearch:
		return FlavorSearch, nil
	default:
		return "", fmt.Errorf("%w: unknown flavor %q", ErrInvalidCursor, s)
	}
}

// watermarkRegex extracts the start_time watermark from an incremental
// cursor URL: /api/v2/incremental/tickets.json?start_time=NNNN.
var watermarkRegex = regexp.MustCompile(`start_time=(\d+)`)

// ParseWatermark extracts the Unix-seconds watermark from an incremental
// cursor URL. Returns false when the URL carries no watermark.
func ParseWatermark(cursor string) (int64, bool) {
	m := watermarkRegex.FindStringSubmatch(cursor)
	if m == nil {
		return 0, false
	}
	sec, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return sec, true
}

// IncrementalURL builds the starting cursor for the incremental feed.
func IncrementalURL(subdomain string, startTime int64) string {
	return fmt.Sprintf(
		"https://%s.zendesk.com/api/v2/incremental/tickets.json?start_time=%d",
		subdomain, startTime,
	)
}

// SearchURL builds the starting cursor for the search feed, querying for
// tickets created before the oldest date still considered recent. A ticket
// created exactly minAgeDays ago is not "old", so the boundary is
// today-(minAgeDays-1); the age filter re-checks with strict comparison.
func SearchURL(subdomain string, minAgeDays int, today time.Time) string {
	boundary := today.AddDate(0, 0, -(minAgeDays - 1)).Format("2006-01-02")
	params := url.Values{}
	params.Set("query", fmt.Sprintf("created<%s type:ticket", boundary))
	return fmt.Sprintf("https://%s.zendesk.com/api/v2/search.json?%s",
		subdomain, params.Encode())
}

// bulkMutationURL builds the endpoint for one bulk mutation batch.
// The delete and scrub phases target different paths; both take a
// comma-joined id list and the DELETE verb.
func bulkMutationURL(subdomain string, ids []int64, path string) (string, error) {
	if len(ids) > MaxBatchSize {
		return "", fmt.Errorf("%w: %d ids", ErrBatchTooLarge, len(ids))
	}
	joined := make([]byte, 0, len(ids)*8)
	for i, id := range ids {
		if i > 0 {
			joined = append(joined, ',')
		}
		joined = strconv.AppendInt(joined, id, 10)
	}
	return fmt.Sprintf("https://%s.zendesk.com/api/v2/%s?ids=%s",
		subdomain, path, joined), nil
}
