package zendesk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/custodia-labs/zenpurge-cli/internal/core/domain"
	"github.com/custodia-labs/zenpurge-cli/internal/logger"
)

// datePrefixRegex matches the YYYY-MM-DD prefix of a created_at value.
var datePrefixRegex = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})`)

// Walker follows pagination cursors and accumulates tickets. A walker is
// single-use: once Walk returns, further calls fail with ErrWalkerExhausted.
//
// Walkers are not restartable on their own; Snapshot captures the current
// position and ResumeWalker rebuilds one from a saved checkpoint.
type Walker struct {
	client *Client
	flavor CursorFlavor
	cursor string
	cfg    WalkConfig
	now    func() time.Time

	collected  []domain.Ticket
	seen       map[int64]struct{}
	smallDiffs int
	done       bool
}

// NewWalker creates a walker starting at the given cursor. Zero fields in
// cfg fall back to the package defaults.
func NewWalker(client *Client, flavor CursorFlavor, cursor string, cfg WalkConfig) *Walker {
	return &Walker{
		client: client,
		flavor: flavor,
		cursor: cursor,
		cfg:    cfg.withDefaults(),
		now:    time.Now,
		seen:   make(map[int64]struct{}),
	}
}

// ResumeWalker rebuilds a walker from a checkpoint saved by an earlier,
// interrupted walk. The walk continues with the checkpoint's flavor; the
// two flavors are not interchangeable mid-walk.
func ResumeWalker(client *Client, cp domain.Checkpoint, cfg WalkConfig) (*Walker, error) {
	flavor, err := ParseCursorFlavor(cp.Flavor)
	if err != nil {
		return nil, fmt.Errorf("resume walker: %w", err)
	}
	w := NewWalker(client, flavor, cp.Cursor, cfg)
	w.collected = append(w.collected, cp.Tickets...)
	for _, id := range cp.SeenIDs {
		w.seen[id] = struct{}{}
	}
	return w, nil
}

// Snapshot captures the walk's position for checkpointing.
func (w *Walker) Snapshot() domain.Checkpoint {
	seen := make([]int64, 0, len(w.seen))
	for id := range w.seen {
		seen = append(seen, id)
	}
	return domain.NewCheckpoint(string(w.flavor), w.cursor, w.collected, seen)
}

// Walk follows cursors until the collection is exhausted, the live edge is
// reached, or ctx is cancelled. The returned slice holds every distinct
// ticket collected so far; on error it is still meaningful and can be
// checkpointed via Snapshot.
//
// Transport failures are retried inside the Client. Walk itself only
// reacts to the end-of-stream sentinel, to protocol violations (fatal,
// whole walk aborted) and to an exhausted retry budget (propagated).
func (w *Walker) Walk(ctx context.Context) ([]domain.Ticket, error) {
	if w.done {
		return w.collected, ErrWalkerExhausted
	}

	for {
		select {
		case <-ctx.Done():
			return w.collected, ctx.Err()
		default:
		}

		logger.Debug("fetching page %s", w.cursor)
		resp, err := w.client.Execute(ctx, http.MethodGet, w.cursor)
		if err != nil {
			return w.collected, fmt.Errorf("fetch page: %w", err)
		}
		if resp.EndOfStream {
			// The feed reported the window is too recent: normal end of
			// stream for the incremental flavor.
			logger.Info("feed reported end of window, stopping")
			w.done = true
			return w.collected, nil
		}

		tickets, next, err := parsePage(w.flavor, w.cursor, resp.Body)
		if err != nil {
			return w.collected, err
		}

		added := 0
		for _, t := range tickets {
			if _, dup := w.seen[t.ID]; dup {
				continue
			}
			w.seen[t.ID] = struct{}{}
			w.collected = append(w.collected, t)
			added++
			if w.cfg.MaxTickets > 0 && len(w.collected) >= w.cfg.MaxTickets {
				logger.Info("reached ticket cap of %d, stopping early", w.cfg.MaxTickets)
				w.done = true
				return w.collected, nil
			}
		}
		logger.Debug("page held %d tickets, %d new, %d total", len(tickets), added, len(w.collected))

		if next == "" {
			// A null next_page ends a bounded walk naturally.
			w.done = true
			return w.collected, nil
		}

		if w.flavor == FlavorIncremental && w.atLiveEdge(next) {
			logger.Info("reached likely live edge of the feed, stopping")
			w.done = true
			return w.collected, nil
		}

		w.cursor = next
	}
}

// atLiveEdge applies the termination heuristic for the incremental feed.
//
// The feed has no natural end while tickets keep arriving: near the
// present it hands out cursors whose watermark barely advances, page
// after page, without new old data. When the current watermark falls
// within the live-edge window and the delta to the next watermark stays
// at or below SmallDiff for SmallDiffLimit consecutive pages, the walk
// is done.
func (w *Walker) atLiveEdge(next string) bool {
	cur, okCur := ParseWatermark(w.cursor)
	nxt, okNext := ParseWatermark(next)
	if !okCur || !okNext {
		w.smallDiffs = 0
		return false
	}

	recent := w.now().Sub(time.Unix(cur, 0)) <= w.cfg.LiveEdgeWindow
	small := time.Duration(nxt-cur)*time.Second <= w.cfg.SmallDiff
	if !recent || !small {
		w.smallDiffs = 0
		logger.Debug("watermark advanced to %d (%s)", nxt, time.Unix(nxt, 0).UTC().Format(time.DateTime))
		return false
	}

	w.smallDiffs++
	return w.smallDiffs >= w.cfg.SmallDiffLimit
}

// parsePage decodes one page body into tickets and the next cursor.
// An empty next cursor means the page was the last one.
//
// The page must carry the flavor's collection field and a next_page
// field; a missing field is a protocol violation that aborts the walk,
// since continuing would silently under-collect.
func parsePage(flavor CursorFlavor, cursor string, body []byte) ([]domain.Ticket, string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, "", &ProtocolError{URL: cursor, Reason: fmt.Sprintf("unparseable page body: %v", err)}
	}

	key := "tickets"
	if flavor == FlavorSearch {
		key = "results"
	}
	rawList, ok := fields[key]
	if !ok {
		return nil, "", &ProtocolError{URL: cursor, Reason: fmt.Sprintf("response carries no %q field", key)}
	}

	var items []struct {
		ID        int64  `json:"id"`
		CreatedAt string `json:"created_at"`
		Status    string `json:"status"`
	}
	if err := json.Unmarshal(rawList, &items); err != nil {
		return nil, "", &ProtocolError{URL: cursor, Reason: fmt.Sprintf("malformed %q field: %v", key, err)}
	}

	tickets := make([]domain.Ticket, 0, len(items))
	for _, item := range items {
		m := datePrefixRegex.FindStringSubmatch(item.CreatedAt)
		if m == nil {
			return nil, "", &ProtocolError{
				URL:    cursor,
				Reason: fmt.Sprintf("no date in created_at %q for ticket %d", item.CreatedAt, item.ID),
			}
		}
		created, err := time.Parse("2006-01-02", m[1])
		if err != nil {
			return nil, "", &ProtocolError{
				URL:    cursor,
				Reason: fmt.Sprintf("invalid date %q for ticket %d", m[1], item.ID),
			}
		}
		tickets = append(tickets, domain.Ticket{
			ID:        item.ID,
			CreatedAt: created,
			Status:    domain.Status(item.Status),
		})
	}

	rawNext, ok := fields["next_page"]
	if !ok {
		return nil, "", &ProtocolError{URL: cursor, Reason: "expected next_page field is missing"}
	}
	var next *string
	if err := json.Unmarshal(rawNext, &next); err != nil {
		return nil, "", &ProtocolError{URL: cursor, Reason: fmt.Sprintf("malformed next_page field: %v", err)}
	}
	if next == nil {
		return tickets, "", nil
	}
	return tickets, *next, nil
}
