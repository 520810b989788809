package zendesk

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/zenpurge-cli/internal/core/domain"
	"github.com/custodia-labs/zenpurge-cli/internal/logger"
)

// Finder locates a single ticket by walking the incremental feed from a
// chosen watermark. Useful for tickets the bounded search feed cannot
// reach, such as archived ones.
type Finder struct {
	client    *Client
	subdomain string
	cfg       WalkConfig
	now       func() time.Time
}

// NewFinder creates a finder for the given subdomain.
func NewFinder(client *Client, subdomain string, cfg WalkConfig) *Finder {
	return &Finder{
		client:    client,
		subdomain: subdomain,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
	}
}

// Find walks the incremental feed starting at startTime until the ticket
// appears, the feed's live edge is reached, or ctx is cancelled. When the
// walk ends without a match it returns domain.ErrTicketNotFound: the
// ticket may have been created or modified too recently to appear.
func (f *Finder) Find(ctx context.Context, ticketID, startTime int64) (*domain.Ticket, error) {
	cursor := IncrementalURL(f.subdomain, startTime)
	smallDiffs := 0
	seen := make(map[int64]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		logger.Debug("fetching page %s", cursor)
		resp, err := f.client.Execute(ctx, http.MethodGet, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetch page: %w", err)
		}
		if resp.EndOfStream {
			break
		}

		tickets, next, err := parsePage(FlavorIncremental, cursor, resp.Body)
		if err != nil {
			return nil, err
		}

		higher := 0
		for _, t := range tickets {
			seen[t.ID] = struct{}{}
			if t.ID == ticketID {
				return &t, nil
			}
			if t.ID > ticketID {
				higher++
			}
		}
		if higher > 0 {
			logger.Warn("page held %d tickets with ids above %d; the ticket may not be reachable via the incremental feed", higher, ticketID)
		}
		logger.Info("scanned %d tickets so far", len(seen))

		if next == "" {
			break
		}

		cur, okCur := ParseWatermark(cursor)
		nxt, okNext := ParseWatermark(next)
		if okCur && okNext &&
			f.now().Sub(time.Unix(cur, 0)) <= f.cfg.LiveEdgeWindow &&
			time.Duration(nxt-cur)*time.Second <= f.cfg.SmallDiff {
			smallDiffs++
			if smallDiffs >= f.cfg.SmallDiffLimit {
				logger.Info("reached likely live edge of the feed, giving up")
				break
			}
		} else {
			smallDiffs = 0
		}
		cursor = next
	}

	return nil, domain.ErrTicketNotFound
}
