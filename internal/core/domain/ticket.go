package domain

import (
	"sort"
	"strings"
	"time"
)

// Status is the lifecycle status of a ticket as reported by the remote API.
type Status string

// Statuses a ticket can carry. The remote service assigns these; zenpurge
// never changes a status directly, it only deletes or scrubs whole tickets.
const (
	StatusNew     Status = "new"
	StatusOpen    Status = "open"
	StatusPending Status = "pending"
	StatusHold    Status = "hold"
	StatusSolved  Status = "solved"
	StatusClosed  Status = "closed"
	StatusDeleted Status = "deleted"
)

// AllStatuses returns every known ticket status.
func AllStatuses() []Status {
	return []Status{
		StatusNew, StatusOpen, StatusPending, StatusHold,
		StatusSolved, StatusClosed, StatusDeleted,
	}
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusOpen, StatusPending, StatusHold,
		StatusSolved, StatusClosed, StatusDeleted:
		return true
	}
	return false
}

// ParseStatusList parses a comma-separated status list such as
// "closed,solved,deleted". Whitespace around entries is ignored and
// empty entries are skipped. Unknown statuses yield ErrInvalidStatus.
func ParseStatusList(s string) ([]Status, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []Status
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		st := Status(strings.ToLower(part))
		if !st.IsValid() {
			return nil, ErrInvalidStatus
		}
		out = append(out, st)
	}
	return out, nil
}

// Ticket is an immutable snapshot of a remote ticket record at fetch time.
// It is never mutated locally; deletion and scrubbing happen remotely.
type Ticket struct {
	// ID is the remote-assigned unique identifier.
	ID int64 `json:"id"`

	// CreatedAt is the creation date at day resolution (midnight UTC).
	CreatedAt time.Time `json:"created_at"`

	// Status is the lifecycle status reported by the remote service.
	Status Status `json:"status"`
}

// CreatedDate returns the creation date formatted as YYYY-MM-DD.
func (t Ticket) CreatedDate() string {
	return t.CreatedAt.Format("2006-01-02")
}

// AgeDays returns the whole number of days between the ticket's creation
// date and today.
func (t Ticket) AgeDays(today time.Time) int {
	return int(today.Sub(t.CreatedAt).Hours() / 24)
}

// FilterAged returns the tickets strictly older than minAgeDays as of today,
// optionally narrowed to an allowed-status list, sorted ascending by creation
// date. The sort is stable, so tickets sharing a creation date keep their
// input order. A ticket exactly minAgeDays old is excluded.
func FilterAged(tickets []Ticket, minAgeDays int, allowed []Status, today time.Time) []Ticket {
	var allowSet map[Status]struct{}
	if len(allowed) > 0 {
		allowSet = make(map[Status]struct{}, len(allowed))
		for _, s := range allowed {
			allowSet[s] = struct{}{}
		}
	}

	var out []Ticket
	for _, t := range tickets {
		if t.AgeDays(today) <= minAgeDays {
			continue
		}
		if allowSet != nil {
			if _, ok := allowSet[t.Status]; !ok {
				continue
			}
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// TicketIDs extracts the ids from tickets, preserving order.
func TicketIDs(tickets []Ticket) []int64 {
	ids := make([]int64, len(tickets))
	for i, t := range tickets {
		ids[i] = t.ID
	}
	return ids
}
