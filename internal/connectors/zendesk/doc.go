// Package zendesk implements the connector for the Zendesk-style ticket API.
//
// The connector has three layers:
//
//   - Client: executes single HTTP requests with auth, fixed-interval retry
//     and rate-limit backoff. An HTTP 422 is surfaced as an end-of-stream
//     sentinel rather than an error, because the incremental feed uses it
//     to say "start_time too recent", the intended termination path.
//   - Walker: follows pagination cursors and accumulates tickets. For the
//     incremental (time-windowed) feed, which never ends on its own, a
//     live-edge heuristic stops the walk once the start_time watermark has
//     effectively stopped advancing.
//   - Mutator: partitions ticket ids into bounded batches and drives the
//     bulk delete and scrub endpoints with the DELETE verb.
//
// Two cursor flavors exist and are not interchangeable mid-walk: the
// incremental feed (watermark-driven, may repeat tickets, 422-terminated)
// and the search feed (bounded, terminates when next_page is null).
package zendesk
