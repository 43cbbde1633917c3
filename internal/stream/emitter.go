// Package stream replays a completed QA result as incremental events.
package stream

import (
	"context"
	"strings"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
)

// Emit renders a completed result as a finite, single-pass event sequence:
// first one trace event carrying the full graph, then one token event per
// whitespace-delimited word of the answer, each with a trailing separator.
//
// The answer is fully computed before the first event; there is no
// mid-stream cancellation back into the pipeline. Cancelling ctx stops
// emission and releases the goroutine.
func Emit(ctx context.Context, result *domain.QAResult) <-chan domain.StreamEvent {
	out := make(chan domain.StreamEvent)

	go func() {
		defer close(out)

		events := make([]domain.StreamEvent, 0, 1)
		events = append(events, domain.StreamEvent{
			Type: domain.StreamEventTrace,
			Data: result.Trace,
		})
		for _, token := range strings.Fields(result.Answer) {
			events = append(events, domain.StreamEvent{
				Type: domain.StreamEventToken,
				Data: token + " ",
			})
		}

		for _, ev := range events {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
