/*
Package lobby contains the core logic for converging client-side lobby state.

This file defines the event-stream adapter: the pump that turns raw frames
from the transport into parsed events on the apply queue. Malformed frames
are logged and dropped without ever failing the pipeline; the transport's
connection lifecycle stays outside the core.
*/
package lobby

import (
	"context"

	"lobbysync/internal/pkg/logx"
)

// FrameSource is the narrow transport capability the adapter consumes: a
// channel of raw inbound frames that closes when the connection ends.
type FrameSource interface {
	Frames() <-chan []byte
}

// RunEventPump parses frames from src and enqueues them as remote actions
// until the source closes or the context ends. It returns nil on a clean
// source close and the context error otherwise.
func (s *Synchronizer) RunEventPump(ctx context.Context, src FrameSource) error {
	logger := logx.Component("event_pump")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case frame, ok := <-src.Frames():
			if !ok {
				logger.Info().Msg("Frame source closed. Event pump stopping.")
				return nil
			}

			event, parsed := ParseEvent(frame)
			if !parsed {
				logger.Warn().
					Int("frame_bytes", len(frame)).
					Msg("Dropping malformed inbound frame.")
				continue
			}

			if err := s.Enqueue(ctx, EventAction{Origin: OriginRemote, Event: event}); err != nil {
				return err
			}
		}
	}
}
