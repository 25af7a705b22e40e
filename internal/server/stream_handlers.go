package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/jlmoreno/cartera/internal/auth"
	"github.com/jlmoreno/cartera/internal/modules/valuation"
)

// StreamHandlers pushes valuation summaries over a websocket so the
// dashboard can update without polling.
type StreamHandlers struct {
	valuation *valuation.Service
	interval  time.Duration
	devMode   bool
	log       zerolog.Logger
}

// NewStreamHandlers creates the summary stream handler.
func NewStreamHandlers(valuationSvc *valuation.Service, interval time.Duration, devMode bool, log zerolog.Logger) *StreamHandlers {
	return &StreamHandlers{
		valuation: valuationSvc,
		interval:  interval,
		devMode:   devMode,
		log:       log.With().Str("handler", "stream").Logger(),
	}
}

// HandleSummaryStream upgrades to a websocket and pushes the owner's
// portfolio summary immediately and then on every interval tick. Failed
// passes are skipped, not fatal; the next tick retries.
func (h *StreamHandlers) HandleSummaryStream(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerID(r.Context())

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The dashboard dev server runs on a different origin
		InsecureSkipVerify: h.devMode,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	h.log.Debug().Int64("owner_id", ownerID).Msg("Summary stream opened")

	ctx := r.Context()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		if err := h.push(ctx, conn, ownerID); err != nil {
			if errors.Is(err, context.Canceled) || websocket.CloseStatus(err) != -1 {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			h.log.Warn().Err(err).Int64("owner_id", ownerID).Msg("Summary push failed")
		}

		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-ticker.C:
		}
	}
}

func (h *StreamHandlers) push(ctx context.Context, conn *websocket.Conn, ownerID int64) error {
	result, err := h.valuation.Portfolio(ctx, ownerID)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return wsjson.Write(writeCtx, conn, result.Summary)
}
