package frame

import (
	"context"

	"github.com/osdldbt/dbt5-sub001/internal/store"
)

// TradeCleanupRequest is the input of TradeCleanupFrame1.
type TradeCleanupRequest struct {
	StCanceledID  string
	StPendingID   string
	StSubmittedID string

	// TradeID is the lowest trade id considered for cancellation.
	TradeID int64
}

// TradeCleanup runs TradeCleanupFrame1. It drains the pending trade request
// queue into trade history, then cancels every submitted trade at or above
// req.TradeID. Returns status 0 on success.
func (x *Executor) TradeCleanup(ctx context.Context, q Querier, req TradeCleanupRequest) (int32, error) {
	s := steps{frame: TradeCleanupFrame1, q: q}

	x.logger.Debug("trade cleanup",
		"canceled", req.StCanceledID,
		"pending", req.StPendingID,
		"submitted", req.StSubmittedID,
		"trade_id", req.TradeID)

	drained, err := x.drainRequests(ctx, s, req)
	if err != nil {
		return 0, err
	}
	canceled, err := x.cancelSubmitted(ctx, s, req)
	if err != nil {
		return 0, err
	}

	x.logger.Debug("trade cleanup done", "drained", drained, "canceled", canceled)
	return 0, nil
}

// drainRequests records a submitted history row per queued request and then
// empties the queue.
func (x *Executor) drainRequests(ctx context.Context, s steps, req TradeCleanupRequest) (int, error) {
	ids, err := column[int64](ctx, s, "read trade requests", store.QTCSelectRequests)
	if err != nil {
		return 0, err
	}

	now := x.now()
	for _, id := range ids {
		if err := s.exec(ctx, "record submitted history", store.QTCInsertHistory, id, now, req.StSubmittedID); err != nil {
			return 0, err
		}
	}

	if err := s.exec(ctx, "delete trade requests", store.QTCDeleteRequests); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// cancelSubmitted cancels each submitted trade from req.TradeID upwards and
// records a canceled history row for that trade.
func (x *Executor) cancelSubmitted(ctx context.Context, s steps, req TradeCleanupRequest) (int, error) {
	ids, err := column[int64](ctx, s, "read submitted trades", store.QTCSelectSubmitted, req.TradeID, req.StSubmittedID)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		// Scanned as any: SQLite may hand the timestamp back as text.
		var dts any
		if err := s.one(ctx, "cancel trade", store.QTCCancelTrade, []any{req.StCanceledID, x.now(), id}, &dts); err != nil {
			return 0, err
		}
		if err := s.exec(ctx, "record canceled history", store.QTCInsertHistory, id, dts, req.StCanceledID); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}
