package engine

import (
	"context"
	"sort"

	"github.com/osdldbt/dbt5-sub001/internal/frame"
)

// FrameInfo describes a registered frame and its positional parameters.
type FrameInfo struct {
	Name   string
	Params []frame.Param
}

// registration binds a frame name to its parameters and a decoder that turns
// checked positional args into the frame's typed request.
type registration struct {
	params []frame.Param
	run    func(ctx context.Context, x *frame.Executor, q frame.Querier, args frame.Args) (frame.Output, error)
}

var registry = map[string]registration{
	frame.DataMaintenanceFrame1: {
		params: []frame.Param{
			{Name: "account_id", Kind: frame.KindInt64},
			{Name: "customer_id", Kind: frame.KindInt64},
			{Name: "company_id", Kind: frame.KindInt64},
			{Name: "day_of_month", Kind: frame.KindInt32},
			{Name: "symbol", Kind: frame.KindString},
			{Name: "target_table", Kind: frame.KindString},
			{Name: "tax_id", Kind: frame.KindString},
			{Name: "volume_increment", Kind: frame.KindInt32},
		},
		run: func(ctx context.Context, x *frame.Executor, q frame.Querier, args frame.Args) (frame.Output, error) {
			status, err := x.DataMaintenance(ctx, q, frame.DataMaintenanceRequest{
				AccountID:  args[0].Int64(),
				CustomerID: args[1].Int64(),
				CompanyID:  args[2].Int64(),
				DayOfMonth: args[3].Int32(),
				Symbol:     args[4].Str(),
				TableName:  args[5].Str(),
				TaxID:      args[6].Str(),
				VolIncr:    args[7].Int32(),
			})
			if err != nil {
				return frame.Output{}, err
			}
			return frame.StatusOutput(status), nil
		},
	},
	frame.TradeCleanupFrame1: {
		params: []frame.Param{
			{Name: "canceled_status_id", Kind: frame.KindString},
			{Name: "pending_status_id", Kind: frame.KindString},
			{Name: "submitted_status_id", Kind: frame.KindString},
			{Name: "trade_id_floor", Kind: frame.KindInt64},
		},
		run: func(ctx context.Context, x *frame.Executor, q frame.Querier, args frame.Args) (frame.Output, error) {
			status, err := x.TradeCleanup(ctx, q, frame.TradeCleanupRequest{
				StCanceledID:  args[0].Str(),
				StPendingID:   args[1].Str(),
				StSubmittedID: args[2].Str(),
				TradeID:       args[3].Int64(),
			})
			if err != nil {
				return frame.Output{}, err
			}
			return frame.StatusOutput(status), nil
		},
	},
	frame.BrokerVolumeFrame1: {
		params: []frame.Param{
			{Name: "broker_names", Kind: frame.KindStringArray},
			{Name: "sector_name", Kind: frame.KindString},
		},
		run: func(ctx context.Context, x *frame.Executor, q frame.Querier, args frame.Args) (frame.Output, error) {
			res, err := x.BrokerVolume(ctx, q, frame.BrokerVolumeRequest{
				BrokerList: args[0].StrSlice(),
				SectorName: args[1].Str(),
			})
			if err != nil {
				return frame.Output{}, err
			}
			return res.Output(), nil
		},
	},
}

// Frames lists the registered frames sorted by name.
func Frames() []FrameInfo {
	out := make([]FrameInfo, 0, len(registry))
	for name, reg := range registry {
		out = append(out, FrameInfo{Name: name, Params: reg.params})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Params returns the positional parameters of a frame.
func Params(frameID string) ([]frame.Param, bool) {
	reg, ok := registry[frameID]
	if !ok {
		return nil, false
	}
	return reg.params, true
}
