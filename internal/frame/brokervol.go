package frame

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/osdldbt/dbt5-sub001/internal/store"
)

// Output buffer names, reported in capacity errors.
const (
	BufferBrokerNameList = "broker_name_list"
	BufferVolumeList     = "volume_list"
)

// BrokerVolumeRequest is the input of BrokerVolumeFrame1.
type BrokerVolumeRequest struct {
	BrokerList []string
	SectorName string
}

// BrokerVolumeResult is the single row BrokerVolumeFrame1 yields.
type BrokerVolumeResult struct {
	BrokerNameList string
	ListLength     string
	VolumeList     string
}

// Output converts the result to a frame output row.
func (r BrokerVolumeResult) Output() Output {
	return Output{
		Columns: []string{"broker_name_list", "list_length", "volume_list"},
		Values:  []string{r.BrokerNameList, r.ListLength, r.VolumeList},
	}
}

// volumeScale is the scale of tr_bid_price. SQLite sums it as REAL.
const volumeScale = 2

type brokerVolume struct {
	name   string
	volume decimal.Decimal
}

// BrokerVolume runs BrokerVolumeFrame1: total traded value per broker for a
// sector, largest first, rendered as two parallel array literals.
func (x *Executor) BrokerVolume(ctx context.Context, q Querier, req BrokerVolumeRequest) (BrokerVolumeResult, error) {
	names := newBoundedBuffer(BufferBrokerNameList, brokerNameListCap)
	volumes := newBoundedBuffer(BufferVolumeList, volumeListCap)

	// The worst case for the requested list must fit before anything runs.
	if n := len(req.BrokerList); n > 0 {
		if err := names.reserve(2 + n*(MaxBrokerNameLen+2) + n - 1); err != nil {
			return BrokerVolumeResult{}, err
		}
	}
	brokers, err := normalizeBrokerNames(req.BrokerList)
	if err != nil {
		return BrokerVolumeResult{}, err
	}
	req.BrokerList = brokers

	rows, err := x.brokerVolumes(ctx, steps{frame: BrokerVolumeFrame1, q: q}, req)
	if err != nil {
		return BrokerVolumeResult{}, err
	}

	nameList, err := newArrayWriter(names)
	if err != nil {
		return BrokerVolumeResult{}, err
	}
	volumeList, err := newArrayWriter(volumes)
	if err != nil {
		return BrokerVolumeResult{}, err
	}
	for _, r := range rows {
		if err := nameList.quoted(r.name); err != nil {
			return BrokerVolumeResult{}, err
		}
		if err := volumeList.raw(r.volume.String()); err != nil {
			return BrokerVolumeResult{}, err
		}
	}

	var res BrokerVolumeResult
	if res.BrokerNameList, err = nameList.close(); err != nil {
		return BrokerVolumeResult{}, err
	}
	if res.VolumeList, err = volumeList.close(); err != nil {
		return BrokerVolumeResult{}, err
	}
	res.ListLength = strconv.Itoa(len(rows))

	x.logger.Debug("broker volume", "sector", req.SectorName, "brokers", len(req.BrokerList), "matched", len(rows))
	return res, nil
}

func (x *Executor) brokerVolumes(ctx context.Context, s steps, req BrokerVolumeRequest) ([]brokerVolume, error) {
	const step = "read broker volumes"

	list := req.BrokerList
	if list == nil {
		list = []string{}
	}
	encoded, err := json.Marshal(list)
	if err != nil {
		return nil, newMalformedInputError(BrokerVolumeFrame1, fmt.Sprintf("encode broker list: %v", err))
	}

	rows, err := s.q.Query(ctx, store.QBVSelectVolumes, string(encoded), req.SectorName)
	if err != nil {
		return nil, newStepError(s.frame, step, store.QBVSelectVolumes, err)
	}
	defer rows.Close()

	var out []brokerVolume
	for rows.Next() {
		var r brokerVolume
		if err := rows.Scan(&r.name, &r.volume); err != nil {
			return nil, newStepError(s.frame, step, store.QBVSelectVolumes, err)
		}
		r.name = trimChar(r.name)
		r.volume = r.volume.Round(volumeScale)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, newStepError(s.frame, step, store.QBVSelectVolumes, err)
	}
	return out, nil
}

// normalizeBrokerNames returns the names in NFC. Each must fit the
// fixed name width in bytes and quote without escapes.
func normalizeBrokerNames(list []string) ([]string, error) {
	out := make([]string, len(list))
	for i, name := range list {
		name = norm.NFC.String(name)
		if len(name) > MaxBrokerNameLen {
			return nil, newMalformedInputError(BrokerVolumeFrame1,
				fmt.Sprintf("broker name %d is longer than %d bytes", i, MaxBrokerNameLen))
		}
		if strings.ContainsAny(name, `"\`) {
			return nil, newMalformedInputError(BrokerVolumeFrame1,
				fmt.Sprintf("broker name %d contains a quote or backslash", i))
		}
		out[i] = name
	}
	return out, nil
}
