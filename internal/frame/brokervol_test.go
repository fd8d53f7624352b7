package frame

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sectorSeed = []string{
	`INSERT INTO sector (sc_id, sc_name) VALUES ('TC', 'Tech')`,
	`INSERT INTO sector (sc_id, sc_name) VALUES ('EN', 'Energy')`,
	`INSERT INTO industry (in_id, in_name, in_sc_id) VALUES ('SW', 'Software', 'TC')`,
	`INSERT INTO industry (in_id, in_name, in_sc_id) VALUES ('OG', 'Oil and Gas', 'EN')`,
	`INSERT INTO company (co_id, co_name, co_in_id, co_sp_rate) VALUES (1, 'Acme Software', 'SW', 'AAA')`,
	`INSERT INTO company (co_id, co_name, co_in_id, co_sp_rate) VALUES (2, 'Petro', 'OG', 'AAA')`,
	`INSERT INTO security (s_symb, s_co_id, s_exch_date) VALUES ('ACME', 1, '2026-01-01')`,
	`INSERT INTO security (s_symb, s_co_id, s_exch_date) VALUES ('OIL', 2, '2026-01-01')`,
	`INSERT INTO broker (b_id, b_name) VALUES (1, 'Alice')`,
	`INSERT INTO broker (b_id, b_name) VALUES (2, 'Bob')`,
	`INSERT INTO broker (b_id, b_name) VALUES (3, 'Carol')`,
	// Alice: 500 in Tech. Bob: 1200 in Tech. Carol only trades Energy.
	`INSERT INTO trade_request (tr_t_id, tr_s_symb, tr_qty, tr_bid_price, tr_b_id) VALUES (1, 'ACME', 10, 50, 1)`,
	`INSERT INTO trade_request (tr_t_id, tr_s_symb, tr_qty, tr_bid_price, tr_b_id) VALUES (2, 'ACME', 20, 40, 2)`,
	`INSERT INTO trade_request (tr_t_id, tr_s_symb, tr_qty, tr_bid_price, tr_b_id) VALUES (3, 'ACME', 10, 40, 2)`,
	`INSERT INTO trade_request (tr_t_id, tr_s_symb, tr_qty, tr_bid_price, tr_b_id) VALUES (4, 'OIL', 100, 10, 3)`,
	`INSERT INTO trade_request (tr_t_id, tr_s_symb, tr_qty, tr_bid_price, tr_b_id) VALUES (5, 'OIL', 100, 10, 1)`,
}

func (e *frameEnv) brokerVolume(req BrokerVolumeRequest) (BrokerVolumeResult, error) {
	var res BrokerVolumeResult
	err := e.inTx(func(ctx context.Context, q Querier) error {
		var err error
		res, err = e.exec.BrokerVolume(ctx, q, req)
		return err
	})
	return res, err
}

func TestBrokerVolume_OrderedByVolume(t *testing.T) {
	env := newFrameEnv(t, sectorSeed...)

	res, err := env.brokerVolume(BrokerVolumeRequest{BrokerList: []string{"Alice", "Bob"}, SectorName: "Tech"})
	require.NoError(t, err)

	assert.Equal(t, `{"Bob","Alice"}`, res.BrokerNameList)
	assert.Equal(t, "2", res.ListLength)
	assert.Equal(t, `{1200,500}`, res.VolumeList)

	out := res.Output()
	assert.Equal(t, []string{"broker_name_list", "list_length", "volume_list"}, out.Columns)
	v, ok := out.Get("list_length")
	require.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestBrokerVolume_OnlyRequestedBrokersAndSector(t *testing.T) {
	env := newFrameEnv(t, sectorSeed...)

	res, err := env.brokerVolume(BrokerVolumeRequest{BrokerList: []string{"Alice", "Carol"}, SectorName: "Energy"})
	require.NoError(t, err)
	assert.Equal(t, `{"Alice","Carol"}`, res.BrokerNameList, "equal totals fall back to name order")
	assert.Equal(t, `{1000,1000}`, res.VolumeList)
}

func TestBrokerVolume_NoMatches(t *testing.T) {
	env := newFrameEnv(t, sectorSeed...)

	for _, req := range []BrokerVolumeRequest{
		{BrokerList: []string{"Alice"}, SectorName: "Agriculture"},
		{BrokerList: []string{"Nobody"}, SectorName: "Tech"},
		{BrokerList: nil, SectorName: "Tech"},
	} {
		res, err := env.brokerVolume(req)
		require.NoError(t, err)
		assert.Equal(t, BrokerVolumeResult{BrokerNameList: "{}", ListLength: "0", VolumeList: "{}"}, res)
	}
}

func TestBrokerVolume_TooManyBrokers(t *testing.T) {
	env := newFrameEnv(t, sectorSeed...)

	names := make([]string, MaxBrokers+1)
	for i := range names {
		names[i] = fmt.Sprintf("Broker %d", i)
	}

	res, err := env.brokerVolume(BrokerVolumeRequest{BrokerList: names, SectorName: "Tech"})
	require.Error(t, err)
	assert.True(t, IsCapacityExceeded(err))
	assert.Equal(t, BrokerVolumeResult{}, res)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, BufferBrokerNameList, fe.Buffer)
	assert.Empty(t, fe.QueryID, "no query runs")
}

func TestBrokerVolume_MaxBrokersFits(t *testing.T) {
	env := newFrameEnv(t, sectorSeed...)

	names := make([]string, MaxBrokers)
	for i := range names {
		names[i] = strings.Repeat("x", MaxBrokerNameLen-2) + fmt.Sprintf("%02d", i)
	}
	names[0] = "Bob"

	res, err := env.brokerVolume(BrokerVolumeRequest{BrokerList: names, SectorName: "Tech"})
	require.NoError(t, err)
	assert.Equal(t, `{"Bob"}`, res.BrokerNameList)
	assert.Equal(t, `{1200}`, res.VolumeList)
}

func TestBrokerVolume_NameTooLong(t *testing.T) {
	env := newFrameEnv(t, sectorSeed...)

	_, err := env.brokerVolume(BrokerVolumeRequest{
		BrokerList: []string{"Alice", strings.Repeat("n", MaxBrokerNameLen+1)},
		SectorName: "Tech",
	})
	require.Error(t, err)
	assert.True(t, IsMalformedInput(err))
}

func TestBrokerVolume_FractionalPricesKeepScale(t *testing.T) {
	env := newFrameEnv(t, append(sectorSeed,
		`INSERT INTO broker (b_id, b_name) VALUES (4, 'Dave')`,
		`INSERT INTO trade_request (tr_t_id, tr_s_symb, tr_qty, tr_bid_price, tr_b_id) VALUES (6, 'ACME', 1, 0.1, 4)`,
		`INSERT INTO trade_request (tr_t_id, tr_s_symb, tr_qty, tr_bid_price, tr_b_id) VALUES (7, 'ACME', 1, 0.2, 4)`,
	)...)

	res, err := env.brokerVolume(BrokerVolumeRequest{BrokerList: []string{"Dave"}, SectorName: "Tech"})
	require.NoError(t, err)
	assert.Equal(t, `{"Dave"}`, res.BrokerNameList)
	assert.Equal(t, `{0.3}`, res.VolumeList)
}

func TestBrokerVolume_MaxBrokersAtFullWidth(t *testing.T) {
	seed := append([]string{}, sectorSeed...)
	names := make([]string, MaxBrokers)
	for i := range names {
		// 23 two-byte runes and three digits: 49 bytes.
		names[i] = strings.Repeat("é", 23) + fmt.Sprintf("%03d", i)
		require.Len(t, names[i], MaxBrokerNameLen)
		seed = append(seed,
			fmt.Sprintf(`INSERT INTO broker (b_id, b_name) VALUES (%d, '%s')`, 100+i, names[i]),
			fmt.Sprintf(`INSERT INTO trade_request (tr_t_id, tr_s_symb, tr_qty, tr_bid_price, tr_b_id) VALUES (%d, 'ACME', 1, %d, %d)`, 100+i, i+1, 100+i),
		)
	}
	env := newFrameEnv(t, seed...)

	res, err := env.brokerVolume(BrokerVolumeRequest{BrokerList: names, SectorName: "Tech"})
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(MaxBrokers), res.ListLength)
	assert.Len(t, res.BrokerNameList, brokerNameListCap)
	assert.True(t, strings.HasPrefix(res.BrokerNameList, `{"`+names[MaxBrokers-1]+`"`))
}

func TestBrokerVolume_NameOverByteWidth(t *testing.T) {
	env := newFrameEnv(t, sectorSeed...)

	// 49 runes, 96 bytes.
	name := strings.Repeat("é", MaxBrokerNameLen-2) + "00"
	_, err := env.brokerVolume(BrokerVolumeRequest{BrokerList: []string{name}, SectorName: "Tech"})
	require.Error(t, err)
	assert.True(t, IsMalformedInput(err))

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Empty(t, fe.QueryID, "no query runs")
}

func TestBrokerVolume_RejectsQuoteAndBackslash(t *testing.T) {
	env := newFrameEnv(t, sectorSeed...)

	for _, name := range []string{`Al"ice`, `Al\ice`} {
		_, err := env.brokerVolume(BrokerVolumeRequest{BrokerList: []string{name}, SectorName: "Tech"})
		require.Error(t, err, name)
		assert.True(t, IsMalformedInput(err), name)
	}
}

func TestBrokerVolume_NormalizesNames(t *testing.T) {
	env := newFrameEnv(t, append(sectorSeed,
		"INSERT INTO broker (b_id, b_name) VALUES (5, 'Ren\u00e9')",
		`INSERT INTO trade_request (tr_t_id, tr_s_symb, tr_qty, tr_bid_price, tr_b_id) VALUES (8, 'ACME', 3, 10, 5)`,
	)...)

	res, err := env.brokerVolume(BrokerVolumeRequest{BrokerList: []string{"Rene\u0301"}, SectorName: "Tech"})
	require.NoError(t, err)
	assert.Equal(t, "{\"Ren\u00e9\"}", res.BrokerNameList)
	assert.Equal(t, `{30}`, res.VolumeList)
}
