package store

// QueryID names one statement in the frame catalogue.
type QueryID string

// Kind is the operation a catalogued statement performs.
type Kind string

const (
	KindSelect Kind = "select"
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// Data maintenance statements.
const (
	QDMSelectACL            QueryID = "dm.select_acl"
	QDMUpdateACL            QueryID = "dm.update_acl"
	QDMSelectCustomerAddr   QueryID = "dm.select_customer_address"
	QDMSelectCompanyAddr    QueryID = "dm.select_company_address"
	QDMUpdateAddress        QueryID = "dm.update_address"
	QDMSelectRating         QueryID = "dm.select_rating"
	QDMUpdateRating         QueryID = "dm.update_rating"
	QDMSelectEmail          QueryID = "dm.select_email"
	QDMUpdateEmail          QueryID = "dm.update_email"
	QDMSelectTaxCode        QueryID = "dm.select_tax_code"
	QDMUpdateTaxCode        QueryID = "dm.update_tax_code"
	QDMSelectVolume         QueryID = "dm.select_volume"
	QDMUpdateVolume         QueryID = "dm.update_volume"
	QDMSelectExchanges      QueryID = "dm.select_exchanges"
	QDMUpdateExchange       QueryID = "dm.update_exchange"
	QDMCountFirstOfMonth    QueryID = "dm.count_first_of_month"
	QDMFinancialForward     QueryID = "dm.financial_forward"
	QDMFinancialBack        QueryID = "dm.financial_back"
	QDMSelectNews           QueryID = "dm.select_news"
	QDMUpdateNews           QueryID = "dm.update_news"
	QDMSelectExchDate       QueryID = "dm.select_exch_date"
	QDMUpdateExchDate       QueryID = "dm.update_exch_date"
	QDMSelectTaxName        QueryID = "dm.select_tax_name"
	QDMUpdateTaxName        QueryID = "dm.update_tax_name"
	QDMCountWatchItems      QueryID = "dm.count_watch_items"
	QDMSelectWatchAtOffset  QueryID = "dm.select_watch_at_offset"
	QDMSelectNextUnwatched  QueryID = "dm.select_next_unwatched"
	QDMUpdateWatchItem      QueryID = "dm.update_watch_item"
)

// Trade cleanup statements.
const (
	QTCSelectRequests  QueryID = "tc.select_requests"
	QTCInsertHistory   QueryID = "tc.insert_history"
	QTCDeleteRequests  QueryID = "tc.delete_requests"
	QTCSelectSubmitted QueryID = "tc.select_submitted"
	QTCCancelTrade     QueryID = "tc.cancel_trade"
)

// Broker volume statements.
const (
	QBVSelectVolumes QueryID = "bv.select_volumes"
)

// statement is one catalogue entry. Text uses $n placeholders numbered in
// order of first use, which both drivers bind positionally.
type statement struct {
	Kind Kind

	// Returning marks writes that yield rows and must be run with Query.
	Returning bool

	Text string

	// Overrides replaces Text for dialects whose date or list handling differs.
	Overrides map[Dialect]string
}

func (s statement) textFor(d Dialect) string {
	if t, ok := s.Overrides[d]; ok {
		return t
	}
	return s.Text
}

// catalogue lists every statement the frames use.
var catalogue = map[QueryID]statement{
	QDMSelectACL: {Kind: KindSelect, Text: `
		SELECT ap_acl FROM account_permission
		WHERE ap_ca_id = $1
		ORDER BY ap_acl DESC
		LIMIT 1`},
	QDMUpdateACL: {Kind: KindUpdate, Text: `
		UPDATE account_permission SET ap_acl = $1
		WHERE ap_ca_id = $2 AND ap_acl = $3`},
	QDMSelectCustomerAddr: {Kind: KindSelect, Text: `
		SELECT ad_id, ad_line2 FROM address
		JOIN customer ON c_ad_id = ad_id
		WHERE c_id = $1`},
	QDMSelectCompanyAddr: {Kind: KindSelect, Text: `
		SELECT ad_id, ad_line2 FROM address
		JOIN company ON co_ad_id = ad_id
		WHERE co_id = $1`},
	QDMUpdateAddress: {Kind: KindUpdate, Text: `
		UPDATE address SET ad_line2 = $1 WHERE ad_id = $2`},
	QDMSelectRating: {Kind: KindSelect, Text: `
		SELECT co_sp_rate FROM company WHERE co_id = $1`},
	QDMUpdateRating: {Kind: KindUpdate, Text: `
		UPDATE company SET co_sp_rate = $1 WHERE co_id = $2`},
	QDMSelectEmail: {Kind: KindSelect, Text: `
		SELECT c_email_2 FROM customer WHERE c_id = $1`},
	QDMUpdateEmail: {Kind: KindUpdate, Text: `
		UPDATE customer SET c_email_2 = $1 WHERE c_id = $2`},
	QDMSelectTaxCode: {Kind: KindSelect, Text: `
		SELECT cx_tx_id FROM customer_taxrate
		WHERE cx_c_id = $1 AND (cx_tx_id LIKE 'US%' OR cx_tx_id LIKE 'CN%')
		ORDER BY cx_tx_id
		LIMIT 1`},
	QDMUpdateTaxCode: {Kind: KindUpdate, Text: `
		UPDATE customer_taxrate SET cx_tx_id = $1
		WHERE cx_c_id = $2 AND cx_tx_id = $3`},
	QDMSelectVolume: {Kind: KindSelect,
		Text: `
		SELECT dm_vol FROM daily_market
		WHERE dm_s_symb = $1 AND EXTRACT(DAY FROM dm_date) = $2`,
		Overrides: map[Dialect]string{DialectSQLite: `
		SELECT dm_vol FROM daily_market
		WHERE dm_s_symb = $1 AND CAST(strftime('%d', dm_date) AS INTEGER) = $2`},
	},
	QDMUpdateVolume: {Kind: KindUpdate,
		Text: `
		UPDATE daily_market SET dm_vol = dm_vol + $1
		WHERE dm_s_symb = $2 AND EXTRACT(DAY FROM dm_date) = $3`,
		Overrides: map[Dialect]string{DialectSQLite: `
		UPDATE daily_market SET dm_vol = dm_vol + $1
		WHERE dm_s_symb = $2 AND CAST(strftime('%d', dm_date) AS INTEGER) = $3`},
	},
	QDMSelectExchanges: {Kind: KindSelect, Text: `
		SELECT ex_id, ex_desc FROM exchange ORDER BY ex_id`},
	QDMUpdateExchange: {Kind: KindUpdate, Text: `
		UPDATE exchange SET ex_desc = $1 WHERE ex_id = $2`},
	QDMCountFirstOfMonth: {Kind: KindSelect,
		Text: `
		SELECT count(*) FROM financial
		WHERE fi_co_id = $1 AND EXTRACT(DAY FROM fi_qtr_start_date) = 1`,
		Overrides: map[Dialect]string{DialectSQLite: `
		SELECT count(*) FROM financial
		WHERE fi_co_id = $1 AND strftime('%d', fi_qtr_start_date) = '01'`},
	},
	QDMFinancialForward: {Kind: KindUpdate,
		Text: `
		UPDATE financial SET fi_qtr_start_date = fi_qtr_start_date + 1
		WHERE fi_co_id = $1`,
		Overrides: map[Dialect]string{DialectSQLite: `
		UPDATE financial SET fi_qtr_start_date = date(fi_qtr_start_date, '+1 day')
		WHERE fi_co_id = $1`},
	},
	QDMFinancialBack: {Kind: KindUpdate,
		Text: `
		UPDATE financial SET fi_qtr_start_date = fi_qtr_start_date - 1
		WHERE fi_co_id = $1`,
		Overrides: map[Dialect]string{DialectSQLite: `
		UPDATE financial SET fi_qtr_start_date = date(fi_qtr_start_date, '-1 day')
		WHERE fi_co_id = $1`},
	},
	QDMSelectNews: {Kind: KindSelect, Text: `
		SELECT ni_id FROM news_item
		JOIN news_xref ON nx_ni_id = ni_id
		WHERE nx_co_id = $1
		ORDER BY ni_id`},
	QDMUpdateNews: {Kind: KindUpdate,
		Text: `
		UPDATE news_item SET ni_dts = ni_dts + INTERVAL '1 day'
		WHERE ni_id IN (SELECT nx_ni_id FROM news_xref WHERE nx_co_id = $1)`,
		Overrides: map[Dialect]string{DialectSQLite: `
		UPDATE news_item SET ni_dts = datetime(ni_dts, '+1 day')
		WHERE ni_id IN (SELECT nx_ni_id FROM news_xref WHERE nx_co_id = $1)`},
	},
	QDMSelectExchDate: {Kind: KindSelect, Text: `
		SELECT s_exch_date FROM security WHERE s_symb = $1`},
	QDMUpdateExchDate: {Kind: KindUpdate,
		Text: `
		UPDATE security SET s_exch_date = s_exch_date + 1 WHERE s_symb = $1`,
		Overrides: map[Dialect]string{DialectSQLite: `
		UPDATE security SET s_exch_date = date(s_exch_date, '+1 day') WHERE s_symb = $1`},
	},
	QDMSelectTaxName: {Kind: KindSelect, Text: `
		SELECT tx_name FROM taxrate WHERE tx_id = $1`},
	QDMUpdateTaxName: {Kind: KindUpdate, Text: `
		UPDATE taxrate SET tx_name = $1 WHERE tx_id = $2`},
	QDMCountWatchItems: {Kind: KindSelect, Text: `
		SELECT count(*) FROM watch_item
		JOIN watch_list ON wi_wl_id = wl_id
		WHERE wl_c_id = $1`},
	QDMSelectWatchAtOffset: {Kind: KindSelect, Text: `
		SELECT wi_s_symb FROM watch_item
		JOIN watch_list ON wi_wl_id = wl_id
		WHERE wl_c_id = $1
		ORDER BY wi_s_symb ASC
		LIMIT 1 OFFSET $2`},
	QDMSelectNextUnwatched: {Kind: KindSelect, Text: `
		SELECT s_symb FROM security
		WHERE s_symb > $1
		  AND s_symb NOT IN (
			SELECT wi_s_symb FROM watch_item
			JOIN watch_list ON wi_wl_id = wl_id
			WHERE wl_c_id = $2)
		ORDER BY s_symb ASC
		LIMIT 1`},
	QDMUpdateWatchItem: {Kind: KindUpdate, Text: `
		UPDATE watch_item SET wi_s_symb = $1
		WHERE wi_s_symb = $2
		  AND wi_wl_id IN (SELECT wl_id FROM watch_list WHERE wl_c_id = $3)`},

	QTCSelectRequests: {Kind: KindSelect, Text: `
		SELECT tr_t_id FROM trade_request ORDER BY tr_t_id`},
	QTCInsertHistory: {Kind: KindInsert, Text: `
		INSERT INTO trade_history (th_t_id, th_dts, th_st_id)
		VALUES ($1, $2, $3)`},
	QTCDeleteRequests: {Kind: KindDelete, Text: `
		DELETE FROM trade_request`},
	QTCSelectSubmitted: {Kind: KindSelect, Text: `
		SELECT t_id FROM trade
		WHERE t_id >= $1 AND t_st_id = $2
		ORDER BY t_id`},
	QTCCancelTrade: {Kind: KindUpdate, Returning: true, Text: `
		UPDATE trade SET t_st_id = $1, t_dts = $2
		WHERE t_id = $3
		RETURNING t_dts`},

	QBVSelectVolumes: {Kind: KindSelect,
		Text: `
		SELECT b_name, sum(tr_qty * tr_bid_price) AS volume
		FROM trade_request
		JOIN broker ON tr_b_id = b_id
		JOIN security ON tr_s_symb = s_symb
		JOIN company ON s_co_id = co_id
		JOIN industry ON co_in_id = in_id
		JOIN sector ON in_sc_id = sc_id
		WHERE b_name IN (SELECT jsonb_array_elements_text($1::jsonb))
		  AND sc_name = $2
		GROUP BY b_name
		ORDER BY volume DESC, b_name ASC`,
		Overrides: map[Dialect]string{DialectSQLite: `
		SELECT b_name, sum(tr_qty * tr_bid_price) AS volume
		FROM trade_request
		JOIN broker ON tr_b_id = b_id
		JOIN security ON tr_s_symb = s_symb
		JOIN company ON s_co_id = co_id
		JOIN industry ON co_in_id = in_id
		JOIN sector ON in_sc_id = sc_id
		WHERE b_name IN (SELECT value FROM json_each($1))
		  AND sc_name = $2
		GROUP BY b_name
		ORDER BY volume DESC, b_name ASC`},
	},
}

// QueryIDs returns every catalogued statement id.
func QueryIDs() []QueryID {
	ids := make([]QueryID, 0, len(catalogue))
	for id := range catalogue {
		ids = append(ids, id)
	}
	return ids
}

// KindOf reports the operation kind of a catalogued statement.
func KindOf(id QueryID) (Kind, bool) {
	st, ok := catalogue[id]
	return st.Kind, ok
}
