package frame

import (
	"context"
	"database/sql"

	"github.com/osdldbt/dbt5-sub001/internal/store"
)

// DataMaintenanceRequest is the input of DataMaintenanceFrame1.
type DataMaintenanceRequest struct {
	AccountID  int64
	CustomerID int64
	CompanyID  int64
	DayOfMonth int32
	Symbol     string
	TableName  string
	TaxID      string
	VolIncr    int32
}

// TargetTable selects which maintenance handler runs.
type TargetTable int

const (
	TableAccountPermission TargetTable = iota
	TableAddress
	TableCompany
	TableCustomer
	TableCustomerTaxrate
	TableDailyMarket
	TableExchange
	TableFinancial
	TableNewsItem
	TableSecurity
	TableTaxrate
	TableWatchItem

	numTargetTables
)

var targetTableNames = [numTargetTables]string{
	TableAccountPermission: "ACCOUNT_PERMISSION",
	TableAddress:           "ADDRESS",
	TableCompany:           "COMPANY",
	TableCustomer:          "CUSTOMER",
	TableCustomerTaxrate:   "CUSTOMER_TAXRATE",
	TableDailyMarket:       "DAILY_MARKET",
	TableExchange:          "EXCHANGE",
	TableFinancial:         "FINANCIAL",
	TableNewsItem:          "NEWS_ITEM",
	TableSecurity:          "SECURITY",
	TableTaxrate:           "TAXRATE",
	TableWatchItem:         "WATCH_ITEM",
}

func (t TargetTable) String() string {
	if t < 0 || t >= numTargetTables {
		return "UNKNOWN"
	}
	return targetTableNames[t]
}

// ParseTargetTable maps a table name to its TargetTable.
func ParseTargetTable(name string) (TargetTable, bool) {
	for i, n := range targetTableNames {
		if n == name {
			return TargetTable(i), true
		}
	}
	return 0, false
}

// TargetTables lists every maintenance table in declaration order.
func TargetTables() []TargetTable {
	out := make([]TargetTable, numTargetTables)
	for i := range out {
		out[i] = TargetTable(i)
	}
	return out
}

type maintenanceHandler func(x *Executor, ctx context.Context, s steps, req DataMaintenanceRequest) error

// maintenanceHandlers is indexed by TargetTable; the array length pins it to
// the enum.
var maintenanceHandlers = [numTargetTables]maintenanceHandler{
	TableAccountPermission: (*Executor).maintainAccountPermission,
	TableAddress:           (*Executor).maintainAddress,
	TableCompany:           (*Executor).maintainCompany,
	TableCustomer:          (*Executor).maintainCustomer,
	TableCustomerTaxrate:   (*Executor).maintainCustomerTaxrate,
	TableDailyMarket:       (*Executor).maintainDailyMarket,
	TableExchange:          (*Executor).maintainExchange,
	TableFinancial:         (*Executor).maintainFinancial,
	TableNewsItem:          (*Executor).maintainNewsItem,
	TableSecurity:          (*Executor).maintainSecurity,
	TableTaxrate:           (*Executor).maintainTaxrate,
	TableWatchItem:         (*Executor).maintainWatchItem,
}

// DataMaintenance runs DataMaintenanceFrame1: exactly one read-decide-write
// handler selected by req.TableName. Returns status 0 on success.
func (x *Executor) DataMaintenance(ctx context.Context, q Querier, req DataMaintenanceRequest) (int32, error) {
	table, ok := ParseTargetTable(req.TableName)
	if !ok {
		return 0, &Error{
			Code:    ErrCodeUnknownTargetTable,
			Frame:   DataMaintenanceFrame1,
			Message: "unknown table name " + req.TableName,
		}
	}

	x.logger.Debug("data maintenance", "table", table.String())
	if err := maintenanceHandlers[table](x, ctx, steps{frame: DataMaintenanceFrame1, q: q}, req); err != nil {
		return 0, err
	}
	return 0, nil
}

func (x *Executor) maintainAccountPermission(ctx context.Context, s steps, req DataMaintenanceRequest) error {
	var acl string
	if err := s.one(ctx, "read account permission", store.QDMSelectACL, []any{req.AccountID}, &acl); err != nil {
		return err
	}
	acl = trimChar(acl)
	return s.exec(ctx, "update account permission", store.QDMUpdateACL, nextACL(acl), req.AccountID, acl)
}

func (x *Executor) maintainAddress(ctx context.Context, s steps, req DataMaintenanceRequest) error {
	var (
		addrID int64
		line2  sql.NullString
	)
	if req.CustomerID != 0 {
		if err := s.one(ctx, "read customer address", store.QDMSelectCustomerAddr, []any{req.CustomerID}, &addrID, &line2); err != nil {
			return err
		}
	} else {
		if err := s.one(ctx, "read company address", store.QDMSelectCompanyAddr, []any{req.CompanyID}, &addrID, &line2); err != nil {
			return err
		}
	}
	return s.exec(ctx, "update address", store.QDMUpdateAddress, nextLine2(line2.String), addrID)
}

func (x *Executor) maintainCompany(ctx context.Context, s steps, req DataMaintenanceRequest) error {
	var rating string
	if err := s.one(ctx, "read company rating", store.QDMSelectRating, []any{req.CompanyID}, &rating); err != nil {
		return err
	}
	return s.exec(ctx, "update company rating", store.QDMUpdateRating, nextRating(trimChar(rating)), req.CompanyID)
}

func (x *Executor) maintainCustomer(ctx context.Context, s steps, req DataMaintenanceRequest) error {
	var email sql.NullString
	if err := s.one(ctx, "read customer email", store.QDMSelectEmail, []any{req.CustomerID}, &email); err != nil {
		return err
	}
	next, err := nextEmail(email.String)
	if err != nil {
		return newMalformedInputError(DataMaintenanceFrame1, err.Error())
	}
	return s.exec(ctx, "update customer email", store.QDMUpdateEmail, next, req.CustomerID)
}

func (x *Executor) maintainCustomerTaxrate(ctx context.Context, s steps, req DataMaintenanceRequest) error {
	var code string
	if err := s.one(ctx, "read customer tax code", store.QDMSelectTaxCode, []any{req.CustomerID}, &code); err != nil {
		return err
	}
	code = trimChar(code)
	next, err := nextTaxCode(code)
	if err != nil {
		return newMalformedInputError(DataMaintenanceFrame1, err.Error())
	}
	return s.exec(ctx, "update customer tax code", store.QDMUpdateTaxCode, next, req.CustomerID, code)
}

func (x *Executor) maintainDailyMarket(ctx context.Context, s steps, req DataMaintenanceRequest) error {
	var vol int64
	if err := s.one(ctx, "read daily market volume", store.QDMSelectVolume, []any{req.Symbol, req.DayOfMonth}, &vol); err != nil {
		return err
	}
	return s.exec(ctx, "update daily market volume", store.QDMUpdateVolume, req.VolIncr, req.Symbol, req.DayOfMonth)
}

func (x *Executor) maintainExchange(ctx context.Context, s steps, req DataMaintenanceRequest) error {
	const step = "read exchanges"

	rows, err := s.q.Query(ctx, store.QDMSelectExchanges)
	if err != nil {
		return newStepError(DataMaintenanceFrame1, step, store.QDMSelectExchanges, err)
	}
	type exchange struct {
		id   string
		desc string
	}
	var exchanges []exchange
	for rows.Next() {
		var (
			ex   exchange
			desc sql.NullString
		)
		if err := rows.Scan(&ex.id, &desc); err != nil {
			rows.Close()
			return newStepError(DataMaintenanceFrame1, step, store.QDMSelectExchanges, err)
		}
		ex.desc = desc.String
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return newStepError(DataMaintenanceFrame1, step, store.QDMSelectExchanges, err)
	}
	rows.Close()

	if len(exchanges) == 0 {
		return newStepError(DataMaintenanceFrame1, step, store.QDMSelectExchanges, nil)
	}

	now := x.now()
	for _, ex := range exchanges {
		desc := refreshExchangeDesc(ex.desc, now)
		if err := s.exec(ctx, "update exchange", store.QDMUpdateExchange, desc, ex.id); err != nil {
			return err
		}
	}
	return nil
}

func (x *Executor) maintainFinancial(ctx context.Context, s steps, req DataMaintenanceRequest) error {
	var firsts int64
	if err := s.one(ctx, "count first-of-month quarters", store.QDMCountFirstOfMonth, []any{req.CompanyID}, &firsts); err != nil {
		return err
	}
	if firsts > 0 {
		return s.exec(ctx, "advance quarter start dates", store.QDMFinancialForward, req.CompanyID)
	}
	return s.exec(ctx, "rewind quarter start dates", store.QDMFinancialBack, req.CompanyID)
}

func (x *Executor) maintainNewsItem(ctx context.Context, s steps, req DataMaintenanceRequest) error {
	var newsID int64
	if err := s.one(ctx, "read company news", store.QDMSelectNews, []any{req.CompanyID}, &newsID); err != nil {
		return err
	}
	return s.exec(ctx, "advance news timestamps", store.QDMUpdateNews, req.CompanyID)
}

func (x *Executor) maintainSecurity(ctx context.Context, s steps, req DataMaintenanceRequest) error {
	var exchDate any
	if err := s.one(ctx, "read security exchange date", store.QDMSelectExchDate, []any{req.Symbol}, &exchDate); err != nil {
		return err
	}
	return s.exec(ctx, "advance security exchange date", store.QDMUpdateExchDate, req.Symbol)
}

func (x *Executor) maintainTaxrate(ctx context.Context, s steps, req DataMaintenanceRequest) error {
	var name string
	if err := s.one(ctx, "read taxrate name", store.QDMSelectTaxName, []any{req.TaxID}, &name); err != nil {
		return err
	}
	next, err := flipTaxToken(name)
	if err != nil {
		return newMalformedInputError(DataMaintenanceFrame1, err.Error())
	}
	return s.exec(ctx, "update taxrate name", store.QDMUpdateTaxName, next, req.TaxID)
}

func (x *Executor) maintainWatchItem(ctx context.Context, s steps, req DataMaintenanceRequest) error {
	var count int64
	if err := s.one(ctx, "count watch items", store.QDMCountWatchItems, []any{req.CustomerID}, &count); err != nil {
		return err
	}

	var oldSymbol string
	if err := s.one(ctx, "read watch item at offset", store.QDMSelectWatchAtOffset, []any{req.CustomerID, watchOffset(count)}, &oldSymbol); err != nil {
		return err
	}
	oldSymbol = trimChar(oldSymbol)

	var newSymbol string
	if err := s.one(ctx, "read next unwatched security", store.QDMSelectNextUnwatched, []any{oldSymbol, req.CustomerID}, &newSymbol); err != nil {
		return err
	}
	return s.exec(ctx, "update watch item", store.QDMUpdateWatchItem, trimChar(newSymbol), oldSymbol, req.CustomerID)
}
