// Package scenario runs named order filter cases against a live database and
// reports their timing, row counts and query plans.
package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"storefront-filters/internal/data"
	"storefront-filters/internal/filters"
	"storefront-filters/internal/graphql"
	"storefront-filters/internal/order"
)

// Scenario is one filter input applied to the order list.
type Scenario struct {
	Type        string
	Name        string
	Description string
	Draft       bool
	Filter      order.OrderFilter
}

// Result captures timing and explain output for a scenario.
type Result struct {
	Type        string
	Name        string
	Description string
	SQL         string
	Duration    time.Duration
	RowCount    int64
	Explain     []string
	Err         error
}

func ptr[T any](v T) *T { return &v }

// Builtin returns the demonstration scenarios for the seeded dataset.
func Builtin(hs data.Hotspots) []Scenario {
	today := time.Now().UTC()
	monthAgo := today.AddDate(0, -1, 0)
	return []Scenario{
		{
			Type:        "search",
			Name:        "order number",
			Description: "'#<id>' resolves straight to the primary key.",
			Filter:      order.OrderFilter{DraftOrderFilter: order.DraftOrderFilter{Search: ptr(fmt.Sprintf("#%d", hs.OrderID))}},
		},
		{
			Type:        "search",
			Name:        "payment id",
			Description: "A Payment global ID narrows to the order owning that payment.",
			Filter:      order.OrderFilter{DraftOrderFilter: order.DraftOrderFilter{Search: ptr(graphql.ToGlobalID("Payment", hs.PaymentID))}},
		},
		{
			Type:        "search",
			Name:        "transaction key",
			Description: "Free text equal to a transaction searchable key.",
			Filter:      order.OrderFilter{DraftOrderFilter: order.DraftOrderFilter{Search: ptr(data.HotSearchableKey)}},
		},
		{
			Type:        "search",
			Name:        "discount name",
			Description: "Free text fuzzily matching a discount name.",
			Filter:      order.OrderFilter{DraftOrderFilter: order.DraftOrderFilter{Search: ptr(data.HotDiscountName)}},
		},
		{
			Type:        "customer",
			Name:        "last name",
			Description: "Customer filter across guest email and user names.",
			Filter:      order.OrderFilter{DraftOrderFilter: order.DraftOrderFilter{Customer: ptr(data.HotCustomerLast)}},
		},
		{
			Type:        "status",
			Name:        "ready to fulfill + fulfilled",
			Description: "Computed category unioned with a plain status.",
			Filter:      order.OrderFilter{Status: []order.StatusFilter{order.ReadyToFulfill, order.Fulfilled}},
		},
		{
			Type:        "status",
			Name:        "ready to capture",
			Description: "Orders holding an active not-charged payment.",
			Filter:      order.OrderFilter{Status: []order.StatusFilter{order.ReadyToCapture}},
		},
		{
			Type:        "payment",
			Name:        "fully charged",
			Description: "Orders with an active fully-charged payment.",
			Filter:      order.OrderFilter{PaymentStatus: []order.ChargeStatus{order.ChargeFullyCharged}},
		},
		{
			Type:        "channel",
			Name:        "default channel, last month",
			Description: "Channel global ID combined with a created date range.",
			Filter: order.OrderFilter{DraftOrderFilter: order.DraftOrderFilter{
				Channels: []string{graphql.ToGlobalID("Channel", hs.Channel.ID)},
				Created:  &filters.DateRange{Gte: &monthAgo, Lte: &today},
			}},
		},
		{
			Type:        "draft",
			Name:        "draft orders from pos",
			Description: "Draft order list narrowed by metadata.",
			Draft:       true,
			Filter: order.OrderFilter{DraftOrderFilter: order.DraftOrderFilter{
				Metadata: []filters.MetadataInput{{Key: "source", Value: ptr("pos")}},
			}},
		},
	}
}

func (sc Scenario) query(db *gorm.DB) *gorm.DB {
	qs := db.Model(&data.Order{})
	if sc.Draft {
		return sc.Filter.DraftOrderFilter.Apply(qs.Where("orders.status = ?", order.StatusDraft))
	}
	return sc.Filter.Apply(qs.Where("orders.status <> ?", order.StatusDraft))
}

// SQL renders the statement a scenario issues, with values inlined.
func (sc Scenario) SQL(db *gorm.DB) string {
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return sc.query(tx).Find(&[]data.Order{})
	})
}

// Run executes scenarios in order.
func Run(ctx context.Context, db *gorm.DB, scenarios []Scenario) []Result {
	results := make([]Result, 0, len(scenarios))
	for _, sc := range scenarios {
		res := Result{Type: sc.Type, Name: sc.Name, Description: sc.Description}

		start := time.Now()
		var count int64
		if err := sc.query(db.WithContext(ctx)).Count(&count).Error; err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		res.Duration = time.Since(start)
		res.RowCount = count
		res.SQL = sc.SQL(db.WithContext(ctx))

		explain, err := explainQuery(ctx, db, res.SQL)
		if err == nil {
			res.Explain = explain
		} else {
			res.Explain = []string{fmt.Sprintf("failed to collect EXPLAIN: %v", err)}
		}

		results = append(results, res)
	}
	return results
}

func explainQuery(ctx context.Context, db *gorm.DB, query string) ([]string, error) {
	lines, err := fetchExplain(ctx, db, "EXPLAIN ANALYZE "+query)
	if err == nil {
		return lines, nil
	}
	return fetchExplain(ctx, db, "EXPLAIN "+query)
}

func fetchExplain(ctx context.Context, db *gorm.DB, sql string) ([]string, error) {
	var rows []map[string]interface{}
	if err := db.WithContext(ctx).Raw(sql).Scan(&rows).Error; err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lineParts := make([]string, 0, len(row))
		for k, v := range row {
			lineParts = append(lineParts, fmt.Sprintf("%s=%v", k, v))
		}
		lines = append(lines, strings.Join(lineParts, " "))
	}
	return lines, nil
}
