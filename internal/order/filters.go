// Package order turns order list/search filter inputs into GORM scopes.
package order

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-filters/internal/data"
	"storefront-filters/internal/filters"
	"storefront-filters/internal/graphql"
	"storefront-filters/internal/search"
)

// FilterPaymentStatus keeps orders with an active payment in one of value.
func FilterPaymentStatus(qs *gorm.DB, _ string, value []ChargeStatus) *gorm.DB {
	if len(value) == 0 {
		return qs
	}
	statuses := make([]string, 0, len(value))
	for _, v := range value {
		statuses = append(statuses, string(v))
	}
	payments := activePayments(qs).Where("payments.charge_status IN ?", statuses)
	return qs.Where("EXISTS (?)", payments)
}

// FilterStatus keeps orders matching any of value: plain statuses plus the
// ready-to-fulfill and ready-to-capture categories, as one union.
func FilterStatus(qs *gorm.DB, _ string, value []StatusFilter) *gorm.DB {
	if len(value) == 0 {
		return qs
	}
	var (
		plain []string
		union []clause.Expr
	)
	for _, v := range value {
		if !v.computed() {
			plain = append(plain, string(v))
		}
	}
	if len(plain) > 0 {
		union = append(union, clause.Expr{SQL: "orders.status IN ?", Vars: []interface{}{plain}})
	}
	if hasStatus(value, ReadyToFulfill) {
		union = append(union, readyToFulfillExpr(qs))
	}
	if hasStatus(value, ReadyToCapture) {
		union = append(union, readyToCaptureExpr(qs))
	}
	return qs.Where(search.Any(union...))
}

func hasStatus(values []StatusFilter, want StatusFilter) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// customerExpr matches value against the guest email and the linked user.
func customerExpr(qs *gorm.DB, value string) clause.Expr {
	d := search.For(qs)
	users := subquery(qs, &data.User{}).
		Select("1").
		Where("users.id = orders.user_id").
		Where(search.SimilarAny(d, value, "users.email", "users.first_name", "users.last_name"))
	return search.Any(
		d.Similar("orders.user_email", value),
		clause.Expr{SQL: "EXISTS (?)", Vars: []interface{}{users}},
	)
}

// FilterCustomer fuzzily matches value against customer email and names.
func FilterCustomer(qs *gorm.DB, _ string, value string) *gorm.DB {
	return qs.Where(customerExpr(qs, value))
}

// FilterCreatedRange keeps orders created on the days covered by value.
func FilterCreatedRange(qs *gorm.DB, _ string, value filters.DateRange) *gorm.DB {
	return filters.FilterDateRangeField(qs, "orders.created_at", value)
}

func paymentIDFromQuery(value string) (uint, bool) {
	_, pk, err := graphql.FromGlobalIDOrError(value, "Payment")
	if err != nil {
		return 0, false
	}
	return pk, true
}

// orderIDFromQuery reports whether value is an order number. Numbers out of
// range for a primary key come back as 0, which matches no order.
func orderIDFromQuery(value string) (uint64, bool) {
	value = strings.TrimPrefix(value, "#")
	if value == "" || strings.TrimLeft(value, "0123456789") != "" {
		return 0, false
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, true
	}
	return id, true
}

func filterOrderByPayment(qs *gorm.DB, paymentID uint) *gorm.DB {
	payments := subquery(qs, &data.Payment{}).
		Select("1").
		Where("payments.order_id = orders.id AND payments.id = ?", paymentID)
	return qs.Where("EXISTS (?)", payments)
}

// FilterOrderSearch resolves value as, in order: a Payment global ID, an
// order number with optional '#', or free text matched against customers,
// discount names and transaction searchable keys.
func FilterOrderSearch(qs *gorm.DB, _ string, value string) *gorm.DB {
	if paymentID, ok := paymentIDFromQuery(value); ok {
		return filterOrderByPayment(qs, paymentID)
	}
	if orderID, ok := orderIDFromQuery(value); ok {
		if orderID == 0 {
			return qs.Where("1 = 0")
		}
		return qs.Where("orders.id = ?", orderID)
	}

	d := search.For(qs)
	transactions := subquery(qs, &data.Transaction{}).
		Select("1").
		Where("payment_transactions.payment_id = payments.id AND payment_transactions.searchable_key = ?", value)
	payments := subquery(qs, &data.Payment{}).
		Select("1").
		Where("payments.order_id = orders.id AND EXISTS (?)", transactions)
	discounts := subquery(qs, &data.OrderDiscount{}).
		Select("1").
		Where("order_discounts.order_id = orders.id").
		Where(search.SimilarAny(d, value, "order_discounts.name", "order_discounts.translated_name"))

	return qs.Where(search.Any(
		customerExpr(qs, value),
		clause.Expr{SQL: "EXISTS (?)", Vars: []interface{}{discounts}},
		clause.Expr{SQL: "EXISTS (?)", Vars: []interface{}{payments}},
	))
}

// FilterChannels restricts orders to the channels named by global IDs.
func FilterChannels(qs *gorm.DB, _ string, values []string) *gorm.DB {
	if len(values) == 0 {
		return qs
	}
	_, ids, err := graphql.ResolveGlobalIDsToPrimaryKeys(values, "Channel")
	if err != nil {
		// The error belongs to this query only, never to the handle passed in.
		tx := qs.Session(&gorm.Session{})
		_ = tx.AddError(err)
		return tx
	}
	return qs.Where("orders.channel_id IN ?", ids)
}

// FilterMetadata keeps orders whose public metadata matches every item.
func FilterMetadata(qs *gorm.DB, _ string, value []filters.MetadataInput) *gorm.DB {
	return filters.FilterMetadata(qs, "metadata", value)
}
