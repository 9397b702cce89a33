package order

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-filters/internal/data"
)

// subquery starts a fresh statement on the same connection as qs.
func subquery(qs *gorm.DB, model interface{}) *gorm.DB {
	return qs.Session(&gorm.Session{NewDB: true}).Model(model)
}

func activePayments(qs *gorm.DB) *gorm.DB {
	return subquery(qs, &data.Payment{}).
		Select("1").
		Where("payments.order_id = orders.id AND payments.is_active = ?", true)
}

// amountPaid sums captured amounts over every payment of the outer order.
func amountPaid(qs *gorm.DB) *gorm.DB {
	return subquery(qs, &data.Payment{}).
		Select("COALESCE(SUM(payments.captured_amount), 0)").
		Where("payments.order_id = orders.id")
}

func readyToFulfillExpr(qs *gorm.DB) clause.Expr {
	return clause.Expr{
		SQL: "(orders.status IN ? AND EXISTS (?) AND orders.total_gross_amount <= (?))",
		Vars: []interface{}{
			[]string{StatusUnfulfilled, StatusPartiallyFulfilled},
			activePayments(qs),
			amountPaid(qs),
		},
	}
}

func readyToCaptureExpr(qs *gorm.DB) clause.Expr {
	notCharged := activePayments(qs).Where("payments.charge_status = ?", string(ChargeNotCharged))
	return clause.Expr{
		SQL: "(EXISTS (?) AND orders.status NOT IN ?)",
		Vars: []interface{}{
			notCharged,
			[]string{StatusDraft, StatusCanceled},
		},
	}
}

// ReadyToFulfillOrders keeps unfulfilled orders that are paid in full.
func ReadyToFulfillOrders(qs *gorm.DB) *gorm.DB {
	return qs.Where(readyToFulfillExpr(qs))
}

// ReadyToCaptureOrders keeps live orders holding an authorized, uncaptured payment.
func ReadyToCaptureOrders(qs *gorm.DB) *gorm.DB {
	return qs.Where(readyToCaptureExpr(qs))
}
