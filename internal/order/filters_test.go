package order_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront-filters/internal/data"
	"storefront-filters/internal/filters"
	"storefront-filters/internal/graphql"
	"storefront-filters/internal/order"
)

func mysqlDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "shop:shop@tcp(127.0.0.1:3306)/storefront?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true, Logger: logger.Discard})
	require.NoError(t, err)
	return gdb
}

func postgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 user=shop password=shop dbname=storefront sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true, Logger: logger.Discard})
	require.NoError(t, err)
	return gdb
}

func toSQL(gdb *gorm.DB, scope func(*gorm.DB) *gorm.DB) string {
	return gdb.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return scope(tx.Model(&data.Order{})).Find(&[]data.Order{})
	})
}

func ptr[T any](v T) *T { return &v }

func TestFilterOrderSearch_OrderNumber(t *testing.T) {
	gdb := mysqlDB(t)

	for _, in := range []string{"#123", "123"} {
		sql := toSQL(gdb, func(qs *gorm.DB) *gorm.DB { return order.FilterOrderSearch(qs, "search", in) })
		require.Contains(t, sql, "orders.id = 123", in)
		require.NotContains(t, sql, "searchable_key", in)
	}
}

func TestFilterOrderSearch_HashWithoutDigitsIsText(t *testing.T) {
	gdb := mysqlDB(t)

	for _, in := range []string{"#", "#12a", "#-1"} {
		sql := toSQL(gdb, func(qs *gorm.DB) *gorm.DB { return order.FilterOrderSearch(qs, "search", in) })
		require.NotContains(t, sql, "orders.id =", in)
		require.Contains(t, sql, "payment_transactions.searchable_key =", in)
	}
}

func TestFilterOrderSearch_NumberOutOfRangeMatchesNothing(t *testing.T) {
	gdb := mysqlDB(t)

	for _, in := range []string{"#99999999999999999999999", "18446744073709551616", "#0"} {
		sql := toSQL(gdb, func(qs *gorm.DB) *gorm.DB { return order.FilterOrderSearch(qs, "search", in) })
		require.Contains(t, sql, "1 = 0", in)
		require.NotContains(t, sql, "searchable_key", in)
	}
}

func TestFilterOrderSearch_PaymentGlobalID(t *testing.T) {
	gdb := mysqlDB(t)
	id := graphql.ToGlobalID("Payment", 7)

	sql := toSQL(gdb, func(qs *gorm.DB) *gorm.DB { return order.FilterOrderSearch(qs, "search", id) })

	require.Contains(t, sql, "payments.id = 7")
	require.NotContains(t, sql, "orders.id =")
	require.NotContains(t, sql, "searchable_key")
}

func TestFilterOrderSearch_OtherGlobalIDFallsThrough(t *testing.T) {
	gdb := mysqlDB(t)
	id := graphql.ToGlobalID("Channel", 7)

	sql := toSQL(gdb, func(qs *gorm.DB) *gorm.DB { return order.FilterOrderSearch(qs, "search", id) })

	require.NotContains(t, sql, "payments.id = 7")
	require.Contains(t, sql, "payment_transactions.searchable_key = '"+id+"'")
}

func TestFilterOrderSearch_FreeText(t *testing.T) {
	gdb := postgresDB(t)

	sql := toSQL(gdb, func(qs *gorm.DB) *gorm.DB { return order.FilterOrderSearch(qs, "search", "PSP-1") })

	require.Contains(t, sql, "payment_transactions.searchable_key = 'PSP-1'")
	require.Contains(t, sql, "payment_transactions.payment_id = payments.id")
	require.Contains(t, sql, "payments.order_id = orders.id")
	require.Contains(t, sql, "orders.user_email % 'PSP-1'")
	require.Contains(t, sql, "order_discounts.name % 'PSP-1'")
	require.Contains(t, sql, "order_discounts.translated_name % 'PSP-1'")
	require.Contains(t, sql, "users.last_name % 'PSP-1'")
	require.Contains(t, sql, "EXISTS (SELECT 1 FROM")
	require.Contains(t, sql, " OR ")
}

func TestFilterCustomer(t *testing.T) {
	t.Run("postgres uses trigram similarity", func(t *testing.T) {
		sql := toSQL(postgresDB(t), func(qs *gorm.DB) *gorm.DB { return order.FilterCustomer(qs, "customer", "Ada") })

		for _, col := range []string{"orders.user_email", "users.email", "users.first_name", "users.last_name"} {
			require.Contains(t, sql, col+" % 'Ada'")
		}
		require.Contains(t, sql, "users.id = orders.user_id")
	})

	t.Run("mysql falls back to substring match", func(t *testing.T) {
		sql := toSQL(mysqlDB(t), func(qs *gorm.DB) *gorm.DB { return order.FilterCustomer(qs, "customer", "Ada") })

		require.Contains(t, sql, "LOWER(orders.user_email) LIKE '%ada%'")
		require.Contains(t, sql, "LOWER(users.first_name) LIKE '%ada%'")
		require.NotContains(t, sql, "% 'Ada'")
	})
}

func TestFilterStatus_UnionOfPlainAndComputed(t *testing.T) {
	gdb := mysqlDB(t)
	value := []order.StatusFilter{order.ReadyToFulfill, order.Fulfilled}

	sql := toSQL(gdb, func(qs *gorm.DB) *gorm.DB { return order.FilterStatus(qs, "status", value) })

	require.Contains(t, sql, "orders.status IN ('fulfilled') OR (orders.status IN ('unfulfilled','partially_fulfilled')")
	require.Contains(t, sql, "orders.total_gross_amount <= (SELECT COALESCE(SUM(payments.captured_amount), 0) FROM")
	require.NotContains(t, sql, "'ready_to_fulfill'")
}

func TestFilterStatus_ReadyToCapture(t *testing.T) {
	gdb := mysqlDB(t)

	sql := toSQL(gdb, func(qs *gorm.DB) *gorm.DB {
		return order.FilterStatus(qs, "status", []order.StatusFilter{order.ReadyToCapture})
	})

	require.Contains(t, sql, "payments.charge_status = 'not-charged'")
	require.Contains(t, sql, "orders.status NOT IN ('draft','canceled')")
	require.NotContains(t, sql, "captured_amount")
}

func TestFilterStatus_EmptyIsNoop(t *testing.T) {
	gdb := mysqlDB(t)

	sql := toSQL(gdb, func(qs *gorm.DB) *gorm.DB { return order.FilterStatus(qs, "status", nil) })

	require.NotContains(t, sql, "WHERE")
}

func TestFilterPaymentStatus(t *testing.T) {
	gdb := mysqlDB(t)
	value := []order.ChargeStatus{order.ChargeFullyCharged, order.ChargePartiallyCharged}

	sql := toSQL(gdb, func(qs *gorm.DB) *gorm.DB { return order.FilterPaymentStatus(qs, "payment_status", value) })

	require.Contains(t, sql, "payments.is_active = true")
	require.Contains(t, sql, "payments.charge_status IN ('fully-charged','partially-charged')")
}

func TestFilterCreatedRange(t *testing.T) {
	gdb := mysqlDB(t)
	gte := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)
	lte := time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)

	sql := toSQL(gdb, func(qs *gorm.DB) *gorm.DB {
		return order.FilterCreatedRange(qs, "created", filters.DateRange{Gte: &gte, Lte: &lte})
	})

	require.Contains(t, sql, "orders.created_at >= '2024-03-01 00:00:00")
	require.Contains(t, sql, "orders.created_at < '2024-03-08 00:00:00")
	require.NotContains(t, sql, "DATE(")
}

func TestFilterChannels(t *testing.T) {
	gdb := mysqlDB(t)
	ids := []string{graphql.ToGlobalID("Channel", 1), graphql.ToGlobalID("Channel", 3)}

	sql := toSQL(gdb, func(qs *gorm.DB) *gorm.DB { return order.FilterChannels(qs, "channels", ids) })

	require.Contains(t, sql, "orders.channel_id IN (1,3)")
}

func TestFilterChannels_WrongTypeFailsQuery(t *testing.T) {
	gdb := mysqlDB(t)
	f := order.OrderFilter{DraftOrderFilter: order.DraftOrderFilter{
		Channels: []string{graphql.ToGlobalID("Payment", 1)},
	}}

	var out []data.Order
	err := f.Apply(gdb.Model(&data.Order{})).Find(&out).Error

	var gqlErr *graphql.Error
	require.True(t, errors.As(err, &gqlErr), "got %v", err)
	require.Contains(t, gqlErr.Message, "Must receive Channel id")
}

func TestFilterChannels_ErrorStaysOnFilteredQuery(t *testing.T) {
	gdb := mysqlDB(t)

	filtered := order.FilterChannels(gdb, "channels", []string{graphql.ToGlobalID("Payment", 1)})
	var gqlErr *graphql.Error
	require.True(t, errors.As(filtered.Error, &gqlErr), "got %v", filtered.Error)

	require.NoError(t, gdb.Error)
	var out []data.Order
	require.NoError(t, gdb.Model(&data.Order{}).Where("orders.id = ?", 1).Find(&out).Error)
}

func TestOrderFilter_AppliesInheritedFields(t *testing.T) {
	gdb := mysqlDB(t)
	f := order.OrderFilter{
		DraftOrderFilter: order.DraftOrderFilter{
			Search:   ptr("#42"),
			Metadata: []filters.MetadataInput{{Key: "source"}},
		},
		PaymentStatus: []order.ChargeStatus{order.ChargeNotCharged},
		Status:        []order.StatusFilter{order.Unfulfilled},
	}

	sql := toSQL(gdb, f.Apply)

	require.Contains(t, sql, "payments.charge_status IN ('not-charged')")
	require.Contains(t, sql, "orders.status IN ('unfulfilled')")
	require.Contains(t, sql, "orders.id = 42")
	require.Contains(t, sql, "JSON_EXTRACT(")
	require.Len(t, f.Scopes(), 4)
}

func TestDraftOrderFilter_SkipsUnsetFields(t *testing.T) {
	f := order.DraftOrderFilter{Search: ptr(""), Customer: ptr("")}
	require.Empty(t, f.Scopes())

	sql := toSQL(mysqlDB(t), f.Apply)
	require.NotContains(t, sql, "WHERE")
}

func TestQuerysetScopes(t *testing.T) {
	gdb := postgresDB(t)

	fulfill := toSQL(gdb, order.ReadyToFulfillOrders)
	require.Contains(t, fulfill, "orders.status IN ('unfulfilled','partially_fulfilled')")
	require.Contains(t, fulfill, "payments.is_active = true")
	require.Contains(t, fulfill, "COALESCE(SUM(payments.captured_amount), 0)")

	capture := toSQL(gdb, order.ReadyToCaptureOrders)
	require.Contains(t, capture, "payments.charge_status = 'not-charged'")
	require.Contains(t, capture, "orders.status NOT IN ('draft','canceled')")
}
