package data

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedConfig controls how much synthetic storefront data is inserted.
type SeedConfig struct {
	Orders    int
	Users     int
	BatchSize int
}

// Hotspot values are stable records the filter scenarios search for.
const (
	HotCustomerEmail   = "ada.lovelace@example.com"
	HotCustomerLast    = "Lovelace"
	HotSearchableKey   = "PSP-LAB-0001"
	HotDiscountName    = "Spring Sale"
	DefaultChannelSlug = "default-channel"
)

// Hotspots identifies the seeded records scenarios expect to find.
type Hotspots struct {
	OrderID   uint
	PaymentID uint
	Channel   Channel
}

var seedChannels = []Channel{
	{Name: "Default Channel", Slug: DefaultChannelSlug, IsActive: true, CurrencyCode: "USD"},
	{Name: "Channel PLN", Slug: "channel-pln", IsActive: true, CurrencyCode: "PLN"},
	{Name: "Archived Channel", Slug: "channel-archive", IsActive: false, CurrencyCode: "EUR"},
}

// EnsureSchema applies the required database schema.
func EnsureSchema(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
			return errors.Wrap(err, "enable pg_trgm")
		}
	}
	return db.AutoMigrate(&Channel{}, &User{}, &Order{}, &Payment{}, &Transaction{}, &OrderDiscount{})
}

// SeedDataset populates the database with deterministic synthetic data.
func SeedDataset(ctx context.Context, db *gorm.DB, cfg SeedConfig) error {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.Users <= 0 {
		cfg.Users = 200
	}
	channels, err := ensureChannels(ctx, db)
	if err != nil {
		return err
	}
	users, err := ensureUsers(ctx, db, cfg.Users)
	if err != nil {
		return err
	}
	return seedOrders(ctx, db, cfg, channels, users)
}

func ensureChannels(ctx context.Context, db *gorm.DB) ([]Channel, error) {
	out := make([]Channel, 0, len(seedChannels))
	for _, ch := range seedChannels {
		if err := db.WithContext(ctx).Where(Channel{Slug: ch.Slug}).FirstOrCreate(&ch).Error; err != nil {
			return nil, errors.Wrapf(err, "ensure channel %s", ch.Slug)
		}
		out = append(out, ch)
	}
	return out, nil
}

func ensureUsers(ctx context.Context, db *gorm.DB, n int) ([]User, error) {
	var existing int64
	if err := db.WithContext(ctx).Model(&User{}).Count(&existing).Error; err != nil {
		return nil, err
	}
	if int(existing) < n {
		rnd := rand.New(rand.NewSource(7))
		batch := make([]User, 0, n-int(existing))
		for i := int(existing); i < n; i++ {
			first := randomChoice(firstNames, rnd)
			last := randomChoice(lastNames, rnd)
			batch = append(batch, User{
				Email:     fmt.Sprintf("%s.%s.%04d@example.com", strings.ToLower(first), strings.ToLower(last), i),
				FirstName: first,
				LastName:  last,
			})
		}
		if err := db.WithContext(ctx).Create(&batch).Error; err != nil {
			return nil, errors.Wrap(err, "seed users")
		}
	}
	var users []User
	if err := db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func seedOrders(ctx context.Context, db *gorm.DB, cfg SeedConfig, channels []Channel, users []User) error {
	var existing int64
	if err := db.WithContext(ctx).Model(&Order{}).Count(&existing).Error; err != nil {
		return err
	}
	if int(existing) >= cfg.Orders {
		return nil
	}

	toCreate := cfg.Orders - int(existing)
	batch := make([]Order, 0, cfg.BatchSize)
	now := time.Now().UTC()
	rnd := rand.New(rand.NewSource(42))
	start := int(existing)

	for i := 0; i < toCreate; i++ {
		batch = append(batch, buildSyntheticOrder(start+i, rnd, now, channels, users))

		if len(batch) == cfg.BatchSize || i == toCreate-1 {
			// Create also inserts the payments, transactions and discounts.
			if err := db.WithContext(ctx).Create(&batch).Error; err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	return nil
}

func buildSyntheticOrder(globalIdx int, rnd *rand.Rand, now time.Time, channels []Channel, users []User) Order {
	ch := channels[rnd.Intn(len(channels))]
	created := now.Add(-time.Duration(rnd.Intn(365*24)) * time.Hour)
	total := decimal.NewFromInt(int64(10 + rnd.Intn(990)))

	order := Order{
		Status:           randomChoiceWeighted(statuses, rnd),
		ChannelID:        ch.ID,
		TotalGrossAmount: total,
		Currency:         ch.CurrencyCode,
		Metadata:         datatypes.JSONMap{"source": randomChoice(sources, rnd)},
		PrivateMetadata:  datatypes.JSONMap{},
		CreatedAt:        created,
		UpdatedAt:        created,
	}
	if rnd.Float64() < 0.8 {
		u := users[rnd.Intn(len(users))]
		order.UserID = &u.ID
		order.UserEmail = u.Email
	} else {
		order.UserEmail = fmt.Sprintf("guest%06d@example.net", globalIdx)
	}

	if order.Status != "draft" {
		order.Payments = []Payment{buildPayment(globalIdx, rnd, total, created)}
	}
	if rnd.Float64() < 0.15 {
		name := randomChoice(discountNames, rnd)
		order.Discounts = []OrderDiscount{{
			Type:           "voucher",
			Name:           name,
			TranslatedName: name,
			Value:          decimal.NewFromInt(10),
			Amount:         total.Mul(decimal.NewFromFloat(0.1)).Round(2),
		}}
	}
	return order
}

func buildPayment(globalIdx int, rnd *rand.Rand, total decimal.Decimal, created time.Time) Payment {
	charge := randomChoice(chargeStatuses, rnd)
	captured := decimal.Zero
	switch charge {
	case "fully-charged":
		captured = total
	case "partially-charged":
		captured = total.Div(decimal.NewFromInt(2)).Round(2)
	}
	key := fmt.Sprintf("PSP-%08d", globalIdx)
	return Payment{
		Gateway:        "mirumee.payments.dummy",
		IsActive:       rnd.Float64() > 0.05,
		ChargeStatus:   charge,
		Total:          total,
		CapturedAmount: captured,
		PSPReference:   key,
		CreatedAt:      created,
		Transactions: []Transaction{{
			Kind:          "auth",
			IsSuccess:     true,
			Amount:        total,
			SearchableKey: key,
			Token:         key,
			CreatedAt:     created,
		}},
	}
}

// EnsureHotspots creates, once, a paid order with a known customer, discount
// and transaction key in the default channel.
func EnsureHotspots(ctx context.Context, db *gorm.DB) (Hotspots, error) {
	var hs Hotspots
	if err := db.WithContext(ctx).Where("slug = ?", DefaultChannelSlug).Take(&hs.Channel).Error; err != nil {
		return hs, errors.Wrap(err, "load default channel")
	}

	user := User{Email: HotCustomerEmail, FirstName: "Ada", LastName: HotCustomerLast}
	if err := db.WithContext(ctx).Where(User{Email: HotCustomerEmail}).FirstOrCreate(&user).Error; err != nil {
		return hs, errors.Wrap(err, "ensure hot customer")
	}

	var payment Payment
	err := db.WithContext(ctx).
		Select("payments.*").
		Joins("JOIN payment_transactions ON payment_transactions.payment_id = payments.id").
		Where("payment_transactions.searchable_key = ?", HotSearchableKey).
		Take(&payment).Error
	if err == nil {
		return Hotspots{OrderID: payment.OrderID, PaymentID: payment.ID, Channel: hs.Channel}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return hs, err
	}

	total := decimal.NewFromInt(120)
	now := time.Now().UTC()
	order := Order{
		Status:           "unfulfilled",
		UserID:           &user.ID,
		UserEmail:        user.Email,
		ChannelID:        hs.Channel.ID,
		TotalGrossAmount: total,
		Currency:         hs.Channel.CurrencyCode,
		Metadata:         datatypes.JSONMap{"source": "lab"},
		PrivateMetadata:  datatypes.JSONMap{},
		CreatedAt:        now,
		UpdatedAt:        now,
		Payments: []Payment{{
			Gateway:        "mirumee.payments.dummy",
			IsActive:       true,
			ChargeStatus:   "fully-charged",
			Total:          total,
			CapturedAmount: total,
			PSPReference:   HotSearchableKey,
			CreatedAt:      now,
			Transactions: []Transaction{{
				Kind:          "capture",
				IsSuccess:     true,
				Amount:        total,
				SearchableKey: HotSearchableKey,
				Token:         HotSearchableKey,
				CreatedAt:     now,
			}},
		}},
		Discounts: []OrderDiscount{{
			Type:           "voucher",
			Name:           HotDiscountName,
			TranslatedName: "Wiosenna wyprzedaż",
			Value:          decimal.NewFromInt(5),
			Amount:         decimal.NewFromInt(6),
		}},
	}
	if err := db.WithContext(ctx).Create(&order).Error; err != nil {
		return hs, errors.Wrap(err, "create hot order")
	}
	hs.OrderID = order.ID
	hs.PaymentID = order.Payments[0].ID
	return hs, nil
}

var (
	statuses       = []string{"draft", "unconfirmed", "unfulfilled", "partially_fulfilled", "fulfilled", "canceled"}
	chargeStatuses = []string{"not-charged", "pending", "partially-charged", "fully-charged", "fully-refunded", "refused"}
	sources        = []string{"web", "pos", "import"}
	firstNames     = []string{"Grace", "Alan", "Linus", "Margaret", "Ken", "Barbara", "Dennis", "Frances"}
	lastNames      = []string{"Hopper", "Turing", "Torvalds", "Hamilton", "Thompson", "Liskov", "Ritchie", "Allen"}
	discountNames  = []string{"Black Friday", "Welcome Voucher", "Loyalty 10", "Free Shipping"}
)

func randomChoice(items []string, rnd *rand.Rand) string {
	return items[rnd.Intn(len(items))]
}

func randomChoiceWeighted(items []string, rnd *rand.Rand) string {
	weights := map[string]int{
		"draft":               5,
		"unconfirmed":         5,
		"unfulfilled":         35,
		"partially_fulfilled": 10,
		"fulfilled":           35,
		"canceled":            10,
	}
	total := 0
	for _, item := range items {
		total += weights[item]
	}
	n := rnd.Intn(total)
	for _, item := range items {
		n -= weights[item]
		if n < 0 {
			return item
		}
	}
	return items[0]
}
