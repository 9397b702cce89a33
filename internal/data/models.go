package data

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Channel is a sales context (storefront, region) that orders belong to.
type Channel struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:250"`
	Slug         string `gorm:"size:255;uniqueIndex"`
	IsActive     bool   `gorm:"index"`
	CurrencyCode string `gorm:"size:3"`
}

func (Channel) TableName() string { return "channels" }

// User is a registered customer.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"size:254;uniqueIndex"`
	FirstName string `gorm:"size:256"`
	LastName  string `gorm:"size:256"`
}

func (User) TableName() string { return "users" }

// Order is a placed or draft order. Its primary key doubles as the order number.
type Order struct {
	ID               uint            `gorm:"primaryKey"`
	Status           string          `gorm:"size:32;index"`
	UserID           *uint           `gorm:"index"`
	User             *User           `gorm:"foreignKey:UserID"`
	UserEmail        string          `gorm:"size:254;index"`
	ChannelID        uint            `gorm:"index"`
	Channel          Channel         `gorm:"foreignKey:ChannelID"`
	TotalGrossAmount decimal.Decimal `gorm:"type:decimal(12,3)"`
	Currency         string          `gorm:"size:3"`
	Metadata         datatypes.JSONMap
	PrivateMetadata  datatypes.JSONMap
	CreatedAt        time.Time `gorm:"index"`
	UpdatedAt        time.Time

	Payments  []Payment       `gorm:"foreignKey:OrderID"`
	Discounts []OrderDiscount `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

// Payment is a payment attempt attached to an order.
type Payment struct {
	ID             uint            `gorm:"primaryKey"`
	OrderID        uint            `gorm:"index"`
	Gateway        string          `gorm:"size:255"`
	IsActive       bool            `gorm:"index"`
	ChargeStatus   string          `gorm:"size:20;index"`
	Total          decimal.Decimal `gorm:"type:decimal(12,3)"`
	CapturedAmount decimal.Decimal `gorm:"type:decimal(12,3)"`
	PSPReference   string          `gorm:"size:512;index"`
	CreatedAt      time.Time

	Transactions []Transaction `gorm:"foreignKey:PaymentID"`
}

func (Payment) TableName() string { return "payments" }

// Transaction is a gateway operation executed for a payment.
type Transaction struct {
	ID            uint            `gorm:"primaryKey"`
	PaymentID     uint            `gorm:"index"`
	Kind          string          `gorm:"size:25"`
	IsSuccess     bool
	Amount        decimal.Decimal `gorm:"type:decimal(12,3)"`
	SearchableKey string          `gorm:"size:512;index"`
	Token         string          `gorm:"size:512"`
	CreatedAt     time.Time
}

func (Transaction) TableName() string { return "payment_transactions" }

// OrderDiscount is a voucher or manual discount applied to an order.
type OrderDiscount struct {
	ID             uint            `gorm:"primaryKey"`
	OrderID        uint            `gorm:"index"`
	Type           string          `gorm:"size:10"`
	Name           string          `gorm:"size:255"`
	TranslatedName string          `gorm:"size:255"`
	Value          decimal.Decimal `gorm:"type:decimal(12,3)"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,3)"`
}

func (OrderDiscount) TableName() string { return "order_discounts" }
