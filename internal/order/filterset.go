package order

import (
	"gorm.io/gorm"

	"storefront-filters/internal/filters"
)

// DraftOrderFilter holds the filters shared by draft and placed order lists.
// Nil or empty fields are not applied.
type DraftOrderFilter struct {
	Metadata []filters.MetadataInput
	Customer *string
	Created  *filters.DateRange
	Search   *string
	Channels []string
}

// Scopes returns one scope per set field.
func (f DraftOrderFilter) Scopes() []filters.Scope {
	var scopes []filters.Scope
	if len(f.Metadata) > 0 {
		scopes = append(scopes, bind(FilterMetadata, "metadata", f.Metadata))
	}
	if f.Customer != nil && *f.Customer != "" {
		scopes = append(scopes, bind(FilterCustomer, "customer", *f.Customer))
	}
	if f.Created != nil {
		scopes = append(scopes, bind(FilterCreatedRange, "created", *f.Created))
	}
	if f.Search != nil && *f.Search != "" {
		scopes = append(scopes, bind(FilterOrderSearch, "search", *f.Search))
	}
	if len(f.Channels) > 0 {
		scopes = append(scopes, bind(FilterChannels, "channels", f.Channels))
	}
	return scopes
}

// Apply narrows qs by every set field.
func (f DraftOrderFilter) Apply(qs *gorm.DB) *gorm.DB {
	return qs.Scopes(f.Scopes()...)
}

// OrderFilter extends DraftOrderFilter with payment and order status.
type OrderFilter struct {
	DraftOrderFilter
	PaymentStatus []ChargeStatus
	Status        []StatusFilter
}

// Scopes returns payment status and status scopes ahead of the draft filters.
func (f OrderFilter) Scopes() []filters.Scope {
	var scopes []filters.Scope
	if len(f.PaymentStatus) > 0 {
		scopes = append(scopes, bind(FilterPaymentStatus, "payment_status", f.PaymentStatus))
	}
	if len(f.Status) > 0 {
		scopes = append(scopes, bind(FilterStatus, "status", f.Status))
	}
	return append(scopes, f.DraftOrderFilter.Scopes()...)
}

// Apply narrows qs by every set field.
func (f OrderFilter) Apply(qs *gorm.DB) *gorm.DB {
	return qs.Scopes(f.Scopes()...)
}

func bind[T any](fn func(*gorm.DB, string, T) *gorm.DB, name string, value T) filters.Scope {
	return func(qs *gorm.DB) *gorm.DB {
		return fn(qs, name, value)
	}
}
