package filters

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Scope is a composable narrowing step over a GORM query.
type Scope = func(*gorm.DB) *gorm.DB

// DateRange mirrors the DateRangeInput GraphQL type. Both bounds are inclusive days.
type DateRange struct {
	Gte *time.Time
	Lte *time.Time
}

// Range is an inclusive range over any comparable column value.
type Range struct {
	Gte interface{}
	Lte interface{}
}

// FilterRangeField narrows qs to rows where column lies within r.
func FilterRangeField(qs *gorm.DB, column string, r Range) *gorm.DB {
	if r.Gte != nil {
		qs = qs.Where(column+" >= ?", r.Gte)
	}
	if r.Lte != nil {
		qs = qs.Where(column+" <= ?", r.Lte)
	}
	return qs
}

// FilterDateRangeField narrows a timestamp column to whole calendar days.
// Bounds are expressed as a half-open timestamp range so that an index on
// column stays usable; wrapping the column in DATE() would defeat it.
func FilterDateRangeField(qs *gorm.DB, column string, r DateRange) *gorm.DB {
	if r.Gte != nil {
		qs = qs.Where(column+" >= ?", startOfDay(*r.Gte))
	}
	if r.Lte != nil {
		qs = qs.Where(column+" < ?", startOfDay(*r.Lte).AddDate(0, 0, 1))
	}
	return qs
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MetadataInput is a single key, optionally with a required value.
type MetadataInput struct {
	Key   string
	Value *string
}

// FilterMetadata keeps rows whose JSON column has every key in items, with the
// given value where one is set.
func FilterMetadata(qs *gorm.DB, column string, items []MetadataInput) *gorm.DB {
	for _, item := range items {
		if item.Value == nil {
			qs = qs.Where(datatypes.JSONQuery(column).HasKey(item.Key))
			continue
		}
		qs = qs.Where(datatypes.JSONQuery(column).Equals(*item.Value, item.Key))
	}
	return qs
}
