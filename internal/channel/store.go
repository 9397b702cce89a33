package channel

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"storefront-filters/internal/data"
)

// Store reads channels.
type Store interface {
	BySlug(ctx context.Context, slug string) (*data.Channel, error)
	List(ctx context.Context) ([]data.Channel, error)
}

// GormStore is the Store backed by the channels table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// BySlug returns ErrChannelNotFound when no channel has slug.
func (s *GormStore) BySlug(ctx context.Context, slug string) (*data.Channel, error) {
	var ch data.Channel
	err := s.db.WithContext(ctx).Where("slug = ?", slug).Take(&ch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, errors.Wrapf(err, "load channel %q", slug)
	}
	return &ch, nil
}

// List returns all channels ordered by slug.
func (s *GormStore) List(ctx context.Context) ([]data.Channel, error) {
	var channels []data.Channel
	if err := s.db.WithContext(ctx).Order("slug").Find(&channels).Error; err != nil {
		return nil, errors.Wrap(err, "list channels")
	}
	return channels, nil
}
