// Package channel resolves the channel a storefront request runs in.
package channel

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"storefront-filters/internal/data"
	"storefront-filters/internal/graphql"
)

// Resolver looks up the default channel and validates requested slugs.
type Resolver struct {
	store       Store
	defaultSlug string
	log         zerolog.Logger
}

// NewResolver builds a Resolver. An empty defaultSlug means the default is
// inferred from the channels that exist.
func NewResolver(store Store, defaultSlug string, log zerolog.Logger) *Resolver {
	return &Resolver{store: store, defaultSlug: defaultSlug, log: log}
}

// DefaultChannel returns the configured default channel. Without a configured
// slug the only channel wins, or the only active one among several.
func (r *Resolver) DefaultChannel(ctx context.Context) (*data.Channel, error) {
	if r.defaultSlug != "" {
		ch, err := r.store.BySlug(ctx, r.defaultSlug)
		if errors.Is(err, ErrChannelNotFound) {
			return nil, ErrChannelNotDefined
		}
		return ch, err
	}

	channels, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	switch len(channels) {
	case 0:
		return nil, ErrNoDefaultChannel
	case 1:
		return &channels[0], nil
	}

	var active []data.Channel
	for _, ch := range channels {
		if ch.IsActive {
			active = append(active, ch)
		}
	}
	if len(active) != 1 {
		return nil, ErrChannelNotDefined
	}
	r.log.Warn().
		Str("channel", active[0].Slug).
		Int("channels", len(channels)).
		Msg("several channels exist, falling back to the only active one")
	return &active[0], nil
}

// DefaultChannelOrGraphQLError is DefaultChannel for query resolvers: a
// missing or ambiguous default becomes a *graphql.Error.
func (r *Resolver) DefaultChannelOrGraphQLError(ctx context.Context) (*data.Channel, error) {
	ch, err := r.DefaultChannel(ctx)
	if errors.Is(err, ErrChannelNotDefined) || errors.Is(err, ErrNoDefaultChannel) {
		return nil, &graphql.Error{Message: err.Error()}
	}
	return ch, err
}

// LazyDefaultChannelSlug defers the default channel lookup until the slug is
// first needed. A found slug is kept; a failed lookup is retried on the next call.
func (r *Resolver) LazyDefaultChannelSlug(ctx context.Context) func() (string, error) {
	var (
		mu   sync.Mutex
		slug string
	)
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if slug != "" {
			return slug, nil
		}
		ch, err := r.DefaultChannelOrGraphQLError(ctx)
		if err != nil {
			return "", err
		}
		slug = ch.Slug
		return slug, nil
	}
}

// ValidateChannel returns the active channel with slug, or a ValidationError
// carrying doesNotExist or inactive.
func (r *Resolver) ValidateChannel(ctx context.Context, slug string, doesNotExist, inactive ErrorCode) (*data.Channel, error) {
	ch, err := r.store.BySlug(ctx, slug)
	if errors.Is(err, ErrChannelNotFound) {
		return nil, newValidationError(doesNotExist, "Channel with '%s' slug does not exist.", slug)
	}
	if err != nil {
		return nil, err
	}
	if !ch.IsActive {
		return nil, newValidationError(inactive, "Channel with '%s' is inactive.", slug)
	}
	return ch, nil
}

// CleanChannel validates slug, or falls back to the default channel when slug
// is nil. A missing default fails with notDefined.
func (r *Resolver) CleanChannel(ctx context.Context, slug *string, doesNotExist, inactive, notDefined ErrorCode) (*data.Channel, error) {
	if slug != nil {
		return r.ValidateChannel(ctx, *slug, doesNotExist, inactive)
	}
	ch, err := r.DefaultChannel(ctx)
	if errors.Is(err, ErrChannelNotDefined) || errors.Is(err, ErrNoDefaultChannel) {
		return nil, newValidationError(notDefined, "You need to provide channel slug.")
	}
	return ch, err
}
