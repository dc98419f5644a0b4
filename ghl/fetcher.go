// ABOUTME: Paginated retrieval of every GHL contact with a fixed delay between pages
// ABOUTME: Any page failure aborts the whole fetch
package ghl

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/hireos/models"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultPageSize   = 100
	DefaultMaxRecords = 300
	DefaultPageDelay  = 150 * time.Millisecond
)

// ContactLister returns one page of remote contacts.
type ContactLister interface {
	ListContacts(ctx context.Context, limit, offset int) ([]models.RemoteContact, error)
}

type ContactFetcher struct {
	lister  ContactLister
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewContactFetcher creates a fetcher that waits pageDelay between page
// requests. A non-positive delay disables the wait.
func NewContactFetcher(lister ContactLister, pageDelay time.Duration, log zerolog.Logger) *ContactFetcher {
	limit := rate.Inf
	if pageDelay > 0 {
		limit = rate.Every(pageDelay)
	}

	return &ContactFetcher{
		lister:  lister,
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}
}

// FetchAll pages through the contact list until a short page or maxRecords.
func (f *ContactFetcher) FetchAll(ctx context.Context, pageSize, maxRecords int) ([]models.RemoteContact, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	if maxRecords <= 0 {
		return nil, fmt.Errorf("max records must be positive, got %d", maxRecords)
	}

	var all []models.RemoteContact
	for offset := 0; ; offset += pageSize {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, err := f.lister.ListContacts(ctx, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch contacts at offset %d: %w", offset, err)
		}

		f.log.Debug().Int("offset", offset).Int("count", len(page)).Msg("fetched GHL contact page")
		all = append(all, page...)

		if len(all) >= maxRecords {
			all = all[:maxRecords]
			break
		}
		if len(page) < pageSize {
			break
		}
	}

	return all, nil
}
