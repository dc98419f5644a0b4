// ABOUTME: Tests for paginated contact retrieval
// ABOUTME: Covers stop conditions, the record cap, and error propagation
package ghl

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/harperreed/hireos/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageCall struct {
	limit  int
	offset int
}

// fakeLister serves total contacts and records every page request.
type fakeLister struct {
	total  int
	failAt int
	calls  []pageCall
}

func (f *fakeLister) ListContacts(_ context.Context, limit, offset int) ([]models.RemoteContact, error) {
	f.calls = append(f.calls, pageCall{limit: limit, offset: offset})
	if f.failAt > 0 && offset >= f.failAt {
		return nil, &APIError{Method: "GET", URL: "/contacts/", StatusCode: 500}
	}

	var page []models.RemoteContact
	for i := offset; i < offset+limit && i < f.total; i++ {
		page = append(page, models.RemoteContact{ID: fmt.Sprintf("c%d", i)})
	}
	return page, nil
}

func TestFetchAllStopsOnShortPage(t *testing.T) {
	lister := &fakeLister{total: 25}
	fetcher := NewContactFetcher(lister, 0, zerolog.Nop())

	contacts, err := fetcher.FetchAll(context.Background(), 10, 300)
	require.NoError(t, err)

	assert.Len(t, contacts, 25)
	assert.Equal(t, []pageCall{{10, 0}, {10, 10}, {10, 20}}, lister.calls)
	assert.Equal(t, "c0", contacts[0].ID)
	assert.Equal(t, "c24", contacts[24].ID)
}

func TestFetchAllExactMultipleRequestsEmptyPage(t *testing.T) {
	lister := &fakeLister{total: 20}
	fetcher := NewContactFetcher(lister, 0, zerolog.Nop())

	contacts, err := fetcher.FetchAll(context.Background(), 10, 300)
	require.NoError(t, err)

	assert.Len(t, contacts, 20)
	assert.Len(t, lister.calls, 3)
}

func TestFetchAllTruncatesAtMaxRecords(t *testing.T) {
	lister := &fakeLister{total: 1000}
	fetcher := NewContactFetcher(lister, 0, zerolog.Nop())

	contacts, err := fetcher.FetchAll(context.Background(), 100, 250)
	require.NoError(t, err)

	assert.Len(t, contacts, 250)
	assert.Len(t, lister.calls, 3)
	assert.Equal(t, "c249", contacts[249].ID)
}

func TestFetchAllPropagatesPageErrors(t *testing.T) {
	lister := &fakeLister{total: 1000, failAt: 20}
	fetcher := NewContactFetcher(lister, 0, zerolog.Nop())

	contacts, err := fetcher.FetchAll(context.Background(), 10, 300)
	require.Error(t, err)
	assert.Nil(t, contacts)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.StatusCode)
}

func TestFetchAllRejectsBadBounds(t *testing.T) {
	fetcher := NewContactFetcher(&fakeLister{}, 0, zerolog.Nop())

	_, err := fetcher.FetchAll(context.Background(), 0, 10)
	assert.Error(t, err)

	_, err = fetcher.FetchAll(context.Background(), 10, 0)
	assert.Error(t, err)
}

func TestFetchAllHonoursCancellation(t *testing.T) {
	lister := &fakeLister{total: 1000}
	fetcher := NewContactFetcher(lister, DefaultPageDelay, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.FetchAll(ctx, 10, 300)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, lister.calls)
}
