package service

import (
	"context"
	"testing"
	"time"

	domainerrors "github.com/egghunt/egghunt-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_CreateEventSlugs(t *testing.T) {
	ts := setupTestServices(t, 0)
	ctx := context.Background()

	first, err := ts.events.CreateEvent(ctx, CreateEventRequest{Name: "Spring Hunt"})
	require.NoError(t, err)
	assert.Equal(t, "spring-hunt", first.Slug)
	assert.True(t, first.Active)

	second, err := ts.events.CreateEvent(ctx, CreateEventRequest{Name: "Spring  Hunt!"})
	require.NoError(t, err)
	assert.Equal(t, "spring-hunt-2", second.Slug)

	_, err = ts.events.CreateEvent(ctx, CreateEventRequest{Name: "Another", Slug: "spring-hunt"})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	_, err = ts.events.CreateEvent(ctx, CreateEventRequest{Name: "Bad", Slug: "Not A Slug"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestEventService_CreateEventDates(t *testing.T) {
	ts := setupTestServices(t, 0)
	ctx := context.Background()
	start := time.Date(2026, 4, 5, 9, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	_, err := ts.events.CreateEvent(ctx, CreateEventRequest{Name: "Backwards", StartsAt: &start, EndsAt: &end})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	end = start.Add(6 * time.Hour)
	e, err := ts.events.CreateEvent(ctx, CreateEventRequest{Name: "Easter", StartsAt: &start, EndsAt: &end})
	require.NoError(t, err)
	require.NotNil(t, e.StartsAt)
	assert.True(t, start.Equal(*e.StartsAt))
}

func TestEventService_ListActiveEvents(t *testing.T) {
	ts := setupTestServices(t, 0)
	open := ts.makeEvent(t, "Open Hunt", true)
	ts.makeEvent(t, "Closed Hunt", false)

	events, err := ts.events.ListActiveEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, open.ID, events[0].ID)
}

func TestEventService_CreateCache(t *testing.T) {
	ts := setupTestServices(t, 0)
	ctx := context.Background()
	event := ts.makeEvent(t, "Spring Hunt", true)

	c, err := ts.events.CreateCache(ctx, CreateCacheRequest{
		EventID:   event.ID,
		Name:      "  Golden Egg ",
		Hint:      "Under the bench",
		Latitude:  hunt.Lat,
		Longitude: hunt.Lon,
	})
	require.NoError(t, err)
	assert.Equal(t, "Golden Egg", c.Name)
	assert.True(t, c.Active)

	stored, err := ts.store.GetCache(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Under the bench", stored.Hint)

	_, err = ts.events.CreateCache(ctx, CreateCacheRequest{EventID: "event-missing", Name: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = ts.events.CreateCache(ctx, CreateCacheRequest{EventID: event.ID, Name: "x", Latitude: 95})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = ts.events.CreateCache(ctx, CreateCacheRequest{EventID: event.ID, Name: "x", Longitude: -181})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
