package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/hatch_server/internal/model"
	"github.com/qs3c/hatch_server/internal/testutil"
)

func TestEventRepository_ListPublished(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewEventRepository(db)
	now := time.Now()
	later := testutil.TestEvent(t, db, testutil.WithEventDate(now.Add(48*time.Hour)))
	sooner := testutil.TestEvent(t, db, testutil.WithEventDate(now.Add(24*time.Hour)))
	testutil.TestEvent(t, db, testutil.WithEventStatus(model.EventDraft))

	events, err := repo.ListPublished()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, sooner.ID, events[0].ID)
	assert.Equal(t, later.ID, events[1].ID)
}

func TestEventRepository_ListAll_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewEventRepository(db)
	now := time.Now()
	old := testutil.TestEvent(t, db, testutil.WithCreatedAt(now.Add(-2*time.Hour)), testutil.WithTitle("Go meetup"))
	recent := testutil.TestEvent(t, db, testutil.WithCreatedAt(now.Add(-time.Hour)), testutil.WithEventStatus(model.EventDraft))

	events, total, err := repo.ListAll(1, 10, "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, recent.ID, events[0].ID)
	assert.Equal(t, old.ID, events[1].ID)

	events, total, err = repo.ListAll(1, 10, "draft", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, recent.ID, events[0].ID)

	events, _, err = repo.ListAll(1, 10, "", "meetup")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, old.ID, events[0].ID)
}

func TestEventRepository_ClaimForAttendance_Once(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewEventRepository(db)
	now := time.Now()
	past := testutil.TestEvent(t, db, testutil.WithEventDate(now.Add(-time.Hour)))
	testutil.TestEvent(t, db, testutil.WithEventDate(now.Add(time.Hour)))
	testutil.TestEvent(t, db, testutil.WithEventDate(now.Add(-time.Hour)), testutil.WithEventStatus(model.EventDraft))

	due, err := repo.ListDueForAttendance(now, 0, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, past.ID, due[0].ID)

	won, err := repo.ClaimForAttendance(past.ID, now)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.ClaimForAttendance(past.ID, now)
	require.NoError(t, err)
	assert.False(t, won)

	due, err = repo.ListDueForAttendance(now, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestEventRepository_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewEventRepository(db)
	event := testutil.TestEvent(t, db, testutil.WithEventStatus(model.EventDraft))

	require.NoError(t, repo.UpdateFields(event.ID, map[string]interface{}{"status": model.EventPublished}))
	found, err := repo.GetByID(event.ID)
	require.NoError(t, err)
	assert.True(t, found.IsPublished())

	count, err := repo.CountByStatus(model.EventPublished)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.Delete(event.ID))
	_, err = repo.GetByID(event.ID)
	assert.Error(t, err)
}
