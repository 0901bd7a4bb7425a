package postgres_test

import (
	"context"
	"testing"

	"github.com/avdeev/events-manager/internal/domain"
	"github.com/avdeev/events-manager/internal/repository/postgres"
	"github.com/avdeev/events-manager/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestParticipantRepository_CompositeKey(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewParticipantRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	participant, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	event := testutil.NewEventBuilder().Build(t, testDB.DB, owner.ID)

	row := &domain.EventParticipant{UserID: participant.ID, EventID: event.ID}
	require.NoError(t, repo.Create(ctx, row))

	// A second insert for the same (user, event) pair hits the composite
	// key and is reported as a duplicate, the signal the toggle relies on.
	err := repo.Create(ctx, &domain.EventParticipant{UserID: participant.ID, EventID: event.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	got, err := repo.Get(ctx, participant.ID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.EventID)

	require.NoError(t, repo.Delete(ctx, participant.ID, event.ID))
	_, err = repo.Get(ctx, participant.ID, event.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestParticipantRepository_ListUsersByEvents(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewParticipantRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	alice, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	first := testutil.NewEventBuilder().Build(t, testDB.DB, owner.ID)
	second := testutil.NewEventBuilder().Build(t, testDB.DB, owner.ID)
	empty := testutil.NewEventBuilder().Build(t, testDB.DB, owner.ID)

	require.NoError(t, repo.Create(ctx, &domain.EventParticipant{UserID: alice.ID, EventID: first.ID}))
	require.NoError(t, repo.Create(ctx, &domain.EventParticipant{UserID: bob.ID, EventID: first.ID}))
	require.NoError(t, repo.Create(ctx, &domain.EventParticipant{UserID: bob.ID, EventID: second.ID}))

	byEvent, err := repo.ListUsersByEvents(ctx, []uuid.UUID{first.ID, second.ID, empty.ID})
	require.NoError(t, err)

	assert.Len(t, byEvent[first.ID], 2)
	require.Len(t, byEvent[second.ID], 1)
	assert.Equal(t, bob.ID, byEvent[second.ID][0].ID)
	assert.Empty(t, byEvent[empty.ID])

	none, err := repo.ListUsersByEvents(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
