package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/avdeev/events-manager/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicHandler_ListEvents(t *testing.T) {
	ts := testutil.NewTestServer(t)

	owner, _ := testutil.NewUserBuilder().WithName("Alice").Build(t, ts.DB.DB)
	active := testutil.NewEventBuilder().WithTitle("Active").Build(t, ts.DB.DB, owner.ID)
	deleted := testutil.NewEventBuilder().WithTitle("Deleted").WithDeleted().Build(t, ts.DB.DB, owner.ID)

	t.Run("default hides soft-deleted events", func(t *testing.T) {
		resp := ts.Get(t, "/public/events", "")
		defer resp.Body.Close()

		var events []eventResponse
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		testutil.AssertJSONResponse(t, resp, &events)

		require.Len(t, events, 1)
		assert.Equal(t, active.ID.String(), events[0].ID)
		require.NotNil(t, events[0].Creator)
		assert.Equal(t, "Alice", events[0].Creator.Name)
	})

	t.Run("includeDeleted widens the filter", func(t *testing.T) {
		resp := ts.Get(t, "/public/events?includeDeleted=true", "")
		defer resp.Body.Close()

		var events []eventResponse
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		testutil.AssertJSONResponse(t, resp, &events)

		ids := make([]string, 0, len(events))
		for _, e := range events {
			ids = append(ids, e.ID)
		}
		assert.Contains(t, ids, active.ID.String())
		assert.Contains(t, ids, deleted.ID.String())
	})
}

// End-to-end flow: register, login, create, list publicly.
func TestRegisterLoginCreateListFlow(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := ts.PostJSON(t, "/auth/register", "", map[string]string{
		"name":     "Alice",
		"email":    "alice@x.com",
		"password": "secret1",
	})
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = ts.PostJSON(t, "/auth/login", "", map[string]string{
		"email":    "alice@x.com",
		"password": "secret1",
	})
	var auth testutil.AuthResponse
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &auth)
	resp.Body.Close()
	require.NotEmpty(t, auth.Token)

	resp = ts.PostJSON(t, "/events", auth.Token, map[string]interface{}{
		"title": "Meetup",
		"date":  time.Now().Add(30 * 24 * time.Hour).UTC().Format(time.RFC3339),
	})
	var created eventResponse
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	testutil.AssertJSONResponse(t, resp, &created)
	resp.Body.Close()
	assert.Equal(t, auth.User.ID, created.CreatedBy)

	resp = ts.Get(t, "/public/events", "")
	var events []eventResponse
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &events)
	resp.Body.Close()

	require.Len(t, events, 1)
	assert.Equal(t, "Meetup", events[0].Title)
	require.NotNil(t, events[0].Creator)
	assert.Equal(t, "Alice", events[0].Creator.Name)
}
