package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCrew(t *testing.T) {
	app := newTestApp(t)

	alice := app.browser()
	alice.signup("alice")
	bob := app.browser()
	bob.signup("bob")

	w := alice.get("/search_crew")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No message yet")

	w = alice.postForm("/search_crew", url.Values{"message": {"looking for a crew"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/search_crew", w.Header().Get("Location"))

	w = bob.postForm("/search_crew", url.Values{"message": {"we need a drummer"}})
	require.Equal(t, http.StatusFound, w.Code)

	page := bob.get("/search_crew").Body.String()
	first := strings.Index(page, "looking for a crew")
	second := strings.Index(page, "we need a drummer")
	require.True(t, first >= 0 && second >= 0, page)
	assert.Less(t, first, second, "insertion order")
	assert.Contains(t, page, "alice")

	assert.Equal(t, page, bob.get("/search_crew").Body.String(), "listing is idempotent")

	msgs, err := app.store.ListMessages(context.Background())
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestSearchCrewEmptyMessage(t *testing.T) {
	app := newTestApp(t)
	alice := app.browser()
	alice.signup("alice")

	w := alice.postForm("/search_crew", url.Values{"message": {"   "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Message is empty.")
	assert.NotContains(t, w.Body.String(), "validation failed")

	msgs, err := app.store.ListMessages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
