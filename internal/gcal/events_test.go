package gcal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/omriShneor/alfred_booking/internal/auth"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	service, err := calendar.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)

	return NewClientWithService(service, Options{CalendarID: "clinic@example.com"})
}

func TestParseGoogleEventTimes(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")

	t.Run("timed event keeps offset", func(t *testing.T) {
		item := &calendar.Event{
			Start: &calendar.EventDateTime{DateTime: "2025-08-15T15:00:00+05:30"},
			End:   &calendar.EventDateTime{DateTime: "2025-08-15T15:30:00+05:30"},
		}
		start, end, allDay, err := parseGoogleEventTimes(item, loc)
		require.NoError(t, err)
		assert.False(t, allDay)
		assert.Equal(t, 9, start.UTC().Hour())
		assert.Equal(t, 30*time.Minute, end.Sub(start))
	})

	t.Run("naive datetime uses event time zone", func(t *testing.T) {
		item := &calendar.Event{
			Start: &calendar.EventDateTime{DateTime: "2025-08-15T15:00:00", TimeZone: "UTC"},
			End:   &calendar.EventDateTime{DateTime: "2025-08-15T15:30:00", TimeZone: "UTC"},
		}
		start, _, _, err := parseGoogleEventTimes(item, loc)
		require.NoError(t, err)
		assert.Equal(t, 15, start.UTC().Hour())
	})

	t.Run("all day", func(t *testing.T) {
		item := &calendar.Event{
			Start: &calendar.EventDateTime{Date: "2025-08-15"},
			End:   &calendar.EventDateTime{Date: "2025-08-16"},
		}
		_, _, allDay, err := parseGoogleEventTimes(item, loc)
		require.NoError(t, err)
		assert.True(t, allDay)
	})

	t.Run("missing start", func(t *testing.T) {
		_, _, _, err := parseGoogleEventTimes(&calendar.Event{}, loc)
		assert.Error(t, err)
	})
}

func TestListEvents_FollowsPagesAndSkipsCancelled(t *testing.T) {
	var queries []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/clinic@example.com/events", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
		assert.Equal(t, "startTime", r.URL.Query().Get("orderBy"))
		queries = append(queries, r.URL.Query().Get("q"))

		resp := calendar.Events{}
		if r.URL.Query().Get("pageToken") == "" {
			resp.Items = []*calendar.Event{
				{
					Id:          "evt-1",
					Summary:     "Checkup - Jane",
					Description: "Client: Jane\nEmail: jane@example.com",
					Start:       &calendar.EventDateTime{DateTime: "2025-08-15T09:00:00+05:30", TimeZone: "Asia/Kolkata"},
					End:         &calendar.EventDateTime{DateTime: "2025-08-15T09:30:00+05:30", TimeZone: "Asia/Kolkata"},
					ExtendedProperties: &calendar.EventExtendedProperties{
						Private: map[string]string{"client_email": "jane@example.com"},
					},
				},
				{Id: "evt-gone", Status: "cancelled"},
			}
			resp.NextPageToken = "page-2"
		} else {
			resp.Items = []*calendar.Event{
				{
					Id:    "evt-2",
					Start: &calendar.EventDateTime{DateTime: "2025-08-15T10:00:00+05:30"},
					End:   &calendar.EventDateTime{DateTime: "2025-08-15T10:30:00+05:30"},
				},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	start := time.Date(2025, 8, 15, 0, 0, 0, 0, client.loc)
	events, err := client.ListEvents(context.Background(), ListOptions{
		TimeMin: start,
		TimeMax: start.Add(24 * time.Hour),
		Query:   "jane@example.com",
	})
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "evt-1", events[0].ID)
	assert.Equal(t, "jane@example.com", events[0].Private["client_email"])
	assert.Equal(t, "Asia/Kolkata", events[0].TimeZone)
	assert.Equal(t, "evt-2", events[1].ID)
	assert.Equal(t, []string{"jane@example.com", "jane@example.com"}, queries)
}

func TestListEvents_InvalidRange(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("unexpected request")
	})

	now := time.Now()
	_, err := client.ListEvents(context.Background(), ListOptions{TimeMin: now, TimeMax: now.Add(-time.Hour)})
	assert.Error(t, err)
}

func TestInsertEvent_WritesOffsetAndTimeZone(t *testing.T) {
	var body calendar.Event
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &body))

		body.Id = "new-id"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})

	start := time.Date(2025, 8, 15, 9, 30, 0, 0, time.UTC)
	created, err := client.InsertEvent(context.Background(), Event{
		Summary: "Checkup - Jane",
		Start:   start,
		End:     start.Add(30 * time.Minute),
		Private: map[string]string{"appointment_id": "a1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "new-id", created.ID)
	assert.Equal(t, "2025-08-15T15:00:00+05:30", body.Start.DateTime)
	assert.Equal(t, "Asia/Kolkata", body.Start.TimeZone)
	assert.Equal(t, "a1", body.ExtendedProperties.Private["appointment_id"])
	assert.True(t, start.Equal(created.Start))
}

func TestUpdateEvent_UsesPatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/calendars/clinic@example.com/events/evt-1", r.URL.Path)

		var body calendar.Event
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &body))
		assert.Nil(t, body.Start)
		assert.Equal(t, "updated", body.Description)

		body.Id = "evt-1"
		body.Start = &calendar.EventDateTime{DateTime: "2025-08-15T09:00:00+05:30"}
		body.End = &calendar.EventDateTime{DateTime: "2025-08-15T09:30:00+05:30"}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})

	updated, err := client.UpdateEvent(context.Background(), Event{ID: "evt-1", Description: "updated"})
	require.NoError(t, err)
	assert.Equal(t, "evt-1", updated.ID)
}

func TestDeleteEvent_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusGone)
		_, _ = w.Write([]byte(`{"error":{"code":410,"message":"Resource has been deleted"}}`))
	})

	err := client.DeleteEvent(context.Background(), "evt-1")
	assert.True(t, IsEventNotFound(err))
}

func TestUnauthenticatedClient(t *testing.T) {
	client := newClient(Options{})

	assert.False(t, client.IsAuthenticated())
	_, err := client.ListEvents(context.Background(), ListOptions{})
	assert.Error(t, err)
	assert.Equal(t, "primary", client.CalendarID())
}

func TestParseCredentials(t *testing.T) {
	_, err := parseCredentials([]byte("not json"), OAuthScopes)
	assert.Error(t, err)

	creds, err := parseCredentials([]byte(`{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`), scopesWith([]string{"https://www.googleapis.com/auth/gmail.send"}))
	require.NoError(t, err)
	assert.Equal(t, AuthModeOAuth, creds.mode)
	assert.Equal(t, "id", creds.oauth.ClientID)
	assert.Len(t, creds.oauth.Scopes, 2)
}

func TestOAuthCallbackURL(t *testing.T) {
	assert.Equal(t, "https://book.example.com/oauth/callback", oauthCallbackURL("https://book.example.com/"))
	assert.Equal(t, "http://localhost:8080/oauth/callback", oauthCallbackURL(""))
}

func TestScopesWith(t *testing.T) {
	assert.Equal(t, OAuthScopes, scopesWith(nil))
	assert.Len(t, scopesWith([]string{OAuthScopes[0], "", "extra"}), 2)
}

func TestTokenRoundTrip(t *testing.T) {
	store := tokenStore{path: t.TempDir() + "/token.json"}
	_, err := store.load()
	assert.Error(t, err)

	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}
	require.NoError(t, store.save(token))

	loaded, err := store.load()
	require.NoError(t, err)
	assert.Equal(t, "refresh", loaded.RefreshToken)
}

func TestEncryptedTokenStore(t *testing.T) {
	enc, err := auth.NewEncryptor("test-secret")
	require.NoError(t, err)
	path := t.TempDir() + "/token.json"

	plain := tokenStore{path: path}
	require.NoError(t, plain.save(&oauth2.Token{AccessToken: "old", RefreshToken: "r1"}))

	// A plaintext token written before encryption was enabled still loads.
	store := tokenStore{path: path, enc: enc}
	loaded, err := store.load()
	require.NoError(t, err)
	assert.Equal(t, "r1", loaded.RefreshToken)

	require.NoError(t, store.save(&oauth2.Token{AccessToken: "new", RefreshToken: "refresh-token-two"}))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, auth.IsEncrypted(string(raw)))
	assert.NotContains(t, string(raw), "refresh-token-two")

	loaded, err = store.load()
	require.NoError(t, err)
	assert.Equal(t, "refresh-token-two", loaded.RefreshToken)

	_, err = plain.load()
	assert.Error(t, err)
}
