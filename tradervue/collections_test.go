package tradervue

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalFilterValues(t *testing.T) {
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	v, err := JournalFilter{Date: day}.values()
	require.NoError(t, err)
	assert.Equal(t, "08/03/2026", v.Get("d"))

	v, err = JournalFilter{StartDate: day, EndDate: day.AddDate(0, 0, 4)}.values()
	require.NoError(t, err)
	assert.Equal(t, "08/03/2026", v.Get("startdate"))
	assert.Equal(t, "08/07/2026", v.Get("enddate"))

	_, err = JournalFilter{Date: day, StartDate: day}.values()
	assert.Error(t, err, "date and range together must be rejected")
}

func TestGetJournalsDateQuery(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/journal", r.URL.Path)
		assert.Equal(t, "08/03/2026", r.URL.Query().Get("d"))
		w.Write([]byte(`{"journal_entries": [{"id": 41, "notes": "quiet day"}]}`))
	})

	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	entries, err := client.GetJournals(context.Background(), JournalFilter{Date: day}, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestGetJournalByDate(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/journal":
			w.Write([]byte(`{"journal_entries": [{"id": 41}]}`))
		case "/api/v1/journal/41":
			w.Write([]byte(`{"id": 41, "notes": "quiet day", "date": "2026-08-03"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	entry, err := client.GetJournalByDate(context.Background(), day)
	require.NoError(t, err)

	var got struct {
		Notes string `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(entry, &got))
	assert.Equal(t, "quiet day", got.Notes)
}

func TestGetJournalByDateMissing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"journal_entries": []}`))
	})

	_, err := client.GetJournalByDate(context.Background(), time.Now())
	assert.ErrorContains(t, err, "no journal entry")
}

func TestCreateJournal(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/journal", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "2026-08-03", payload["date"])
		assert.Equal(t, "rough open", payload["notes"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 42}`))
	})

	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	id, err := client.CreateJournal(context.Background(), day, "rough open")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestUpdateAndDeleteJournal(t *testing.T) {
	var methods []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/journal/41", r.URL.Path)
		methods = append(methods, r.Method)
		w.Write([]byte(`{}`))
	})

	require.NoError(t, client.UpdateJournal(context.Background(), 41, "revised"))
	require.NoError(t, client.DeleteJournal(context.Background(), 41))
	assert.Equal(t, []string{http.MethodPut, http.MethodDelete}, methods)
}

func TestNoteCRUD(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/notes":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": 9}`))
		case r.URL.Path == "/api/v1/notes/9":
			w.Write([]byte(`{"id": 9, "notes": "watchlist"}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	})

	id, err := client.CreateNote(context.Background(), "watchlist")
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	note, err := client.GetNote(context.Background(), 9)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 9, "notes": "watchlist"}`, string(note))

	require.NoError(t, client.UpdateNote(context.Background(), 9, "watchlist v2"))
	require.NoError(t, client.DeleteNote(context.Background(), 9))
}
