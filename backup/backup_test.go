package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tvue/errtally"
	"github.com/rustyeddy/tvue/tradervue"
)

// fakeAccount is an in-memory stand-in for the service, with switches to
// break individual endpoints.
type fakeAccount struct {
	journals []string
	notes    []string
	trades   map[int64]tradervue.Trade
	order    []int64

	failJournals bool
	failNotes    bool
	failDetail   map[int64]bool
	failExecs    map[int64]bool
	failComments map[int64]bool
}

func (f *fakeAccount) handler(t *testing.T) http.HandlerFunc {
	t.Helper()
	rawList := func(items []string) []json.RawMessage {
		out := make([]json.RawMessage, 0, len(items))
		for _, it := range items {
			out = append(out, json.RawMessage(it))
		}
		return out
	}

	return func(w http.ResponseWriter, r *http.Request) {
		fail := func() {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "broken"}`))
		}

		path := strings.TrimPrefix(r.URL.Path, "/api/v1")
		offset := 0
		fmt.Sscanf(r.URL.Query().Get("offset"), "%d", &offset)

		switch {
		case path == "/journal":
			if f.failJournals {
				fail()
				return
			}
			items := rawList(f.journals)
			if offset > 0 {
				items = []json.RawMessage{}
			}
			json.NewEncoder(w).Encode(map[string]any{"journal_entries": items})

		case path == "/notes":
			if f.failNotes {
				fail()
				return
			}
			items := rawList(f.notes)
			if offset > 0 {
				items = []json.RawMessage{}
			}
			json.NewEncoder(w).Encode(map[string]any{"journal_notes": items})

		case path == "/trades":
			var summaries []tradervue.Trade
			if offset == 0 {
				for _, id := range f.order {
					tr := f.trades[id]
					summaries = append(summaries, tradervue.Trade{
						ID: tr.ID, Symbol: tr.Symbol,
						ExecCount: tr.ExecCount, CommentCount: tr.CommentCount,
					})
				}
			}
			if summaries == nil {
				summaries = []tradervue.Trade{}
			}
			json.NewEncoder(w).Encode(map[string]any{"trades": summaries})

		case strings.HasSuffix(path, "/executions"):
			var id int64
			fmt.Sscanf(path, "/trades/%d/executions", &id)
			if f.failExecs[id] {
				fail()
				return
			}
			tr := f.trades[id]
			execs := make([]tradervue.Execution, tr.ExecCount)
			json.NewEncoder(w).Encode(map[string]any{"executions": execs})

		case strings.HasSuffix(path, "/comments"):
			var id int64
			fmt.Sscanf(path, "/trades/%d/comments", &id)
			if f.failComments[id] {
				fail()
				return
			}
			tr := f.trades[id]
			comments := make([]tradervue.Comment, tr.CommentCount)
			json.NewEncoder(w).Encode(map[string]any{"comments": comments})

		default:
			var id int64
			fmt.Sscanf(path, "/trades/%d", &id)
			if f.failDetail[id] {
				fail()
				return
			}
			tr, ok := f.trades[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"error": "no such trade"}`))
				return
			}
			json.NewEncoder(w).Encode(tr)
		}
	}
}

func newRunner(t *testing.T, account *fakeAccount) (*Runner, *errtally.Tally) {
	t.Helper()
	server := httptest.NewServer(account.handler(t))
	t.Cleanup(server.Close)

	tally := errtally.New()
	logger := errtally.Attach(tally, false)
	logger.SetOutput(io.Discard)

	client := tradervue.NewClient("jane", "hunter2", "tvue-test (dev@example.com)",
		tradervue.WithBaseURL(server.URL),
		tradervue.WithLogger(logger),
	)
	return &Runner{Client: client, Log: logger}, tally
}

func threeTradeAccount() *fakeAccount {
	return &fakeAccount{
		journals: []string{`{"id": 1, "notes": "monday"}`, `{"id": 2, "notes": "tuesday"}`},
		notes:    []string{`{"id": 9, "text": "watchlist"}`},
		trades: map[int64]tradervue.Trade{
			1: {ID: 1, Symbol: "AAPL", ExecCount: 2, CommentCount: 0},
			2: {ID: 2, Symbol: "TSLA", ExecCount: 0, CommentCount: 3},
			3: {ID: 3, Symbol: "NVDA", ExecCount: 1, CommentCount: 1},
		},
		order:        []int64{1, 2, 3},
		failDetail:   map[int64]bool{},
		failExecs:    map[int64]bool{},
		failComments: map[int64]bool{},
	}
}

func TestRunFullBackup(t *testing.T) {
	runner, tally := newRunner(t, threeTradeAccount())

	doc := runner.Run(context.Background())

	assert.Equal(t, 0, tally.Count())
	assert.Len(t, doc.Journals, 2)
	assert.Len(t, doc.Notes, 1)
	require.Len(t, doc.Trades, 3)

	// Order follows the trade listing.
	assert.Equal(t, int64(1), doc.Trades[0].ID)
	assert.Equal(t, int64(2), doc.Trades[1].ID)
	assert.Equal(t, int64(3), doc.Trades[2].ID)
}

func TestRunConditionalEnrichment(t *testing.T) {
	runner, tally := newRunner(t, threeTradeAccount())

	doc := runner.Run(context.Background())
	require.Len(t, doc.Trades, 3)

	// exec_count 2, comment_count 0: executions attached, comments absent.
	assert.Len(t, doc.Trades[0].Executions, 2)
	assert.Nil(t, doc.Trades[0].Comments)

	// exec_count 0, comment_count 3: the exact inverse.
	assert.Nil(t, doc.Trades[1].Executions)
	assert.Len(t, doc.Trades[1].Comments, 3)

	assert.Equal(t, 0, tally.Count())
}

func TestRunSkipsTradeWhenDetailFails(t *testing.T) {
	account := threeTradeAccount()
	account.failDetail[2] = true
	runner, tally := newRunner(t, account)

	doc := runner.Run(context.Background())

	require.Len(t, doc.Trades, 2)
	assert.Equal(t, int64(1), doc.Trades[0].ID)
	assert.Equal(t, int64(3), doc.Trades[1].ID)
	assert.Equal(t, 1, tally.Count())
	assert.Contains(t, tally.Text(), "trade 2")
}

func TestRunKeepsTradeWhenEnrichmentFails(t *testing.T) {
	account := threeTradeAccount()
	account.failExecs[1] = true
	account.failComments[3] = true
	runner, tally := newRunner(t, account)

	doc := runner.Run(context.Background())

	require.Len(t, doc.Trades, 3)
	assert.Nil(t, doc.Trades[0].Executions) // fetch failed, trade kept
	assert.Len(t, doc.Trades[2].Executions, 1)
	assert.Nil(t, doc.Trades[2].Comments) // comments failed independently
	assert.Equal(t, 2, tally.Count())
}

func TestRunContinuesPastCollectionFailures(t *testing.T) {
	account := threeTradeAccount()
	account.failJournals = true
	account.failNotes = true
	runner, tally := newRunner(t, account)

	doc := runner.Run(context.Background())

	assert.Empty(t, doc.Journals)
	assert.Empty(t, doc.Notes)
	assert.Len(t, doc.Trades, 3)
	assert.Equal(t, 2, tally.Count())
}

func TestRunUsesConfiguredPageSize(t *testing.T) {
	account := threeTradeAccount()
	inner := account.handler(t)

	limits := map[string]string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/v1")
		if q := r.URL.Query().Get("limit"); q != "" {
			limits[path] = q
		}
		inner(w, r)
	}))
	t.Cleanup(server.Close)

	tally := errtally.New()
	logger := errtally.Attach(tally, false)
	logger.SetOutput(io.Discard)
	client := tradervue.NewClient("jane", "hunter2", "tvue-test (dev@example.com)",
		tradervue.WithBaseURL(server.URL),
		tradervue.WithLogger(logger),
	)

	runner := &Runner{Client: client, Log: logger, PageSize: 7}
	doc := runner.Run(context.Background())

	require.Len(t, doc.Trades, 3)
	assert.Equal(t, "7", limits["/journal"])
	assert.Equal(t, "7", limits["/notes"])
	assert.Equal(t, "7", limits["/trades"])
}

func TestRunEmptyAccount(t *testing.T) {
	runner, tally := newRunner(t, &fakeAccount{
		trades:       map[int64]tradervue.Trade{},
		failDetail:   map[int64]bool{},
		failExecs:    map[int64]bool{},
		failComments: map[int64]bool{},
	})

	doc := runner.Run(context.Background())

	assert.Equal(t, 0, tally.Count())

	// Empty collections marshal as [], not null.
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"journals": [], "notes": [], "trades": []}`, string(data))
}
