package tradervue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Journal entries and notes are opaque to this client: callers get the
// service's records as raw JSON and pass them through unchanged.

// JournalFilter narrows a journal query. A single Date is exclusive with
// a StartDate/EndDate range; zero values mean "not part of the query".
type JournalFilter struct {
	Date      time.Time
	StartDate time.Time
	EndDate   time.Time
}

func (f JournalFilter) values() (url.Values, error) {
	if !f.Date.IsZero() && (!f.StartDate.IsZero() || !f.EndDate.IsZero()) {
		return nil, fmt.Errorf("journal filter: date is exclusive with a start/end range")
	}

	v := url.Values{}
	if !f.Date.IsZero() {
		v.Set("d", f.Date.Format("01/02/2006"))
	}
	if !f.StartDate.IsZero() {
		v.Set("startdate", f.StartDate.Format("01/02/2006"))
	}
	if !f.EndDate.IsZero() {
		v.Set("enddate", f.EndDate.Format("01/02/2006"))
	}
	return v, nil
}

// GetJournals reads journal entries matching the filter, paginating until
// the collection is exhausted or maxEntries (when positive) is reached. On
// error the entries read so far are returned with it.
func (c *Client) GetJournals(ctx context.Context, f JournalFilter, pageSize, maxEntries int) ([]json.RawMessage, error) {
	filters, err := f.values()
	if err != nil {
		return nil, err
	}

	entries, err := c.readAll(ctx, "/journal", "journal_entries", pageSize, maxEntries, filters)
	if err != nil {
		return entries, fmt.Errorf("query journal: %w", err)
	}
	return entries, nil
}

// GetJournal fetches one journal entry by id.
func (c *Client) GetJournal(ctx context.Context, id int64) (json.RawMessage, error) {
	resp, err := c.get(ctx, "/journal/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, fmt.Errorf("query journal entry %d: %w", id, err)
	}
	return json.RawMessage(resp.body), nil
}

// GetJournalByDate resolves the journal entry for one date: a one-record
// query for the id, then a refetch by id for the full entry.
func (c *Client) GetJournalByDate(ctx context.Context, date time.Time) (json.RawMessage, error) {
	entries, err := c.GetJournals(ctx, JournalFilter{Date: date}, 1, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no journal entry on %s", date.Format("2006-01-02"))
	}

	var entry struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(entries[0], &entry); err != nil {
		return nil, fmt.Errorf("decode journal entry id: %w", err)
	}
	return c.GetJournal(ctx, entry.ID)
}

// CreateJournal creates the journal entry for a date and returns its id,
// the API equivalent of the website's New Journal Entry feature. Notes may
// include Markdown.
func (c *Client) CreateJournal(ctx context.Context, date time.Time, notes string) (int64, error) {
	payload := map[string]string{"date": date.Format("2006-01-02")}
	if notes != "" {
		payload["notes"] = notes
	}

	resp, err := c.post(ctx, "/journal", payload)
	if err != nil {
		return 0, fmt.Errorf("create journal entry for %s: %w", payload["date"], err)
	}
	if resp.status != http.StatusCreated {
		return 0, fmt.Errorf("create journal entry for %s: unexpected status %d", payload["date"], resp.status)
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(resp.body, &created); err != nil {
		return 0, fmt.Errorf("decode created journal entry: %w", err)
	}
	c.log.Debugf("created journal entry %d for %s", created.ID, payload["date"])
	return created.ID, nil
}

// UpdateJournal replaces the notes of one journal entry.
func (c *Client) UpdateJournal(ctx context.Context, id int64, notes string) error {
	payload := map[string]string{"notes": notes}
	if _, err := c.put(ctx, "/journal/"+strconv.FormatInt(id, 10), payload); err != nil {
		return fmt.Errorf("update journal entry %d: %w", id, err)
	}
	return nil
}

// DeleteJournal deletes one journal entry.
func (c *Client) DeleteJournal(ctx context.Context, id int64) error {
	if _, err := c.delete(ctx, "/journal/"+strconv.FormatInt(id, 10)); err != nil {
		return fmt.Errorf("delete journal entry %d: %w", id, err)
	}
	c.log.Debugf("deleted journal entry %d", id)
	return nil
}

// GetNotes reads notes, paginating until the collection is exhausted or
// maxNotes (when positive) is reached. On error the notes read so far are
// returned with it.
func (c *Client) GetNotes(ctx context.Context, pageSize, maxNotes int) ([]json.RawMessage, error) {
	notes, err := c.readAll(ctx, "/notes", "journal_notes", pageSize, maxNotes, nil)
	if err != nil {
		return notes, fmt.Errorf("query notes: %w", err)
	}
	return notes, nil
}

// GetNote fetches one note by id.
func (c *Client) GetNote(ctx context.Context, id int64) (json.RawMessage, error) {
	resp, err := c.get(ctx, "/notes/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, fmt.Errorf("query note %d: %w", id, err)
	}
	return json.RawMessage(resp.body), nil
}

// CreateNote creates a new note and returns its id. Notes may include
// Markdown.
func (c *Client) CreateNote(ctx context.Context, notes string) (int64, error) {
	resp, err := c.post(ctx, "/notes", map[string]string{"notes": notes})
	if err != nil {
		return 0, fmt.Errorf("create note: %w", err)
	}
	if resp.status != http.StatusCreated {
		return 0, fmt.Errorf("create note: unexpected status %d", resp.status)
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(resp.body, &created); err != nil {
		return 0, fmt.Errorf("decode created note: %w", err)
	}
	c.log.Debugf("created note %d", created.ID)
	return created.ID, nil
}

// UpdateNote replaces the text of one note.
func (c *Client) UpdateNote(ctx context.Context, id int64, notes string) error {
	payload := map[string]string{"notes": notes}
	if _, err := c.put(ctx, "/notes/"+strconv.FormatInt(id, 10), payload); err != nil {
		return fmt.Errorf("update note %d: %w", id, err)
	}
	return nil
}

// DeleteNote deletes one note.
func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	if _, err := c.delete(ctx, "/notes/"+strconv.FormatInt(id, 10)); err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	c.log.Debugf("deleted note %d", id)
	return nil
}
