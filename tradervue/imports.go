package tradervue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Import lifecycle states reported by the service.
const (
	ImportReady      = "ready"
	ImportQueued     = "queued"
	ImportProcessing = "processing"
	ImportSucceeded  = "succeeded"
	ImportFailed     = "failed"
)

func validImportStatus(s string) bool {
	switch s {
	case ImportReady, ImportQueued, ImportProcessing, ImportSucceeded, ImportFailed:
		return true
	}
	return false
}

// ImportRequest is one atomic batch of executions to import. The service
// either queues it or rejects it with a conflict while another import is
// running.
type ImportRequest struct {
	Executions         []Execution `json:"executions"`
	AccountTag         string      `json:"account_tag,omitempty"`
	Tags               []string    `json:"tags,omitempty"`
	AllowDuplicates    bool        `json:"allow_duplicates"`
	OverlayCommissions bool        `json:"overlay_commissions"`
}

// normalize validates the request and mirrors the account tag into the tag
// list. The service does not add the account tag automatically.
func (r *ImportRequest) normalize() error {
	if len(r.Executions) == 0 {
		return fmt.Errorf("import request has no executions")
	}
	if r.AccountTag != "" {
		found := false
		for _, t := range r.Tags {
			if t == r.AccountTag {
				found = true
				break
			}
		}
		if !found {
			r.Tags = append(r.Tags, r.AccountTag)
		}
	}
	return nil
}

// Submission is the service's acknowledgement of a queued import. ID may
// be empty on accounts where status is tracked per account rather than per
// import.
type Submission struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ImportState is one observation of an import's progress.
type ImportState struct {
	Status string
	Raw    json.RawMessage
}

// Pending reports whether the import has been accepted but not finished.
func (s *ImportState) Pending() bool {
	return s.Status == ImportQueued || s.Status == ImportProcessing
}

// Terminal reports whether the import reached a final verdict.
func (s *ImportState) Terminal() bool {
	return s.Status == ImportSucceeded || s.Status == ImportFailed
}

// SubmitImport posts the import request. A conflict rejection (another
// import already running) is resubmitted immediately, with no delay, up to
// maxRetries total attempts; conflicts resolve server-side quickly so
// there is nothing to wait for. Every other failure is terminal on the
// first occurrence.
//
// The returned error satisfies IsConflict when all attempts were rejected
// with a conflict.
func (c *Client) SubmitImport(ctx context.Context, req ImportRequest, maxRetries int) (*Submission, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		resp, err := c.post(ctx, "/imports", req)
		if err != nil {
			if IsConflict(err) {
				lastErr = err
				c.log.Warnf("import attempt %d/%d rejected, another import in progress", attempt, maxRetries)
				continue
			}
			return nil, fmt.Errorf("import executions: %w", err)
		}

		var sub Submission
		if err := json.Unmarshal(resp.body, &sub); err != nil {
			return nil, fmt.Errorf("decode import response: %w", err)
		}
		if sub.Status != ImportQueued {
			return nil, fmt.Errorf("unexpected status %q from import submission", sub.Status)
		}
		c.log.Debugf("import queued after %d attempt(s)", attempt)
		return &sub, nil
	}

	return nil, fmt.Errorf("import rejected %d time(s): %w", maxRetries, lastErr)
}

// GetImportStatus queries the state of an import. With an empty id the
// account-wide import endpoint is used.
func (c *Client) GetImportStatus(ctx context.Context, id string) (*ImportState, error) {
	path := "/imports"
	if id != "" {
		path += "/" + id
	}

	resp, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("query import status: %w", err)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return nil, fmt.Errorf("decode import status: %w", err)
	}
	if !validImportStatus(payload.Status) {
		return nil, fmt.Errorf("unexpected import status %q", payload.Status)
	}
	return &ImportState{Status: payload.Status, Raw: resp.body}, nil
}

// AwaitImport polls the import status on a fixed interval until a terminal
// state arrives or maxPolls status queries have been made. Exhausting the
// polls while the import is still pending returns the last observed state
// together with ErrImportTimeout; the import may still complete after the
// caller stops watching.
//
// Polls are spaced by interval; this cadence is deliberately different
// from the immediate resubmission loop in SubmitImport.
func (c *Client) AwaitImport(ctx context.Context, id string, maxPolls int, interval time.Duration) (*ImportState, error) {
	if maxPolls < 1 {
		maxPolls = 1
	}

	var state *ImportState
	for poll := 1; poll <= maxPolls; poll++ {
		if poll > 1 {
			select {
			case <-time.After(interval):
			case <-ctx.Done():
				return state, ctx.Err()
			}
		}

		var err error
		state, err = c.GetImportStatus(ctx, id)
		if err != nil {
			return nil, err
		}

		switch {
		case state.Status == ImportSucceeded:
			c.log.Debugf("import succeeded after %d poll(s)", poll)
			return state, nil
		case state.Status == ImportFailed:
			c.log.Debugf("import failed after %d poll(s)", poll)
			return state, nil
		case state.Status == ImportReady:
			// Importer went idle without ever reporting a verdict.
			return state, fmt.Errorf("importer is ready but no import result was observed")
		case state.Pending():
			c.log.Debugf("import still %s after poll %d/%d", state.Status, poll, maxPolls)
		}
	}

	return state, fmt.Errorf("import not finished after %d poll(s): %w", maxPolls, ErrImportTimeout)
}
