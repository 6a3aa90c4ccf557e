// Package backup pulls a complete account snapshot out of the service:
// journals, notes, and every trade enriched with its executions and
// comments, assembled into one document.
package backup

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"github.com/rustyeddy/tvue/tradervue"
)

// Document is the single artifact of a backup run.
type Document struct {
	Journals []json.RawMessage `json:"journals"`
	Notes    []json.RawMessage `json:"notes"`
	Trades   []tradervue.Trade `json:"trades"`
}

// Runner walks the account sequentially: journals, then notes, then
// trades. Item-level failures are logged and skipped rather than aborting
// the run; the caller reads the run's error tally to decide the final
// verdict.
type Runner struct {
	Client   *tradervue.Client
	Log      *log.Logger
	PageSize int // 0 means the service ceiling
}

// Run produces the backup document. It never aborts early: every failure
// is logged through the runner's logger (and thus the run's error tally)
// and the affected item is omitted. The document is only assembled once
// all trades have been processed.
func (r *Runner) Run(ctx context.Context) *Document {
	doc := &Document{
		Journals: []json.RawMessage{},
		Notes:    []json.RawMessage{},
		Trades:   []tradervue.Trade{},
	}

	r.Log.Info("backing up journals")
	journals, err := r.Client.GetJournals(ctx, tradervue.JournalFilter{}, r.PageSize, 0)
	if err != nil {
		r.Log.Errorf("journal backup incomplete: %v", err)
	}
	doc.Journals = append(doc.Journals, journals...)

	r.Log.Info("backing up notes")
	notes, err := r.Client.GetNotes(ctx, r.PageSize, 0)
	if err != nil {
		r.Log.Errorf("notes backup incomplete: %v", err)
	}
	doc.Notes = append(doc.Notes, notes...)

	r.Log.Info("backing up trades")
	summaries, err := r.Client.GetTrades(ctx, tradervue.TradeFilter{}, r.PageSize, 0)
	if err != nil {
		r.Log.Errorf("trade list incomplete: %v", err)
	}

	for _, summary := range summaries {
		trade := r.fetchTrade(ctx, summary.ID)
		if trade == nil {
			continue
		}
		doc.Trades = append(doc.Trades, *trade)
	}

	r.Log.Infof("backup collected %d journal(s), %d note(s), %d trade(s)",
		len(doc.Journals), len(doc.Notes), len(doc.Trades))
	return doc
}

// fetchTrade pulls one trade's detail and enriches it. A failed detail
// fetch drops the trade; a failed enrichment keeps the trade without that
// attachment. The two enrichments are independent so either can fail
// alone.
func (r *Runner) fetchTrade(ctx context.Context, id int64) *tradervue.Trade {
	trade, err := r.Client.GetTrade(ctx, id)
	if err != nil {
		r.Log.Errorf("skipping trade %d: %v", id, err)
		return nil
	}

	if trade.ExecCount > 0 {
		execs, err := r.Client.GetTradeExecutions(ctx, id)
		if err != nil {
			r.Log.Errorf("trade %d backed up without executions: %v", id, err)
		} else {
			trade.Executions = execs
		}
	}

	if trade.CommentCount > 0 {
		comments, err := r.Client.GetTradeComments(ctx, id)
		if err != nil {
			r.Log.Errorf("trade %d backed up without comments: %v", id, err)
		} else {
			trade.Comments = comments
		}
	}

	return trade
}
