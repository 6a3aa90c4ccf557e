package tradervue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Trade is a trade snapshot as returned by the service. Executions and
// Comments are only populated when a backup attaches them; the service's
// trade resources do not inline them.
type Trade struct {
	ID           int64    `json:"id"`
	Symbol       string   `json:"symbol,omitempty"`
	OpenedAt     string   `json:"opened_at,omitempty"`
	ClosedAt     string   `json:"closed_at,omitempty"`
	Side         string   `json:"side,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	GrossPL      float64  `json:"gross_pl,omitempty"`
	InitialRisk  float64  `json:"initial_risk,omitempty"`
	Shared       bool     `json:"shared,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	ExecCount    int      `json:"exec_count,omitempty"`
	CommentCount int      `json:"comment_count,omitempty"`

	Executions []Execution `json:"executions,omitempty"`
	Comments   []Comment   `json:"comments,omitempty"`
}

// Execution is a single fill belonging to one trade. The csv tags match
// the column layout accepted by the import command.
type Execution struct {
	ID         int64   `json:"id,omitempty" csv:"-"`
	DateTime   string  `json:"datetime,omitempty" csv:"datetime"`
	Symbol     string  `json:"symbol,omitempty" csv:"symbol"`
	Quantity   float64 `json:"quantity,omitempty" csv:"quantity"`
	Price      float64 `json:"price,omitempty" csv:"price"`
	Commission float64 `json:"commission,omitempty" csv:"commission"`
	TransFee   float64 `json:"transfee,omitempty" csv:"transfee"`
	ECNFee     float64 `json:"ecnfee,omitempty" csv:"ecnfee"`
	Option     string  `json:"option,omitempty" csv:"option"`
}

// Comment is a note attached to one trade. Read-only here.
type Comment struct {
	ID        int64  `json:"id,omitempty"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// NewTrade is the payload for creating a trade, the API equivalent of the
// website's New Trade feature.
type NewTrade struct {
	Symbol      string   `json:"symbol"`
	Notes       string   `json:"notes,omitempty"`
	InitialRisk float64  `json:"initial_risk,omitempty"`
	Shared      bool     `json:"shared"`
	Tags        []string `json:"tags,omitempty"`
}

// CreateTrade creates a new trade and returns its id.
func (c *Client) CreateTrade(ctx context.Context, nt NewTrade) (int64, error) {
	resp, err := c.post(ctx, "/trades", nt)
	if err != nil {
		return 0, fmt.Errorf("create trade for %s: %w", nt.Symbol, err)
	}
	if resp.status != http.StatusCreated {
		return 0, fmt.Errorf("create trade for %s: unexpected status %d", nt.Symbol, resp.status)
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(resp.body, &created); err != nil {
		return 0, fmt.Errorf("decode created trade: %w", err)
	}
	c.log.Debugf("created trade %d for %s", created.ID, nt.Symbol)
	return created.ID, nil
}

// CreateTradeURL creates a new trade and returns the Location header of
// the new resource instead of its id.
func (c *Client) CreateTradeURL(ctx context.Context, nt NewTrade) (string, error) {
	resp, err := c.post(ctx, "/trades", nt)
	if err != nil {
		return "", fmt.Errorf("create trade for %s: %w", nt.Symbol, err)
	}
	if resp.status != http.StatusCreated {
		return "", fmt.Errorf("create trade for %s: unexpected status %d", nt.Symbol, resp.status)
	}
	return resp.header.Get("Location"), nil
}

// DeleteTrade deletes one trade.
func (c *Client) DeleteTrade(ctx context.Context, id int64) error {
	if _, err := c.delete(ctx, "/trades/"+strconv.FormatInt(id, 10)); err != nil {
		return fmt.Errorf("delete trade %d: %w", id, err)
	}
	c.log.Debugf("deleted trade %d", id)
	return nil
}

// DeleteTrades deletes each trade id in turn, returning one result per
// input. A failed deletion does not stop the rest.
func (c *Client) DeleteTrades(ctx context.Context, ids ...int64) []error {
	results := make([]error, len(ids))
	for i, id := range ids {
		results[i] = c.DeleteTrade(ctx, id)
	}
	return results
}

// TradeUpdate holds the fields of a trade that can be modified. Nil
// pointers leave the corresponding field untouched.
type TradeUpdate struct {
	Notes       *string
	Shared      *bool
	InitialRisk *float64
	Tags        []string
}

// UpdateTrade modifies the given fields of a trade. An update with no
// fields set is rejected without a request.
func (c *Client) UpdateTrade(ctx context.Context, id int64, u TradeUpdate) error {
	payload := map[string]any{}
	if u.Notes != nil {
		payload["notes"] = *u.Notes
	}
	if u.Shared != nil {
		payload["shared"] = *u.Shared
	}
	if u.InitialRisk != nil {
		payload["initial_risk"] = *u.InitialRisk
	}
	if u.Tags != nil {
		payload["tags"] = u.Tags
	}
	if len(payload) == 0 {
		return fmt.Errorf("no updates specified for trade %d", id)
	}

	if _, err := c.put(ctx, "/trades/"+strconv.FormatInt(id, 10), payload); err != nil {
		return fmt.Errorf("update trade %d: %w", id, err)
	}
	return nil
}

var (
	sideRE     = regexp.MustCompile(`(?i)^(long|short)$`)
	durationRE = regexp.MustCompile(`(?i)^(intraday|multiday)$`)
	// Lowercase and/or in a tag expression is almost always a mistake:
	// the service requires uppercase AND/OR.
	dubiousTagRE = regexp.MustCompile(`\s(and|or)\s`)
)

// TradeFilter narrows a trade query. Zero values mean "not part of the
// query".
type TradeFilter struct {
	Symbol    string
	TagExpr   string
	Side      string // "Long" or "Short"
	Duration  string // "Intraday" or "Multiday"
	StartDate time.Time
	EndDate   time.Time
	Winners   *bool
}

func (f TradeFilter) values() (url.Values, error) {
	v := url.Values{}
	if f.Symbol != "" {
		v.Set("symbol", f.Symbol)
	}
	if f.TagExpr != "" {
		v.Set("tag", f.TagExpr)
	}
	if f.Side != "" {
		if !sideRE.MatchString(f.Side) {
			return nil, fmt.Errorf("side must be 'Long' or 'Short', saw %q", f.Side)
		}
		v.Set("side", strings.ToUpper(f.Side[:1]))
	}
	if f.Duration != "" {
		if !durationRE.MatchString(f.Duration) {
			return nil, fmt.Errorf("duration must be 'Intraday' or 'Multiday', saw %q", f.Duration)
		}
		v.Set("duration", strings.ToUpper(f.Duration[:1]))
	}
	if !f.StartDate.IsZero() {
		v.Set("startdate", f.StartDate.Format("01/02/2006"))
	}
	if !f.EndDate.IsZero() {
		v.Set("enddate", f.EndDate.Format("01/02/2006"))
	}
	if f.Winners != nil {
		if *f.Winners {
			v.Set("plgross", "W")
		} else {
			v.Set("plgross", "L")
		}
	}
	return v, nil
}

// GetTrades queries for trades matching the filter, paginating until the
// collection is exhausted or maxTrades (when positive) is reached. A
// pageSize of 0 means the service ceiling.
func (c *Client) GetTrades(ctx context.Context, f TradeFilter, pageSize, maxTrades int) ([]Trade, error) {
	filters, err := f.values()
	if err != nil {
		return nil, err
	}

	raw, err := c.readAll(ctx, "/trades", "trades", pageSize, maxTrades, filters)
	trades := make([]Trade, 0, len(raw))
	for _, r := range raw {
		var t Trade
		if uerr := json.Unmarshal(r, &t); uerr != nil {
			return trades, fmt.Errorf("decode trade: %w", uerr)
		}
		trades = append(trades, t)
	}
	if err != nil {
		return trades, fmt.Errorf("query trades: %w", err)
	}

	if f.TagExpr != "" && len(trades) == 0 && dubiousTagRE.MatchString(f.TagExpr) {
		c.log.Warnf("no results for tag expression %q; AND and OR must be uppercase", f.TagExpr)
	}
	return trades, nil
}

// GetTrade fetches the full detail of one trade.
func (c *Client) GetTrade(ctx context.Context, id int64) (*Trade, error) {
	resp, err := c.get(ctx, "/trades/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, fmt.Errorf("query trade %d: %w", id, err)
	}

	var t Trade
	if err := json.Unmarshal(resp.body, &t); err != nil {
		return nil, fmt.Errorf("decode trade %d: %w", id, err)
	}
	return &t, nil
}

// GetTradeExecutions fetches the executions of one trade.
func (c *Client) GetTradeExecutions(ctx context.Context, id int64) ([]Execution, error) {
	resp, err := c.get(ctx, "/trades/"+strconv.FormatInt(id, 10)+"/executions", nil)
	if err != nil {
		return nil, fmt.Errorf("query trade %d executions: %w", id, err)
	}

	var envelope struct {
		Executions []Execution `json:"executions"`
	}
	if err := json.Unmarshal(resp.body, &envelope); err != nil {
		return nil, fmt.Errorf("decode trade %d executions: %w", id, err)
	}
	if envelope.Executions == nil {
		return nil, fmt.Errorf("no 'executions' field in trade %d executions response", id)
	}
	c.log.Debugf("trade %d has %d execution(s)", id, len(envelope.Executions))
	return envelope.Executions, nil
}

// GetTradeComments fetches the comments of one trade.
func (c *Client) GetTradeComments(ctx context.Context, id int64) ([]Comment, error) {
	resp, err := c.get(ctx, "/trades/"+strconv.FormatInt(id, 10)+"/comments", nil)
	if err != nil {
		return nil, fmt.Errorf("query trade %d comments: %w", id, err)
	}

	var envelope struct {
		Comments []Comment `json:"comments"`
	}
	if err := json.Unmarshal(resp.body, &envelope); err != nil {
		return nil, fmt.Errorf("decode trade %d comments: %w", id, err)
	}
	if envelope.Comments == nil {
		return nil, fmt.Errorf("no 'comments' field in trade %d comments response", id)
	}
	c.log.Debugf("trade %d has %d comment(s)", id, len(envelope.Comments))
	return envelope.Comments, nil
}
