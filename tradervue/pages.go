package tradervue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// MaxPageSize is the service's ceiling on records per page. Requests never
// ask for more; smaller sizes are allowed so tests can exercise multi-page
// reads.
const MaxPageSize = 100

// normalizePageSize clamps a requested page size into [1, MaxPageSize],
// defaulting to the ceiling.
func normalizePageSize(n int) int {
	if n <= 0 || n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// page fetches one page of a collection. The response envelope must hold
// the records under key as a JSON array.
func (c *Client) page(ctx context.Context, path, key string, offset, limit int, filters url.Values) ([]json.RawMessage, error) {
	query := url.Values{}
	for k, vs := range filters {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	resp, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(resp.body, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s page: %w", path, err)
	}
	raw, ok := envelope[key]
	if !ok {
		return nil, fmt.Errorf("no %q field in %s response", key, path)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %q records: %w", key, err)
	}
	return records, nil
}

// readAll walks a paginated collection from offset 0, advancing by the
// number of records each page actually returned, and stops at the first
// page shorter than the amount requested (empty included). Offsets never
// repeat and record order is preserved.
//
// On error the records accumulated so far are returned together with the
// triggering error; the caller decides whether a partial collection is
// acceptable.
//
// max > 0 caps the total number of records fetched.
func (c *Client) readAll(ctx context.Context, path, key string, pageSize, max int, filters url.Values) ([]json.RawMessage, error) {
	pageSize = normalizePageSize(pageSize)

	var all []json.RawMessage
	offset := 0
	for {
		limit := pageSize
		if max > 0 && max-len(all) < limit {
			limit = max - len(all)
		}
		if limit <= 0 {
			break
		}

		records, err := c.page(ctx, path, key, offset, limit, filters)
		if err != nil {
			return all, err
		}
		all = append(all, records...)
		c.log.Debugf("read %d record(s) from %s at offset %d", len(records), path, offset)

		if len(records) < limit {
			break
		}
		offset += len(records)
	}
	return all, nil
}
