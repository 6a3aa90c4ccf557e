package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadExecutionsJSONArray(t *testing.T) {
	path := writeFile(t, "execs.json", `[
  {"datetime": "2026-08-21T09:31:00-04:00", "symbol": "AAPL", "quantity": 100, "price": 230.5},
  {"datetime": "2026-08-21T10:02:00-04:00", "symbol": "AAPL", "quantity": -100, "price": 231.2}
]`)

	execs, err := readExecutions(path)
	require.NoError(t, err)
	require.Len(t, execs, 2)
	assert.Equal(t, "AAPL", execs[0].Symbol)
	assert.Equal(t, -100.0, execs[1].Quantity)
}

func TestReadExecutionsJSONEnvelope(t *testing.T) {
	path := writeFile(t, "execs.json", `{"executions": [
  {"datetime": "2026-08-21T09:31:00-04:00", "symbol": "TSLA", "quantity": 50, "price": 310}
]}`)

	execs, err := readExecutions(path)
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, "TSLA", execs[0].Symbol)
}

func TestReadExecutionsCSV(t *testing.T) {
	path := writeFile(t, "execs.csv",
		"datetime,symbol,quantity,price,commission,transfee,ecnfee,option\n"+
			"2026-08-21T09:31:00-04:00,NVDA,100,181.25,1.00,0.05,0.10,\n"+
			"2026-08-21T10:02:00-04:00,NVDA,-100,183.40,1.00,0.05,0.10,\n")

	execs, err := readExecutions(path)
	require.NoError(t, err)
	require.Len(t, execs, 2)
	assert.Equal(t, "NVDA", execs[0].Symbol)
	assert.Equal(t, 181.25, execs[0].Price)
	assert.Equal(t, 1.00, execs[1].Commission)
}

func TestReadExecutionsBadInput(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := readExecutions(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("garbage json", func(t *testing.T) {
		path := writeFile(t, "execs.json", `{"status": "weird"}`)
		_, err := readExecutions(path)
		assert.Error(t, err)
	})
}

func TestListFilterFlags(t *testing.T) {
	t.Cleanup(func() {
		tradeStart, tradeEnd = "", ""
		tradeWinners, tradeLosers = false, false
	})

	tradeStart = "2026-03-05"
	tradeEnd = "2026-04-01"
	tradeWinners = true

	f, err := listFilter()
	require.NoError(t, err)
	assert.Equal(t, 2026, f.StartDate.Year())
	require.NotNil(t, f.Winners)
	assert.True(t, *f.Winners)

	tradeLosers = true
	_, err = listFilter()
	assert.Error(t, err, "winners and losers together must be rejected")

	tradeLosers = false
	tradeStart = "03/05/2026"
	_, err = listFilter()
	assert.Error(t, err, "dates must be YYYY-MM-DD")
}
