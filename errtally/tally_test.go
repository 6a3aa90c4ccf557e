package errtally

import (
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuietLogger(t *Tally) *log.Logger {
	logger := Attach(t, false)
	logger.SetOutput(io.Discard)
	return logger
}

func TestTallyCountsErrorsOnly(t *testing.T) {
	tally := New()
	logger := newQuietLogger(tally)

	logger.Info("starting up")
	logger.Warn("this is fine")
	logger.Debug("noise")

	assert.Equal(t, 0, tally.Count())
	assert.NoError(t, tally.Err())

	logger.Error("first failure")
	logger.Error("second failure")

	assert.Equal(t, 2, tally.Count())
	assert.Contains(t, tally.Text(), "first failure")
	assert.Contains(t, tally.Text(), "second failure")
}

func TestTallyErr(t *testing.T) {
	tally := New()
	logger := newQuietLogger(tally)

	require.NoError(t, tally.Err())

	logger.Error("boom")

	err := tally.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 error(s)")
	assert.Contains(t, err.Error(), "boom")
}

func TestTallyRecordsFields(t *testing.T) {
	tally := New()
	logger := newQuietLogger(tally)

	logger.WithField("trade_id", 42).Error("detail fetch failed")

	assert.Equal(t, 1, tally.Count())
	assert.Contains(t, tally.Text(), "detail fetch failed")
}

func TestTallyIsPerInstance(t *testing.T) {
	a, b := New(), New()
	la, lb := newQuietLogger(a), newQuietLogger(b)

	la.Error("only on a")
	lb.Error("only on b")
	lb.Error("again on b")

	assert.Equal(t, 1, a.Count())
	assert.Equal(t, 2, b.Count())
}
