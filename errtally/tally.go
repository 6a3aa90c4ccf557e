// Package errtally accumulates error-level log events for a single run.
//
// A run can finish its nominal work and still have logged item-level
// errors along the way (a skipped trade during a backup, for example).
// The caller combines the nominal result with the tally to decide the
// final exit status.
package errtally

import (
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Tally is a logrus hook that counts error-level entries and keeps their
// text. Attach one Tally per run to that run's logger; concurrent runs in
// the same process must each get their own.
type Tally struct {
	mu    sync.Mutex
	count int
	text  strings.Builder
}

// New returns an empty Tally.
func New() *Tally {
	return &Tally{}
}

// Attach creates a logger with t hooked in. Level defaults to Info.
func Attach(t *Tally, verbose bool) *log.Logger {
	logger := log.New()
	logger.SetLevel(log.InfoLevel)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	logger.AddHook(t)
	return logger
}

// Levels reports the severities the hook observes.
func (t *Tally) Levels() []log.Level {
	return []log.Level{log.ErrorLevel, log.FatalLevel, log.PanicLevel}
}

// Fire records one error-level entry.
func (t *Tally) Fire(entry *log.Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.count++
	t.text.WriteString(entry.Message)
	if len(entry.Data) > 0 {
		fmt.Fprintf(&t.text, " %v", entry.Data)
	}
	t.text.WriteByte('\n')
	return nil
}

// Count returns the number of error-level entries recorded so far.
func (t *Tally) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Text returns the concatenated error messages, one per line.
func (t *Tally) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text.String()
}

// Err returns nil when no errors were recorded, otherwise an error
// summarizing the tally.
func (t *Tally) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.count == 0 {
		return nil
	}
	return fmt.Errorf("%d error(s) during run:\n%s", t.count, t.text.String())
}
