// Package cli implements the lookup prompt of the uidtable command.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tamirms/uidtable"
	"go.uber.org/zap"
)

// Session answers lookups against a table, writing results to Out.
type Session struct {
	Table *uidtable.Table
	Out   io.Writer

	// If set, lookup timings are logged at debug level.
	Log *zap.Logger
}

// Lookup parses raw as a UID and prints the result. It reports whether a
// phrase was found; invalid input is reported as not found, not as an error.
// The error is only set when writing to Out fails.
func (s *Session) Lookup(raw string) (bool, error) {
	start := time.Now()
	defer func() {
		if s.Log != nil {
			s.Log.Debug("lookup", zap.String("uid", raw), zap.Duration("took", time.Since(start)))
		}
	}()

	uid, err := uidtable.ParseUID(strings.TrimSpace(raw))
	if err != nil {
		_, werr := fmt.Fprintln(s.Out, "Invalid uid")
		return false, werr
	}

	phrase, ok := s.Table.Find(uid)
	if !ok {
		_, werr := fmt.Fprintln(s.Out, "Did not find binding phrase")
		return false, werr
	}
	// Write the raw bytes: the phrase need not be valid UTF-8.
	var b strings.Builder
	b.WriteString("Found binding phrase: '")
	b.Write(phrase)
	b.WriteString("'\n")
	_, werr := io.WriteString(s.Out, b.String())
	return true, werr
}

// Interactive prompts for one UID per line from in until end of input.
func (s *Session) Interactive(in io.Reader) error {
	if _, err := fmt.Fprintln(s.Out, "Press ctrl-d to exit"); err != nil {
		return err
	}
	rd := bufio.NewReader(in)
	for {
		if _, err := fmt.Fprint(s.Out, "\nUID? "); err != nil {
			return err
		}
		line, err := rd.ReadString('\n')
		if line == "" && errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if _, werr := s.Lookup(line); werr != nil {
			return werr
		}
		if err != nil {
			return nil
		}
	}
}
