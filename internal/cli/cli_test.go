package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tamirms/uidtable"
	"go.uber.org/zap/zaptest"
)

func newSession(t *testing.T, out *bytes.Buffer) *Session {
	t.Helper()
	table, _, err := uidtable.Build(t.Context(), []byte("ExpressLRS\nexpresslrs\nELRS\nelrs\n"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return &Session{Table: table, Out: out, Log: zaptest.NewLogger(t)}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		in    string
		found bool
		out   string
	}{
		{"65,245,33,230,58,226", true, "Found binding phrase: 'expresslrs'\n"},
		{"  65,245,33,230,58,226\n", true, "Found binding phrase: 'expresslrs'\n"},
		{"1,2,3,4,5,6", false, "Did not find binding phrase\n"},
		{"1,2,3", false, "Invalid uid\n"},
		{"", false, "Invalid uid\n"},
	}
	for _, tc := range tests {
		var out bytes.Buffer
		s := newSession(t, &out)
		found, err := s.Lookup(tc.in)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", tc.in, err)
		}
		if found != tc.found {
			t.Errorf("Lookup(%q) found = %v, want %v", tc.in, found, tc.found)
		}
		if out.String() != tc.out {
			t.Errorf("Lookup(%q) printed %q, want %q", tc.in, out.String(), tc.out)
		}
	}
}

func TestLookupRawBytes(t *testing.T) {
	data := []byte{1, 0, 0, 0, 1, 2, 3, 4, 5, 6, 0xff, 0}
	table, err := uidtable.OpenBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	s := &Session{Table: table, Out: &out}
	if found, err := s.Lookup("1,2,3,4,5,6"); !found || err != nil {
		t.Fatalf("Lookup = %v, %v", found, err)
	}
	if want := "Found binding phrase: '\xff'\n"; out.String() != want {
		t.Errorf("printed %q, want %q", out.String(), want)
	}
}

func TestInteractive(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"Empty", "", []string{"Press ctrl-d to exit", "", "UID? "}},
		{"TrailingNewline", "65,245,33,230,58,226\n", []string{
			"Press ctrl-d to exit", "",
			"UID? Found binding phrase: 'expresslrs'", "",
			"UID? ",
		}},
		{"NoTrailingNewline", "1,2,3,4,5,6\nbogus", []string{
			"Press ctrl-d to exit", "",
			"UID? Did not find binding phrase", "",
			"UID? Invalid uid", "",
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			s := newSession(t, &out)
			if err := s.Interactive(strings.NewReader(tc.in)); err != nil {
				t.Fatalf("Interactive: %v", err)
			}
			if diff := cmp.Diff(tc.want, strings.Split(out.String(), "\n")); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
