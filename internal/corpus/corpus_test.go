package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	uiderrors "github.com/tamirms/uidtable/errors"
	"go.uber.org/zap/zaptest"
)

func TestLoadJoinsSources(t *testing.T) {
	got, err := Load(t.Context(), zaptest.NewLogger(t),
		Base(),
		Literal("empty"),
		Literal("no-newline", "one"),
		Literal("two", "two", "three"),
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := "ExpressLRS\nexpresslrs\nELRS\nelrs\none\ntwo\nthree\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("corpus mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := Load(ctx, nil, Base()); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

// writeCompressed writes data to path, compressed according to its extension.
func writeCompressed(t *testing.T, path string, data []byte) {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch filepath.Ext(path) {
	case ".gz":
		w = gzip.NewWriter(&buf)
	case ".zst":
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatal(err)
		}
		w = zw
	case ".lz4":
		w = lz4.NewWriter(&buf)
	default:
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
		return
	}
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFileDecompression(t *testing.T) {
	dir := t.TempDir()
	for _, ext := range []string{".txt", ".gz", ".zst", ".lz4"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "words"+ext)
			want := fmt.Sprintf("alpha\nbeta\n%s\n", ext)
			writeCompressed(t, path, []byte(want))

			got, err := Load(t.Context(), nil, File(path))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if string(got) != want {
				t.Errorf("Load(%s) = %q, want %q", path, got, want)
			}
		})
	}
}

func TestFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.gz")
	if err := os.WriteFile(path, []byte("not gzip at all"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(t.Context(), nil, File(path)); err == nil {
		t.Error("Expected error for corrupt gzip file")
	}
}

func TestFileMissing(t *testing.T) {
	_, err := Load(t.Context(), nil, File(filepath.Join(t.TempDir(), "nope.txt")))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}

func TestListDir(t *testing.T) {
	dir := t.TempDir()
	writeCompressed(t, filepath.Join(dir, "b.txt"), []byte("bee"))
	writeCompressed(t, filepath.Join(dir, "a.zst"), []byte("ay\n"))
	writeCompressed(t, filepath.Join(dir, "c.lz4"), []byte("sea\n"))
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	srcs, err := ListDir(dir)
	if err != nil {
		t.Fatalf("ListDir: %v", err)
	}
	var names []string
	for _, s := range srcs {
		names = append(names, filepath.Base(s.Name()))
	}
	if diff := cmp.Diff([]string{"a.zst", "b.txt", "c.lz4"}, names); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}

	got, err := Load(t.Context(), nil, srcs...)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := "ay\nbee\nsea\n"; string(got) != want {
		t.Errorf("Load = %q, want %q", got, want)
	}

	if _, err := ListDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected error listing a missing directory")
	}
}

func TestURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/plain.txt", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "red\ngreen")
	})
	mux.HandleFunc("/dice.txt", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "11111\tabacus\r\n\n11112\tabdomen\n")
	})
	mux.HandleFunc("/bad-dice.txt", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "11111\tabacus\nnotab\n")
	})
	mux.HandleFunc("/list.gz", func(w http.ResponseWriter, r *http.Request) {
		zw := gzip.NewWriter(w)
		io.WriteString(zw, "zipped\n")
		zw.Close()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	t.Run("Plain", func(t *testing.T) {
		got, err := Load(t.Context(), nil, URL(srv.Client(), Spec{URL: srv.URL + "/plain.txt"}))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if want := "red\ngreen\n"; string(got) != want {
			t.Errorf("Load = %q, want %q", got, want)
		}
	})

	t.Run("Diceware", func(t *testing.T) {
		got, err := Load(t.Context(), nil, URL(srv.Client(), Spec{URL: srv.URL + "/dice.txt", Kind: KindDiceware}))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if want := "abacus\nabdomen\n"; string(got) != want {
			t.Errorf("Load = %q, want %q", got, want)
		}
	})

	t.Run("DicewareMalformed", func(t *testing.T) {
		_, err := Load(t.Context(), nil, URL(srv.Client(), Spec{URL: srv.URL + "/bad-dice.txt", Kind: KindDiceware}))
		if !errors.Is(err, uiderrors.ErrMalformedList) {
			t.Errorf("Expected ErrMalformedList, got %v", err)
		}
	})

	t.Run("Compressed", func(t *testing.T) {
		got, err := Load(t.Context(), nil, URL(srv.Client(), Spec{URL: srv.URL + "/list.gz"}))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if want := "zipped\n"; string(got) != want {
			t.Errorf("Load = %q, want %q", got, want)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := Load(t.Context(), nil, URL(srv.Client(), Spec{URL: srv.URL + "/missing.txt"}))
		if !errors.Is(err, uiderrors.ErrFetch) {
			t.Errorf("Expected ErrFetch, got %v", err)
		}
	})
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindPlain, KindDiceware} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("csv"); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestDefaultSpecs(t *testing.T) {
	specs := DefaultSpecs()
	if len(specs) != 7 {
		t.Fatalf("Expected 7 default lists, got %d", len(specs))
	}
	dice := 0
	for _, s := range specs {
		if s.Kind == KindDiceware {
			dice++
		}
	}
	if dice != 1 {
		t.Errorf("Expected exactly one diceware list, got %d", dice)
	}
}
