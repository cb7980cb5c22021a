package corpus

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	uiderrors "github.com/tamirms/uidtable/errors"
)

// Kind is the layout of a word list.
type Kind int

const (
	// KindPlain is one phrase per line.
	KindPlain Kind = iota

	// KindDiceware is the EFF diceware layout: "<dice>\t<word>" per line.
	KindDiceware
)

// String returns the name accepted by ParseKind.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindDiceware:
		return "diceware"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses "plain" or "diceware". The empty string means plain.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "plain":
		return KindPlain, nil
	case "diceware":
		return KindDiceware, nil
	default:
		return 0, fmt.Errorf("unknown word list kind %q", s)
	}
}

// Spec names a remote word list.
type Spec struct {
	URL  string
	Kind Kind
}

// DefaultSpecs are the word lists the lookup service has always shipped with.
func DefaultSpecs() []Spec {
	return []Spec{
		{URL: "https://github.com/dwyl/english-words/raw/master/words.txt"},
		{URL: "https://archive.org/download/mobywordlists03201gut/SINGLE.TXT"},
		{URL: "https://archive.org/download/mobywordlists03201gut/ACRONYMS.TXT"},
		{URL: "https://archive.org/download/mobywordlists03201gut/COMPOUND.TXT"},
		{URL: "https://archive.org/download/mobywordlists03201gut/NAMES.TXT"},
		{URL: "https://github.com/brannondorsey/naive-hashcat/releases/download/data/rockyou.txt"},
		{URL: "https://www.eff.org/files/2016/07/18/eff_large_wordlist.txt", Kind: KindDiceware},
	}
}

// URL returns a source fetching spec with client. A nil client means
// http.DefaultClient.
func URL(client *http.Client, spec Spec) Source {
	if client == nil {
		client = http.DefaultClient
	}
	return remote{client: client, spec: spec}
}

// URLs returns one source per spec.
func URLs(client *http.Client, specs []Spec) []Source {
	srcs := make([]Source, len(specs))
	for i, s := range specs {
		srcs[i] = URL(client, s)
	}
	return srcs
}

type remote struct {
	client *http.Client
	spec   Spec
}

func (r remote) Name() string { return r.spec.URL }

func (r remote) Open(ctx context.Context) (io.ReadCloser, error) {
	u, err := url.Parse(r.spec.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", uiderrors.ErrFetch, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", uiderrors.ErrFetch, err)
	}
	rsp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", uiderrors.ErrFetch, err)
	}
	if rsp.StatusCode < 200 || rsp.StatusCode > 299 {
		rsp.Body.Close()
		return nil, fmt.Errorf("%w: %s: %s", uiderrors.ErrFetch, r.spec.URL, rsp.Status)
	}

	body, err := decompress(u.Path, rsp.Body)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%w: %s: %w", uiderrors.ErrFetch, r.spec.URL, err), rsp.Body.Close())
	}
	if r.spec.Kind != KindDiceware {
		return body, nil
	}
	defer body.Close()
	words, err := dicewareWords(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.spec.URL, err)
	}
	return io.NopCloser(bytes.NewReader(words)), nil
}

// dicewareWords keeps the word column of a diceware list.
func dicewareWords(r io.Reader) ([]byte, error) {
	var out bytes.Buffer
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := bytes.TrimSuffix(sc.Bytes(), []byte{'\r'})
		if len(line) == 0 {
			continue
		}
		_, word, ok := bytes.Cut(line, []byte{'\t'})
		if !ok {
			return nil, fmt.Errorf("%w: line %d has no tab", uiderrors.ErrMalformedList, n)
		}
		out.Write(word)
		out.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
