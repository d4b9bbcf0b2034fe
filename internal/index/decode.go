package index

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	sterrors "github.com/Aman-CERP/storytree/internal/errors"
)

// Supported document versions.
const (
	VersionStories = 3 // {"v": 3, "stories": {...}}
	VersionEntries = 4 // {"v": 4, "entries": {...}}
)

// Load reads the index document at path.
func Load(path string) (Index, error) {
	f, err := os.Open(path)
	if err != nil {
		switch {
		case stderrors.Is(err, os.ErrNotExist):
			return Index{}, sterrors.New(sterrors.ErrCodeFileNotFound, "index file not found", err).
				WithDetail("path", path).
				WithSuggestion("Build your stories first or pass the index path explicitly")
		case stderrors.Is(err, os.ErrPermission):
			return Index{}, sterrors.New(sterrors.ErrCodeFilePermission, "cannot read index file", err).
				WithDetail("path", path)
		default:
			return Index{}, sterrors.IOError("cannot open index file", err).WithDetail("path", path)
		}
	}
	defer func() { _ = f.Close() }()

	idx, err := Decode(f)
	if err != nil {
		if se, ok := sterrors.As(err); ok {
			return Index{}, se.WithDetail("path", path)
		}
		return Index{}, err
	}
	return idx, nil
}

// Decode parses an index document, keeping entries in document order.
// Documents missing "v" are versioned by whichever of "stories" or
// "entries" they contain.
func Decode(r io.Reader) (Index, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return Index{}, err
	}

	var (
		idx     Index
		entries []Entry
		listKey string
	)
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return Index{}, err
		}
		switch key {
		case "v":
			if err := dec.Decode(&idx.Version); err != nil {
				return Index{}, decodeError(err, "invalid version field")
			}
		case "stories", "entries":
			if listKey != "" {
				return Index{}, sterrors.ValidationError("index has both stories and entries", nil)
			}
			listKey = key
			if entries, err = decodeEntries(dec); err != nil {
				return Index{}, err
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return Index{}, decodeError(err, fmt.Sprintf("invalid value for %q", key))
			}
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return Index{}, err
	}

	if listKey == "" {
		return Index{}, sterrors.ValidationError("index has neither stories nor entries", nil).
			WithSuggestion("Point storytree at an index.json produced by a story build")
	}
	if idx.Version == 0 {
		idx.Version = VersionStories
		if listKey == "entries" {
			idx.Version = VersionEntries
		}
	}
	if idx.Version != VersionStories && idx.Version != VersionEntries {
		return Index{}, sterrors.New(sterrors.ErrCodeIndexVersion,
			fmt.Sprintf("unsupported index version %d", idx.Version), nil).
			WithDetail("supported", fmt.Sprintf("%d, %d", VersionStories, VersionEntries))
	}

	idx.Entries = entries
	return idx, nil
}

// decodeEntries reads an id -> entry object in key order.
func decodeEntries(dec *json.Decoder) ([]Entry, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var entries []Entry
	for dec.More() {
		id, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return nil, decodeError(err, fmt.Sprintf("invalid entry %q", id))
		}
		if e.ID == "" {
			e.ID = id
		}
		entries = append(entries, e)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return entries, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return decodeError(err, "malformed index document")
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return sterrors.ValidationError(fmt.Sprintf("malformed index document: expected %q, got %v", want, tok), nil)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", decodeError(err, "malformed index document")
	}
	key, ok := tok.(string)
	if !ok {
		return "", sterrors.ValidationError(fmt.Sprintf("malformed index document: expected key, got %v", tok), nil)
	}
	return key, nil
}

// decodeError classifies a JSON failure. Premature EOF usually means the
// file is still being written, so it is reported as retryable truncation.
func decodeError(err error, message string) error {
	if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return sterrors.New(sterrors.ErrCodeFileTruncated, "index document is truncated", err)
	}
	return sterrors.ValidationError(message, err)
}
