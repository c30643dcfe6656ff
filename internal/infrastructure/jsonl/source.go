package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"ProductRanker/internal/domain"
	"ProductRanker/internal/infrastructure/dataset"
	"ProductRanker/internal/ports"
)

// Review lines routinely carry full review text; a generous line cap avoids
// bufio.ErrTooLong on long reviews without buffering the whole file.
const maxLineBytes = 16 << 20

// Source streams reviews from a JSONL reader one line at a time. Single
// pass, not restartable, never holds more than one line in memory.
type Source struct {
	rc      io.ReadCloser
	scanner *bufio.Scanner
	line    int64
}

var _ ports.ReviewSource = (*Source)(nil)

// NewSource wraps an already-open reader.
func NewSource(rc io.ReadCloser) *Source {
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	return &Source{rc: rc, scanner: scanner}
}

// reviewLine decodes only the two fields the core reads; everything else in
// the record stays opaque.
type reviewLine struct {
	ParentASIN string  `json:"parent_asin"`
	Rating     float64 `json:"rating"`
}

// Next returns the next review, io.EOF at end of stream, or an error
// wrapping domain.ErrMalformedRecord for a line that does not decode. The
// stream stays usable after a malformed line.
func (s *Source) Next(ctx context.Context) (domain.Review, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Review{}, err
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return domain.Review{}, fmt.Errorf("scan line %d: %w", s.line+1, err)
			}
			return domain.Review{}, io.EOF
		}
		s.line++

		raw := s.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec reviewLine
		if err := json.Unmarshal(raw, &rec); err != nil {
			return domain.Review{}, fmt.Errorf("decode line %d: %w", s.line, domain.ErrMalformedRecord)
		}

		return domain.Review{ProductID: rec.ParentASIN, Rating: rec.Rating}, nil
	}
}

// Close releases the underlying reader.
func (s *Source) Close() error {
	return s.rc.Close()
}

// FileOpener opens category review files from the local dataset layout.
type FileOpener struct {
	dataDir string
}

var _ ports.SourceOpener = (*FileOpener)(nil)

// NewFileOpener points the opener at the dataset root directory.
func NewFileOpener(dataDir string) *FileOpener {
	return &FileOpener{dataDir: dataDir}
}

// ErrNoReviewFile reports a category whose review file has not been
// downloaded yet.
var ErrNoReviewFile = errors.New("category review file not found")

// Open streams the category's review JSONL file.
func (o *FileOpener) Open(_ context.Context, category string) (ports.ReviewSource, error) {
	path := dataset.ReviewFile(o.dataDir, category)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (download the category first)", ErrNoReviewFile, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return NewSource(f), nil
}
