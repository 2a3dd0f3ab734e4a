package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"svw.info/lattice/internal/domain"
)

var header = []string{"submitted_unix", "email"}

// CSV appends submissions to a single file shared by every session in the
// process. Writes are serialized.
type CSV struct {
	path string
	mu   sync.Mutex
}

func NewCSV(path string) *CSV { return &CSV{path: path} }

func (s *CSV) Path() string { return s.path }

func (s *CSV) Append(ctx context.Context, sub domain.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	email := strings.TrimSpace(sub.Email)
	if email == "" {
		return errors.New("invalid submission: missing email")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	_, statErr := os.Stat(s.path)
	fresh := errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	row := []string{strconv.FormatInt(sub.SubmittedAt.Unix(), 10), email}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (s *CSV) List(ctx context.Context) ([]domain.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	var out []domain.Submission
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && rec[0] == header[0] {
			continue
		}
		unix, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad timestamp %q", line, rec[0])
		}
		out = append(out, domain.Submission{Email: rec[1], SubmittedAt: time.Unix(unix, 0).UTC()})
	}
	return out, nil
}
