package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/ledgerdesk/internal/id"
	"github.com/cleared-dev/ledgerdesk/internal/logging"
	"github.com/cleared-dev/ledgerdesk/internal/model"
)

// Recorder receives one audit line per posted entry.
type Recorder interface {
	Record(action, details, ref string) error
}

// Service is the persistence sink for journal entries. Entries are appended
// to journal/YYYY/MM/journal.csv under the books root.
type Service struct {
	repoRoot string
	accounts AccountChecker
	log      logrus.FieldLogger
	recorder Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for posting events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// WithRecorder sets the audit recorder notified on every post.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// NewService creates a journal Service.
func NewService(repoRoot string, accounts AccountChecker, opts ...Option) *Service {
	s := &Service{repoRoot: repoRoot, accounts: accounts, log: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Post prunes empty lines, runs the save guard and appends the entry to its
// month's journal. Returns the stored entry with its assigned ID.
func (s *Service) Post(entry model.JournalEntry) (model.JournalEntry, error) {
	entry.Lines = CleanEmptyLines(entry.Lines)

	if verrs := ValidateEntry(entry, s.accounts); len(verrs) > 0 {
		s.log.WithFields(logrus.Fields{
			"errors": len(verrs),
			"lines":  len(entry.Lines),
		}).Warn("Journal.Post.Refused")
		return model.JournalEntry{}, fmt.Errorf("validation failed: %w", Join(verrs))
	}

	year := entry.Date.Year()
	month := int(entry.Date.Month())

	seq, err := s.NextEntrySeq(year, month)
	if err != nil {
		return model.JournalEntry{}, err
	}
	entry.ID = id.FormatEntryID(year, month, seq)

	// Append to journal file (create dir + header if new).
	journalPath := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(journalPath), 0o755); err != nil {
		return model.JournalEntry{}, fmt.Errorf("creating journal dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(journalPath); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(journalPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if isNew {
		err = WriteEntries(f, []model.JournalEntry{entry})
	} else {
		err = AppendEntries(f, []model.JournalEntry{entry})
	}
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("appending entry: %w", err)
	}

	t := Summarize(entry.Lines, entry.Rate())
	s.log.WithFields(logrus.Fields{
		"entry_id": entry.ID,
		"lines":    len(entry.Lines),
		"total":    t.TotalDebit.StringFixed(2),
	}).Info("Journal.Post.Complete")
	s.record("entry_posted", fmt.Sprintf("%s, %d lines, %s", entry.Description, len(entry.Lines), t.TotalDebit.StringFixed(2)), entry.ID)

	return entry, nil
}

func (s *Service) record(action, details, ref string) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(action, details, ref); err != nil {
		s.log.WithError(err).Warn("Journal.Audit.Error")
	}
}

// ReadMonth reads all entries for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]model.JournalEntry, error) {
	path := s.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return entries, nil
}

// NextEntrySeq returns the next available sequence number for a month.
func (s *Service) NextEntrySeq(year, month int) (int, error) {
	entries, err := s.ReadMonth(year, month)
	if err != nil {
		return 0, err
	}

	maxSeq := 0
	for _, e := range entries {
		_, _, seq, err := id.ParseEntryID(e.ID)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1, nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.repoRoot, "journal", fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "journal.csv")
}
