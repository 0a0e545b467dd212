// Package books opens a books directory and wires its stores together.
package books

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/ledgerdesk/internal/accounts"
	"github.com/cleared-dev/ledgerdesk/internal/auditlog"
	"github.com/cleared-dev/ledgerdesk/internal/config"
	"github.com/cleared-dev/ledgerdesk/internal/journal"
	"github.com/cleared-dev/ledgerdesk/internal/logging"
	"github.com/cleared-dev/ledgerdesk/internal/model"
	"github.com/cleared-dev/ledgerdesk/internal/openingbalance"
)

// ErrAlreadyInitialized is returned by Init when ledger.yaml already exists.
var ErrAlreadyInitialized = errors.New("books: already initialized")

// OpeningBalanceDescription is the description of posted opening entries.
const OpeningBalanceDescription = "Opening balances"

// Books is an open books directory.
type Books struct {
	Dir      string
	Config   *config.Config
	Log      *logrus.Logger
	Accounts *accounts.Service
	Journal  *journal.Service
	Tree     *accounts.TreeBuilder
	Audit    *auditlog.Log // nil when auditing is disabled
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	logOut io.Writer
	logger *logrus.Logger
}

// WithLogOutput sends log output to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *openOptions) { o.logOut = w }
}

// WithLogger uses l instead of building a logger from the config.
func WithLogger(l *logrus.Logger) Option {
	return func(o *openOptions) { o.logger = l }
}

// Init creates the directory layout, ledger.yaml and the default chart of
// accounts for entityType under dir, then opens the result.
func Init(dir, name, entityType string, opts ...Option) (*Books, error) {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInitialized, dir)
	}

	for _, sub := range []string{"accounts", "journal", "logs", "import/opening-balances"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", sub, err)
		}
	}

	cfg := config.Default(name, entityType)
	if err := config.Save(cfgPath, cfg); err != nil {
		return nil, err
	}

	chart := accounts.NewService(accounts.DefaultChart(entityType))
	if err := chart.Save(dir); err != nil {
		return nil, err
	}

	b, err := Open(dir, opts...)
	if err != nil {
		return nil, err
	}
	b.record("books_initialized", fmt.Sprintf("%s (%s), %d accounts", name, entityType, len(chart.All())), "")
	b.Log.WithFields(logrus.Fields{
		"dir":      dir,
		"accounts": len(chart.All()),
	}).Info("Books.Init.Complete")
	return b, nil
}

// Open loads ledger.yaml and the chart of accounts from dir.
func Open(dir string, opts ...Option) (*Books, error) {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return nil, err
	}

	log := o.logger
	if log == nil {
		out := o.logOut
		if out == nil {
			out = os.Stderr
		}
		log, err = logging.Setup(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Out:    out,
		})
		if err != nil {
			return nil, fmt.Errorf("setting up logging: %w", err)
		}
	}

	tag, err := cfg.Locale()
	if err != nil {
		return nil, err
	}

	b := &Books{
		Dir:    dir,
		Config: cfg,
		Log:    log,
		Tree:   accounts.NewTreeBuilder(tag),
	}

	acctOpts := []accounts.Option{accounts.WithLogger(log)}
	jrnlOpts := []journal.Option{journal.WithLogger(log)}
	if cfg.Audit.Enabled {
		b.Audit = auditlog.New(dir, cfg.Audit.Actor)
		acctOpts = append(acctOpts, accounts.WithRecorder(b.Audit))
		jrnlOpts = append(jrnlOpts, journal.WithRecorder(b.Audit))
	}

	b.Accounts, err = accounts.Load(dir, acctOpts...)
	if err != nil {
		return nil, err
	}
	b.Journal = journal.NewService(dir, b.Accounts, jrnlOpts...)

	log.WithFields(logrus.Fields{
		"business": cfg.Business.Name,
		"accounts": len(b.Accounts.All()),
	}).Debug("Books.Open.Complete")
	return b, nil
}

// AccountTree returns the chart of accounts as an ordered forest.
func (b *Books) AccountTree() []*model.AccountTreeNode {
	return b.Tree.Build(b.Accounts.All())
}

// CreateAccount adds an account under parentID ("" for a main account)
// with the next free code and saves the chart.
func (b *Books) CreateAccount(parentID string, params accounts.DraftParams) (model.Account, error) {
	draft, err := b.Accounts.Suggest(parentID, params)
	if err != nil {
		return model.Account{}, err
	}
	acct, err := b.Accounts.Create(draft)
	if err != nil {
		return model.Account{}, err
	}
	if err := b.Accounts.Save(b.Dir); err != nil {
		return model.Account{}, err
	}
	return acct, nil
}

// PostEntry fills in account labels and the base currency, then posts.
func (b *Books) PostEntry(entry model.JournalEntry) (model.JournalEntry, error) {
	if entry.Currency == "" {
		entry.Currency = b.Config.Books.BaseCurrency
	}
	entry.Lines = b.label(entry.Lines)
	return b.Journal.Post(entry)
}

func (b *Books) label(lines []model.JournalEntryLine) []model.JournalEntryLine {
	out := make([]model.JournalEntryLine, len(lines))
	for i, l := range lines {
		if acct, ok := b.Accounts.Get(l.AccountID); ok {
			l.AccountCode = acct.Code
			l.AccountName = acct.Name
		}
		out[i] = l
	}
	return out
}

// OpeningImport is the outcome of one opening balance import.
type OpeningImport struct {
	openingbalance.ImportResult
	Aggregate openingbalance.Result
	Entry     model.JournalEntry // zero when nothing was posted
}

// ImportOpeningBalances reads an opening balance CSV, aggregates the
// matched rows and posts them as one entry dated date. Nothing is posted
// when the file has row errors or the aggregate does not balance.
func (b *Books) ImportOpeningBalances(r io.Reader, date time.Time) (OpeningImport, error) {
	res, err := openingbalance.Import(r, b.Accounts, b.Log)
	if err != nil {
		return OpeningImport{}, err
	}
	out := OpeningImport{ImportResult: res, Aggregate: openingbalance.Aggregate(res.Balances)}

	if len(res.Errors) > 0 {
		errs := make([]error, len(res.Errors))
		for i, re := range res.Errors {
			errs[i] = re
		}
		return out, fmt.Errorf("opening balances: %d rows rejected: %w", len(res.Errors), errors.Join(errs...))
	}
	if !out.Aggregate.IsBalanced {
		b.Log.WithField("difference", out.Aggregate.Difference.StringFixed(2)).Warn("Books.OpeningBalances.Unbalanced")
		return out, fmt.Errorf("%w: opening balances differ by %s", journal.ErrUnbalanced, out.Aggregate.Difference.StringFixed(2))
	}

	entry := out.Aggregate.Entry(date, OpeningBalanceDescription, b.Config.Books.BaseCurrency)
	posted, err := b.PostEntry(entry)
	if err != nil {
		return out, err
	}
	out.Entry = posted
	return out, nil
}

// ImportPending imports every CSV waiting in import/opening-balances and
// moves each successfully posted file to processed. It stops at the first
// failure.
func (b *Books) ImportPending(date time.Time) ([]OpeningImport, error) {
	files, err := openingbalance.Scan(b.Dir)
	if err != nil {
		return nil, err
	}

	var results []OpeningImport
	for _, fi := range files {
		res, err := b.importFile(fi, date)
		if err != nil {
			return results, fmt.Errorf("importing %s: %w", fi.Name, err)
		}
		results = append(results, res)
		if err := openingbalance.MarkProcessed(b.Dir, fi.Name); err != nil {
			return results, err
		}
	}
	return results, nil
}

func (b *Books) importFile(fi openingbalance.FileInfo, date time.Time) (OpeningImport, error) {
	f, err := os.Open(fi.Path)
	if err != nil {
		return OpeningImport{}, fmt.Errorf("opening %s: %w", fi.Name, err)
	}
	defer f.Close()
	return b.ImportOpeningBalances(f, date)
}

func (b *Books) record(action, details, ref string) {
	if b.Audit == nil {
		return
	}
	if err := b.Audit.Record(action, details, ref); err != nil {
		b.Log.WithError(err).Warn("Books.Audit.Error")
	}
}
