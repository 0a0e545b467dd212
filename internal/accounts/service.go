package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/ledgerdesk/internal/logging"
	"github.com/cleared-dev/ledgerdesk/internal/model"
)

var (
	// ErrCodeExists indicates another account already uses the code.
	ErrCodeExists = errors.New("accounts: code already exists")
	// ErrParentNotFound indicates the draft references an unknown parent.
	ErrParentNotFound = errors.New("accounts: parent account not found")
	// ErrNotFound indicates an unknown account id.
	ErrNotFound = errors.New("accounts: account not found")
	// ErrInvalidAccount indicates a draft failed field validation.
	ErrInvalidAccount = errors.New("accounts: invalid account")
)

// Source supplies the full account list for a book.
type Source interface {
	All() []model.Account
}

// Recorder receives one audit line per change.
type Recorder interface {
	Record(action, details, ref string) error
}

// accountFields is the shape checked before an account is stored.
type accountFields struct {
	Code   string `validate:"required,max=64"`
	Name   string `validate:"required,max=200"`
	Type   string `validate:"required,oneof=asset liability equity revenue expense"`
	Nature string `validate:"required,oneof=debit credit"`
	Level  int    `validate:"min=1"`
}

// Service provides in-memory lookup over the chart of accounts and acts as
// its persistence sink.
type Service struct {
	accounts []model.Account
	byID     map[string]int
	byCode   map[string]string
	log      logrus.FieldLogger
	recorder Recorder
	validate *validator.Validate
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for account events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// WithRecorder sets the audit recorder notified on every change.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// NewService creates a Service from a slice of accounts. The slice is copied.
func NewService(accounts []model.Account, opts ...Option) *Service {
	s := &Service{
		accounts: slices.Clone(accounts),
		log:      logging.Discard(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reindex()
	return s
}

// Load reads chart-of-accounts.csv from a books root and returns a Service.
func Load(repoRoot string, opts ...Option) (*Service, error) {
	path := chartPath(repoRoot)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	return NewService(accts, opts...), nil
}

func (s *Service) reindex() {
	s.byID = make(map[string]int, len(s.accounts))
	s.byCode = make(map[string]string, len(s.accounts))
	for i, a := range s.accounts {
		s.byID[a.ID] = i
		s.byCode[a.Code] = a.ID
	}
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.Account, bool) {
	i, ok := s.byID[id]
	if !ok {
		return model.Account{}, false
	}
	return s.accounts[i], true
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// ByCode returns the account with the given code.
func (s *Service) ByCode(code string) (model.Account, bool) {
	accountID, ok := s.byCode[code]
	if !ok {
		return model.Account{}, false
	}
	return s.Get(accountID)
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// Children returns the direct children of an account.
func (s *Service) Children(parentID string) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.ParentID == parentID && parentID != "" {
			result = append(result, a)
		}
	}
	return result
}

// Suggest builds a draft under parentID ("" for a main account) with the
// next free code.
func (s *Service) Suggest(parentID string, params DraftParams) (model.Account, error) {
	if parentID == "" {
		return NewDraft(nil, s.accounts, params), nil
	}
	parent, ok := s.Get(parentID)
	if !ok {
		return model.Account{}, fmt.Errorf("%w: %s", ErrParentNotFound, parentID)
	}
	return NewDraft(&parent, s.accounts, params), nil
}

// NewID returns a fresh random account id.
func NewID() string {
	return uuid.NewString()
}

// Check reports whether draft could be created now: field validation,
// parent rules and code uniqueness. A blank nature is derived from the type.
func (s *Service) Check(draft model.Account) error {
	if draft.Nature == "" {
		draft.Nature = draft.Type.Nature()
	}
	if draft.ID != "" && s.Exists(draft.ID) {
		return fmt.Errorf("%w: id %s already in use", ErrInvalidAccount, draft.ID)
	}
	if err := s.check(draft); err != nil {
		return err
	}
	if _, taken := s.byCode[draft.Code]; taken {
		return fmt.Errorf("%w: %s", ErrCodeExists, draft.Code)
	}
	return nil
}

// Create validates a draft and adds it to the chart. An empty ID is filled
// with a random UUID. Returns the stored account.
func (s *Service) Create(draft model.Account) (model.Account, error) {
	if draft.ID == "" {
		draft.ID = NewID()
	}
	if draft.Nature == "" {
		draft.Nature = draft.Type.Nature()
	}
	if err := s.Check(draft); err != nil {
		if errors.Is(err, ErrCodeExists) {
			s.log.WithField("code", draft.Code).Warn("Accounts.Create.DuplicateCode")
		}
		return model.Account{}, err
	}

	s.accounts = append(s.accounts, draft)
	s.byID[draft.ID] = len(s.accounts) - 1
	s.byCode[draft.Code] = draft.ID

	s.log.WithFields(logrus.Fields{
		"account_id": draft.ID,
		"code":       draft.Code,
		"type":       draft.Type,
	}).Info("Accounts.Create.Complete")
	s.record("account_created", fmt.Sprintf("%s %s", draft.Code, draft.Name), draft.ID)

	return draft, nil
}

// Update replaces a stored account. The code must stay unique.
func (s *Service) Update(acct model.Account) error {
	i, ok := s.byID[acct.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, acct.ID)
	}
	if acct.Nature == "" {
		acct.Nature = acct.Type.Nature()
	}
	if err := s.check(acct); err != nil {
		return err
	}
	if owner, taken := s.byCode[acct.Code]; taken && owner != acct.ID {
		return fmt.Errorf("%w: %s", ErrCodeExists, acct.Code)
	}

	delete(s.byCode, s.accounts[i].Code)
	s.accounts[i] = acct
	s.byCode[acct.Code] = acct.ID

	s.log.WithField("account_id", acct.ID).Info("Accounts.Update.Complete")
	s.record("account_updated", fmt.Sprintf("%s %s", acct.Code, acct.Name), acct.ID)
	return nil
}

// check applies field validation and the parent invariants: a child sits
// one level below its parent and shares its type.
func (s *Service) check(acct model.Account) error {
	fields := accountFields{
		Code:   acct.Code,
		Name:   acct.Name,
		Type:   string(acct.Type),
		Nature: string(acct.Nature),
		Level:  acct.Level,
	}
	if err := s.validate.Struct(fields); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	if acct.Nature != acct.Type.Nature() {
		return fmt.Errorf("%w: nature %s does not match type %s", ErrInvalidAccount, acct.Nature, acct.Type)
	}

	if acct.IsRoot() {
		if acct.Level != 1 {
			return fmt.Errorf("%w: main account must be level 1, got %d", ErrInvalidAccount, acct.Level)
		}
		return nil
	}

	parent, ok := s.Get(acct.ParentID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrParentNotFound, acct.ParentID)
	}
	if acct.ParentID == acct.ID {
		return fmt.Errorf("%w: account cannot be its own parent", ErrInvalidAccount)
	}
	if acct.Level != levelOf(parent)+1 {
		return fmt.Errorf("%w: level %d under parent level %d", ErrInvalidAccount, acct.Level, levelOf(parent))
	}
	if acct.Type != parent.Type {
		return fmt.Errorf("%w: type %s differs from parent type %s", ErrInvalidAccount, acct.Type, parent.Type)
	}
	return nil
}

func (s *Service) record(action, details, ref string) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(action, details, ref); err != nil {
		s.log.WithError(err).Warn("Accounts.Audit.Error")
	}
}

// Save writes the chart of accounts to accounts/chart-of-accounts.csv.
func (s *Service) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, "accounts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.Create(chartPath(repoRoot))
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}

func chartPath(repoRoot string) string {
	return filepath.Join(repoRoot, "accounts", "chart-of-accounts.csv")
}
