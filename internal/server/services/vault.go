package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/dmitrijs2005/glider/internal/cryptox"
	"github.com/dmitrijs2005/glider/internal/dbx"
	"github.com/dmitrijs2005/glider/internal/keymutex"
	"github.com/dmitrijs2005/glider/internal/logging"
	"github.com/dmitrijs2005/glider/internal/server/generator"
	"github.com/dmitrijs2005/glider/internal/server/models"
	"github.com/dmitrijs2005/glider/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/glider/internal/server/session"
	"github.com/dmitrijs2005/glider/internal/server/validator"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Sealed field names, part of the additional data of each sealed value.
const (
	fieldTail   = "tail"
	fieldScopes = "scopes"
	fieldSecret = "secret"
)

// InsertInput describes a user-supplied password. Configuration is optional;
// when nil it is inferred from Secret.
type InsertInput struct {
	Tail          string
	Scopes        *string
	Secret        string
	Configuration *models.PasswordConfiguration
}

// EditInput changes only the non-nil fields. A blank Scopes clears them.
type EditInput struct {
	Tail   *string
	Scopes *string
	Secret *string
}

// ListOptions filters and pages a keychain. Pages are numbered from 1.
type ListOptions struct {
	Keywords       []string
	Types          []models.PasswordType
	Page           int
	PageSize       int
	IncludeSecrets bool
}

// VaultService owns every password mutation. Each mutation runs in one
// unit of work together with its event, under a per-password lock.
type VaultService struct {
	repos  repomanager.RepositoryManager
	policy *generator.Policy
	sealer *cryptox.Sealer
	events *EventLog
	locks  *keymutex.KeyMutex
	logger logging.Logger
	now    func() time.Time
}

func NewVaultService(repos repomanager.RepositoryManager, policy *generator.Policy, sealer *cryptox.Sealer,
	events *EventLog, logger logging.Logger) *VaultService {
	return &VaultService{
		repos:  repos,
		policy: policy,
		sealer: sealer,
		events: events,
		locks:  keymutex.New(),
		logger: logger.With("module", "vault"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func validateTailScopes(tail string, scopes *string) (*string, error) {
	if !validator.TailIsValid(tail) {
		return nil, common.NewFieldError("tail", fmt.Sprintf("must be non-blank and at most %d characters", validator.TailMaxLength))
	}
	if !validator.ScopesAreValid(scopes) {
		return nil, common.NewFieldError("scopes", fmt.Sprintf("must be at most %d characters", validator.ScopesMaxLength))
	}
	return validator.NormalizeScopes(scopes), nil
}

func (s *VaultService) validateSecret(secret string) (models.PasswordConfiguration, error) {
	if !validator.InputIsValid(secret) {
		return models.PasswordConfiguration{}, common.NewFieldError("secret", "required")
	}
	if b := s.policy.Bounds(); !b.SecretIsValid(secret) {
		return models.PasswordConfiguration{}, common.NewFieldError("length", fmt.Sprintf("must be between %d and %d", b.Min, b.Max))
	}
	return generator.InferConfiguration(secret), nil
}

// InsertPassword stores a user-supplied secret and records INSERTED.
func (s *VaultService) InsertPassword(ctx context.Context, who session.Identity, in InsertInput) (string, error) {
	if err := requireIdentity(who); err != nil {
		return "", err
	}
	scopes, err := validateTailScopes(in.Tail, in.Scopes)
	if err != nil {
		return "", err
	}
	cfg, err := s.validateSecret(in.Secret)
	if err != nil {
		return "", err
	}
	if in.Configuration != nil {
		if !generator.Conforms(in.Secret, *in.Configuration) {
			return "", common.NewFieldError("password_configurations", "secret does not match the configuration")
		}
		cfg = *in.Configuration
	}

	return s.create(ctx, who, models.PasswordInserted, in.Tail, scopes, in.Secret, cfg)
}

// GeneratePassword creates a secret with the policy and records GENERATED.
func (s *VaultService) GeneratePassword(ctx context.Context, who session.Identity, tail string, scopes *string,
	cfg models.PasswordConfiguration) (id, secret string, err error) {

	if err := requireIdentity(who); err != nil {
		return "", "", err
	}
	scopes, err = validateTailScopes(tail, scopes)
	if err != nil {
		return "", "", err
	}
	secret, err = s.policy.Generate(cfg)
	if err != nil {
		return "", "", err
	}

	id, err = s.create(ctx, who, models.PasswordGenerated, tail, scopes, secret, cfg)
	if err != nil {
		return "", "", err
	}
	return id, secret, nil
}

func (s *VaultService) create(ctx context.Context, who session.Identity, typ models.PasswordType,
	tail string, scopes *string, secret string, cfg models.PasswordConfiguration) (string, error) {

	now := s.now()
	pw := &models.Password{
		ID:            uuid.NewString(),
		UserID:        who.UserID,
		Type:          typ,
		Secret:        secret,
		Tail:          tail,
		Scopes:        scopes,
		Configuration: cfg,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	row, err := s.seal(pw)
	if err != nil {
		return "", err
	}

	err = s.repos.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Passwords(tx).Create(ctx, row); err != nil {
			return classify("create password", err)
		}
		_, err := s.events.Append(ctx, tx, pw.ID, who, typ.CreationEvent(), now)
		return err
	})
	if err != nil {
		return "", classify("create password", err)
	}

	s.logger.Info(ctx, "password created", "password_id", pw.ID, "user_id", who.UserID, "type", typ)
	return pw.ID, nil
}

// mutate loads passwordID for update under its lock, checks ownership and
// runs fn in the same unit of work.
func (s *VaultService) mutate(ctx context.Context, who session.Identity, passwordID string,
	fn func(ctx context.Context, tx dbx.DBTX, pw *models.Password) error) error {

	if err := requireIdentity(who); err != nil {
		return err
	}
	passwordID, err := canonicalPasswordID(passwordID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(passwordID)
	defer unlock()

	err = s.repos.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		row, err := s.repos.Passwords(tx).GetForUpdate(ctx, passwordID)
		if err != nil {
			return classify("load password", err)
		}
		if err := checkOwner(row, who, false); err != nil {
			return err
		}
		pw, err := s.open(row, true)
		if err != nil {
			return err
		}
		return fn(ctx, tx, pw)
	})
	return classify("update password", err)
}

// canonicalPasswordID returns id in the form it is stored under. Text that
// is not a UUID cannot name a password and never reaches storage.
func canonicalPasswordID(id string) (string, error) {
	if id == "" {
		return "", common.NewFieldError("password_id", "required")
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: password %q", common.ErrNotFound, id)
	}
	return u.String(), nil
}

func checkOwner(row *models.PasswordRow, who session.Identity, allowDeleted bool) error {
	if row.UserID != who.UserID {
		return fmt.Errorf("%w: password %s", common.ErrForbidden, row.ID)
	}
	if row.Deleted() && !allowDeleted {
		return fmt.Errorf("%w: password %s", common.ErrNotFound, row.ID)
	}
	return nil
}

// store reseals pw and writes it together with one event of type typ.
func (s *VaultService) store(ctx context.Context, tx dbx.DBTX, who session.Identity, pw *models.Password,
	typ models.EventType) error {

	pw.UpdatedAt = s.now()
	row, err := s.seal(pw)
	if err != nil {
		return err
	}
	if err := s.repos.Passwords(tx).Update(ctx, row); err != nil {
		return classify("update password", err)
	}
	_, err = s.events.Append(ctx, tx, pw.ID, who, typ, pw.UpdatedAt)
	return err
}

// RefreshPassword replaces the secret with a new one of the same shape and
// records REFRESHED.
func (s *VaultService) RefreshPassword(ctx context.Context, who session.Identity, passwordID string) (string, error) {
	var secret string
	err := s.mutate(ctx, who, passwordID, func(ctx context.Context, tx dbx.DBTX, pw *models.Password) error {
		next, err := s.policy.Refresh(pw)
		if err != nil {
			return err
		}
		pw.Secret = next
		if err := s.store(ctx, tx, who, pw, models.EventRefreshed); err != nil {
			return err
		}
		secret = next
		return nil
	})
	if err != nil {
		return "", err
	}
	s.logger.Info(ctx, "password refreshed", "password_id", passwordID, "user_id", who.UserID)
	return secret, nil
}

// EditPassword applies in atomically and records EDITED. Every provided
// field is validated before anything is written.
func (s *VaultService) EditPassword(ctx context.Context, who session.Identity, passwordID string, in EditInput) error {
	if in.Tail == nil && in.Scopes == nil && in.Secret == nil {
		return common.NewFieldError("password", "nothing to edit")
	}
	if in.Tail != nil && !validator.TailIsValid(*in.Tail) {
		return common.NewFieldError("tail", fmt.Sprintf("must be non-blank and at most %d characters", validator.TailMaxLength))
	}
	if in.Scopes != nil && !validator.ScopesAreValid(in.Scopes) {
		return common.NewFieldError("scopes", fmt.Sprintf("must be at most %d characters", validator.ScopesMaxLength))
	}
	var cfg models.PasswordConfiguration
	if in.Secret != nil {
		var err error
		if cfg, err = s.validateSecret(*in.Secret); err != nil {
			return err
		}
	}

	err := s.mutate(ctx, who, passwordID, func(ctx context.Context, tx dbx.DBTX, pw *models.Password) error {
		if in.Tail != nil {
			pw.Tail = *in.Tail
		}
		if in.Scopes != nil {
			pw.Scopes = validator.NormalizeScopes(in.Scopes)
		}
		if in.Secret != nil {
			pw.Secret = *in.Secret
			pw.Configuration = cfg
		}
		return s.store(ctx, tx, who, pw, models.EventEdited)
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "password edited", "password_id", passwordID, "user_id", who.UserID)
	return nil
}

// CopyPassword returns the secret and records COPIED.
func (s *VaultService) CopyPassword(ctx context.Context, who session.Identity, passwordID string) (string, error) {
	var secret string
	err := s.mutate(ctx, who, passwordID, func(ctx context.Context, tx dbx.DBTX, pw *models.Password) error {
		if _, err := s.events.Append(ctx, tx, pw.ID, who, models.EventCopied, s.now()); err != nil {
			return err
		}
		secret = pw.Secret
		return nil
	})
	if err != nil {
		return "", err
	}
	return secret, nil
}

// DeletePassword tombstones the password. Its events stay readable.
func (s *VaultService) DeletePassword(ctx context.Context, who session.Identity, passwordID string) error {
	err := s.mutate(ctx, who, passwordID, func(ctx context.Context, tx dbx.DBTX, pw *models.Password) error {
		if err := s.repos.Passwords(tx).MarkDeleted(ctx, pw.ID, s.now()); err != nil {
			return classify("delete password", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "password deleted", "password_id", passwordID, "user_id", who.UserID)
	return nil
}

// GetPassword returns one live password without its secret.
func (s *VaultService) GetPassword(ctx context.Context, who session.Identity, passwordID string) (*models.Password, error) {
	if err := requireIdentity(who); err != nil {
		return nil, err
	}
	passwordID, err := canonicalPasswordID(passwordID)
	if err != nil {
		return nil, err
	}
	var pw *models.Password
	err = s.repos.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		row, err := s.repos.Passwords(tx).Get(ctx, passwordID)
		if err != nil {
			return classify("load password", err)
		}
		if err := checkOwner(row, who, false); err != nil {
			return err
		}
		pw, err = s.open(row, false)
		return err
	})
	if err != nil {
		return nil, classify("get password", err)
	}
	return pw, nil
}

// History returns the events of a password owned by the caller, deleted or
// not.
func (s *VaultService) History(ctx context.Context, who session.Identity, passwordID string) ([]models.PasswordEvent, error) {
	if err := requireIdentity(who); err != nil {
		return nil, err
	}
	passwordID, err := canonicalPasswordID(passwordID)
	if err != nil {
		return nil, err
	}
	var out []models.PasswordEvent
	err = s.repos.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		row, err := s.repos.Passwords(tx).Get(ctx, passwordID)
		if err != nil {
			return classify("load password", err)
		}
		if err := checkOwner(row, who, true); err != nil {
			return err
		}
		out, err = s.events.History(ctx, tx, passwordID)
		return err
	})
	if err != nil {
		return nil, classify("history", err)
	}
	return out, nil
}

// ListPasswords returns one page of the caller's live passwords. A password
// matches when any keyword occurs in its tail or in one of its
// comma-separated scopes, ignoring case. Secrets are left empty unless
// opts.IncludeSecrets is set.
func (s *VaultService) ListPasswords(ctx context.Context, who session.Identity, opts ListOptions) (*models.Keychain, error) {
	if err := requireIdentity(who); err != nil {
		return nil, err
	}
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.PageSize > MaxPageSize {
		opts.PageSize = MaxPageSize
	}

	var rows []*models.PasswordRow
	err := s.repos.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		rows, err = s.repos.Passwords(tx).ListActive(ctx, who.UserID, opts.Types)
		return classify("list passwords", err)
	})
	if err != nil {
		return nil, classify("list passwords", err)
	}

	keywords := make([]string, 0, len(opts.Keywords))
	for _, k := range opts.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}

	matched := make([]*models.Password, 0, len(rows))
	for _, row := range rows {
		pw, err := s.open(row, opts.IncludeSecrets)
		if err != nil {
			return nil, classify("list passwords", err)
		}
		if matches(pw, keywords) {
			matched = append(matched, pw)
		}
	}

	from := len(matched)
	if opts.Page-1 <= len(matched)/opts.PageSize {
		from = min((opts.Page-1)*opts.PageSize, len(matched))
	}
	to := min(from+opts.PageSize, len(matched))
	return &models.Keychain{
		Passwords: matched[from:to],
		Page:      opts.Page,
		PageSize:  opts.PageSize,
		Total:     len(matched),
	}, nil
}

func matches(pw *models.Password, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	tail := strings.ToLower(pw.Tail)
	var scopes []string
	if pw.Scopes != nil {
		scopes = strings.Split(strings.ToLower(*pw.Scopes), ",")
	}
	for _, k := range keywords {
		if strings.Contains(tail, k) {
			return true
		}
		for _, sc := range scopes {
			if strings.Contains(sc, k) {
				return true
			}
		}
	}
	return false
}

// exportAll returns every live password of the caller with its secret.
func (s *VaultService) exportAll(ctx context.Context, who session.Identity) ([]*models.Password, error) {
	kc, err := s.ListPasswords(ctx, who, ListOptions{Page: 1, PageSize: MaxPageSize, IncludeSecrets: true})
	if err != nil {
		return nil, err
	}
	out := kc.Passwords
	for page := 2; len(out) < kc.Total; page++ {
		next, err := s.ListPasswords(ctx, who, ListOptions{Page: page, PageSize: MaxPageSize, IncludeSecrets: true})
		if err != nil {
			return nil, err
		}
		if len(next.Passwords) == 0 {
			break
		}
		out = append(out, next.Passwords...)
	}
	return out, nil
}

func (s *VaultService) seal(pw *models.Password) (*models.PasswordRow, error) {
	row := &models.PasswordRow{
		ID:            pw.ID,
		UserID:        pw.UserID,
		Type:          pw.Type,
		Configuration: pw.Configuration,
		CreatedAt:     pw.CreatedAt,
		UpdatedAt:     pw.UpdatedAt,
		DeletedAt:     pw.DeletedAt,
	}
	var err error
	if row.Tail, err = s.sealer.SealString(pw.UserID, pw.Tail, cryptox.AAD(pw.UserID, pw.ID, fieldTail)); err != nil {
		return nil, err
	}
	if pw.Scopes != nil {
		if row.Scopes, err = s.sealer.SealString(pw.UserID, *pw.Scopes, cryptox.AAD(pw.UserID, pw.ID, fieldScopes)); err != nil {
			return nil, err
		}
	}
	if row.Secret, err = s.sealer.SealString(pw.UserID, pw.Secret, cryptox.AAD(pw.UserID, pw.ID, fieldSecret)); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *VaultService) open(row *models.PasswordRow, withSecret bool) (*models.Password, error) {
	pw := &models.Password{
		ID:            row.ID,
		UserID:        row.UserID,
		Type:          row.Type,
		Configuration: row.Configuration,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		DeletedAt:     row.DeletedAt,
	}
	var err error
	if pw.Tail, err = s.sealer.OpenString(row.UserID, row.Tail, cryptox.AAD(row.UserID, row.ID, fieldTail)); err != nil {
		return nil, fmt.Errorf("open tail of %s: %w", row.ID, err)
	}
	if row.Scopes != nil {
		sc, err := s.sealer.OpenString(row.UserID, row.Scopes, cryptox.AAD(row.UserID, row.ID, fieldScopes))
		if err != nil {
			return nil, fmt.Errorf("open scopes of %s: %w", row.ID, err)
		}
		pw.Scopes = &sc
	}
	if withSecret && row.Secret != nil {
		if pw.Secret, err = s.sealer.OpenString(row.UserID, row.Secret, cryptox.AAD(row.UserID, row.ID, fieldSecret)); err != nil {
			return nil, fmt.Errorf("open secret of %s: %w", row.ID, err)
		}
	}
	return pw, nil
}
