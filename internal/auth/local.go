package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/connecther/connecther/internal/apperror"
	"github.com/connecther/connecther/internal/model"
	"github.com/connecther/connecther/internal/repository"
	"github.com/connecther/connecther/internal/session"
)

// localRecordKey is the single fixed storage key for the local strategy.
// The whole identity is serialized under it as one unit and read back
// verbatim at startup.
const localRecordKey = "user"

// localRecord is the persisted form of the local identity: the identity
// itself plus the registration password hash. The hash is stored but never
// returned through the session store.
type localRecord struct {
	model.User
	PasswordHash string `json:"passwordHash,omitempty"`
}

// Local is the demo-grade credential strategy: any non-empty credentials
// are accepted. Two states only — unauthenticated and authenticated — with
// login/register moving forward and logout moving back. Profile updates
// extend the identity without a state transition.
type Local struct {
	profiles  repository.ProfileRepository
	sessions  *session.Store
	passwords *PasswordService
	logger    *slog.Logger
}

var _ Strategy = (*Local)(nil)

// NewLocal creates the local strategy.
func NewLocal(
	profiles repository.ProfileRepository,
	sessions *session.Store,
	passwords *PasswordService,
	logger *slog.Logger,
) *Local {
	return &Local{
		profiles:  profiles,
		sessions:  sessions,
		passwords: passwords,
		logger:    logger,
	}
}

// Name implements Strategy.
func (l *Local) Name() string { return "local" }

// Init reads the persisted identity record back into the session store.
// A missing record simply means nobody is logged in.
func (l *Local) Init(ctx context.Context) error {
	raw, err := l.profiles.Get(ctx, localRecordKey)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("auth/local: reading persisted identity: %w", err)
	}

	var rec localRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		// A corrupt record is treated as absent rather than blocking
		// startup; the user can log in again.
		l.logger.Warn("auth/local: discarding unreadable identity record",
			slog.String("error", err.Error()),
		)
		return nil
	}

	l.sessions.SetIdentity(rec.Email, &rec.User)
	return nil
}

// Login accepts any non-empty email/password pair and produces an identity
// whose name is the email's local part. Empty fields fail with OK=false
// and leave the session unauthenticated.
//
// The persisted record is fully replaced, so logging in over an onboarded
// identity starts a fresh one — the same behaviour the original app has.
func (l *Local) Login(ctx context.Context, email, password string) (Result, error) {
	if email == "" || password == "" {
		return Result{}, nil
	}

	user := model.User{
		Email: email,
		Name:  emailLocalPart(email),
	}

	if err := l.persist(ctx, localRecord{User: user}); err != nil {
		return Result{}, err
	}

	l.sessions.SetIdentity(email, &user)
	l.logger.Info("local login", slog.String("email", email))

	return Result{OK: true}, nil
}

// Register requires email, password and name all non-empty. The password
// is bcrypt-hashed into the record; login never verifies it (the local
// contract is non-empty-fields-suffice) but the stored form is ready for
// a strategy that does.
func (l *Local) Register(ctx context.Context, email, password, name string) (Result, error) {
	if email == "" || password == "" || name == "" {
		return Result{}, nil
	}

	hash, err := l.passwords.Hash(password)
	if err != nil {
		return Result{}, fmt.Errorf("auth/local: hashing password: %w", err)
	}

	user := model.User{
		Email: email,
		Name:  name,
	}

	if err := l.persist(ctx, localRecord{User: user, PasswordHash: hash}); err != nil {
		return Result{}, err
	}

	l.sessions.SetIdentity(email, &user)
	l.logger.Info("local registration", slog.String("email", email))

	return Result{OK: true}, nil
}

// Logout clears the session store and removes the persisted record.
func (l *Local) Logout(ctx context.Context) (string, error) {
	l.sessions.Clear()

	if err := l.profiles.Delete(ctx, localRecordKey); err != nil {
		return "", fmt.Errorf("auth/local: deleting persisted identity: %w", err)
	}

	l.logger.Info("local logout")
	return "", nil
}

// UpdateProfile merges the payload into the current identity, marks
// onboarding complete, and persists the result. Without a current
// identity it is a silent no-op.
func (l *Local) UpdateProfile(ctx context.Context, data model.ProfileData) error {
	snap := l.sessions.Snapshot()
	if !snap.IsAuthenticated {
		return nil
	}

	// Re-read the record so the stored password hash survives the update;
	// the session copy doesn't carry it.
	rec := localRecord{User: *snap.User}
	if raw, err := l.profiles.Get(ctx, localRecordKey); err == nil {
		var stored localRecord
		if err := json.Unmarshal(raw, &stored); err == nil {
			rec.PasswordHash = stored.PasswordHash
		}
	}

	data.Apply(&rec.User)

	if err := l.persist(ctx, rec); err != nil {
		return err
	}

	l.sessions.SetIdentity(rec.Email, &rec.User)
	l.logger.Info("profile updated", slog.String("email", rec.Email))

	return nil
}

func (l *Local) persist(ctx context.Context, rec localRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("auth/local: encoding identity record: %w", err)
	}
	if err := l.profiles.Put(ctx, localRecordKey, raw); err != nil {
		return fmt.Errorf("auth/local: persisting identity record: %w", err)
	}
	return nil
}

// emailLocalPart returns everything before the first "@", or the whole
// string if there is none.
func emailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}
