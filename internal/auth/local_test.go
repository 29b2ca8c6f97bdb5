package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/connecther/connecther/internal/apperror"
	"github.com/connecther/connecther/internal/model"
	"github.com/connecther/connecther/internal/session"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeProfileRepo is an in-memory ProfileRepository. Records are stored
// verbatim, matching the last-write-wins contract.
type fakeProfileRepo struct {
	records map[string][]byte
	// set to a non-nil error to simulate a storage failure
	putErr error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{records: make(map[string][]byte)}
}

func (f *fakeProfileRepo) Get(ctx context.Context, key string) ([]byte, error) {
	rec, ok := f.records[key]
	if !ok {
		return nil, apperror.NotFound("profile", key)
	}
	return rec, nil
}

func (f *fakeProfileRepo) Put(ctx context.Context, key string, record []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	cp := make([]byte, len(record))
	copy(cp, record)
	f.records[key] = cp
	return nil
}

func (f *fakeProfileRepo) Delete(ctx context.Context, key string) error {
	delete(f.records, key)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestLocal returns a local strategy with in-memory storage and a
// fresh session store. Cost 4 is the bcrypt minimum — keeps tests fast.
func newTestLocal(t *testing.T) (*Local, *fakeProfileRepo, *session.Store) {
	t.Helper()
	repo := newFakeProfileRepo()
	sessions := session.NewStore()
	local := NewLocal(repo, sessions, NewPasswordServiceForTest(4), testLogger())
	return local, repo, sessions
}

// =========================================================================
// LOGIN TESTS
// =========================================================================

func TestLocalLogin_NonEmptyCredentialsSucceed(t *testing.T) {
	local, _, sessions := newTestLocal(t)

	res, err := local.Login(context.Background(), "ann@example.com", "whatever")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !res.OK {
		t.Fatal("Login() OK = false, want true for non-empty credentials")
	}
	if res.RedirectURL != "" {
		t.Errorf("local login should not redirect, got %q", res.RedirectURL)
	}

	st := sessions.Snapshot()
	if !st.IsAuthenticated {
		t.Fatal("session should be authenticated after login")
	}
	if st.User.Name != "ann" {
		t.Errorf("User.Name = %q, want the email local part %q", st.User.Name, "ann")
	}
	if st.User.Email != "ann@example.com" {
		t.Errorf("User.Email = %q, want %q", st.User.Email, "ann@example.com")
	}
}

func TestLocalLogin_EmptyFieldsFail(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "secret"},
		{"empty password", "a@b.com", ""},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local, _, sessions := newTestLocal(t)

			res, err := local.Login(context.Background(), tt.email, tt.password)
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if res.OK {
				t.Error("Login() OK = true, want false for empty field")
			}
			if sessions.Snapshot().IsAuthenticated {
				t.Error("session should stay unauthenticated after rejected login")
			}
		})
	}
}

func TestLocalLogin_PersistsRecordUnderFixedKey(t *testing.T) {
	local, repo, _ := newTestLocal(t)

	if _, err := local.Login(context.Background(), "ann@example.com", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	raw, err := repo.Get(context.Background(), "user")
	if err != nil {
		t.Fatalf("record not persisted under fixed key: %v", err)
	}

	var rec localRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if rec.Email != "ann@example.com" {
		t.Errorf("persisted Email = %q, want %q", rec.Email, "ann@example.com")
	}
}

// =========================================================================
// REGISTER TESTS
// =========================================================================

func TestLocalRegister_AllFieldsRequired(t *testing.T) {
	local, _, sessions := newTestLocal(t)

	res, err := local.Register(context.Background(), "a@b.com", "secret", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if res.OK {
		t.Error("Register() OK = true with empty name, want false")
	}
	if sessions.Snapshot().IsAuthenticated {
		t.Error("session should stay unauthenticated after rejected registration")
	}
}

func TestLocalRegister_StoresBcryptHash(t *testing.T) {
	local, repo, _ := newTestLocal(t)

	if _, err := local.Register(context.Background(), "a@b.com", "secret", "Ann"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	raw, err := repo.Get(context.Background(), "user")
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}

	var rec localRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if rec.PasswordHash == "" {
		t.Fatal("registration should store a password hash")
	}
	if err := NewPasswordServiceForTest(4).Verify(rec.PasswordHash, "secret"); err != nil {
		t.Errorf("stored hash does not verify against the password: %v", err)
	}
}

// =========================================================================
// SCENARIO: register → update profile → logout
// =========================================================================

func TestLocalLifecycle(t *testing.T) {
	local, repo, sessions := newTestLocal(t)
	ctx := context.Background()

	// Register
	res, err := local.Register(ctx, "a@b.com", "secret", "Ann")
	if err != nil || !res.OK {
		t.Fatalf("Register() = (%+v, %v), want OK", res, err)
	}
	st := sessions.Snapshot()
	if st.User.Email != "a@b.com" || st.User.Name != "Ann" {
		t.Errorf("identity = %q/%q, want a@b.com/Ann", st.User.Email, st.User.Name)
	}
	if st.HasCompletedOnboarding {
		t.Error("onboarding should be incomplete before any profile update")
	}

	// Update profile
	err = local.UpdateProfile(ctx, model.ProfileData{
		Age: 30, Height: "165cm", Weight: "60kg", Location: "NYC",
		DueDate: "2026-12-01", WeeksPregnant: 12,
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	st = sessions.Snapshot()
	if !st.HasCompletedOnboarding {
		t.Error("any profile update must set the onboarding flag")
	}
	if st.User.Age != 30 {
		t.Errorf("User.Age = %d, want 30", st.User.Age)
	}
	if st.User.Name != "Ann" {
		t.Errorf("User.Name = %q after profile update, want %q", st.User.Name, "Ann")
	}

	// The hash must survive a profile update.
	raw, _ := repo.Get(ctx, "user")
	var rec localRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if rec.PasswordHash == "" {
		t.Error("profile update dropped the stored password hash")
	}

	// Logout
	if _, err := local.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if sessions.Snapshot().IsAuthenticated {
		t.Error("session should be unauthenticated after logout")
	}
	if _, err := repo.Get(ctx, "user"); err == nil {
		t.Error("persisted record should be removed by logout")
	}
}

func TestLocalUpdateProfile_NoIdentityIsSilentNoop(t *testing.T) {
	local, repo, _ := newTestLocal(t)

	err := local.UpdateProfile(context.Background(), model.ProfileData{Age: 30})
	if err != nil {
		t.Fatalf("UpdateProfile() without identity should be a no-op, got %v", err)
	}
	if len(repo.records) != 0 {
		t.Error("no record should be written without an identity")
	}
}

// =========================================================================
// INIT TESTS
// =========================================================================

func TestLocalInit_RestoresPersistedIdentity(t *testing.T) {
	repo := newFakeProfileRepo()
	sessions := session.NewStore()
	first := NewLocal(repo, sessions, NewPasswordServiceForTest(4), testLogger())

	ctx := context.Background()
	if _, err := first.Register(ctx, "a@b.com", "secret", "Ann"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := first.UpdateProfile(ctx, model.ProfileData{Age: 30}); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	// Fresh store, same repo — simulates an application restart.
	restarted := session.NewStore()
	second := NewLocal(repo, restarted, NewPasswordServiceForTest(4), testLogger())
	if err := second.Init(ctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	st := restarted.Snapshot()
	if !st.IsAuthenticated {
		t.Fatal("Init should restore the persisted identity")
	}
	if st.User.Age != 30 || !st.HasCompletedOnboarding {
		t.Errorf("restored identity = %+v, want age 30 and onboarding complete", st.User)
	}
}

func TestLocalInit_NoRecordMeansUnauthenticated(t *testing.T) {
	local, _, sessions := newTestLocal(t)

	if err := local.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if sessions.Snapshot().IsAuthenticated {
		t.Error("Init with no record should leave the session unauthenticated")
	}
}

func TestLocalInit_CorruptRecordIsDiscarded(t *testing.T) {
	local, repo, sessions := newTestLocal(t)
	repo.records["user"] = []byte("{not json")

	if err := local.Init(context.Background()); err != nil {
		t.Fatalf("Init() should not fail on a corrupt record, got %v", err)
	}
	if sessions.Snapshot().IsAuthenticated {
		t.Error("corrupt record should be treated as absent")
	}
}
