package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/connecther/connecther/internal/apperror"
	"github.com/connecther/connecther/internal/model"
	"github.com/connecther/connecther/internal/repository"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(\":memory:\"): %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// =========================================================================
// PROFILE TESTS
// =========================================================================

func TestProfilePutGetRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	record := []byte(`{"email":"a@b.com","name":"Ann"}`)
	if err := db.Put(ctx, "user", record); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := db.Get(ctx, "user")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != string(record) {
		t.Errorf("Get() = %s, want the record verbatim", got)
	}
}

func TestProfileGet_MissingKey(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Get(context.Background(), "no-such-key")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestProfilePut_LastWriteWins(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Put(ctx, "connecther:user:auth0|abc", []byte(`{"age":30,"allergies":"penicillin"}`)); err != nil {
		t.Fatalf("first Put() error = %v", err)
	}
	if err := db.Put(ctx, "connecther:user:auth0|abc", []byte(`{"age":31}`)); err != nil {
		t.Fatalf("second Put() error = %v", err)
	}

	got, err := db.Get(ctx, "connecther:user:auth0|abc")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `{"age":31}` {
		t.Errorf("Get() = %s, want only the second record", got)
	}
}

func TestProfileDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Put(ctx, "user", []byte(`{}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := db.Delete(ctx, "user"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := db.Get(ctx, "user"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() after delete = %v, want ErrNotFound", err)
	}
}

func TestProfileDelete_MissingKeyIsNoop(t *testing.T) {
	db := newTestDB(t)

	if err := db.Delete(context.Background(), "never-existed"); err != nil {
		t.Errorf("Delete() of a missing key = %v, want nil", err)
	}
}

func TestProfileKeysAreIndependent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	db.Put(ctx, "connecther:user:auth0|one", []byte(`{"age":30}`))
	db.Put(ctx, "connecther:user:auth0|two", []byte(`{"age":40}`))

	if err := db.Delete(ctx, "connecther:user:auth0|one"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := db.Get(ctx, "connecther:user:auth0|two")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `{"age":40}` {
		t.Errorf("Get() = %s, want the untouched record", got)
	}
}

// =========================================================================
// DOCTOR TESTS
// =========================================================================

func seedTestDoctors(t *testing.T, db *DB) {
	t.Helper()

	doctors := []model.Doctor{
		{ID: "d1", Name: "Dr. Alana Reyes", Specialty: "OB-GYN", Zip: "10001", Accepts: "Aetna"},
		{ID: "d2", Name: "Dr. Priya Raman", Specialty: "Maternal-Fetal Medicine", Zip: "10001", Accepts: "Cigna"},
		{ID: "d3", Name: "Maya Okafor, CNM", Specialty: "Midwife", Zip: "11201", Accepts: "Medicaid"},
		{ID: "d4", Name: "Dr. Leila Haddad", Specialty: "OB-GYN", Zip: "11201", Accepts: "Aetna"},
	}
	if err := db.SeedDoctors(context.Background(), doctors); err != nil {
		t.Fatalf("SeedDoctors() error = %v", err)
	}
}

func TestListDoctors_NoFilterReturnsAllOrderedByName(t *testing.T) {
	db := newTestDB(t)
	seedTestDoctors(t, db)

	got, err := db.ListDoctors(context.Background(), repository.DoctorFilter{})
	if err != nil {
		t.Fatalf("ListDoctors() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Name > got[i].Name {
			t.Errorf("listing not ordered by name: %q before %q", got[i-1].Name, got[i].Name)
		}
	}
}

func TestListDoctors_FiltersAreConjunctive(t *testing.T) {
	db := newTestDB(t)
	seedTestDoctors(t, db)

	got, err := db.ListDoctors(context.Background(), repository.DoctorFilter{
		Zip:       "11201",
		Insurance: "Aetna",
		Specialty: "OB-GYN",
	})
	if err != nil {
		t.Fatalf("ListDoctors() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "d4" {
		t.Errorf("ListDoctors() = %+v, want only d4", got)
	}
}

func TestListDoctors_NoMatchesReturnsEmptySlice(t *testing.T) {
	db := newTestDB(t)
	seedTestDoctors(t, db)

	got, err := db.ListDoctors(context.Background(), repository.DoctorFilter{Zip: "99999"})
	if err != nil {
		t.Fatalf("ListDoctors() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListDoctors() = %v, want an empty non-nil slice", got)
	}
}

func TestSeedDoctors_NonEmptyDirectoryUntouched(t *testing.T) {
	db := newTestDB(t)
	seedTestDoctors(t, db)

	err := db.SeedDoctors(context.Background(), []model.Doctor{
		{ID: "d9", Name: "Dr. New Arrival", Specialty: "Pediatrics"},
	})
	if err != nil {
		t.Fatalf("SeedDoctors() error = %v", err)
	}

	got, _ := db.ListDoctors(context.Background(), repository.DoctorFilter{})
	if len(got) != 4 {
		t.Errorf("len = %d after reseeding a non-empty directory, want 4", len(got))
	}
}
