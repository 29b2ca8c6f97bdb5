package service

import (
	"context"
	"errors"
	"testing"

	"github.com/connecther/connecther/internal/apperror"
	"github.com/connecther/connecther/internal/model"
	"github.com/connecther/connecther/internal/repository"
)

// fakeDoctorRepo records the filter it was called with and returns a
// canned listing.
type fakeDoctorRepo struct {
	gotFilter repository.DoctorFilter
	doctors   []model.Doctor
}

func (f *fakeDoctorRepo) ListDoctors(ctx context.Context, filter repository.DoctorFilter) ([]model.Doctor, error) {
	f.gotFilter = filter
	return f.doctors, nil
}

func (f *fakeDoctorRepo) SeedDoctors(ctx context.Context, doctors []model.Doctor) error {
	return nil
}

func newTestDoctorService() (*DoctorService, *fakeDoctorRepo) {
	repo := &fakeDoctorRepo{
		doctors: []model.Doctor{{ID: "d1", Name: "Dr. Alana Reyes", Specialty: "OB-GYN"}},
	}
	return NewDoctorService(repo, testLogger()), repo
}

func TestDoctorList_EmptyFilterPassesThrough(t *testing.T) {
	svc, repo := newTestDoctorService()

	got, err := svc.List(context.Background(), repository.DoctorFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "d1" {
		t.Errorf("List() = %+v, want the repository listing", got)
	}
	if repo.gotFilter != (repository.DoctorFilter{}) {
		t.Errorf("filter sent to repository = %+v, want empty", repo.gotFilter)
	}
}

func TestDoctorList_InvalidZipRejected(t *testing.T) {
	svc, _ := newTestDoctorService()

	tests := []string{"1234", "123456", "1000a", "ten thousand"}
	for _, zip := range tests {
		_, err := svc.List(context.Background(), repository.DoctorFilter{Zip: zip})
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("List(zip=%q) error = %v, want a validation error", zip, err)
		}
	}
}

func TestDoctorList_UnknownOptionsRejected(t *testing.T) {
	svc, _ := newTestDoctorService()

	if _, err := svc.List(context.Background(), repository.DoctorFilter{Insurance: "Globex Health"}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("unknown insurance error = %v, want a validation error", err)
	}
	if _, err := svc.List(context.Background(), repository.DoctorFilter{Specialty: "Astrology"}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("unknown specialty error = %v, want a validation error", err)
	}
}

func TestDoctorList_CanonicalizesOptionSpelling(t *testing.T) {
	svc, repo := newTestDoctorService()

	filter := repository.DoctorFilter{Zip: "10001", Insurance: "aetna", Specialty: "ob-gyn"}
	if _, err := svc.List(context.Background(), filter); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := repository.DoctorFilter{Zip: "10001", Insurance: "Aetna", Specialty: "OB-GYN"}
	if repo.gotFilter != want {
		t.Errorf("filter sent to repository = %+v, want canonical spellings %+v", repo.gotFilter, want)
	}
}

func TestDefaultDoctors_CoversEverySpecialty(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range DefaultDoctors() {
		seen[d.Specialty] = true
		if d.ID == "" {
			t.Errorf("seed doctor %q has no id", d.Name)
		}
	}
	for _, specialty := range SpecialtyOptions {
		if !seen[specialty] {
			t.Errorf("seed directory has no %s entry", specialty)
		}
	}
}
