package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/connecther/connecther/internal/apperror"
	"github.com/connecther/connecther/internal/model"
	"github.com/connecther/connecther/internal/repository"
)

// InsuranceOptions are the accepted values for the directory's insurance
// filter, in the order the filter UI presents them.
var InsuranceOptions = []string{
	"Aetna",
	"Blue Cross Blue Shield",
	"Cigna",
	"Medicaid",
	"UnitedHealthcare",
}

// SpecialtyOptions are the accepted values for the specialty filter.
var SpecialtyOptions = []string{
	"Family Medicine",
	"Maternal-Fetal Medicine",
	"Midwife",
	"OB-GYN",
	"Pediatrics",
}

// DefaultDoctors is the directory seed applied to an empty database.
// Entries mirror what an NPI registry search for the supported
// specialties around the demo ZIP codes returns.
func DefaultDoctors() []model.Doctor {
	return []model.Doctor{
		{ID: xid.New().String(), Name: "Dr. Alana Reyes", Specialty: "OB-GYN", City: "New York", State: "NY", Zip: "10001", Accepts: "Aetna", Telehealth: true, DistanceMiles: 1.2, Rating: 4.8},
		{ID: xid.New().String(), Name: "Dr. Priya Raman", Specialty: "Maternal-Fetal Medicine", City: "New York", State: "NY", Zip: "10001", Accepts: "Blue Cross Blue Shield", Telehealth: false, DistanceMiles: 2.4, Rating: 4.9},
		{ID: xid.New().String(), Name: "Maya Okafor, CNM", Specialty: "Midwife", City: "Brooklyn", State: "NY", Zip: "11201", Accepts: "Medicaid", Telehealth: true, DistanceMiles: 3.1, Rating: 4.7},
		{ID: xid.New().String(), Name: "Dr. Hannah Lindqvist", Specialty: "Family Medicine", City: "New York", State: "NY", Zip: "10016", Accepts: "Cigna", Telehealth: true, DistanceMiles: 1.8, Rating: 4.5},
		{ID: xid.New().String(), Name: "Dr. Grace Nakamura", Specialty: "OB-GYN", City: "Jersey City", State: "NJ", Zip: "07302", Accepts: "UnitedHealthcare", Telehealth: false, DistanceMiles: 4.6, Rating: 4.6},
		{ID: xid.New().String(), Name: "Dr. Sofia Marin", Specialty: "Pediatrics", City: "New York", State: "NY", Zip: "10016", Accepts: "Aetna", Telehealth: true, DistanceMiles: 2.0, Rating: 4.8},
		{ID: xid.New().String(), Name: "Dr. Leila Haddad", Specialty: "OB-GYN", City: "Brooklyn", State: "NY", Zip: "11201", Accepts: "Medicaid", Telehealth: true, DistanceMiles: 2.9, Rating: 4.4},
		{ID: xid.New().String(), Name: "Rosa Delgado, CNM", Specialty: "Midwife", City: "New York", State: "NY", Zip: "10001", Accepts: "Blue Cross Blue Shield", Telehealth: false, DistanceMiles: 1.5, Rating: 4.9},
	}
}

// DoctorService serves the find-a-doctor directory.
type DoctorService struct {
	doctors repository.DoctorRepository
	logger  *slog.Logger
}

// NewDoctorService creates a DoctorService.
func NewDoctorService(doctors repository.DoctorRepository, logger *slog.Logger) *DoctorService {
	return &DoctorService{doctors: doctors, logger: logger}
}

// List returns directory entries matching the filter. Filters are
// conjunctive; empty fields match everything.
//
// The zip filter must be a 5-digit code when present — free-text location
// search is out of scope for the local directory. Insurance and specialty
// must come from the published option lists, mirroring the filter
// dropdowns.
func (s *DoctorService) List(ctx context.Context, filter repository.DoctorFilter) ([]model.Doctor, error) {
	if filter.Zip != "" && !isZip(filter.Zip) {
		return nil, apperror.ValidationFailed("zip", "zip must be a 5-digit code")
	}
	if filter.Insurance != "" {
		canonical, ok := canonicalOption(InsuranceOptions, filter.Insurance)
		if !ok {
			return nil, apperror.ValidationFailed("insurance", "unknown insurance option")
		}
		filter.Insurance = canonical
	}
	if filter.Specialty != "" {
		canonical, ok := canonicalOption(SpecialtyOptions, filter.Specialty)
		if !ok {
			return nil, apperror.ValidationFailed("specialty", "unknown specialty option")
		}
		filter.Specialty = canonical
	}

	doctors, err := s.doctors.ListDoctors(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service/doctor: listing doctors: %w", err)
	}

	return doctors, nil
}

func isZip(s string) bool {
	if len(s) != 5 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// canonicalOption matches value against options case-insensitively and
// returns the canonical (stored) spelling.
func canonicalOption(options []string, value string) (string, bool) {
	for _, o := range options {
		if strings.EqualFold(o, value) {
			return o, true
		}
	}
	return "", false
}
