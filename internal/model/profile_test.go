package model

import "testing"

func TestProfileDataApply(t *testing.T) {
	u := User{Email: "ann@example.com", Name: "Ann"}

	ProfileData{Age: 31, Location: "Boston", DueDate: "2026-10-10"}.Apply(&u)

	if u.Email != "ann@example.com" || u.Name != "Ann" {
		t.Error("Apply() must not touch the base identity fields")
	}
	if u.Age != 31 || u.Location != "Boston" || u.DueDate != "2026-10-10" {
		t.Errorf("Apply() did not copy the payload: %+v", u)
	}
	if !u.HasCompletedOnboarding {
		t.Error("Apply() must mark onboarding complete")
	}
}

func TestProfileDataApply_OverwritesPreviousExtension(t *testing.T) {
	u := User{Email: "ann@example.com", Allergies: "penicillin"}

	ProfileData{Age: 31}.Apply(&u)

	if u.Allergies != "" {
		t.Errorf("Allergies = %q, want cleared: an update replaces the whole extension", u.Allergies)
	}
}

func TestNewProfileExtension_ForcesOnboardingFlag(t *testing.T) {
	ext := NewProfileExtension(ProfileData{Age: 31})

	if !ext.HasCompletedOnboarding {
		t.Error("a written record must carry the onboarding flag")
	}
	if ext.Email != "" || ext.Name != "" {
		t.Error("an update payload must not set identity fields")
	}
}

func TestProfileExtensionMerge(t *testing.T) {
	base := User{Email: "ann@example.com", Name: "Ann"}

	ext := ProfileExtension{Age: 31, Location: "Boston", HasCompletedOnboarding: true}
	ext.Merge(&base)

	if base.Email != "ann@example.com" || base.Name != "Ann" {
		t.Error("zero identity fields in the record must leave the base untouched")
	}
	if base.Age != 31 || base.Location != "Boston" {
		t.Errorf("set fields must override the base: %+v", base)
	}
	if !base.HasCompletedOnboarding {
		t.Error("onboarding flag must carry over")
	}
}

func TestProfileExtensionMerge_ExplicitIdentityFieldsWin(t *testing.T) {
	base := User{Email: "provider@example.com", Name: "Provider Name"}

	ProfileExtension{Email: "chosen@example.com", Name: "Chosen"}.Merge(&base)

	if base.Email != "chosen@example.com" || base.Name != "Chosen" {
		t.Errorf("explicitly set identity fields must win the merge: %+v", base)
	}
}
