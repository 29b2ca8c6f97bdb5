package model

// ProfileData is the payload of an explicit profile-update call — the
// fields collected by the onboarding form.
type ProfileData struct {
	Age            int    `json:"age"`
	Height         string `json:"height"`
	Weight         string `json:"weight"`
	Location       string `json:"location"`
	DueDate        string `json:"dueDate"`
	WeeksPregnant  int    `json:"weeksPregnant"`
	MedicalHistory string `json:"medicalHistory,omitempty"`
	Allergies      string `json:"allergies,omitempty"`
}

// Apply copies the payload onto u and marks onboarding complete.
// Every profile update sets the onboarding flag, regardless of which
// fields were supplied.
func (p ProfileData) Apply(u *User) {
	u.Age = p.Age
	u.Height = p.Height
	u.Weight = p.Weight
	u.Location = p.Location
	u.DueDate = p.DueDate
	u.WeeksPregnant = p.WeeksPregnant
	u.MedicalHistory = p.MedicalHistory
	u.Allergies = p.Allergies
	u.HasCompletedOnboarding = true
}

// ProfileExtension is the delegated strategy's persisted record: the
// locally stored profile data that overlays the provider's identity claims.
//
// It is stored keyed by the provider's stable subject id, fully replaced on
// every profile update, and merged over the provider base on load. Email
// and Name are normally absent — the provider supplies them — but if a
// record explicitly sets them they win, matching the last-spread-wins merge
// of the original record format.
type ProfileExtension struct {
	Email                  string `json:"email,omitempty"`
	Name                   string `json:"name,omitempty"`
	Age                    int    `json:"age,omitempty"`
	DueDate                string `json:"dueDate,omitempty"`
	Height                 string `json:"height,omitempty"`
	Weight                 string `json:"weight,omitempty"`
	Location               string `json:"location,omitempty"`
	WeeksPregnant          int    `json:"weeksPregnant,omitempty"`
	MedicalHistory         string `json:"medicalHistory,omitempty"`
	Allergies              string `json:"allergies,omitempty"`
	HasCompletedOnboarding bool   `json:"hasCompletedOnboarding,omitempty"`
}

// NewProfileExtension builds the record written by a profile update:
// the explicit payload plus the onboarding flag forced true.
func NewProfileExtension(p ProfileData) ProfileExtension {
	return ProfileExtension{
		Age:                    p.Age,
		DueDate:                p.DueDate,
		Height:                 p.Height,
		Weight:                 p.Weight,
		Location:               p.Location,
		WeeksPregnant:          p.WeeksPregnant,
		MedicalHistory:         p.MedicalHistory,
		Allergies:              p.Allergies,
		HasCompletedOnboarding: true,
	}
}

// Merge overlays the extension record onto a provider-supplied base.
// Absent (zero) fields leave the base untouched; set fields override it.
// The base's Email and Name therefore survive unless the record explicitly
// replaces them.
func (e ProfileExtension) Merge(base *User) {
	if e.Email != "" {
		base.Email = e.Email
	}
	if e.Name != "" {
		base.Name = e.Name
	}
	if e.Age != 0 {
		base.Age = e.Age
	}
	if e.DueDate != "" {
		base.DueDate = e.DueDate
	}
	if e.Height != "" {
		base.Height = e.Height
	}
	if e.Weight != "" {
		base.Weight = e.Weight
	}
	if e.Location != "" {
		base.Location = e.Location
	}
	if e.WeeksPregnant != 0 {
		base.WeeksPregnant = e.WeeksPregnant
	}
	if e.MedicalHistory != "" {
		base.MedicalHistory = e.MedicalHistory
	}
	if e.Allergies != "" {
		base.Allergies = e.Allergies
	}
	if e.HasCompletedOnboarding {
		base.HasCompletedOnboarding = true
	}
}
