// Package model defines the data structures used throughout the application.
package model

// User represents the signed-in identity as the rest of the app sees it.
//
// The base fields (Email, Name) come from whichever auth strategy produced
// the identity: the local strategy derives them from the submitted form, the
// delegated strategy takes them from the provider's claims. The remaining
// fields are the profile extension collected during onboarding — they are
// optional and only present once the user has gone through the onboarding
// flow.
//
// An identity exists if and only if the session is authenticated. There is
// no "logged out user" value — absence of a User means unauthenticated.
//
// WHY omitempty ON THE EXTENSION FIELDS?
// Profile records are serialized as a single JSON unit and read back
// verbatim. Leaving unset fields out of the serialized form keeps a freshly
// registered record identical to what the login form produced, and lets the
// delegated merge distinguish "field never set" from "field set to a value".
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`

	// Onboarding profile extension.
	Age            int    `json:"age,omitempty"`
	DueDate        string `json:"dueDate,omitempty"`
	Height         string `json:"height,omitempty"`
	Weight         string `json:"weight,omitempty"`
	Location       string `json:"location,omitempty"`
	WeeksPregnant  int    `json:"weeksPregnant,omitempty"`
	MedicalHistory string `json:"medicalHistory,omitempty"`
	Allergies      string `json:"allergies,omitempty"`

	// Set to true the first time the profile is updated; most protected
	// pages require it.
	HasCompletedOnboarding bool `json:"hasCompletedOnboarding,omitempty"`
}
