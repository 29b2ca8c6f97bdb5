package model

// Doctor is one entry in the provider directory.
//
// The directory is seeded locally; DistanceMiles and Rating are optional
// display values and use zero to mean "unknown", which the JSON encoding
// omits the same way the UI hides them.
type Doctor struct {
	ID            string  `json:"id"            db:"id"`
	Name          string  `json:"name"          db:"name"`
	Specialty     string  `json:"specialty"     db:"specialty"`
	City          string  `json:"city"          db:"city"`
	State         string  `json:"state"         db:"state"`
	Zip           string  `json:"zip"           db:"zip"`
	Accepts       string  `json:"accepts"       db:"accepts"` // accepted insurance
	Telehealth    bool    `json:"telehealth"    db:"telehealth"`
	DistanceMiles float64 `json:"distanceMiles,omitempty" db:"distance_miles"`
	Rating        float64 `json:"rating,omitempty"        db:"rating"`
}
