package domain

import "time"

// Patient is a registered patient record.
type Patient struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Age       *int      `json:"age"`
	Sex       *string   `json:"sex"`
	MRN       *string   `json:"mrn"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PatientCreate holds the fields accepted when registering a patient.
type PatientCreate struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Age       *int    `json:"age"`
	Sex       *string `json:"sex"`
	MRN       *string `json:"mrn"`
}

// PatientUpdate is a partial update; nil fields are left untouched.
type PatientUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Age       *int    `json:"age"`
	Sex       *string `json:"sex"`
	MRN       *string `json:"mrn"`
}
