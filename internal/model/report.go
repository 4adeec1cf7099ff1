package model

import (
	"time"

	"github.com/google/uuid"
)

// PatientReport is an append-only clinical record; it never changes
// state after creation.
type PatientReport struct {
	Base
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	Diagnosis    string    `db:"diagnosis" json:"diagnosis"`
	Treatment    string    `db:"treatment" json:"treatment"`
	Prescription string    `db:"prescription" json:"prescription"`
	FollowUpDate time.Time `db:"follow_up_date" json:"follow_up_date"`
	Notes        string    `db:"notes" json:"notes"`

	PatientName *string `db:"patient_name" json:"patient_name,omitempty"`
	PatientCode *string `db:"patient_code" json:"patient_code,omitempty"`
}

// CreatePatientReportRequest accepts either an internal user ID or a
// patient code in PatientID.
type CreatePatientReportRequest struct {
	PatientID    string    `json:"patient_id" binding:"required"`
	Diagnosis    string    `json:"diagnosis" binding:"required"`
	Treatment    string    `json:"treatment" binding:"required"`
	Prescription string    `json:"prescription" binding:"required"`
	FollowUpDate time.Time `json:"follow_up_date" binding:"required"`
	Notes        string    `json:"notes"`
}
