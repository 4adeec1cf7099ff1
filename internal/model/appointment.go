package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no-show"
)

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
// Scheduled is the only non-terminal state.
func (s AppointmentStatus) IsTerminal() bool {
	return s != AppointmentStatusScheduled
}

type Department string

const (
	DepartmentGeneralMedicine Department = "General Medicine"
	DepartmentBloodTest       Department = "Blood Test"
	DepartmentDiabetesTest    Department = "Diabetes Test"
	DepartmentCancerTest      Department = "Cancer Test"
)

func (d Department) IsValid() bool {
	switch d {
	case DepartmentGeneralMedicine, DepartmentBloodTest,
		DepartmentDiabetesTest, DepartmentCancerTest:
		return true
	}
	return false
}

// Appointment is a booking on a (physician, date, time slot) triple.
// At most one non-cancelled appointment may exist per triple; the
// storage layer enforces this with a partial unique index.
type Appointment struct {
	Base
	PatientID   uuid.UUID         `db:"patient_id" json:"patient_id"`
	PhysicianID uuid.UUID         `db:"physician_id" json:"physician_id"`
	Department  Department        `db:"department" json:"department"`
	Date        time.Time         `db:"appointment_date" json:"date"`
	TimeSlot    string            `db:"time_slot" json:"time_slot"`
	Reason      string            `db:"reason" json:"reason"`
	Status      AppointmentStatus `db:"status" json:"status"`

	PatientName   *string `db:"patient_name" json:"patient_name,omitempty"`
	PhysicianName *string `db:"physician_name" json:"physician_name,omitempty"`
}

type CreateAppointmentRequest struct {
	PhysicianID uuid.UUID  `json:"physician_id" binding:"required"`
	Department  Department `json:"department" binding:"required"`
	Date        string     `json:"date" binding:"required"`
	TimeSlot    string     `json:"time_slot" binding:"required,timeslot"`
	Reason      string     `json:"reason" binding:"required,min=10"`
}

type UpdateAppointmentStatusRequest struct {
	Status   AppointmentStatus `json:"status" binding:"required,oneof=scheduled completed cancelled no-show"`
	Date     *string           `json:"date"`
	TimeSlot *string           `json:"time_slot" binding:"omitempty,timeslot"`
}

type AppointmentFilter struct {
	PhysicianID uuid.UUID
	PatientID   uuid.UUID
	Status      AppointmentStatus
}
