package model

import (
	"github.com/google/uuid"
)

type AdviceStatus string

const (
	AdviceStatusPending  AdviceStatus = "pending"
	AdviceStatusApproved AdviceStatus = "approved"
	AdviceStatusRejected AdviceStatus = "rejected"
)

func (s AdviceStatus) IsValid() bool {
	switch s {
	case AdviceStatusPending, AdviceStatusApproved, AdviceStatusRejected:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyLow    Urgency = "Low"
	UrgencyNormal Urgency = "Normal"
	UrgencyHigh   Urgency = "High"
	UrgencyUrgent Urgency = "Urgent"
)

func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyUrgent:
		return true
	}
	return false
}

// Advice is a recommendation record subject to the approval workflow:
// pending is the initial state, approved and rejected are terminal.
type Advice struct {
	Base
	PatientID   uuid.UUID    `db:"patient_id" json:"patient_id"`
	Condition   string       `db:"condition" json:"condition"`
	Medications string       `db:"medications" json:"medications"`
	Lifestyle   string       `db:"lifestyle" json:"lifestyle"`
	Urgency     Urgency      `db:"urgency" json:"urgency"`
	Status      AdviceStatus `db:"status" json:"status"`

	PatientName *string `db:"patient_name" json:"patient_name,omitempty"`
	PatientCode *string `db:"patient_code" json:"patient_code,omitempty"`
}

// CreateAdviceRequest accepts either an internal user ID or a patient
// code in PatientID; the service resolves codes to accounts.
type CreateAdviceRequest struct {
	PatientID   string  `json:"patient_id"`
	Condition   string  `json:"condition" binding:"required"`
	Medications string  `json:"medications" binding:"required"`
	Lifestyle   string  `json:"lifestyle"`
	Urgency     Urgency `json:"urgency" binding:"omitempty,oneof=Low Normal High Urgent"`
}

type UpdateAdviceRequest struct {
	Condition   *string  `json:"condition"`
	Medications *string  `json:"medications"`
	Lifestyle   *string  `json:"lifestyle"`
	Urgency     *Urgency `json:"urgency" binding:"omitempty,oneof=Low Normal High Urgent"`
}
