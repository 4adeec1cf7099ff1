package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeAdviceRequest NotificationType = "advice_request"
	NotificationTypeFeedback      NotificationType = "feedback"
	NotificationTypeSystemAlert   NotificationType = "system_alert"
	NotificationTypeUserAlert     NotificationType = "user_alert"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTypeAdviceRequest, NotificationTypeFeedback,
		NotificationTypeSystemAlert, NotificationTypeUserAlert:
		return true
	}
	return false
}

type NotificationStatus string

const (
	NotificationStatusUnread NotificationStatus = "unread"
	NotificationStatusRead   NotificationStatus = "read"
)

type NotificationUrgency string

const (
	NotificationUrgencyLow    NotificationUrgency = "low"
	NotificationUrgencyMedium NotificationUrgency = "medium"
	NotificationUrgencyHigh   NotificationUrgency = "high"
)

func (u NotificationUrgency) IsValid() bool {
	switch u {
	case NotificationUrgencyLow, NotificationUrgencyMedium, NotificationUrgencyHigh:
		return true
	}
	return false
}

// Notification is one delivered record. Role-targeted creations fan
// out to one record per member of the role at creation time.
type Notification struct {
	ID              uuid.UUID           `db:"id" json:"id"`
	Type            NotificationType    `db:"type" json:"type"`
	Title           string              `db:"title" json:"title"`
	Message         string              `db:"message" json:"message"`
	Urgency         NotificationUrgency `db:"urgency" json:"urgency"`
	Status          NotificationStatus  `db:"status" json:"status"`
	TargetRole      *Role               `db:"target_role" json:"target_role,omitempty"`
	TargetUserID    *uuid.UUID          `db:"target_user_id" json:"target_user_id,omitempty"`
	SourceUserID    uuid.UUID           `db:"source_user_id" json:"source_user_id"`
	RelatedEntityID *uuid.UUID          `db:"related_entity_id" json:"related_entity_id,omitempty"`
	Metadata        JSONMap             `db:"metadata" json:"metadata,omitempty"`
	CreatedAt       time.Time           `db:"created_at" json:"created_at"`
	ReadAt          *time.Time          `db:"read_at" json:"read_at,omitempty"`
}

type CreateNotificationRequest struct {
	Type            NotificationType    `json:"type" binding:"required,oneof=advice_request feedback system_alert user_alert"`
	Title           string              `json:"title" binding:"required"`
	Message         string              `json:"message" binding:"required"`
	Urgency         NotificationUrgency `json:"urgency" binding:"omitempty,oneof=low medium high"`
	TargetRole      *Role               `json:"target_role" binding:"omitempty,oneof=admin physician patient"`
	TargetUserID    *uuid.UUID          `json:"target_user_id"`
	RelatedEntityID *uuid.UUID          `json:"related_entity_id"`
	Metadata        JSONMap             `json:"metadata"`
}

type NotificationFilter struct {
	Pagination
	Status NotificationStatus `form:"status" binding:"omitempty,oneof=unread read"`
}

// NotificationEvent is the payload published on the broker when a
// notification is created, consumed by the real-time delivery layer.
type NotificationEvent struct {
	NotificationID uuid.UUID        `json:"notification_id"`
	TargetUserID   uuid.UUID        `json:"target_user_id"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	CreatedAt      time.Time        `json:"created_at"`
}
