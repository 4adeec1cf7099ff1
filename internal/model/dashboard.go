package model

// PhysicianStats backs the physician dashboard.
type PhysicianStats struct {
	TotalPatients          int       `json:"total_patients"`
	TodaysAppointments     int       `json:"todays_appointments"`
	PendingReports         int       `json:"pending_reports"`
	PendingRecommendations int       `json:"pending_recommendations"`
	RecentActivity         []*Advice `json:"recent_activity"`
}
