package domain

import "time"

// 领域事件主题
const (
	TopicApplicationSubmitted     = "application.submitted"
	TopicApplicationStatusChanged = "application.status_changed"
)

// ApplicationSubmittedEvent 申请提交事件
type ApplicationSubmittedEvent struct {
	ApplicationID string    `json:"application_id"`
	ApplicantID   string    `json:"applicant_id"`
	ApplicantName string    `json:"applicant_name"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// ApplicationStatusChangedEvent 申请状态变更事件
type ApplicationStatusChangedEvent struct {
	ApplicationID string            `json:"application_id"`
	FromStatus    ApplicationStatus `json:"from_status"`
	ToStatus      ApplicationStatus `json:"to_status"`
	ActorID       string            `json:"actor_id"`
	ActorRole     ActorRole         `json:"actor_role"`
	ChangedAt     time.Time         `json:"changed_at"`
}
