package notification

import "time"

type NotificationType string

const (
	TypeRequestSubmitted     NotificationType = "request_submitted"
	TypeRequestAwaiting      NotificationType = "request_awaiting_decision"
	TypeRequestApproved      NotificationType = "request_approved"
	TypeRequestCompleted     NotificationType = "request_completed"
	TypeRequestRejected      NotificationType = "request_rejected"
	TypeRequestWithdrawn     NotificationType = "request_withdrawn"
	TypeApprovalChainMissing NotificationType = "approval_chain_missing"
	TypeHolidayImportFailed  NotificationType = "holiday_import_failed"
)

func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeRequestSubmitted,
		TypeRequestAwaiting,
		TypeRequestApproved,
		TypeRequestCompleted,
		TypeRequestRejected,
		TypeRequestWithdrawn,
		TypeApprovalChainMissing,
		TypeHolidayImportFailed,
	}
}

type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
