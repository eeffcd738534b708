package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/notification"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/request"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
)

func typeLabel(t request.Type) string {
	switch t {
	case request.TypeAttestation:
		return "atesto de frequência"
	case request.TypeAdjustment:
		return "ajuste de ponto"
	case request.TypeJustification:
		return "justificativa"
	default:
		return string(t)
	}
}

func requestData(r request.Request) map[string]interface{} {
	return map[string]interface{}{
		"request_id": r.ID,
		"type":       string(r.Type),
		"status":     string(r.Status),
		"start_date": r.SubjectStart.Format("2006-01-02"),
		"end_date":   r.SubjectEnd.Format("2006-01-02"),
	}
}

func (s *workflowServiceImpl) notifySubmitted(ctx context.Context, r request.Request) {
	if next := r.NextApproverID(); next != "" {
		s.queue(ctx, notification.CreateNotificationRequest{
			RecipientID: next,
			SenderID:    &r.SubmittedBy,
			Type:        notification.TypeRequestAwaiting,
			Title:       "Nova solicitação para análise",
			Message:     fmt.Sprintf("Uma solicitação de %s aguarda sua decisão.", typeLabel(r.Type)),
			Data:        requestData(r),
		})
	}
	if r.SubmittedBy != r.RequesterID {
		s.queue(ctx, notification.CreateNotificationRequest{
			RecipientID: r.RequesterID,
			SenderID:    &r.SubmittedBy,
			Type:        notification.TypeRequestSubmitted,
			Title:       "Solicitação registrada em seu nome",
			Message:     fmt.Sprintf("Uma solicitação de %s foi registrada em seu nome.", typeLabel(r.Type)),
			Data:        requestData(r),
		})
	}
}

func (s *workflowServiceImpl) notifyDecided(ctx context.Context, r request.Request) {
	last := r.Steps[len(r.Steps)-1]
	sender := last.ApproverID

	switch r.Status {
	case request.StatusInReview:
		s.queue(ctx, notification.CreateNotificationRequest{
			RecipientID: r.NextApproverID(),
			SenderID:    &sender,
			Type:        notification.TypeRequestAwaiting,
			Title:       "Nova solicitação para análise",
			Message:     fmt.Sprintf("Uma solicitação de %s aguarda sua decisão.", typeLabel(r.Type)),
			Data:        requestData(r),
		})
		return
	case request.StatusApproved:
		s.queue(ctx, notification.CreateNotificationRequest{
			RecipientID: r.RequesterID,
			SenderID:    &sender,
			Type:        notification.TypeRequestApproved,
			Title:       "Solicitação aprovada",
			Message:     fmt.Sprintf("Sua solicitação de %s foi aprovada.", typeLabel(r.Type)),
			Data:        requestData(r),
		})
	case request.StatusCompleted:
		s.queue(ctx, notification.CreateNotificationRequest{
			RecipientID: r.RequesterID,
			SenderID:    &sender,
			Type:        notification.TypeRequestCompleted,
			Title:       "Frequência atestada",
			Message:     fmt.Sprintf("Sua frequência de %s a %s foi atestada.", r.SubjectStart.Format("02/01/2006"), r.SubjectEnd.Format("02/01/2006")),
			Data:        requestData(r),
		})
	case request.StatusRejected:
		data := requestData(r)
		if last.Observation != nil {
			data["observation"] = *last.Observation
		}
		s.queue(ctx, notification.CreateNotificationRequest{
			RecipientID: r.RequesterID,
			SenderID:    &sender,
			Type:        notification.TypeRequestRejected,
			Title:       "Solicitação rejeitada",
			Message:     fmt.Sprintf("Sua solicitação de %s foi rejeitada.", typeLabel(r.Type)),
			Data:        data,
		})
	}
}

// alertAdmins reports a sector without a responsible so the hierarchy gets fixed.
func (s *workflowServiceImpl) alertAdmins(ctx context.Context, requesterID string, cause error) {
	admins, err := s.userRepo.ListByRoles(ctx, []user.Role{user.RoleAdmin})
	if err != nil {
		slog.Error("failed to list administrators", "error", err)
		return
	}

	reqs := make([]notification.CreateNotificationRequest, 0, len(admins))
	for _, a := range admins {
		reqs = append(reqs, notification.CreateNotificationRequest{
			RecipientID: a.ID,
			Type:        notification.TypeApprovalChainMissing,
			Title:       "Cadeia de aprovação incompleta",
			Message:     cause.Error(),
			Data:        map[string]interface{}{"user_id": requesterID},
		})
	}
	if len(reqs) == 0 {
		return
	}
	if err := s.notifications.QueueBulkNotification(ctx, reqs); err != nil {
		slog.Warn("failed to queue administrator alert", "error", err)
	}
}

func (s *workflowServiceImpl) queue(ctx context.Context, req notification.CreateNotificationRequest) {
	if req.RecipientID == "" {
		return
	}
	if err := s.notifications.QueueNotification(ctx, req); err != nil {
		slog.Warn("failed to queue notification", "type", req.Type, "recipient_id", req.RecipientID, "error", err)
	}
}
