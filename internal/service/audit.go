package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/activity-points-api/internal/models"
)

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// auditTrail writes best-effort audit entries for one service.
type auditTrail struct {
	store  auditLogger
	agent  string
	logger *zap.Logger
}

func (a auditTrail) record(ctx context.Context, userID, action, resource, resourceID string, values interface{}) {
	if a.store == nil {
		return
	}
	payload, err := json.Marshal(values)
	if err != nil {
		payload = []byte("{}")
	}
	entry := &models.AuditLog{
		Action:    action,
		Resource:  resource,
		NewValues: payload,
		IPAddress: "system",
		UserAgent: a.agent,
	}
	if userID != "" {
		entry.UserID = &userID
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if err := a.store.CreateAuditLog(ctx, entry); err != nil && a.logger != nil {
		a.logger.Warn("failed to persist audit log", zap.String("action", action), zap.Error(err))
	}
}
