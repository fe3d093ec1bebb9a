package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/neurevia/portal-gateway/internal/domain"
	"github.com/neurevia/portal-gateway/internal/events"
)

// AuditSink accepts access log entries without blocking.
type AuditSink interface {
	Enqueue(entry domain.AccessLogEntry) bool
}

// AuditService turns gateway events into access audit entries.
type AuditService struct {
	dispatcher events.Dispatcher
	sink       AuditSink
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, sink AuditSink, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		sink:       sink,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventGuardDecision, a.handleGuardDecision)
	a.dispatcher.Subscribe(events.EventSessionLogin, a.handleSessionLogin)
	a.dispatcher.Subscribe(events.EventSessionLogout, a.handleSessionLogout)
}

func (a *AuditService) handleGuardDecision(_ context.Context, event events.Event) error {
	entry := a.baseEntry(event, domain.AccessGuardDecision)
	if p, ok := event.Payload.(events.GuardDecisionPayload); ok {
		entry.PathClass = p.PathClass
		entry.Action = p.Action
		entry.Location = p.Location
	}
	a.logger.Debug("GuardDecision",
		zap.String("path", entry.Path),
		zap.String("class", string(entry.PathClass)),
		zap.String("action", entry.Action))
	a.enqueue(entry)
	return nil
}

func (a *AuditService) handleSessionLogin(_ context.Context, event events.Event) error {
	entry := a.baseEntry(event, domain.AccessLogin)
	entry.Action = "failure"
	if p, ok := event.Payload.(events.SessionLoginPayload); ok && p.Success {
		entry.Action = "success"
	}
	a.logger.Info("SessionLogin", zap.String("username", entry.Username), zap.String("result", entry.Action))
	a.enqueue(entry)
	return nil
}

func (a *AuditService) handleSessionLogout(_ context.Context, event events.Event) error {
	entry := a.baseEntry(event, domain.AccessLogout)
	entry.Action = "logout"
	a.logger.Info("SessionLogout", zap.String("username", entry.Username))
	a.enqueue(entry)
	return nil
}

func (a *AuditService) baseEntry(event events.Event, kind domain.AccessKind) domain.AccessLogEntry {
	return domain.AccessLogEntry{
		EventID:   event.ID,
		Kind:      kind,
		Path:      event.Request.Path,
		Username:  event.Actor.Username,
		Role:      event.Actor.Role,
		ClientIP:  event.Request.ClientIP,
		RequestID: event.Request.RequestID,
		CreatedAt: event.Timestamp,
	}
}

func (a *AuditService) enqueue(entry domain.AccessLogEntry) {
	if a.sink == nil {
		return
	}
	if !a.sink.Enqueue(entry) {
		a.logger.Warn("audit queue full; dropping entry",
			zap.String("event_id", entry.EventID),
			zap.String("kind", string(entry.Kind)))
	}
}
