package services

import (
	"encoding/json"
	"log"
	"time"
)

type AuditEvent struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	ActorID   int       `json:"actor_id"`
	TargetID  int       `json:"target_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

// AuditLogger emits structured audit records for every balance mutation and
// privileged action.
type AuditLogger struct{}

func NewAuditLogger() *AuditLogger {
	return &AuditLogger{}
}

func (a *AuditLogger) LogBalanceChange(actorID, targetID int, amount int64, category string) {
	a.log(AuditEvent{
		Timestamp: time.Now(),
		EventType: "BALANCE_CHANGE",
		ActorID:   actorID,
		TargetID:  targetID,
		Amount:    amount,
		Status:    "SUCCESS",
		Details:   map[string]string{"category": category},
	})
}

func (a *AuditLogger) LogAdminAction(actorID, targetID int, action, details string) {
	a.log(AuditEvent{
		Timestamp: time.Now(),
		EventType: action,
		ActorID:   actorID,
		TargetID:  targetID,
		Status:    "SUCCESS",
		Details:   map[string]string{"details": details},
	})
}

func (a *AuditLogger) LogError(actorID int, operation string, err error) {
	a.log(AuditEvent{
		Timestamp: time.Now(),
		EventType: operation,
		ActorID:   actorID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *AuditLogger) log(event AuditEvent) {
	data, _ := json.Marshal(event)
	log.Printf("AUDIT: %s", string(data))
}
