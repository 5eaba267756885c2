package amqp

import (
	"encoding/json"
	"time"

	"resourceguardian/internal/core"
)

// PaymentMessage wraps a mobile-money notification with the user it
// belongs to. The worker fetches nothing: the payload is complete.
type PaymentMessage struct {
	UserID       int64                    `json:"userId"`
	Notification core.PaymentNotification `json:"notification"`
	Timestamp    time.Time                `json:"timestamp"`
}

func NewPaymentMessage(userID int64, n core.PaymentNotification) *PaymentMessage {
	return &PaymentMessage{
		UserID:       userID,
		Notification: n,
		Timestamp:    time.Now(),
	}
}

func (m *PaymentMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PaymentMessageFromJSON(data []byte) (*PaymentMessage, error) {
	var msg PaymentMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// GoalCompletedMessage announces that a savings goal reached its
// target. Consumers use it for congratulation notifications.
type GoalCompletedMessage struct {
	UserID      int64     `json:"userId"`
	GoalID      int64     `json:"goalId"`
	GoalName    string    `json:"goalName"`
	TargetCents int64     `json:"targetCents"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewGoalCompletedMessage(g *core.SavingsGoal) *GoalCompletedMessage {
	return &GoalCompletedMessage{
		UserID:      g.UserID,
		GoalID:      g.ID,
		GoalName:    g.Name,
		TargetCents: g.TargetAmount.Cents,
		Timestamp:   time.Now(),
	}
}

func (m *GoalCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func GoalCompletedMessageFromJSON(data []byte) (*GoalCompletedMessage, error) {
	var msg GoalCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
