package notify

import (
	"encoding/json"
	"log"
	"time"

	"github.com/NICANORKYAMBA/bank-system-sub000/internal/infrastructure/mq"
	"github.com/NICANORKYAMBA/bank-system-sub000/internal/ledger"
	"github.com/NICANORKYAMBA/bank-system-sub000/internal/model"
)

// MovementNotifier publishes a notification event for each committed
// movement. Delivery is fire-and-forget with at most one attempt: the
// ledger result is already committed and returned by the time the event is
// built, so a publish failure is logged and nothing else.
type MovementNotifier struct {
	producer *mq.Producer
	topic    string
}

func NewMovementNotifier(producer *mq.Producer, topic string) *MovementNotifier {
	return &MovementNotifier{
		producer: producer,
		topic:    topic,
	}
}

var _ ledger.Notifier = (*MovementNotifier)(nil)

func (n *MovementNotifier) MovementCompleted(txn *model.Transaction) {
	go func() {
		payload := map[string]interface{}{
			"reference":         txn.Reference,
			"type":              txn.Type,
			"amount":            txn.Amount.String(),
			"source_account_id": txn.SourceAccountID,
			"user_id":           txn.UserID,
			"description":       txn.Description,
			"created_at":        txn.CreatedAt.Format(time.RFC3339),
		}
		if txn.DestinationAccountID != nil {
			payload["destination_account_id"] = *txn.DestinationAccountID
		}
		payloadBytes, _ := json.Marshal(payload)

		if err := n.producer.Send(n.topic, txn.Reference, string(payloadBytes)); err != nil {
			log.Printf("[Notify] movement %s notification failed: %v", txn.Reference, err)
		}
	}()
}
