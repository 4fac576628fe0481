package mail

import (
	"context"
	"fmt"

	"github.com/Kyz7/storefront/internal/models"
	"github.com/sirupsen/logrus"
)

// Notifier is told about business events that warrant an e-mail.
type Notifier interface {
	OrderPlaced(ctx context.Context, user *models.User, order *models.Order)
}

type OrderMailer struct {
	dispatcher *Dispatcher
}

func NewOrderMailer(d *Dispatcher) *OrderMailer {
	return &OrderMailer{dispatcher: d}
}

func (n *OrderMailer) OrderPlaced(ctx context.Context, user *models.User, order *models.Order) {
	if user == nil || user.Email == "" {
		return
	}
	n.dispatcher.Enqueue(OrderReceivedMessage(user, order))
}

func OrderReceivedMessage(user *models.User, order *models.Order) Message {
	body := fmt.Sprintf("Hi %s,\n\nYour order #%d was received on %s with %d item(s).\nPayment: %s (%s).\n",
		user.Name, order.ID, order.OrderedOn.Format("2006-01-02 15:04"), len(order.Products),
		order.PaymentMethod, order.PaymentStatus)
	return Message{
		To:      []string{user.Email},
		Subject: "Your order was received!",
		Body:    body,
	}
}

// LogNotifier only logs events. It is used when no mail server is configured.
type LogNotifier struct {
	Log *logrus.Logger
}

func (n LogNotifier) OrderPlaced(ctx context.Context, user *models.User, order *models.Order) {
	n.Log.WithFields(logrus.Fields{"order_id": order.ID, "user_id": order.UserID}).Info("order placed")
}
