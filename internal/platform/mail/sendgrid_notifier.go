// Package mail sends back-office notifications through SendGrid.
package mail

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"golang.org/x/text/language"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	"github.com/ramitaha13/KamelStore/internal/platform/i18n"
	"github.com/ramitaha13/KamelStore/internal/services"
)

const senderName = "Kamel Store"

// Sender delivers a prepared message. *sendgrid.Client satisfies it.
type Sender interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// NotifierConfig configures the order notifier.
type NotifierConfig struct {
	APIKey   string
	From     string
	To       []string
	Language language.Tag
}

// OrderNotifier emails the shop owner when an order is placed.
type OrderNotifier struct {
	sender    Sender
	from      string
	to        []string
	localizer *i18n.Localizer
	lang      language.Tag
}

var _ services.OrderNotifier = (*OrderNotifier)(nil)

// NewOrderNotifier builds a notifier backed by the SendGrid API.
func NewOrderNotifier(cfg NotifierConfig, localizer *i18n.Localizer) (*OrderNotifier, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("mail: sendgrid api key is required")
	}
	return NewOrderNotifierWithSender(sendgrid.NewSendClient(cfg.APIKey), cfg, localizer)
}

// NewOrderNotifierWithSender builds a notifier around an arbitrary sender.
func NewOrderNotifierWithSender(sender Sender, cfg NotifierConfig, localizer *i18n.Localizer) (*OrderNotifier, error) {
	if sender == nil {
		return nil, errors.New("mail: sender is required")
	}
	if localizer == nil {
		return nil, errors.New("mail: localizer is required")
	}
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		return nil, errors.New("mail: from address is required")
	}
	var to []string
	for _, addr := range cfg.To {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	if len(to) == 0 {
		return nil, errors.New("mail: at least one recipient is required")
	}
	lang := cfg.Language
	if lang == language.Und {
		lang = localizer.Default()
	}
	return &OrderNotifier{sender: sender, from: from, to: to, localizer: localizer, lang: lang}, nil
}

// NotifyOrderPlaced sends one message addressed to every configured recipient.
func (n *OrderNotifier) NotifyOrderPlaced(ctx context.Context, order domain.Order) error {
	subject := n.localizer.Sprintf(n.lang, i18n.MsgNewOrderSubject, order.ID)
	body := n.renderBody(order)

	message := sgmail.NewV3Mail()
	message.SetFrom(sgmail.NewEmail(senderName, n.from))
	message.Subject = subject
	p := sgmail.NewPersonalization()
	for _, addr := range n.to {
		p.AddTos(sgmail.NewEmail("", addr))
	}
	message.AddPersonalizations(p)
	message.AddContent(
		sgmail.NewContent("text/plain", body),
		sgmail.NewContent("text/html", "<pre>"+html.EscapeString(body)+"</pre>"),
	)

	response, err := n.sender.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("mail: sendgrid send: %w", err)
	}
	if response != nil && response.StatusCode >= 400 {
		return fmt.Errorf("mail: sendgrid send failed: status=%d body=%s", response.StatusCode, response.Body)
	}
	return nil
}

func (n *OrderNotifier) renderBody(order domain.Order) string {
	info := order.CustomerInfo
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", n.localizer.Sprintf(n.lang, i18n.MsgNewOrderSubject, order.ID))
	fmt.Fprintf(&b, "%s, %s\n", info.Name, info.PhoneNumber)
	fmt.Fprintf(&b, "%s, %s\n", info.Location, info.Town)
	if info.Email != "" {
		fmt.Fprintf(&b, "%s\n", info.Email)
	}
	fmt.Fprintf(&b, "%s\n", n.paymentLabel(info.PaymentMethod))
	b.WriteString("\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%s x%d  %.2f", item.Name, item.Quantity, item.Price*float64(item.Quantity))
		if len(item.SelectedSizes) > 0 {
			fmt.Fprintf(&b, "  [%s]", strings.Join(item.SelectedSizes, ", "))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n= %.2f\n", order.TotalAmount)
	if info.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", info.Notes)
	}
	return b.String()
}

func (n *OrderNotifier) paymentLabel(method domain.PaymentMethod) string {
	if method == domain.PaymentMethodBank {
		return n.localizer.Sprintf(n.lang, i18n.MsgPaymentBank)
	}
	return n.localizer.Sprintf(n.lang, i18n.MsgPaymentCash)
}
