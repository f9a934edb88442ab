package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// MaxEmailAttempts bounds delivery retries for a single notification.
const MaxEmailAttempts = 5

// NotificationOptions configures the emails sent to customers.
type NotificationOptions struct {
	SiteName       string
	SiteURL        string
	InitialBackoff time.Duration
}

// NotificationService turns order events into customer emails.
type NotificationService struct {
	orders    ports.OrderRepository
	customers ports.CustomerRepository
	mailer    ports.Mailer
	opts      NotificationOptions
	logger    zerolog.Logger
	sleep     func(context.Context, time.Duration) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	orders ports.OrderRepository,
	customers ports.CustomerRepository,
	mailer ports.Mailer,
	logger zerolog.Logger,
	opts NotificationOptions,
) *NotificationService {
	if opts.SiteName == "" {
		opts.SiteName = "Fishy Friend Aquatics"
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = time.Second
	}
	return &NotificationService{
		orders:    orders,
		customers: customers,
		mailer:    mailer,
		opts:      opts,
		logger:    logger,
		sleep:     sleepContext,
	}
}

// HandleOrderEvent sends the email for event, if any. Events without an
// email are acknowledged silently.
func (s *NotificationService) HandleOrderEvent(ctx context.Context, event *domain.OrderEvent) error {
	if event.Type != domain.EventOrderPaid && event.Type != domain.EventOrderCancelled {
		return nil
	}

	order, err := s.orders.GetOrder(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		s.logger.Warn().Str("orderId", event.OrderID).Str("event", string(event.Type)).Msg("Order for event not found")
		return nil
	}
	customer, err := s.customers.GetCustomer(ctx, order.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil || customer.Email == "" {
		s.logger.Warn().Str("orderNumber", order.Number).Msg("Customer has no email address, skipping notification")
		return nil
	}

	var email ports.Email
	switch event.Type {
	case domain.EventOrderPaid:
		email = s.invoiceEmail(customer, order)
	case domain.EventOrderCancelled:
		email = s.cancellationEmail(customer, order)
	}

	if err := s.deliver(ctx, email); err != nil {
		return err
	}
	s.logger.Info().
		Str("orderNumber", order.Number).
		Str("event", string(event.Type)).
		Str("to", email.To).
		Msg("Notification sent")
	return nil
}

func (s *NotificationService) deliver(ctx context.Context, email ports.Email) error {
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(s.opts.InitialBackoff),
		backoff.WithRandomizationFactor(0),
		backoff.WithMultiplier(2),
		backoff.WithMaxElapsedTime(0),
	), MaxEmailAttempts-1)
	policy.Reset()

	attempt := 1
	for {
		err := s.mailer.Send(ctx, email)
		if err == nil {
			return nil
		}
		wait := policy.NextBackOff()
		if wait == backoff.Stop {
			return fmt.Errorf("failed to send email after %d attempts: %w", attempt, err)
		}
		s.logger.Warn().Err(err).Str("to", email.To).Int("attempt", attempt).Dur("backoff", wait).Msg("Failed to send email, retrying")
		if serr := s.sleep(ctx, wait); serr != nil {
			return serr
		}
		attempt++
	}
}

func (s *NotificationService) invoiceEmail(customer *domain.Customer, order *domain.Order) ports.Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", greetingName(customer))
	fmt.Fprintf(&b, "Thank you for your order! Payment for order %s has been received.\n\n", order.Number)
	b.WriteString("INVOICE\n")
	fmt.Fprintf(&b, "Order number: %s\n", order.Number)
	fmt.Fprintf(&b, "Order date:   %s\n\n", order.CreatedAt.Format("02 Jan 2006"))
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%-30s x%-3d %s\n", item.Name, item.Quantity, domain.FormatRupees(item.Total()))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", domain.FormatRupees(order.TotalAmount))
	if order.DiscountAmount.IsPositive() {
		fmt.Fprintf(&b, "Discount (%s): -%s\n", order.CouponCode, domain.FormatRupees(order.DiscountAmount))
	}
	fmt.Fprintf(&b, "Delivery (%s kg): %s\n", order.TotalWeightKg.String(), domain.FormatRupees(order.DeliveryCharge))
	fmt.Fprintf(&b, "Total paid: %s\n", domain.FormatRupees(order.FinalAmount))
	fmt.Fprintf(&b, "Payment: %s", order.PaymentMethod)
	if order.TransactionID != "" {
		fmt.Fprintf(&b, " (ref %s)", order.TransactionID)
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Shipping to:\n%s\n%s\nPhone: %s\n\n", order.ShippingAddress, order.ShippingState, order.PhoneNumber)
	s.signature(&b)
	return ports.Email{
		To:      customer.Email,
		Subject: fmt.Sprintf("%s invoice for order %s", s.opts.SiteName, order.Number),
		Body:    b.String(),
	}
}

func (s *NotificationService) cancellationEmail(customer *domain.Customer, order *domain.Order) ports.Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", greetingName(customer))
	fmt.Fprintf(&b, "Your order %s for %s has been cancelled.\n", order.Number, domain.FormatRupees(order.FinalAmount))
	if order.PaymentStatus == domain.PaymentPaid {
		b.WriteString("Your payment will be refunded to the original payment method within 5-7 business days.\n")
	}
	b.WriteString("\n")
	s.signature(&b)
	return ports.Email{
		To:      customer.Email,
		Subject: fmt.Sprintf("%s order %s cancelled", s.opts.SiteName, order.Number),
		Body:    b.String(),
	}
}

func (s *NotificationService) signature(b *strings.Builder) {
	fmt.Fprintf(b, "Happy fishkeeping,\n%s\n", s.opts.SiteName)
	if s.opts.SiteURL != "" {
		fmt.Fprintf(b, "%s\n", s.opts.SiteURL)
	}
}

func greetingName(c *domain.Customer) string {
	if c.Name != "" {
		return c.Name
	}
	return "there"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
