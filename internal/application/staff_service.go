package application

import (
	"context"
	"fmt"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
)

// StaffService promotes customers to staff and demotes them again, telling
// them by email each time.
type StaffService struct {
	customers ports.CustomerRepository
	mailer    ports.Mailer
	siteName  string
	logger    zerolog.Logger
	now       clock
}

// NewStaffService creates a new staff service
func NewStaffService(customers ports.CustomerRepository, mailer ports.Mailer, siteName string, logger zerolog.Logger) *StaffService {
	if siteName == "" {
		siteName = "Fishy Friend Aquatics"
	}
	return &StaffService{customers: customers, mailer: mailer, siteName: siteName, logger: logger, now: time.Now}
}

// List returns the staff members.
func (s *StaffService) List(ctx context.Context) ([]*domain.Customer, error) {
	all, err := s.customers.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	staff := make([]*domain.Customer, 0)
	for _, c := range all {
		if c.Role == domain.RoleStaff {
			staff = append(staff, c)
		}
	}
	return staff, nil
}

// Add gives a customer the staff role and sends the welcome email. A mail
// failure is logged; the role change stands.
func (s *StaffService) Add(ctx context.Context, customerID string) (*domain.Customer, error) {
	customer, err := s.get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	switch customer.Role {
	case domain.RoleStaff:
		return nil, domain.NewValidationError("role", "%s is already staff.", displayName(customer))
	case domain.RoleAdmin:
		return nil, domain.NewValidationError("role", "%s is an administrator.", displayName(customer))
	}
	if customer.Blocked {
		return nil, domain.NewValidationError("customer", "Blocked accounts cannot be made staff.")
	}
	customer.Role = domain.RoleStaff
	customer.UpdatedAt = s.now()
	if err := s.customers.SaveCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}
	s.logger.Info().Str("customerId", customer.ID).Str("by", domain.StaffFromContext(ctx)).Msg("Added staff member")
	s.notify(ctx, customer, s.welcomeEmail(customer))
	return customer, nil
}

// Remove demotes a staff member to customer and sends the removal notice.
func (s *StaffService) Remove(ctx context.Context, customerID string) (*domain.Customer, error) {
	customer, err := s.get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer.Role != domain.RoleStaff {
		return nil, domain.ErrNotFound
	}
	customer.Role = domain.RoleCustomer
	customer.UpdatedAt = s.now()
	if err := s.customers.SaveCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}
	s.logger.Info().Str("customerId", customer.ID).Str("by", domain.StaffFromContext(ctx)).Msg("Removed staff member")
	s.notify(ctx, customer, removalEmail(customer))
	return customer, nil
}

func (s *StaffService) get(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	return customer, nil
}

func (s *StaffService) notify(ctx context.Context, customer *domain.Customer, email ports.Email) {
	if customer.Email == "" {
		s.logger.Warn().Str("customerId", customer.ID).Msg("Customer has no email, skipping staff notification")
		return
	}
	if err := s.mailer.Send(ctx, email); err != nil {
		s.logger.Error().Err(err).Str("to", email.To).Msg("Failed to send staff notification")
		return
	}
	s.logger.Info().Str("to", email.To).Str("subject", email.Subject).Msg("Sent staff notification")
}

func (s *StaffService) welcomeEmail(c *domain.Customer) ports.Email {
	return ports.Email{
		To:      c.Email,
		Subject: fmt.Sprintf("You have been added as Staff - %s", s.siteName),
		Body: fmt.Sprintf("Hello %s,\n\n"+
			"You've been added as staff to %s.\n\n"+
			"You can now login using your account credentials. If you did not set a password, please use the password reset flow.\n\n"+
			"Thanks,\n%s", displayName(c), s.siteName, s.siteName),
	}
}

func removalEmail(c *domain.Customer) ports.Email {
	return ports.Email{
		To:      c.Email,
		Subject: "Staff access removed — Fishy Friend Aquatics",
		Body: fmt.Sprintf("Hello %s,\n\n"+
			"This is an official notification from Fishy Friend Aquatics. "+
			"Your staff access has been removed and your account role has been changed. "+
			"If you believe this is an error, please contact an administrator immediately.\n\n"+
			"If you have questions, reply to this email or contact support.\n\n"+
			"— Fishy Friend Aquatics Team", displayName(c)),
	}
}

func displayName(c *domain.Customer) string {
	if c.Name != "" {
		return c.Name
	}
	return c.Email
}
