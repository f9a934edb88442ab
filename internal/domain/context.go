package domain

import "context"

type contextKey string

const (
	customerKey contextKey = "customer"
	staffKey    contextKey = "staff"
)

// WithCustomer stores the authenticated customer in the context.
func WithCustomer(ctx context.Context, customer *Customer) context.Context {
	return context.WithValue(ctx, customerKey, customer)
}

// CustomerFromContext returns the authenticated customer, or nil.
func CustomerFromContext(ctx context.Context) *Customer {
	customer, _ := ctx.Value(customerKey).(*Customer)
	return customer
}

// WithStaff marks the request as made by a staff member.
func WithStaff(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, staffKey, actor)
}

// StaffFromContext returns the staff actor name, or "" for non-staff requests.
func StaffFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(staffKey).(string)
	return actor
}
