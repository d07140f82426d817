package types

// TenantStatus tracks whether a tenant may use the platform.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// SubscriptionStatus is the provider-reported subscription state. It is
// stored verbatim; only DeriveTenantStatus interprets it.
type SubscriptionStatus string

const (
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusTrialing   SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue    SubscriptionStatus = "past_due"
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
	SubscriptionStatusUnpaid     SubscriptionStatus = "unpaid"
	SubscriptionStatusNone       SubscriptionStatus = "none"
)

// DeriveTenantStatus maps a provider subscription status onto the tenant
// status. Only canceled and unpaid suspend a tenant; everything else,
// including past_due, keeps it active until the provider escalates.
func DeriveTenantStatus(status SubscriptionStatus) TenantStatus {
	switch status {
	case SubscriptionStatusCanceled, SubscriptionStatusUnpaid:
		return TenantStatusSuspended
	default:
		return TenantStatusActive
	}
}
