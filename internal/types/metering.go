package types

// UsageWarning is a non-fatal threshold signal attached to a usage result.
type UsageWarning string

const (
	// UsageWarningNone means usage is below every alerting threshold.
	UsageWarningNone UsageWarning = ""
	// UsageWarningApproaching fires at 80% of the tier ceiling.
	UsageWarningApproaching UsageWarning = "QUOTA_WARNING_80"
	// UsageWarningReached fires when the ceiling is fully consumed.
	UsageWarningReached UsageWarning = "QUOTA_REACHED"
)
