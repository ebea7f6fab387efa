package constant

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	// Limiter namespaces. failed-login gates the login endpoint and is
	// written only on verification failure; login is informational.
	NamespaceFailedLogin = "failed-login"
	NamespaceLogin       = "login"

	// Upper bound on submitted identifiers and passwords. Anything larger
	// is rejected before bcrypt runs.
	MaxCredentialLength = 1000

	OtpCodeLength  = 6
	OtpMaxAttempts = 5
)
