package app

import "errors"

var (
	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password. One message for both keeps account enumeration impossible.
	ErrInvalidCredentials = errors.New("Invalid email or password.")

	ErrRegistrationDisabled = errors.New("registration is disabled")
	ErrAdminExists          = errors.New("admin already exists")
	ErrEmailRequired        = errors.New("email is required")
	ErrPasswordRequired     = errors.New("password is required")

	ErrNameRequired       = errors.New("name is required")
	ErrPhoneRequired      = errors.New("phone is required")
	ErrUnknownBranch      = errors.New("unknown branch")
	ErrInvalidRating      = errors.New("invalid rating value")
	ErrInvalidDelayBucket = errors.New("invalid wait-time value")
	ErrUnknownQuestion    = errors.New("unknown rating question")
)

// IsValidationError reports whether err is a submission/registration input
// error, as opposed to a storage or infrastructure failure.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrEmailRequired,
		ErrPasswordRequired,
		ErrNameRequired,
		ErrPhoneRequired,
		ErrUnknownBranch,
		ErrInvalidRating,
		ErrInvalidDelayBucket,
		ErrUnknownQuestion,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
