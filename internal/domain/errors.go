package domain

import "errors"

var (
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrInvalidBloodGroup      = errors.New("invalid blood group")
	ErrInvalidResponse        = errors.New("invalid response")
	ErrInvalidPauseDuration   = errors.New("invalid pause duration")
	ErrIneligibleAge          = errors.New("donor must be at least 18 years old")
	ErrIneligibleWeight       = errors.New("donor must weigh at least 50 kg")
	ErrInvalidCredential      = errors.New("invalid credential")
	ErrDonorNameRequired      = errors.New("donor name required")
	ErrInvalidLastDonation    = errors.New("last donation cannot be in the future")
	ErrRequestNotFound        = errors.New("request not found")
	ErrRequestAlreadyResolved = errors.New("request already resolved")
	ErrDonorNotFound          = errors.New("donor not found")
	ErrHardLocked             = errors.New("donor availability is locked")
)
