package errs

import (
	"github.com/pkg/errors"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrBookNotFound      = errors.New("book not found")
	ErrRequestNotFound   = errors.New("request not found")
	ErrOwnBook           = errors.New("you cannot request your own book")
	ErrBookUnavailable   = errors.New("book is no longer available")
	ErrDuplicateRequest  = errors.New("you have already requested this book")
	ErrForbidden         = errors.New("user not authorized")
	ErrAlreadyDecided    = errors.New("request status can no longer be changed")
	ErrInvalidStatus     = errors.New("status must be accepted or rejected")
	ErrNotAccepted       = errors.New("cannot deliver a request that is not accepted")
	ErrAlreadyDelivered  = errors.New("this request has already been marked as delivered")
	ErrContactDenied     = errors.New("access denied or request not accepted")
	ErrUserTaken         = errors.New("username or email already registered")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrPriceRequired     = errors.New("price must be positive for books on sale")
)
