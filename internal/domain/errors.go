package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnauthorized
	KindNotFound
	KindDuplicateKey
	KindInvalidArgument
	KindInsufficientBalance
	KindQuotaExhausted
	KindAlreadyDistributed
	KindInvalidSignature
	KindInvalidAction
	KindReviewExpired
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "Unauthorized"
	case KindNotFound:
		return "NotFound"
	case KindDuplicateKey:
		return "DuplicateKey"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindInsufficientBalance:
		return "InsufficientBalance"
	case KindQuotaExhausted:
		return "QuotaExhausted"
	case KindAlreadyDistributed:
		return "AlreadyDistributedThisMonth"
	case KindInvalidSignature:
		return "InvalidSignature"
	case KindInvalidAction:
		return "InvalidAction"
	case KindReviewExpired:
		return "ReviewExpired"
	default:
		return "Unknown"
	}
}

// LedgerError is a rejected operation. Two LedgerErrors match under errors.Is
// when their kinds are equal, so the sentinels below work as categories.
type LedgerError struct {
	Kind   ErrorKind
	Reason string
}

func (e LedgerError) Error() string {
	if e.Reason == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e LedgerError) Is(target error) bool {
	switch t := target.(type) {
	case LedgerError:
		return t.Kind == e.Kind
	case *LedgerError:
		return t != nil && t.Kind == e.Kind
	}
	return false
}

var (
	ErrUnauthorized        = LedgerError{Kind: KindUnauthorized}
	ErrNotFound            = LedgerError{Kind: KindNotFound}
	ErrDuplicateKey        = LedgerError{Kind: KindDuplicateKey}
	ErrInvalidArgument     = LedgerError{Kind: KindInvalidArgument}
	ErrInsufficientBalance = LedgerError{Kind: KindInsufficientBalance}
	ErrQuotaExhausted      = LedgerError{Kind: KindQuotaExhausted}
	ErrAlreadyDistributed  = LedgerError{Kind: KindAlreadyDistributed}
	ErrInvalidSignature    = LedgerError{Kind: KindInvalidSignature}
	ErrInvalidAction       = LedgerError{Kind: KindInvalidAction}
	ErrReviewExpired       = LedgerError{Kind: KindReviewExpired, Reason: "review is expired"}

	ErrInvalidReview = LedgerError{Kind: KindInvalidArgument, Reason: "review does not belong to the hospital"}
	ErrBillSettled   = LedgerError{Kind: KindInvalidArgument, Reason: "bill is already paid"}
)

func Unauthorized(format string, args ...any) error {
	return LedgerError{Kind: KindUnauthorized, Reason: fmt.Sprintf(format, args...)}
}

func NotFound(resource string) error {
	return LedgerError{Kind: KindNotFound, Reason: resource + " not found"}
}

func DuplicateKey(format string, args ...any) error {
	return LedgerError{Kind: KindDuplicateKey, Reason: fmt.Sprintf(format, args...)}
}

func InvalidArgument(format string, args ...any) error {
	return LedgerError{Kind: KindInvalidArgument, Reason: fmt.Sprintf(format, args...)}
}

func InvalidAction(format string, args ...any) error {
	return LedgerError{Kind: KindInvalidAction, Reason: fmt.Sprintf(format, args...)}
}

func InvalidSignature(format string, args ...any) error {
	return LedgerError{Kind: KindInvalidSignature, Reason: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first LedgerError in err's chain.
func KindOf(err error) ErrorKind {
	var le LedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}
