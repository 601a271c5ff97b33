package attendance

import (
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/civiltime"
)

type Attendance struct {
	ID                string
	UserID            string
	WorkDate          civiltime.Date
	CheckInAt         time.Time
	CheckOutAt        *time.Time
	CheckInLateReason *string
	CheckOutReason    *CheckoutReason
	CheckInLatitude   *float64
	CheckInLongitude  *float64
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Join
	UserName   *string
	StaffID    *string
	BranchName *string
}

// IsOpen reports whether the record has no check-out yet.
func (a *Attendance) IsOpen() bool {
	return a.CheckOutAt == nil
}

// ReasonKind distinguishes a worker's own check-out note from the marker
// written when the system closes a forgotten record.
type ReasonKind int

const (
	ReasonUserSupplied ReasonKind = iota
	ReasonAutoClosedNoCheckout
)

// AutoCloseReasonText is the stored text of ReasonAutoClosedNoCheckout.
const AutoCloseReasonText = "no checkout"

type CheckoutReason struct {
	Kind ReasonKind
	Text string
}

// AutoClosedReason is attached to records closed by the system.
func AutoClosedReason() *CheckoutReason {
	return &CheckoutReason{Kind: ReasonAutoClosedNoCheckout, Text: AutoCloseReasonText}
}

// Stored returns the column value for r.
func (r *CheckoutReason) Stored() *string {
	if r == nil {
		return nil
	}
	text := r.Text
	if r.Kind == ReasonAutoClosedNoCheckout {
		text = AutoCloseReasonText
	}
	return &text
}

// ParseCheckoutReason restores a reason from its column value.
func ParseCheckoutReason(stored *string) *CheckoutReason {
	if stored == nil {
		return nil
	}
	if *stored == AutoCloseReasonText {
		return AutoClosedReason()
	}
	return &CheckoutReason{Kind: ReasonUserSupplied, Text: *stored}
}

// State is a worker's attendance situation relative to one civil day.
type State int

const (
	StateNoOpenRecord State = iota
	StateOpenToday
	StateOpenStale
	StateClosedToday
)

func (s State) String() string {
	switch s {
	case StateOpenToday:
		return "OPEN_TODAY"
	case StateOpenStale:
		return "OPEN_STALE"
	case StateClosedToday:
		return "CLOSED_TODAY"
	default:
		return "NO_OPEN_RECORD"
	}
}

// Classify derives the state from the worker's open record (if any) and
// whether a record already exists for today. An open record is stale when
// it was checked in before the start of today's civil date.
func Classify(open *Attendance, hasRecordToday bool, now time.Time) State {
	if open != nil {
		if open.CheckInAt.Before(civiltime.StartOfDay(civiltime.Today(now))) {
			return StateOpenStale
		}
		return StateOpenToday
	}
	if hasRecordToday {
		return StateClosedToday
	}
	return StateNoOpenRecord
}
