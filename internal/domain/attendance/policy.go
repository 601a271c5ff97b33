package attendance

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/civiltime"
)

const (
	// CheckInLeadTime is how long before work start check-in opens.
	CheckInLeadTime = 10 * time.Minute
	// LateGracePeriod is how long after work start a check-in is still on time.
	LateGracePeriod = 15 * time.Minute
	// CheckOutGracePeriod is how long after work end manual check-out stays open.
	CheckOutGracePeriod = 15 * time.Minute
	// MinReasonLength is the minimum trimmed length, in characters, of a reason.
	MinReasonLength = 3
)

// DayWindows are the instants bounding one civil day's attendance cycle.
type DayWindows struct {
	WorkStart time.Time
	WorkEnd   time.Time
}

// ResolveWindows anchors a schedule to civil date day.
func ResolveWindows(s user.Schedule, day civiltime.Date) DayWindows {
	return DayWindows{
		WorkStart: civiltime.ResolveOn(s.WorkStart, day),
		WorkEnd:   civiltime.ResolveOn(s.WorkEnd, day),
	}
}

func (w DayWindows) CheckInOpensAt() time.Time   { return w.WorkStart.Add(-CheckInLeadTime) }
func (w DayWindows) CheckInClosesAt() time.Time  { return w.WorkEnd }
func (w DayWindows) LateAfter() time.Time        { return w.WorkStart.Add(LateGracePeriod) }
func (w DayWindows) CheckOutOpensAt() time.Time  { return w.WorkEnd }
func (w DayWindows) CheckOutClosesAt() time.Time { return w.WorkEnd.Add(CheckOutGracePeriod) }

// IsLate reports whether a check-in at now counts as late.
func (w DayWindows) IsLate(now time.Time) bool {
	return now.After(w.LateAfter())
}

// CheckInDecision is the outcome of an accepted check-in.
type CheckInDecision struct {
	Late bool
	// LateReason is set only for a late check-in.
	LateReason *string
}

// EvaluateCheckIn applies the check-in window and late-reason rule at now.
// Both window bounds are inclusive.
func EvaluateCheckIn(w DayWindows, now time.Time, lateReason *string) (CheckInDecision, error) {
	if now.Before(w.CheckInOpensAt()) {
		return CheckInDecision{}, ErrTooEarlyToCheckIn.Withf(
			"check-in opens at %s", civiltime.FormatTimeOfDay(w.CheckInOpensAt()))
	}
	if now.After(w.CheckInClosesAt()) {
		return CheckInDecision{}, ErrTooLateToCheckIn.Withf(
			"check-in closed at %s", civiltime.FormatTimeOfDay(w.CheckInClosesAt()))
	}

	if !w.IsLate(now) {
		return CheckInDecision{}, nil
	}

	reason, ok := NormalizeReason(lateReason)
	if !ok {
		return CheckInDecision{}, ErrLateReasonRequired
	}
	return CheckInDecision{Late: true, LateReason: &reason}, nil
}

// CheckOutDecision is the outcome of an accepted check-out.
type CheckOutDecision struct {
	// Reason is the optional early-leave note, kept only when long enough.
	Reason *CheckoutReason
}

// EvaluateCheckOut applies the check-out window at now. The reason is
// optional and dropped when shorter than MinReasonLength.
func EvaluateCheckOut(w DayWindows, now time.Time, reason *string) (CheckOutDecision, error) {
	if now.Before(w.CheckOutOpensAt()) {
		return CheckOutDecision{}, ErrTooEarlyToCheckOut.Withf(
			"check-out opens at %s", civiltime.FormatTimeOfDay(w.CheckOutOpensAt()))
	}
	if now.After(w.CheckOutClosesAt()) {
		return CheckOutDecision{}, ErrManualCheckoutWindowClosed.Withf(
			"check-out closed at %s", civiltime.FormatTimeOfDay(w.CheckOutClosesAt()))
	}

	var d CheckOutDecision
	if text, ok := NormalizeReason(reason); ok {
		d.Reason = &CheckoutReason{Kind: ReasonUserSupplied, Text: text}
	}
	return d, nil
}

// NormalizeReason trims r and reports whether it meets MinReasonLength.
func NormalizeReason(r *string) (string, bool) {
	if r == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*r)
	return trimmed, utf8.RuneCountInString(trimmed) >= MinReasonLength
}
