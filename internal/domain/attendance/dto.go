package attendance

import (
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/civiltime"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
)

const (
	DefaultAdminListLimit = 500
	DefaultOwnListLimit   = 100
	StatusRecentLimit     = 30
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	UserID     string   `json:"-"`
	Latitude   *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude  *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	LateReason *string  `json:"late_reason,omitempty" validate:"omitempty,max=500"`
}

func (r *CheckInRequest) Validate() error {
	return validator.Struct(r)
}

type CheckOutRequest struct {
	UserID      string   `json:"-"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	EarlyReason *string  `json:"early_reason,omitempty" validate:"omitempty,max=500"`
}

func (r *CheckOutRequest) Validate() error {
	return validator.Struct(r)
}

type AttendanceResponse struct {
	ID                string   `json:"id"`
	UserID            string   `json:"user_id"`
	UserName          *string  `json:"user_name,omitempty"`
	StaffID           *string  `json:"staff_id,omitempty"`
	BranchName        *string  `json:"branch_name,omitempty"`
	WorkDate          string   `json:"work_date"`
	CheckInAt         string   `json:"check_in_at"`
	CheckOutAt        *string  `json:"check_out_at,omitempty"`
	CheckInLateReason *string  `json:"check_in_late_reason,omitempty"`
	CheckOutReason    *string  `json:"check_out_reason,omitempty"`
	AutoClosed        bool     `json:"auto_closed"`
	CheckInLatitude   *float64 `json:"check_in_latitude,omitempty"`
	CheckInLongitude  *float64 `json:"check_in_longitude,omitempty"`
	CheckOutLatitude  *float64 `json:"check_out_latitude,omitempty"`
	CheckOutLongitude *float64 `json:"check_out_longitude,omitempty"`
	IsLate            bool     `json:"is_late"`
}

// ToResponse maps a record to its API shape. Instants are rendered in the
// civil zone.
func ToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:                a.ID,
		UserID:            a.UserID,
		UserName:          a.UserName,
		StaffID:           a.StaffID,
		BranchName:        a.BranchName,
		WorkDate:          a.WorkDate.String(),
		CheckInAt:         a.CheckInAt.In(civiltime.Zone).Format(time.RFC3339),
		CheckInLateReason: a.CheckInLateReason,
		CheckOutReason:    a.CheckOutReason.Stored(),
		CheckInLatitude:   a.CheckInLatitude,
		CheckInLongitude:  a.CheckInLongitude,
		CheckOutLatitude:  a.CheckOutLatitude,
		CheckOutLongitude: a.CheckOutLongitude,
		IsLate:            a.CheckInLateReason != nil,
	}
	if a.CheckOutAt != nil {
		out := a.CheckOutAt.In(civiltime.Zone).Format(time.RFC3339)
		resp.CheckOutAt = &out
	}
	if a.CheckOutReason != nil && a.CheckOutReason.Kind == ReasonAutoClosedNoCheckout {
		resp.AutoClosed = true
	}
	return resp
}

// AttendanceFilter narrows the administrative listing. From and To are
// inclusive civil dates (YYYY-MM-DD).
type AttendanceFilter struct {
	BranchID *string
	From     *string
	To       *string
	Limit    int
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.BranchID != nil && !validator.IsValidUUID(*f.BranchID) {
		errs = append(errs, validator.ValidationError{
			Field:   "branch_id",
			Message: "branch_id must be a valid UUID",
		})
	}

	var from, to time.Time
	var fromOK, toOK bool
	if f.From != nil {
		if from, fromOK = validator.IsValidDate(*f.From); !fromOK {
			errs = append(errs, validator.ValidationError{
				Field:   "from",
				Message: "from must be in YYYY-MM-DD format",
			})
		}
	}
	if f.To != nil {
		if to, toOK = validator.IsValidDate(*f.To); !toOK {
			errs = append(errs, validator.ValidationError{
				Field:   "to",
				Message: "to must be in YYYY-MM-DD format",
			})
		}
	}
	if fromOK && toOK && to.Before(from) {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: "to must not be before from",
		})
	}

	if f.Limit < 0 || f.Limit > DefaultAdminListLimit {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be between 1 and 500",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	Count       int                  `json:"count"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// StatusResponse is the worker-facing summary of today's attendance.
type StatusResponse struct {
	State            string               `json:"state"`
	Today            string               `json:"today"`
	WorkStart        string               `json:"work_start"`
	WorkEnd          string               `json:"work_end"`
	CheckInOpensAt   string               `json:"check_in_opens_at"`
	LateAfter        string               `json:"late_after"`
	CheckOutClosesAt string               `json:"check_out_closes_at"`
	HasBranch        bool                 `json:"has_branch"`
	RequiresLocation bool                 `json:"requires_location"`
	CanCheckIn       bool                 `json:"can_check_in"`
	CanCheckOut      bool                 `json:"can_check_out"`
	OpenAttendance   *AttendanceResponse  `json:"open_attendance,omitempty"`
	Recent           []AttendanceResponse `json:"recent"`
}
