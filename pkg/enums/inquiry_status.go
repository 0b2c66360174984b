package enums

import "fmt"

// InquiryStatus tracks a custom-cake inquiry through its workflow.
type InquiryStatus string

const (
	InquiryStatusNew            InquiryStatus = "new"
	InquiryStatusInReview       InquiryStatus = "in_review"
	InquiryStatusQuoted         InquiryStatus = "quoted"
	InquiryStatusAccepted       InquiryStatus = "accepted"
	InquiryStatusInProgress     InquiryStatus = "in_progress"
	InquiryStatusReadyForPickup InquiryStatus = "ready_for_pickup"
	InquiryStatusCompleted      InquiryStatus = "completed"
	InquiryStatusRejected       InquiryStatus = "rejected"
	InquiryStatusClosed         InquiryStatus = "closed"
)

var validInquiryStatuses = []InquiryStatus{
	InquiryStatusNew,
	InquiryStatusInReview,
	InquiryStatusQuoted,
	InquiryStatusAccepted,
	InquiryStatusInProgress,
	InquiryStatusReadyForPickup,
	InquiryStatusCompleted,
	InquiryStatusRejected,
	InquiryStatusClosed,
}

// String implements fmt.Stringer.
func (s InquiryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known InquiryStatus.
func (s InquiryStatus) IsValid() bool {
	for _, candidate := range validInquiryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the inquiry can no longer move.
func (s InquiryStatus) IsTerminal() bool {
	switch s {
	case InquiryStatusCompleted, InquiryStatusRejected, InquiryStatusClosed:
		return true
	default:
		return false
	}
}

// ParseInquiryStatus converts raw input into an InquiryStatus.
func ParseInquiryStatus(value string) (InquiryStatus, error) {
	for _, candidate := range validInquiryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inquiry status %q", value)
}
