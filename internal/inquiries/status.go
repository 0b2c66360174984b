package inquiries

import "github.com/sugarmaple/bakehouse-backend/pkg/enums"

// transitions is the custom-cake inquiry state machine. Staff may reject up
// to the point production starts; closed covers expired or withdrawn
// inquiries from any non-terminal status.
var transitions = map[enums.InquiryStatus]map[enums.InquiryStatus]bool{
	enums.InquiryStatusNew: {
		enums.InquiryStatusInReview: true,
		enums.InquiryStatusRejected: true,
		enums.InquiryStatusClosed:   true,
	},
	enums.InquiryStatusInReview: {
		enums.InquiryStatusQuoted:   true,
		enums.InquiryStatusRejected: true,
		enums.InquiryStatusClosed:   true,
	},
	enums.InquiryStatusQuoted: {
		enums.InquiryStatusAccepted: true,
		enums.InquiryStatusRejected: true,
		enums.InquiryStatusClosed:   true,
	},
	enums.InquiryStatusAccepted: {
		enums.InquiryStatusInProgress: true,
		enums.InquiryStatusRejected:   true,
		enums.InquiryStatusClosed:     true,
	},
	enums.InquiryStatusInProgress: {
		enums.InquiryStatusReadyForPickup: true,
		enums.InquiryStatusClosed:         true,
	},
	enums.InquiryStatusReadyForPickup: {
		enums.InquiryStatusCompleted: true,
		enums.InquiryStatusClosed:    true,
	},
	enums.InquiryStatusCompleted: {},
	enums.InquiryStatusRejected:  {},
	enums.InquiryStatusClosed:    {},
}

// CanTransition reports whether an inquiry may move from one status to another.
func CanTransition(from, to enums.InquiryStatus) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	return allowed[to]
}
