package inquiries

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sugarmaple/bakehouse-backend/pkg/enums"
)

func TestInquiryTransitionTable(t *testing.T) {
	t.Parallel()

	allowed := []struct {
		from enums.InquiryStatus
		to   enums.InquiryStatus
	}{
		{enums.InquiryStatusNew, enums.InquiryStatusInReview},
		{enums.InquiryStatusNew, enums.InquiryStatusRejected},
		{enums.InquiryStatusNew, enums.InquiryStatusClosed},
		{enums.InquiryStatusInReview, enums.InquiryStatusQuoted},
		{enums.InquiryStatusInReview, enums.InquiryStatusRejected},
		{enums.InquiryStatusInReview, enums.InquiryStatusClosed},
		{enums.InquiryStatusQuoted, enums.InquiryStatusAccepted},
		{enums.InquiryStatusQuoted, enums.InquiryStatusRejected},
		{enums.InquiryStatusQuoted, enums.InquiryStatusClosed},
		{enums.InquiryStatusAccepted, enums.InquiryStatusInProgress},
		{enums.InquiryStatusAccepted, enums.InquiryStatusRejected},
		{enums.InquiryStatusAccepted, enums.InquiryStatusClosed},
		{enums.InquiryStatusInProgress, enums.InquiryStatusReadyForPickup},
		{enums.InquiryStatusInProgress, enums.InquiryStatusClosed},
		{enums.InquiryStatusReadyForPickup, enums.InquiryStatusCompleted},
		{enums.InquiryStatusReadyForPickup, enums.InquiryStatusClosed},
	}
	for _, tc := range allowed {
		require.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct {
		from enums.InquiryStatus
		to   enums.InquiryStatus
	}{
		{enums.InquiryStatusNew, enums.InquiryStatusQuoted},
		{enums.InquiryStatusNew, enums.InquiryStatusCompleted},
		{enums.InquiryStatusQuoted, enums.InquiryStatusInProgress},
		{enums.InquiryStatusInProgress, enums.InquiryStatusRejected},
		{enums.InquiryStatusReadyForPickup, enums.InquiryStatusRejected},
		{enums.InquiryStatusReadyForPickup, enums.InquiryStatusInReview},
		{enums.InquiryStatusCompleted, enums.InquiryStatusClosed},
		{enums.InquiryStatusRejected, enums.InquiryStatusNew},
		{enums.InquiryStatusClosed, enums.InquiryStatusInReview},
	}
	for _, tc := range denied {
		require.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	t.Parallel()

	terminals := []enums.InquiryStatus{
		enums.InquiryStatusCompleted,
		enums.InquiryStatusRejected,
		enums.InquiryStatusClosed,
	}
	all := []enums.InquiryStatus{
		enums.InquiryStatusNew,
		enums.InquiryStatusInReview,
		enums.InquiryStatusQuoted,
		enums.InquiryStatusAccepted,
		enums.InquiryStatusInProgress,
		enums.InquiryStatusReadyForPickup,
		enums.InquiryStatusCompleted,
		enums.InquiryStatusRejected,
		enums.InquiryStatusClosed,
	}
	for _, from := range terminals {
		for _, to := range all {
			require.False(t, CanTransition(from, to), "%s -> %s should be rejected", from, to)
		}
	}
}
