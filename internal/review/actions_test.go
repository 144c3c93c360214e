package review_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"reviewbot/internal/review"
)

func TestParseAction(t *testing.T) {
	t.Parallel()

	cases := []struct {
		data string
		want review.Action
	}{
		{"review reject", review.Action{Kind: review.ActionRejectMenu}},
		{"review reject back", review.Action{Kind: review.ActionRejectBack}},
		// Alias kept for keyboards rendered by older builds.
		{"reject back", review.Action{Kind: review.ActionRejectBack}},
		{"review spoiler", review.Action{Kind: review.ActionSpoiler}},
		{"review inplan", review.Action{Kind: review.ActionInPlan}},
		{"review accept", review.Action{Kind: review.ActionAccept}},
		{"review accept second", review.Action{Kind: review.ActionAcceptSecond}},
		{"review anymouse", review.Action{Kind: review.ActionAnonymous}},
		{"review cancel", review.Action{Kind: review.ActionCancel}},
		{"review tag nsfw", review.Action{Kind: review.ActionTag, Arg: "nsfw"}},
		{"review tag wanan", review.Action{Kind: review.ActionTag, Arg: "wanan"}},
		// "spoiler" is a reserved tag name routed to the spoiler toggle.
		{"review tag spoiler", review.Action{Kind: review.ActionSpoiler}},
		{"reject qrcode", review.Action{Kind: review.ActionRejectReason, Arg: "qrcode"}},
		{"channeloption 12345 autoreject", review.Action{Kind: review.ActionChannelOption, Args: []string{"12345", "autoreject"}}},
		{"", review.Action{Kind: review.ActionNone}},
		{"review", review.Action{Kind: review.ActionNone}},
		{"review frobnicate", review.Action{Kind: review.ActionNone}},
		{"cancel", review.Action{Kind: review.ActionNone}},
	}

	for _, tc := range cases {
		t.Run(tc.data, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, review.ParseAction(tc.data))
		})
	}
}
