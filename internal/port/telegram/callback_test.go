package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCallback(t *testing.T) {
	cases := []struct {
		data     string
		expected action
	}{
		{"create_ad", action{typ: actionCreateAd}},
		{"photos_done", action{typ: actionPhotosDone}},
		{"send_to_moderation", action{typ: actionSubmit}},
		{"start", action{typ: actionGoToStart}},
		{"category:sell", action{typ: actionCategory, arg: "sell"}},
		{"approve:664f1b2a", action{typ: actionApprove, arg: "664f1b2a"}},
		{"reject:664f1b2a", action{typ: actionReject, arg: "664f1b2a"}},
		// The publication ref itself contains a colon; only the first one
		// separates the verb.
		{"sold:-100500:42", action{typ: actionSold, arg: "-100500:42"}},
		{"garbage", action{typ: actionNone}},
		{"", action{typ: actionNone}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, parseCallback(tc.data), "data %q", tc.data)
	}
}

func TestCallbackBuilders_RoundTrip(t *testing.T) {
	assert.Equal(t, action{typ: actionCategory, arg: "buy"}, parseCallback(categoryCallback("buy")))
	assert.Equal(t, action{typ: actionApprove, arg: "id-1"}, parseCallback(approveCallback("id-1")))
	assert.Equal(t, action{typ: actionReject, arg: "id-1"}, parseCallback(rejectCallback("id-1")))
	assert.Equal(t, action{typ: actionSold, arg: "-1:7"}, parseCallback(soldCallback("-1:7")))
}

func TestParseRef(t *testing.T) {
	chatID, messageID, ok := parseRef("-1001234567890:42")
	assert.True(t, ok)
	assert.Equal(t, int64(-1001234567890), chatID)
	assert.Equal(t, 42, messageID)

	assert.Equal(t, "-1001234567890:42", formatRef(-1001234567890, 42))

	for _, bad := range []string{"", "42", "x:42", "-1:y"} {
		_, _, ok := parseRef(bad)
		assert.False(t, ok, "ref %q", bad)
	}
}
