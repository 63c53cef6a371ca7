package matching

import (
	"testing"
	"time"
)

func TestBuildJobAlert_DataPayload(t *testing.T) {
	at := time.Date(2025, time.March, 7, 14, 30, 0, 0, time.UTC)
	token := EncodeBookingToken(42)

	msg := buildJobAlert(token, `[{"serviceName":"Tap Repair","cost":250}]`, "HSR Layout, Bengaluru, 560102", 630, at)

	if msg.Title == "" || msg.Body == "" {
		t.Error("alert is missing title or body")
	}

	want := map[string]string{
		"user_notification_id": token,
		"service":              `[{"serviceName":"Tap Repair","cost":250}]`,
		"location":             "HSR Layout, Bengaluru, 560102",
		"click_action":         "FLUTTER_NOTIFICATION_CLICK",
		"cost":                 "630",
		"targetUrl":            "/acceptance/" + token,
		"screen":               "Acceptance",
		"date":                 "Mar 07, 2025",
		"time":                 "02:30 PM",
		"type":                 "normal",
	}
	for k, v := range want {
		if msg.Data[k] != v {
			t.Errorf("Data[%q] = %q, want %q", k, msg.Data[k], v)
		}
	}
}

func TestBuildJobAlert_DeepLinkMatchesPayloadID(t *testing.T) {
	// A client following the deep link and a client reading the payload id
	// must resolve to the same booking.
	token := EncodeBookingToken(7)
	msg := buildJobAlert(token, "[]", "", 0, time.Now())

	if msg.Data["targetUrl"] != "/acceptance/"+msg.Data["user_notification_id"] {
		t.Errorf("deep link %q does not embed payload id %q",
			msg.Data["targetUrl"], msg.Data["user_notification_id"])
	}
}
