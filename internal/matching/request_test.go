package matching_test

import (
	"encoding/json"
	"testing"

	"clicksolver/matching-service/internal/matching"
)

func validRequest() *matching.BookingRequest {
	return &matching.BookingRequest{
		Area:    "HSR Layout",
		Pincode: "560102",
		City:    "Bengaluru",
		ServiceBooked: []matching.ServiceItem{
			{ServiceName: "Tap Repair", Cost: 250},
			{ServiceName: "Pipe Fitting", Cost: 400},
		},
		Discount:  50,
		TipAmount: 30,
	}
}

// ── Validate ───────────────────────────────────────────────────────────────

func TestValidate_OK(t *testing.T) {
	if err := validRequest().Validate(); err != nil {
		t.Errorf("Validate() returned unexpected error: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*matching.BookingRequest)
	}{
		{"no services", func(r *matching.BookingRequest) { r.ServiceBooked = nil }},
		{"unnamed service", func(r *matching.BookingRequest) { r.ServiceBooked[0].ServiceName = "" }},
		{"negative cost", func(r *matching.BookingRequest) { r.ServiceBooked[1].Cost = -1 }},
		{"negative discount", func(r *matching.BookingRequest) { r.Discount = -5 }},
		{"negative tip", func(r *matching.BookingRequest) { r.TipAmount = -5 }},
		{"offer without code", func(r *matching.BookingRequest) { r.Offer = &matching.Offer{} }},
	}
	for _, c := range cases {
		req := validRequest()
		c.mutate(req)

		err := req.Validate()
		if err == nil {
			t.Errorf("%s: Validate() expected error, got nil", c.name)
			continue
		}
		if _, ok := err.(*matching.ValidationError); !ok {
			t.Errorf("%s: Validate() returned %T, want *ValidationError", c.name, err)
		}
	}
}

// ── Derived fields ─────────────────────────────────────────────────────────

func TestTotalCost(t *testing.T) {
	// 250 + 400 − 50 + 30
	if got := validRequest().TotalCost(); got != 630 {
		t.Errorf("TotalCost() = %v, want 630", got)
	}
}

func TestServiceNames(t *testing.T) {
	got := validRequest().ServiceNames()
	want := []string{"Tap Repair", "Pipe Fitting"}
	if len(got) != len(want) {
		t.Fatalf("ServiceNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ServiceNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestServiceJSON_RoundTrip(t *testing.T) {
	raw, err := validRequest().ServiceJSON()
	if err != nil {
		t.Fatalf("ServiceJSON() error: %v", err)
	}

	var items []matching.ServiceItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.Fatalf("ServiceJSON() produced invalid JSON: %v", err)
	}
	if len(items) != 2 || items[0].ServiceName != "Tap Repair" || items[1].Cost != 400 {
		t.Errorf("ServiceJSON() round trip = %+v", items)
	}
}

func TestLocationSummary(t *testing.T) {
	if got := validRequest().LocationSummary(); got != "HSR Layout, Bengaluru, 560102" {
		t.Errorf("LocationSummary() = %q", got)
	}
}
