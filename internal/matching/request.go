package matching

import (
	"encoding/json"
	"fmt"
)

// ServiceItem is one booked sub-service line-item.
type ServiceItem struct {
	ServiceName string  `json:"serviceName"`
	Cost        float64 `json:"cost"`
}

// Offer references an entry in the user's offers_used ledger.
type Offer struct {
	OfferCode string `json:"offer_code"`
}

// BookingRequest is the JSON body of the getNearbyWorker operation.
type BookingRequest struct {
	Area                 string        `json:"area"`
	Pincode              string        `json:"pincode"`
	City                 string        `json:"city"`
	AlternateName        string        `json:"alternateName"`
	AlternatePhoneNumber string        `json:"alternatePhoneNumber"`
	ServiceBooked        []ServiceItem `json:"serviceBooked"`
	Discount             float64       `json:"discount"`
	TipAmount            float64       `json:"tipAmount"`
	Offer                *Offer        `json:"offer,omitempty"`
}

// Validate checks the request before any store access.
func (r *BookingRequest) Validate() error {
	if len(r.ServiceBooked) == 0 {
		return &ValidationError{Msg: "serviceBooked must contain at least one service"}
	}
	for i, item := range r.ServiceBooked {
		if item.ServiceName == "" {
			return &ValidationError{Msg: fmt.Sprintf("serviceBooked[%d] is missing serviceName", i)}
		}
		if item.Cost < 0 {
			return &ValidationError{Msg: fmt.Sprintf("serviceBooked[%d] has a negative cost", i)}
		}
	}
	if r.Discount < 0 {
		return &ValidationError{Msg: "discount must not be negative"}
	}
	if r.TipAmount < 0 {
		return &ValidationError{Msg: "tipAmount must not be negative"}
	}
	if r.Offer != nil && r.Offer.OfferCode == "" {
		return &ValidationError{Msg: "offer is missing offer_code"}
	}
	return nil
}

// TotalCost is the amount charged: sum of line-items minus discount plus tip.
func (r *BookingRequest) TotalCost() float64 {
	var sum float64
	for _, item := range r.ServiceBooked {
		sum += item.Cost
	}
	return sum - r.Discount + r.TipAmount
}

// ServiceNames returns the requested sub-service names, in request order.
func (r *BookingRequest) ServiceNames() []string {
	names := make([]string, 0, len(r.ServiceBooked))
	for _, item := range r.ServiceBooked {
		names = append(names, item.ServiceName)
	}
	return names
}

// ServiceJSON serialises the line-items once; the same string is stored on
// the booking row, every notification row and the push payload.
func (r *BookingRequest) ServiceJSON() (string, error) {
	raw, err := json.Marshal(r.ServiceBooked)
	if err != nil {
		return "", fmt.Errorf("marshal serviceBooked: %w", err)
	}
	return string(raw), nil
}

// LocationSummary renders the human-readable locality line shown in the
// push alert, e.g. "HSR Layout, Bengaluru, 560102".
func (r *BookingRequest) LocationSummary() string {
	return fmt.Sprintf("%s, %s, %s", r.Area, r.City, r.Pincode)
}
