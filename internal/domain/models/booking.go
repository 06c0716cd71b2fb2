package models

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusAssigned  BookingStatus = "ASSIGNED"
	StatusCompleted BookingStatus = "COMPLETED"
	StatusCancelled BookingStatus = "CANCELLED"
)

const PaymentCOD = "COD"

var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:  {StatusAssigned, StatusCancelled},
	StatusAssigned: {StatusCompleted, StatusCancelled, StatusPending},
}

// ParseBookingStatus validates an admin-supplied status.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	st := BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusAssigned, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

// Terminal statuses never change again.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether an admin may move a booking from s to next.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking is the persisted result of one booking transaction.
type Booking struct {
	ID              int64         `json:"id"`
	RouteID         int64         `json:"route_id"`
	OriginText      string        `json:"origin_text"`
	DestinationText string        `json:"destination_text"`
	PickupAt        time.Time     `json:"pickup_datetime"`
	CarType         CarType       `json:"car_type"`
	FareBaseINR     int64         `json:"fare_base_inr"`
	FareLockedINR   int64         `json:"fare_locked_inr"`
	PaymentMode     string        `json:"payment_mode"`
	Status          BookingStatus `json:"status"`
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone"`
	DiscountCode    string        `json:"discount_code,omitempty"`
	DriverID        *int64        `json:"driver_id,omitempty"`
	UTMSource       string        `json:"utm_source,omitempty"`
	UTMMedium       string        `json:"utm_medium,omitempty"`
	UTMCampaign     string        `json:"utm_campaign,omitempty"`
	UTMTerm         string        `json:"utm_term,omitempty"`
	UTMContent      string        `json:"utm_content,omitempty"`
	IdempotencyKey  string        `json:"-"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// BookingFilter narrows admin listings.
type BookingFilter struct {
	Status BookingStatus
	Phone  string
}
