package services

import (
	"context"
	"strconv"

	"cabbooking/internal/domain"
	"cabbooking/internal/domain/models"
	"cabbooking/internal/repositories"
	"cabbooking/internal/utils"
)

// BookingAdminService drives bookings through their lifecycle after creation.
type BookingAdminService struct {
	Bookings  repositories.BookingRepository
	Drivers   repositories.DriverRepository
	RequestID string
}

func (s BookingAdminService) List(ctx context.Context, f models.BookingFilter, p domain.Pagination) ([]models.Booking, domain.Pagination, error) {
	p = p.Normalize()
	list, total, err := s.Bookings.List(ctx, f, p)
	if err != nil {
		return nil, p, err
	}
	p.Total = total
	return list, p, nil
}

func (s BookingAdminService) Get(ctx context.Context, id int64) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "id", Msg: "invalid booking id"}
	}
	return s.Bookings.GetByID(ctx, id)
}

// UpdateStatus applies one lifecycle transition. Terminal bookings never change.
func (s BookingAdminService) UpdateStatus(ctx context.Context, id int64, next models.BookingStatus) (models.Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return b, err
	}
	if b.Status == next {
		return b, nil
	}
	if err := checkTransition(b.Status, next); err != nil {
		return b, err
	}
	if next == models.StatusAssigned && b.DriverID == nil {
		return b, domain.ConflictError{Resource: "booking", Code: "driver_required", Msg: "assign a driver to mark the booking assigned"}
	}
	if err := s.Bookings.UpdateStatus(ctx, id, b.Status, next); err != nil {
		return b, err
	}
	utils.LogEvent(s.RequestID, "booking", "status", "booking "+strconv.FormatInt(id, 10)+" "+string(b.Status)+" -> "+string(next))
	b.Status = next
	return b, nil
}

// Assign attaches an active driver and marks the booking ASSIGNED.
func (s BookingAdminService) Assign(ctx context.Context, id, driverID int64) (models.Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return b, err
	}
	if b.Status != models.StatusPending && b.Status != models.StatusAssigned {
		return b, domain.ConflictError{
			Resource: "booking",
			Code:     "invalid_transition",
			Msg:      "cannot assign a driver to a " + string(b.Status) + " booking",
		}
	}
	d, err := s.Drivers.GetByID(ctx, driverID)
	if err != nil {
		return b, err
	}
	if !d.Active {
		return b, domain.ValidationError{Field: "driver_id", Msg: "driver is inactive"}
	}
	if err := s.Bookings.AssignDriver(ctx, id, driverID, b.Status); err != nil {
		return b, err
	}
	utils.LogEvent(s.RequestID, "booking", "assign", "booking "+strconv.FormatInt(id, 10)+" assigned to driver "+strconv.FormatInt(driverID, 10))
	b.DriverID = &driverID
	b.Status = models.StatusAssigned
	return b, nil
}

func checkTransition(from, to models.BookingStatus) error {
	if from.Terminal() {
		return domain.ConflictError{
			Resource: "booking",
			Code:     "terminal_status",
			Msg:      "booking is " + string(from) + " and can no longer change",
		}
	}
	if !from.CanTransition(to) {
		return domain.ConflictError{
			Resource: "booking",
			Code:     "invalid_transition",
			Msg:      "cannot move booking from " + string(from) + " to " + string(to),
		}
	}
	return nil
}
