package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"cabbooking/internal/domain"
	"cabbooking/internal/repositories"
	"cabbooking/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders the booking confirmation PDF.
type DocsService struct {
	Bookings  repositories.BookingRepository
	Routes    repositories.RouteRepository
	Drivers   repositories.DriverRepository
	Location  *time.Location
	RequestID string
	Loader    func(ctx context.Context, bookingID int64) (confirmationData, error)
}

type confirmationData struct {
	BookingID     int64
	Status        string
	CustomerName  string
	CustomerPhone string
	Origin        string
	Destination   string
	PickupAt      time.Time
	CarType       string
	DistanceKM    float64
	DurationMin   int
	FareBaseINR   int64
	FareLockedINR int64
	DiscountCode  string
	PaymentMode   string
	DriverName    string
	DriverPhone   string
	VehicleNo     string
	CreatedAt     time.Time
}

func (s DocsService) GenerateConfirmation(ctx context.Context, bookingID int64) ([]byte, string, error) {
	load := s.Loader
	if load == nil {
		load = s.load
	}
	data, err := load(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_confirmation", fmt.Sprintf("booking_id=%d", bookingID))
	return buildConfirmationPDF(data, s.Location)
}

func (s DocsService) load(ctx context.Context, bookingID int64) (confirmationData, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return confirmationData{}, err
	}
	out := confirmationData{
		BookingID:     b.ID,
		Status:        string(b.Status),
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		Origin:        b.OriginText,
		Destination:   b.DestinationText,
		PickupAt:      b.PickupAt,
		CarType:       string(b.CarType),
		FareBaseINR:   b.FareBaseINR,
		FareLockedINR: b.FareLockedINR,
		DiscountCode:  b.DiscountCode,
		PaymentMode:   b.PaymentMode,
		CreatedAt:     b.CreatedAt,
	}

	if rt, err := s.Routes.GetByID(ctx, b.RouteID); err == nil {
		out.DistanceKM = rt.DistanceKM
		out.DurationMin = rt.DurationMin
	} else if !domain.IsNotFound(err) {
		return confirmationData{}, err
	}

	if b.DriverID != nil {
		d, err := s.Drivers.GetByID(ctx, *b.DriverID)
		if err != nil && !domain.IsNotFound(err) {
			return confirmationData{}, err
		}
		out.DriverName = d.Name
		out.DriverPhone = d.Phone
		out.VehicleNo = d.VehicleNo
	}
	return out, nil
}

func buildConfirmationPDF(d confirmationData, loc *time.Location) ([]byte, string, error) {
	if loc == nil {
		loc = time.UTC
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Confirmation", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING CONFIRMATION")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking No     : CB-%06d", d.BookingID),
		fmt.Sprintf("Status         : %s", safe(d.Status, "-")),
		fmt.Sprintf("Booked On      : %s", utils.FormatDateTime(d.CreatedAt, loc)),
		fmt.Sprintf("Customer       : %s", safe(d.CustomerName, "-")),
		fmt.Sprintf("Mobile         : %s", safe(utils.MaskPhone(d.CustomerPhone), "-")),
		fmt.Sprintf("Route          : %s -> %s", safe(d.Origin, "-"), safe(d.Destination, "-")),
		fmt.Sprintf("Pickup         : %s", utils.FormatDateTime(d.PickupAt, loc)),
		fmt.Sprintf("Car Type       : %s", safe(d.CarType, "-")),
	}
	if d.DistanceKM > 0 {
		lines = append(lines, fmt.Sprintf("Distance       : %.0f km (about %s)", d.DistanceKM, hoursMinutes(d.DurationMin)))
	}
	if d.DriverName != "" {
		lines = append(lines,
			fmt.Sprintf("Driver         : %s (%s)", d.DriverName, safe(d.DriverPhone, "-")),
			fmt.Sprintf("Vehicle        : %s", safe(d.VehicleNo, "-")),
		)
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Fare")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Base fare      : "+utils.FormatINR(d.FareBaseINR))
	pdf.Ln(7)
	if discount := d.FareBaseINR - d.FareLockedINR; discount > 0 {
		pdf.Cell(0, 7, fmt.Sprintf("Discount (%s) : -%s", safe(d.DiscountCode, "-"), utils.FormatINR(discount)))
		pdf.Ln(7)
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total payable  : %s (%s)", utils.FormatINR(d.FareLockedINR), safe(d.PaymentMode, "COD")))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Pay the driver in cash at the end of the trip. Tolls, parking and state permits are charged at actuals unless stated otherwise.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("BOOKING_%d_%s.pdf", d.BookingID, safeFilenamePart(d.CustomerName))
	return buf.Bytes(), filename, nil
}

func hoursMinutes(minutes int) string {
	if minutes <= 0 {
		return "-"
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
