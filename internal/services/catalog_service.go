package services

import (
	"context"
	"regexp"
	"strings"

	"cabbooking/internal/domain"
	"cabbooking/internal/domain/models"
	"cabbooking/internal/repositories"
	"cabbooking/internal/utils"
)

var offerCodePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

// CatalogService backs the admin screens for cities, routes, fares, offers and drivers.
type CatalogService struct {
	Cities  repositories.CityRepository
	Routes  repositories.RouteRepository
	Fares   repositories.FareRepository
	Offers  repositories.OfferRepository
	Drivers repositories.DriverRepository

	RequestID string
}

func (s CatalogService) ListCities(ctx context.Context, activeOnly bool) ([]models.City, error) {
	return s.Cities.List(ctx, activeOnly)
}

func (s CatalogService) SaveCity(ctx context.Context, c models.City) (models.City, error) {
	c.Name = utils.NormalizeSpace(c.Name)
	if c.Name == "" {
		return c, domain.ValidationError{Field: "name", Msg: "required"}
	}
	c.Slug = utils.Slugify(utils.FirstNonEmpty(c.Slug, c.Name))
	c.State = utils.NormalizeSpace(c.State)

	if c.ID == 0 {
		c.Active = true
		id, err := s.Cities.Create(ctx, c)
		if err != nil {
			return c, err
		}
		c.ID = id
		utils.LogEvent(s.RequestID, "catalog", "city", "city "+c.Slug+" created")
		return c, nil
	}
	if err := s.Cities.Update(ctx, c); err != nil {
		return c, err
	}
	utils.LogEvent(s.RequestID, "catalog", "city", "city "+c.Slug+" updated")
	return c, nil
}

func (s CatalogService) DeleteCity(ctx context.Context, id int64) error {
	return s.Cities.Deactivate(ctx, id)
}

func (s CatalogService) ListRoutes(ctx context.Context, activeOnly bool) ([]models.Route, error) {
	return s.Routes.List(ctx, activeOnly)
}

func (s CatalogService) GetRoute(ctx context.Context, id int64) (models.Route, error) {
	return s.Routes.GetByID(ctx, id)
}

func validateRoute(rt *models.Route) error {
	rt.OriginCity = utils.NormalizeSpace(rt.OriginCity)
	rt.DestinationCity = utils.NormalizeSpace(rt.DestinationCity)
	rt.OriginSlug = utils.Slugify(rt.OriginCity)
	rt.DestinationSlug = utils.Slugify(rt.DestinationCity)
	switch {
	case rt.OriginSlug == "":
		return domain.ValidationError{Field: "origin_city", Msg: "required"}
	case rt.DestinationSlug == "":
		return domain.ValidationError{Field: "destination_city", Msg: "required"}
	case rt.OriginSlug == rt.DestinationSlug:
		return domain.ValidationError{Field: "destination_city", Msg: "must differ from origin"}
	case rt.DistanceKM <= 0:
		return domain.ValidationError{Field: "distance_km", Msg: "must be positive"}
	case rt.DurationMin <= 0:
		return domain.ValidationError{Field: "duration_min", Msg: "must be positive"}
	}
	return nil
}

// SaveRoute creates (ID == 0) or updates a route. A second route for the same
// origin/destination pair is a ConflictError.
func (s CatalogService) SaveRoute(ctx context.Context, rt models.Route) (models.Route, error) {
	if err := validateRoute(&rt); err != nil {
		return rt, err
	}
	if rt.ID == 0 {
		rt.Active = true
		id, err := s.Routes.Create(ctx, rt)
		if err != nil {
			return rt, err
		}
		rt.ID = id
		utils.LogEvent(s.RequestID, "catalog", "route", "route "+rt.OriginSlug+"-"+rt.DestinationSlug+" created")
		return rt, nil
	}
	if err := s.Routes.Update(ctx, rt); err != nil {
		return rt, err
	}
	utils.LogEvent(s.RequestID, "catalog", "route", "route "+rt.OriginSlug+"-"+rt.DestinationSlug+" updated")
	return rt, nil
}

func (s CatalogService) DeleteRoute(ctx context.Context, id int64) error {
	return s.Routes.Deactivate(ctx, id)
}

func (s CatalogService) ListFares(ctx context.Context, routeID int64) ([]models.Fare, error) {
	if _, err := s.Routes.GetByID(ctx, routeID); err != nil {
		return nil, err
	}
	return s.Fares.ListByRoute(ctx, routeID)
}

// PutFares upserts every fare of a route in one transaction.
func (s CatalogService) PutFares(ctx context.Context, routeID int64, fares []models.Fare) ([]models.Fare, error) {
	if len(fares) == 0 {
		return nil, domain.ValidationError{Field: "fares", Msg: "at least one fare is required"}
	}
	seen := map[models.CarType]bool{}
	for i := range fares {
		ct, ok := models.ParseCarType(string(fares[i].CarType))
		if !ok {
			return nil, domain.ValidationError{Field: "car_type", Msg: "unknown car type " + string(fares[i].CarType)}
		}
		if seen[ct] {
			return nil, domain.ValidationError{Field: "car_type", Msg: "duplicate car type " + string(ct)}
		}
		seen[ct] = true
		if fares[i].BaseFareINR <= 0 {
			return nil, domain.ValidationError{Field: "base_fare_inr", Msg: "must be positive"}
		}
		if fares[i].NightSurchargePct < 0 || fares[i].NightSurchargePct > 100 {
			return nil, domain.ValidationError{Field: "night_surcharge_pct", Msg: "must be between 0 and 100"}
		}
		fares[i].CarType = ct
		fares[i].RouteID = routeID
	}
	if _, err := s.Routes.GetByID(ctx, routeID); err != nil {
		return nil, err
	}
	if err := s.Fares.Upsert(ctx, routeID, fares); err != nil {
		return nil, err
	}
	utils.LogEvent(s.RequestID, "catalog", "fares", "fares updated")
	return s.Fares.ListByRoute(ctx, routeID)
}

func (s CatalogService) ListOffers(ctx context.Context) ([]models.Offer, error) {
	return s.Offers.List(ctx)
}

func (s CatalogService) GetOffer(ctx context.Context, id int64) (models.Offer, error) {
	return s.Offers.GetByID(ctx, id)
}

func validateOffer(o *models.Offer) error {
	o.Code = strings.ToUpper(strings.TrimSpace(o.Code))
	o.Type = models.DiscountType(strings.ToUpper(strings.TrimSpace(string(o.Type))))
	switch {
	case !offerCodePattern.MatchString(o.Code):
		return domain.ValidationError{Field: "code", Msg: "3 to 32 letters, digits, '-' or '_'"}
	case o.Type != models.DiscountFlat && o.Type != models.DiscountPct:
		return domain.ValidationError{Field: "discount_type", Msg: "must be FLAT or PCT"}
	case o.Value <= 0:
		return domain.ValidationError{Field: "value", Msg: "must be positive"}
	case o.Type == models.DiscountPct && o.Value > 100:
		return domain.ValidationError{Field: "value", Msg: "percentage above 100"}
	case o.CapINR != nil && *o.CapINR < 0:
		return domain.ValidationError{Field: "cap_inr", Msg: "must not be negative"}
	case o.ValidFrom != nil && o.ValidTo != nil && !o.ValidTo.After(*o.ValidFrom):
		return domain.ValidationError{Field: "valid_to", Msg: "must be after valid_from"}
	}
	return nil
}

func (s CatalogService) SaveOffer(ctx context.Context, o models.Offer) (models.Offer, error) {
	if err := validateOffer(&o); err != nil {
		return o, err
	}
	if o.ID == 0 {
		o.Active = true
		id, err := s.Offers.Create(ctx, o)
		if err != nil {
			return o, err
		}
		o.ID = id
		utils.LogEvent(s.RequestID, "catalog", "offer", "offer "+o.Code+" created")
		return o, nil
	}
	if err := s.Offers.Update(ctx, o); err != nil {
		return o, err
	}
	utils.LogEvent(s.RequestID, "catalog", "offer", "offer "+o.Code+" updated")
	return o, nil
}

func (s CatalogService) DeleteOffer(ctx context.Context, id int64) error {
	return s.Offers.Deactivate(ctx, id)
}

func (s CatalogService) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	return s.Drivers.List(ctx)
}

func (s CatalogService) SaveDriver(ctx context.Context, d models.Driver) (models.Driver, error) {
	d.Name = utils.NormalizeSpace(d.Name)
	if d.Name == "" {
		return d, domain.ValidationError{Field: "name", Msg: "required"}
	}
	phone, err := utils.NormalizePhone(d.Phone)
	if err != nil {
		return d, domain.ValidationError{Field: "phone", Msg: "invalid mobile number", Err: err}
	}
	d.Phone = phone
	ct, ok := models.ParseCarType(string(d.CarType))
	if !ok {
		return d, domain.ValidationError{Field: "car_type", Msg: "unknown car type"}
	}
	d.CarType = ct
	d.VehicleNo = strings.ToUpper(utils.NormalizeSpace(d.VehicleNo))
	d.LicenseNo = strings.ToUpper(utils.NormalizeSpace(d.LicenseNo))

	if d.ID == 0 {
		d.Active = true
		id, err := s.Drivers.Create(ctx, d)
		if err != nil {
			return d, err
		}
		d.ID = id
		utils.LogEvent(s.RequestID, "catalog", "driver", "driver "+utils.MaskPhone(d.Phone)+" created")
		return d, nil
	}
	if err := s.Drivers.Update(ctx, d); err != nil {
		return d, err
	}
	return d, nil
}

func (s CatalogService) DeleteDriver(ctx context.Context, id int64) error {
	return s.Drivers.Deactivate(ctx, id)
}
