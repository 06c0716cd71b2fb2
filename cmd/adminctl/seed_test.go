package main

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"cabbooking/internal/domain/models"
	"cabbooking/internal/repositories"
	"cabbooking/internal/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestParseSeedFile(t *testing.T) {
	fh, err := os.Open("testdata/seed.yaml")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer fh.Close()

	f, err := parseSeed(fh)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(f.Cities) != 2 || len(f.Routes) != 1 || len(f.Routes[0].Fares) != 2 || len(f.Offers) != 2 {
		t.Fatalf("unexpected seed %+v", f)
	}

	o, err := f.Offers[1].offer()
	if err != nil {
		t.Fatalf("offer: %v", err)
	}
	if o.CapINR == nil || *o.CapINR != 500 || o.ValidFrom == nil {
		t.Fatalf("unexpected offer %+v", o)
	}
	if len(o.Conditions) != 1 {
		t.Fatalf("expected one condition, got %d", len(o.Conditions))
	}
	if city, ok := o.Conditions[0].(models.CityRule); !ok || city.Slug != "raipur" {
		t.Fatalf("unexpected condition %#v", o.Conditions[0])
	}
}

func TestParseSeedRejectsUnknownFields(t *testing.T) {
	_, err := parseSeed(strings.NewReader("routes:\n  - origin: Raipur\n    destinaton: Bilaspur\n"))
	if err == nil {
		t.Fatalf("expected a typo in a field name to fail")
	}
}

func TestSeedOfferRejectsUnknownCondition(t *testing.T) {
	o := seedOffer{Code: "X100", Type: "FLAT", Value: 100, Conditions: map[string]any{"weekday": "mon"}}
	if _, err := o.offer(); err == nil {
		t.Fatalf("expected unknown condition key to fail")
	}
}

func TestApplySeedUpsertsFaresOnExistingRoute(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	routeCols := []string{"id", "origin_city", "destination_city", "origin_slug", "destination_slug",
		"distance_km", "duration_min", "active", "created_at", "updated_at"}
	routeRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(routeCols).AddRow(7, "Raipur", "Bilaspur", "raipur", "bilaspur", 118.0, 150, true, now, now)
	}

	mock.ExpectExec("INSERT INTO routes").WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectQuery("FROM routes\\s+WHERE origin_slug = \\?").WithArgs("raipur", "bilaspur").WillReturnRows(routeRow())
	mock.ExpectQuery("FROM routes WHERE id = \\?").WithArgs(int64(7)).WillReturnRows(routeRow())
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO fares").WithArgs(int64(7), "SEDAN", int64(1400), 10.0).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM fares WHERE route_id = \\?").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "route_id", "car_type", "base_fare_inr", "night_surcharge_pct"}).
			AddRow(1, 7, "SEDAN", 1400, 10.0))

	catalog := services.CatalogService{
		Routes: repositories.RouteRepository{DB: db},
		Fares:  repositories.FareRepository{DB: db},
	}
	st, err := applySeed(context.Background(), catalog, seedFile{Routes: []seedRoute{{
		Origin: "Raipur", Destination: "Bilaspur", DistanceKM: 118, DurationMin: 150,
		Fares: []seedFare{{CarType: "sedan", BaseFareINR: 1400, NightSurchargePct: 10}},
	}}})
	if err != nil {
		t.Fatalf("apply seed: %v", err)
	}
	if st.Routes != 0 || st.Skipped != 1 || st.Fares != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
