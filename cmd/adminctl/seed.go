package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	intconfig "cabbooking/internal/config"
	"cabbooking/internal/domain"
	"cabbooking/internal/domain/models"
	"cabbooking/internal/repositories"
	"cabbooking/internal/services"
	"cabbooking/internal/utils"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML layout accepted by `adminctl seed`.
type seedFile struct {
	Cities []seedCity  `yaml:"cities"`
	Routes []seedRoute `yaml:"routes"`
	Offers []seedOffer `yaml:"offers"`
}

type seedCity struct {
	Name  string `yaml:"name"`
	State string `yaml:"state"`
}

type seedRoute struct {
	Origin      string     `yaml:"origin"`
	Destination string     `yaml:"destination"`
	DistanceKM  float64    `yaml:"distance_km"`
	DurationMin int        `yaml:"duration_min"`
	Fares       []seedFare `yaml:"fares"`
}

type seedFare struct {
	CarType           string  `yaml:"car_type"`
	BaseFareINR       int64   `yaml:"base_fare_inr"`
	NightSurchargePct float64 `yaml:"night_surcharge_pct"`
}

type seedOffer struct {
	Code       string         `yaml:"code"`
	Type       string         `yaml:"type"`
	Value      float64        `yaml:"value"`
	CapINR     *int64         `yaml:"cap_inr"`
	ValidFrom  *time.Time     `yaml:"valid_from"`
	ValidTo    *time.Time     `yaml:"valid_to"`
	Conditions map[string]any `yaml:"conditions"`
}

func parseSeed(r io.Reader) (seedFile, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return f, fmt.Errorf("parse seed: %w", err)
	}
	return f, nil
}

// offer converts a seed entry, validating its conditions the way the admin API does.
func (o seedOffer) offer() (models.Offer, error) {
	out := models.Offer{
		Code:      o.Code,
		Type:      models.DiscountType(o.Type),
		Value:     o.Value,
		CapINR:    o.CapINR,
		ValidFrom: o.ValidFrom,
		ValidTo:   o.ValidTo,
	}
	if len(o.Conditions) > 0 {
		raw, err := json.Marshal(o.Conditions)
		if err != nil {
			return out, fmt.Errorf("offer %s: %w", o.Code, err)
		}
		conds, err := models.ParseConditions(raw)
		if err != nil {
			return out, fmt.Errorf("offer %s: %w", o.Code, err)
		}
		out.Conditions = conds
	}
	return out, nil
}

// seedStats counts what a seed run changed.
type seedStats struct {
	Cities, Routes, Fares, Offers, Skipped int
}

// applySeed writes f through the catalog service. Entries that already exist
// are skipped, except fares which are upserted onto the existing route.
func applySeed(ctx context.Context, catalog services.CatalogService, f seedFile) (seedStats, error) {
	var st seedStats

	for _, c := range f.Cities {
		_, err := catalog.SaveCity(ctx, models.City{Name: c.Name, State: c.State})
		switch {
		case domain.IsConflict(err):
			st.Skipped++
		case err != nil:
			return st, fmt.Errorf("city %s: %w", c.Name, err)
		default:
			st.Cities++
		}
	}

	for _, r := range f.Routes {
		rt, err := catalog.SaveRoute(ctx, models.Route{
			OriginCity:      r.Origin,
			DestinationCity: r.Destination,
			DistanceKM:      r.DistanceKM,
			DurationMin:     r.DurationMin,
		})
		switch {
		case domain.IsConflict(err):
			st.Skipped++
			rt, err = catalog.Routes.FindActiveBySlugs(ctx, utils.Slugify(r.Origin), utils.Slugify(r.Destination))
			if err != nil {
				return st, fmt.Errorf("route %s-%s: %w", r.Origin, r.Destination, err)
			}
		case err != nil:
			return st, fmt.Errorf("route %s-%s: %w", r.Origin, r.Destination, err)
		default:
			st.Routes++
		}

		if len(r.Fares) == 0 {
			continue
		}
		fares := make([]models.Fare, 0, len(r.Fares))
		for _, sf := range r.Fares {
			fares = append(fares, models.Fare{
				CarType:           models.CarType(sf.CarType),
				BaseFareINR:       sf.BaseFareINR,
				NightSurchargePct: sf.NightSurchargePct,
			})
		}
		if _, err := catalog.PutFares(ctx, rt.ID, fares); err != nil {
			return st, fmt.Errorf("fares %s-%s: %w", r.Origin, r.Destination, err)
		}
		st.Fares += len(fares)
	}

	for _, so := range f.Offers {
		o, err := so.offer()
		if err != nil {
			return st, err
		}
		_, err = catalog.SaveOffer(ctx, o)
		switch {
		case domain.IsConflict(err):
			st.Skipped++
		case err != nil:
			return st, fmt.Errorf("offer %s: %w", so.Code, err)
		default:
			st.Offers++
		}
	}
	return st, nil
}

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:     "seed",
		Short:   "Load cities, routes, fares and offers from a YAML file",
		Example: `  adminctl seed --file seed.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fh, err := os.Open(file)
			if err != nil {
				return err
			}
			defer fh.Close()
			f, err := parseSeed(fh)
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer intconfig.CloseDB()

			catalog := services.CatalogService{
				Cities:  repositories.CityRepository{DB: db},
				Routes:  repositories.RouteRepository{DB: db},
				Fares:   repositories.FareRepository{DB: db},
				Offers:  repositories.OfferRepository{DB: db},
				Drivers: repositories.DriverRepository{DB: db},
			}
			st, err := applySeed(cmd.Context(), catalog, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cities %d, routes %d, fares %d, offers %d, skipped %d\n",
				st.Cities, st.Routes, st.Fares, st.Offers, st.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed file path")
	return cmd
}
