package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/davidwyly/chart-citizen-sub001/catalog"
	"github.com/davidwyly/chart-citizen-sub001/core"
	"github.com/davidwyly/chart-citizen-sub001/model"
	"github.com/davidwyly/chart-citizen-sub001/timectrl"
	"github.com/davidwyly/chart-citizen-sub001/viewer"
	"github.com/davidwyly/chart-citizen-sub001/viewmode"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "total run duration")
	tick := flag.Duration("tick", 1*time.Second, "tick interval")
	mode := flag.String("mode", viewmode.ModeExplorational, "view mode (explorational, navigational, profile)")
	systemFile := flag.String("system-file", "", "optional system JSON file; defaults to a built-in demo system")
	focus := flag.String("focus", "", "object ID to frame after loading")
	flag.Parse()

	ctx := context.Background()

	cat := catalog.NewMemoryCatalog()
	sys, err := loadOrDemoSystem(*systemFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load system: %v\n", err)
		os.Exit(1)
	}
	if err := cat.PutSystem(sys); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register system: %v\n", err)
		os.Exit(1)
	}

	tc := timectrl.NewTimeController(time.Now().UTC(), *tick, timectrl.Accelerated)
	v := viewer.NewViewer(nil, cat, core.NewMechanicsPipeline(nil, nil), tc)

	if err := v.SetMode(ctx, *mode); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set mode: %v\n", err)
		os.Exit(1)
	}
	if err := v.LoadSystem(ctx, sys.ID); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load system %q: %v\n", sys.ID, err)
		os.Exit(1)
	}

	fmt.Printf("Loaded %s (%d objects) in %s mode\n", sys.ID, len(v.Objects()), v.Mode())
	for _, d := range v.Objects() {
		fmt.Printf("↳ %-16s %-10s visual radius %6.2f\n",
			d.ID, d.Classification, v.GetObjectSizing(d.ID))
	}

	if *focus != "" {
		target := v.Frame(*focus, false)
		fmt.Printf("Framing %s: camera (%.2f, %.2f, %.2f) looking at (%.2f, %.2f, %.2f), distance %.2f\n",
			*focus,
			target.CameraPosition.X, target.CameraPosition.Y, target.CameraPosition.Z,
			target.LookAt.X, target.LookAt.Y, target.LookAt.Z,
			target.Distance)
		v.FocusObject(*focus, false)
	}

	tc.AddListener(func(simTime time.Time) {
		v.UpdatePositions(simTime)
		fmt.Printf("[%s]", simTime.Format(time.RFC3339))
		for _, d := range v.Objects() {
			if pos, ok := v.Positions.WorldPositionOf(d.ID); ok {
				fmt.Printf(" %s @ (%.2f, %.2f, %.2f)", d.ID, pos.X, pos.Y, pos.Z)
			}
		}
		fmt.Println()
	})

	fmt.Printf("Running: duration=%s, tick=%s\n", *duration, *tick)
	done := tc.Start(*duration)
	<-done
	fmt.Println("Done.")
}

func loadOrDemoSystem(path string) (*catalog.System, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return catalog.LoadSystem(f)
	}
	return demoSystem(), nil
}

// demoSystem is a tiny Sol-like system with a star, two planets, a moon, and
// a TLE-driven station so every ephemeris path gets exercised.
func demoSystem() *catalog.System {
	tle1 := "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	tle2 := "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"

	return &catalog.System{
		ID:   "sol-demo",
		Name: "Sol (demo)",
		Objects: []*model.CelestialObjectDescriptor{
			{
				ID:             "sol",
				Name:           "Sol",
				Classification: model.ClassStar,
				Properties:     model.PhysicalProperties{MassKg: 1.989e30, RadiusKm: 2.0},
			},
			{
				ID:         "mercury",
				Name:       "Mercury",
				Properties: model.PhysicalProperties{MassKg: 3.30e23, RadiusKm: 0.35},
				Orbit:      &model.OrbitElements{Parent: "sol", SemiMajorAxisAU: 0.39},
			},
			{
				ID:         "earth",
				Name:       "Earth",
				Properties: model.PhysicalProperties{MassKg: 5.97e24, RadiusKm: 0.9},
				Orbit:      &model.OrbitElements{Parent: "sol", SemiMajorAxisAU: 1.0},
			},
			{
				ID:         "luna",
				Name:       "Luna",
				Properties: model.PhysicalProperties{MassKg: 7.35e22, RadiusKm: 0.25},
				Orbit:      &model.OrbitElements{Parent: "earth", SemiMajorAxisAU: 0.0026},
			},
			{
				ID:             "station",
				Name:           "Demo Station",
				Classification: model.ClassSpacecraft,
				Properties:     model.PhysicalProperties{MassKg: 420000, RadiusKm: 0.05},
				TLELine1:       tle1,
				TLELine2:       tle2,
			},
		},
	}
}
