// leadsend submits a single lead from the command line: useful for
// smoke-testing the relay and the upstream contract without the website.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"sdr-backend/internal/config"
	"sdr-backend/internal/leads"
	"sdr-backend/internal/places"
	"sdr-backend/internal/sink"
	"sdr-backend/internal/validation"
)

func main() {
	var (
		file     = flag.String("file", "", "path to a JSON lead submission; flags below override nothing when set")
		first    = flag.String("first", "", "customer first name")
		last     = flag.String("last", "", "customer last name")
		email    = flag.String("email", "", "customer email")
		phone    = flag.String("phone", "", "customer phone")
		address  = flag.String("address", "", "formatted installation address")
		placeID  = flag.String("place-id", "", "resolve the address from this place id (needs MAPS_API_KEY)")
		timeline = flag.String("timeline", "", "ASAP, THIS_WEEK, THIS_MONTH or FLEXIBLE")
		notes    = flag.String("notes", "", "free-form notes")
		endpoint = flag.String("endpoint", "", "intake endpoint (default: relay at http://localhost:8080/api/leads)")
		bearer   = flag.String("bearer", "", "deliver directly upstream with this bearer token")
		timeout  = flag.Duration("timeout", 15*time.Second, "request timeout")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+5*time.Second)
	defer cancel()

	var sub leads.LeadSubmission
	if *file != "" {
		raw, err := os.ReadFile(*file)
		if err != nil {
			log.Fatal(err)
		}
		if err := json.Unmarshal(raw, &sub); err != nil {
			log.Fatalf("parse %s: %v", *file, err)
		}
	} else {
		sub = leads.LeadSubmission{
			Customer: leads.Customer{
				FirstName: *first,
				LastName:  *last,
				Email:     optional(*email),
				Phone:     optional(*phone),
				Address:   leads.Address{FormattedAddress: *address},
			},
			Timeline: optional(*timeline),
			Notes:    optional(*notes),
		}
	}

	if *placeID != "" {
		loader := places.NewLoader(cfg.MapsAPIKey, *timeout)
		client, err := loader.Get()
		if err != nil {
			log.Fatal(err)
		}
		place, err := client.Details(ctx, *placeID)
		if err != nil {
			log.Fatal(err)
		}
		if resolved, ok := places.ResolveAddress(place); ok {
			sub.Customer.Address = resolved
		}
	}

	val := validation.New()
	if errs := leads.Validate(val, sub, leads.Rules{RequireEmail: cfg.RequireEmail}); errs != nil {
		fmt.Fprintln(os.Stderr, "submission is invalid:")
		fmt.Fprintln(os.Stderr, "  "+errs.Error())
		os.Exit(1)
	}

	target := *endpoint
	var s sink.Sink
	if *bearer != "" {
		if target == "" {
			target = cfg.UpstreamLeadsURL
		}
		s = sink.NewDirect(target, *bearer, *timeout)
	} else {
		if target == "" {
			target = "http://localhost:8080/api/leads"
		}
		s = sink.NewRelay(target, cfg.AdminAPIKey, *timeout)
	}

	outcome := s.Deliver(ctx, sub)
	fmt.Println(outcome.String())
	if !outcome.OK() {
		os.Exit(1)
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
