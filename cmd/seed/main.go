// Package main provides a tool to seed the database with a playable hunt.
//
// It creates an event, scatters caches around a center point and prints an
// invite token players can register with. The server must have been set up
// first; the tool refuses to seed an unconfigured instance.
//
// Usage:
//
//	DATA_PATH=~/EggHunt/data go run ./cmd/seed
//	DATA_PATH=~/EggHunt/data go run ./cmd/seed --lat 52.52 --lon 13.405 --caches 20 --spread 800
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/egghunt/egghunt-server/internal/config"
	"github.com/egghunt/egghunt-server/internal/geo"
	"github.com/egghunt/egghunt-server/internal/logger"
	"github.com/egghunt/egghunt-server/internal/service"
	"github.com/egghunt/egghunt-server/internal/store/sqlite"
)

var (
	name       = flag.String("name", "Test Hunt", "Event name")
	centerLat  = flag.Float64("lat", 50.937531, "Center latitude")
	centerLon  = flag.Float64("lon", 6.960279, "Center longitude")
	cacheCount = flag.Int("caches", 10, "Number of caches to place")
	spread     = flag.Float64("spread", 1500, "Maximum distance from the center in meters")
	inviteUses = flag.Int("invite-uses", 25, "Registrations allowed by the printed invite")
)

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to find home directory: %v", err)
		}
		dataPath = filepath.Join(home, "EggHunt", "data")
	}
	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	center := geo.Point{Lat: *centerLat, Lon: *centerLon}
	if !center.Valid() {
		log.Fatalf("Invalid center %v", center)
	}

	dbPath := config.DataConfig{Path: dataPath}.DatabasePath()
	fmt.Printf("Opening database at: %s\n", dbPath)

	st, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	done, err := st.SetupCompleted(ctx)
	if err != nil {
		log.Fatalf("Failed to read setup state: %v", err)
	}
	if !done {
		log.Fatal("Server setup has not been completed; run setup through the API first")
	}

	quiet := logger.Discard().Logger
	events := service.NewEventService(st, quiet)
	invites := service.NewInviteService(st, nil, quiet)

	event, err := events.CreateEvent(ctx, service.CreateEventRequest{Name: *name})
	if err != nil {
		log.Fatalf("Failed to create event: %v", err)
	}
	fmt.Printf("Created event %s (%s)\n", event.Name, event.ID)

	for n := 1; n <= *cacheCount; n++ {
		// sqrt keeps the caches evenly spread over the disc instead of
		// bunching up at the center.
		dist := *spread * math.Sqrt(rand.Float64())
		at := geo.Destination(center, rand.Float64()*360, dist)

		cache, err := events.CreateCache(ctx, service.CreateCacheRequest{
			EventID:     event.ID,
			Name:        fmt.Sprintf("Egg #%d", n),
			Description: fmt.Sprintf("Hidden %.0fm from the start", dist),
			Latitude:    at.Lat,
			Longitude:   at.Lon,
		})
		if err != nil {
			log.Fatalf("Failed to create cache %d: %v", n, err)
		}
		fmt.Printf("  %-8s %.6f, %.6f\n", cache.Name, cache.Latitude, cache.Longitude)
	}

	invite, err := invites.Create(ctx, "", service.CreateInviteRequest{
		EventID: event.ID,
		MaxUses: *inviteUses,
	})
	if err != nil {
		log.Fatalf("Failed to create invite: %v", err)
	}

	fmt.Printf("\nInvite token (%d uses): %s\n", invite.MaxUses, invite.Token)
}
