// Package main prints a summary of an egg hunt database.
//
// Usage:
//
//	DATA_PATH=~/EggHunt/data go run ./cmd/dbinspect
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/egghunt/egghunt-server/internal/config"
	"github.com/egghunt/egghunt-server/internal/domain"
	"github.com/egghunt/egghunt-server/internal/geo"
	"github.com/egghunt/egghunt-server/internal/store/sqlite"
)

// world matches every coordinate.
var world = geo.Box{MinLat: -90, MaxLat: 90, MinLon: -180, MaxLon: 180, WrapsLon: true}

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to find home directory: %v", err)
		}
		dataPath = filepath.Join(home, "EggHunt", "data")
	}

	dbPath := config.DataConfig{Path: dataPath}.DatabasePath()
	if _, err := os.Stat(dbPath); err != nil {
		log.Fatalf("No database at %s: %v", dbPath, err)
	}

	st, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	admins, err := st.CountAdmins(ctx)
	if err != nil {
		log.Fatalf("Failed to count admins: %v", err)
	}
	setupDone, err := st.SetupCompleted(ctx)
	if err != nil {
		log.Fatalf("Failed to read setup state: %v", err)
	}
	fmt.Printf("Admins: %d (setup complete: %t)\n\n", admins, setupDone)

	events, err := st.ListEvents(ctx, false)
	if err != nil {
		log.Fatalf("Failed to list events: %v", err)
	}
	fmt.Printf("Events: %d\n", len(events))
	for _, e := range events {
		caches, err := st.ListActiveCachesInBox(ctx, e.ID, world)
		if err != nil {
			log.Fatalf("Failed to list caches for %s: %v", e.ID, err)
		}
		ids := make([]string, len(caches))
		for n, c := range caches {
			ids[n] = c.ID
		}
		summaries, err := st.FoundSummaries(ctx, ids, "")
		if err != nil {
			log.Fatalf("Failed to summarize finds for %s: %v", e.ID, err)
		}
		found := 0
		for _, s := range summaries {
			if s.FoundCount > 0 {
				found++
			}
		}

		state := "inactive"
		if e.Active {
			state = "active"
		}
		fmt.Printf("  %-30s %-24s %-8s caches=%d found=%d\n", e.Name, e.Slug, state, len(caches), found)
	}
	fmt.Println()

	invites, err := st.ListInvites(ctx)
	if err != nil {
		log.Fatalf("Failed to list invites: %v", err)
	}
	now := time.Now()
	byState := map[domain.InviteState]int{}
	for _, inv := range invites {
		byState[inv.State(now)]++
	}
	fmt.Printf("Invites: %d (valid=%d expired=%d exhausted=%d)\n\n", len(invites),
		byState[domain.InviteValid], byState[domain.InviteExpired], byState[domain.InviteExhausted])

	settings, err := st.ListSettings(ctx)
	if err != nil {
		log.Fatalf("Failed to list settings: %v", err)
	}
	fmt.Printf("Stored settings: %d\n", len(settings))
	for _, s := range settings {
		fmt.Printf("  %-32s = %s\n", s.Key, s.Value)
	}
}
