// Package main provides a tool to seed the database with demo games.
//
// This creates a handful of test users and upcoming games around San
// Francisco with rosters and comments, to exercise search, pagination
// and notification flows against a realistic dataset.
//
// Usage:
//
//	DB_PATH=~/pushpickup/data/db go run ./cmd/seed
//	DB_PATH=~/pushpickup/data/db go run ./cmd/seed --games 40
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/dwinston/pushpickup/internal/auth"
	"github.com/dwinston/pushpickup/internal/domain"
	"github.com/dwinston/pushpickup/internal/id"
	"github.com/dwinston/pushpickup/internal/store"
)

var gameCount = flag.Int("games", 20, "Number of games to create")

var testUsers = []struct {
	name  string
	email string
}{
	{"Kim Vaughn", "kim@example.com"},
	{"Sam Ortega", "sam@example.com"},
	{"Lee Tanaka", "lee@example.com"},
	{"Dana Wu", "dana@example.com"},
	{"Priya Shah", "priya@example.com"},
}

// Parks around San Francisco, longitude first.
var venues = []struct {
	name     string
	lng, lat float64
}{
	{"Golden Gate Park, Big Rec", -122.4862, 37.7666},
	{"Dolores Park", -122.4270, 37.7596},
	{"Crocker Amazon Playground", -122.4374, 37.7106},
	{"Marina Green", -122.4364, 37.8060},
	{"Presidio Wall Playground", -122.4476, 37.7893},
	{"Jackson Playground", -122.3994, 37.7646},
}

var gameTypes = []string{"soccer", "basketball", "ultimate", "volleyball"}

var sampleComments = []string{
	"Bringing an extra ball.",
	"Might be 10 minutes late, start without me.",
	"Is the field lit after sunset?",
	"First time joining, looking forward to it!",
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dbPath = filepath.Join(home, "pushpickup", "data", "db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	if err := s.EnsureDefaultOptions(ctx); err != nil {
		log.Fatalf("Failed to seed option catalogs: %v", err)
	}

	users := ensureTestUsers(ctx, s)
	fmt.Printf("Have %d test users\n", len(users))

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	created := 0
	for range *gameCount {
		organizer := users[rng.Intn(len(users))]
		venue := venues[rng.Intn(len(venues))]

		// Spread starts over the next 7 days, on the hour between 8am and 8pm.
		day := rng.Intn(7) + 1
		hour := 8 + rng.Intn(13)
		starts := time.Now().Truncate(time.Hour).Add(time.Duration(day*24+hour) * time.Hour)

		game := &domain.Game{
			ID:        id.MustGenerate("game"),
			Type:      gameTypes[rng.Intn(len(gameTypes))],
			Status:    domain.GameProposed,
			StartsAt:  starts,
			UTCOffset: -7,
			Location: domain.Location{
				Name:     venue.name,
				GeoPoint: domain.NewGeoPoint(venue.lng, venue.lat),
			},
			Requested: domain.Requested{Players: 6 + rng.Intn(8)},
			Creator:   domain.Creator{UserID: organizer.ID, Name: organizer.DisplayName},
		}

		// Fill part of the roster. A full roster flips the game on.
		joiners := rng.Intn(len(users))
		for _, u := range users[:joiners] {
			game.Players = append(game.Players, domain.Player{
				UserID: u.ID,
				Name:   u.DisplayName,
				RSVP:   domain.RSVPIn,
			})
		}
		if len(game.Players) >= game.Requested.Players {
			game.Status = domain.GameOn
		}

		if rng.Float32() < 0.5 {
			author := users[rng.Intn(len(users))]
			game.Comments = append(game.Comments, domain.Comment{
				UserID:    author.ID,
				UserName:  author.DisplayName,
				Message:   sampleComments[rng.Intn(len(sampleComments))],
				Timestamp: time.Now(),
			})
		}

		if err := s.CreateGame(ctx, game); err != nil {
			log.Printf("Failed to create game: %v", err)
			continue
		}
		created++
	}

	fmt.Printf("\nCreated %d games. Run the server and hit /api/v1/games to browse them.\n", created)
}

// ensureTestUsers creates the demo accounts if they do not exist yet.
// All accounts share the password "password123" and a verified address.
func ensureTestUsers(ctx context.Context, s *store.Store) []*domain.User {
	hash, err := auth.HashPassword("password123")
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	var users []*domain.User
	for _, tu := range testUsers {
		if existing, err := s.GetUserByEmail(ctx, tu.email); err == nil {
			users = append(users, existing)
			continue
		}

		user := &domain.User{
			ID:           id.MustGenerate("user"),
			Emails:       []domain.Email{{Address: tu.email, Verified: true}},
			PasswordHash: hash,
			DisplayName:  tu.name,
		}
		if err := s.CreateUser(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", tu.email, err)
		}
		fmt.Printf("Created user %s (%s)\n", tu.name, tu.email)
		users = append(users, user)
	}
	return users
}
