// Package main provides a read-only inspector for the document store.
//
// Usage:
//
//	DB_PATH=~/pushpickup/data/db go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"github.com/dwinston/pushpickup/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dbPath = filepath.Join(home, "pushpickup", "data", "db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	inspectGames(db)
	fmt.Println()

	fmt.Printf("Users:    %d\n", countPrefix(db, "user:"))
	fmt.Printf("Sessions: %d\n", countPrefix(db, "session:"))
	fmt.Printf("Options:  %d\n", countPrefix(db, "option:"))
}

func inspectGames(db *badger.DB) {
	gameCount := 0
	proposed := 0
	totalPlayers := 0
	totalComments := 0
	shown := 0

	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("game:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var game domain.Game
				if err := json.Unmarshal(val, &game); err != nil {
					return err
				}

				gameCount++
				totalPlayers += len(game.Players)
				totalComments += len(game.Comments)
				if game.Status == domain.GameProposed {
					proposed++
				}

				if shown < 5 {
					shown++
					fmt.Printf("Game: %s %s at %s\n", game.DisplayDay(), game.DisplayTime(), game.Location.Name)
					fmt.Printf("  ID: %s\n", game.ID)
					fmt.Printf("  Type: %s  Status: %s\n", game.Type, game.Status)
					fmt.Printf("  Players: %d/%d  Comments: %d\n",
						len(game.Players), game.Requested.Players, len(game.Comments))
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan games: %v", err)
	}

	if gameCount > shown {
		fmt.Printf("... and %d more games\n", gameCount-shown)
	}
	fmt.Println()
	fmt.Printf("Games:    %d (%d proposed, %d on)\n", gameCount, proposed, gameCount-proposed)
	fmt.Printf("Players:  %d total\n", totalPlayers)
	fmt.Printf("Comments: %d total\n", totalComments)
}

func countPrefix(db *badger.DB, prefix string) int {
	count := 0
	_ = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			count++
		}
		return nil
	})
	return count
}
