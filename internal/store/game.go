package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/dwinston/pushpickup/internal/domain"
	"github.com/dwinston/pushpickup/internal/sse"
)

const (
	gamePrefix           = "game:"
	gameByStartsAtPrefix = "idx:games:starts_at:" // Sortable start-time index for range scans
)

// CreateGame persists a new game document.
func (s *Store) CreateGame(ctx context.Context, game *domain.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(gamePrefix + game.ID)
	game.InitTimestamps()

	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("marshal game: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check game exists: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		startsAtKey := formatTimestampIndexKey(gameByStartsAtPrefix, game.StartsAt, "game", game.ID)
		return txn.Set(startsAtKey, []byte{})
	})
	if err != nil {
		return err
	}

	s.eventEmitter.Emit(sse.NewGameCreatedEvent(game))
	s.indexGame(ctx, game)

	return nil
}

// GetGame retrieves a game by ID.
func (s *Store) GetGame(_ context.Context, id string) (*domain.Game, error) {
	key := []byte(gamePrefix + id)

	var game domain.Game
	if err := s.get(key, &game); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("get game: %w", err)
	}

	return &game, nil
}

// UpdateGame replaces the stored game document.
// Roster and comment mutations should go through the array operations below
// instead, which apply their change atomically against the stored version.
func (s *Store) UpdateGame(ctx context.Context, game *domain.Game) error {
	updated, err := s.mutateGame(ctx, game.ID, func(stored *domain.Game) error {
		game.CreatedAt = stored.CreatedAt
		*stored = *game
		return nil
	})
	if err != nil {
		return err
	}
	*game = *updated
	return nil
}

// PushPlayer appends a player to the game's roster.
func (s *Store) PushPlayer(ctx context.Context, gameID string, player domain.Player) (*domain.Game, error) {
	return s.mutateGame(ctx, gameID, func(g *domain.Game) error {
		g.Players = append(g.Players, player)
		return nil
	})
}

// PullPlayers removes every roster entry matching the predicate.
// The affected count is per document, not per element: it is 1 whenever the
// game exists, however many entries matched. Callers needing an element count
// must inspect the roster before pulling.
func (s *Store) PullPlayers(ctx context.Context, gameID string, match func(domain.Player) bool) (*domain.Game, int, error) {
	game, err := s.mutateGame(ctx, gameID, func(g *domain.Game) error {
		kept := g.Players[:0]
		for _, p := range g.Players {
			if !match(p) {
				kept = append(kept, p)
			}
		}
		g.Players = kept
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return game, 1, nil
}

// RenamePlayer changes the display name of the first roster entry the user
// added under oldName. Only the first match is renamed, mirroring a
// positional array update.
func (s *Store) RenamePlayer(ctx context.Context, gameID, userID, oldName, newName string) (*domain.Game, error) {
	return s.mutateGame(ctx, gameID, func(g *domain.Game) error {
		for i, p := range g.Players {
			if p.UserID == userID && p.Name == oldName {
				g.Players[i].Name = newName
				return nil
			}
		}
		return nil
	})
}

// PushComment appends a comment to the game.
func (s *Store) PushComment(ctx context.Context, gameID string, comment domain.Comment) (*domain.Game, error) {
	game, err := s.mutateGame(ctx, gameID, func(g *domain.Game) error {
		g.Comments = append(g.Comments, comment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.eventEmitter.Emit(sse.NewCommentAddedEvent(gameID, comment))
	return game, nil
}

// PullComment removes the comment matching the given record structurally.
// Returns false if no stored comment matched.
func (s *Store) PullComment(ctx context.Context, gameID string, comment domain.Comment) (bool, error) {
	removed := false
	_, err := s.mutateGame(ctx, gameID, func(g *domain.Game) error {
		kept := g.Comments[:0]
		for _, c := range g.Comments {
			if c.Equal(comment) {
				removed = true
				continue
			}
			kept = append(kept, c)
		}
		g.Comments = kept
		return nil
	})
	if err != nil {
		return false, err
	}

	if removed {
		s.eventEmitter.Emit(sse.NewCommentRemovedEvent(gameID, comment))
	}
	return removed, nil
}

// SetGameStatus transitions the game to the given status.
func (s *Store) SetGameStatus(ctx context.Context, gameID string, status domain.GameStatus) (*domain.Game, error) {
	return s.mutateGame(ctx, gameID, func(g *domain.Game) error {
		g.Status = status
		return nil
	})
}

// DeleteGame removes the game document outright. The ID is invalid afterwards.
// Returns the number of documents removed (0 or 1).
func (s *Store) DeleteGame(ctx context.Context, id string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	key := []byte(gamePrefix + id)
	removed := 0

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get game: %w", err)
		}

		var game domain.Game
		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &game)
		})
		if err != nil {
			return fmt.Errorf("unmarshal game: %w", err)
		}

		startsAtKey := formatTimestampIndexKey(gameByStartsAtPrefix, game.StartsAt, "game", game.ID)
		if err := txn.Delete(startsAtKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Delete(key); err != nil {
			return err
		}

		removed = 1
		return nil
	})
	if err != nil {
		return 0, err
	}

	if removed == 1 {
		s.eventEmitter.Emit(sse.NewGameCancelledEvent(id))
		s.deindexGame(ctx, id)
	}

	return removed, nil
}

// ListGames returns all stored games.
func (s *Store) ListGames(ctx context.Context) ([]*domain.Game, error) {
	var games []*domain.Game

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gamePrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(gamePrefix)); it.ValidForPrefix([]byte(gamePrefix)); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var game domain.Game
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &game)
			})
			if err != nil {
				return fmt.Errorf("unmarshal game: %w", err)
			}

			games = append(games, &game)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return games, nil
}

// ListGamesPaginated returns games ordered by start time, a page at a time.
func (s *Store) ListGamesPaginated(ctx context.Context, params PaginationParams) (*PaginatedResult[*domain.Game], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params.Validate()

	startKey, err := DecodeCursor(params.Cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	if startKey == "" {
		startKey = gameByStartsAtPrefix
	}

	result := &PaginatedResult[*domain.Game]{}

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gameByStartsAtPrefix)
		opts.PrefetchValues = false // Index keys carry no values

		it := txn.NewIterator(opts)
		defer it.Close()

		var lastKey string
		for it.Seek([]byte(startKey)); it.ValidForPrefix([]byte(gameByStartsAtPrefix)); it.Next() {
			key := string(it.Item().Key())
			if key == startKey && params.Cursor != "" {
				continue // Cursor points at the last key of the previous page
			}

			if len(result.Items) >= params.Limit {
				result.HasMore = true
				result.NextCursor = EncodeCursor(lastKey)
				return nil
			}

			_, gameID, err := parseTimestampIndexKey([]byte(key), gameByStartsAtPrefix)
			if err != nil {
				continue
			}

			game, err := s.GetGame(ctx, gameID)
			if errors.Is(err, ErrGameNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			result.Items = append(result.Items, game)
			lastKey = key
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListGamesStartingBetween returns games whose start time falls in [from, to).
// Used by the organizer reminder sweep; scans the start-time index rather than
// every document.
func (s *Store) ListGamesStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fromKey := formatTimestampIndexKey(gameByStartsAtPrefix, from, "", "")
	toKey := formatTimestampIndexKey(gameByStartsAtPrefix, to, "", "")

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gameByStartsAtPrefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(fromKey); it.ValidForPrefix([]byte(gameByStartsAtPrefix)); it.Next() {
			key := it.Item().Key()
			if string(key) >= string(toKey) {
				break
			}

			_, gameID, err := parseTimestampIndexKey(key, gameByStartsAtPrefix)
			if err != nil {
				continue
			}
			ids = append(ids, gameID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	games := make([]*domain.Game, 0, len(ids))
	for _, id := range ids {
		game, err := s.GetGame(ctx, id)
		if errors.Is(err, ErrGameNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, nil
}

// mutateGame applies fn to the stored game inside a single write transaction,
// so concurrent mutations of the same document serialize rather than clobber.
// The start-time index is kept in sync when fn moves the game.
func (s *Store) mutateGame(ctx context.Context, id string, fn func(*domain.Game) error) (*domain.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := []byte(gamePrefix + id)
	var game domain.Game

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrGameNotFound
		}
		if err != nil {
			return fmt.Errorf("get game: %w", err)
		}

		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &game)
		})
		if err != nil {
			return fmt.Errorf("unmarshal game: %w", err)
		}

		oldStartsAt := game.StartsAt

		if err := fn(&game); err != nil {
			return err
		}
		game.Touch()

		if !game.StartsAt.Equal(oldStartsAt) {
			oldKey := formatTimestampIndexKey(gameByStartsAtPrefix, oldStartsAt, "game", game.ID)
			if err := txn.Delete(oldKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			newKey := formatTimestampIndexKey(gameByStartsAtPrefix, game.StartsAt, "game", game.ID)
			if err := txn.Set(newKey, []byte{}); err != nil {
				return err
			}
		}

		data, err := json.Marshal(&game)
		if err != nil {
			return fmt.Errorf("marshal game: %w", err)
		}

		return txn.Set(key, data)
	})
	if err != nil {
		return nil, err
	}

	s.eventEmitter.Emit(sse.NewGameUpdatedEvent(&game))
	s.indexGame(ctx, &game)

	return &game, nil
}

// MarkGameReminded records that the organizer reminder for the game's current
// schedule has been sent. No client event is emitted; the flag is not
// player-visible.
func (s *Store) MarkGameReminded(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(gamePrefix + id)

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrGameNotFound
		}
		if err != nil {
			return fmt.Errorf("get game: %w", err)
		}

		var game domain.Game
		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &game)
		})
		if err != nil {
			return fmt.Errorf("unmarshal game: %w", err)
		}

		if game.ReminderSent {
			return nil
		}
		game.ReminderSent = true

		data, err := json.Marshal(&game)
		if err != nil {
			return fmt.Errorf("marshal game: %w", err)
		}
		return txn.Set(key, data)
	})
}

// indexGame forwards the game to the search indexer without blocking the caller.
func (s *Store) indexGame(ctx context.Context, game *domain.Game) {
	if s.searchIndexer == nil {
		return
	}
	go func() {
		if err := s.searchIndexer.IndexGame(context.WithoutCancel(ctx), game); err != nil && s.logger != nil {
			s.logger.Error("index game failed", "game_id", game.ID, "error", err)
		}
	}()
}

// deindexGame removes the game from the search index without blocking the caller.
func (s *Store) deindexGame(ctx context.Context, gameID string) {
	if s.searchIndexer == nil {
		return
	}
	go func() {
		if err := s.searchIndexer.DeleteGame(context.WithoutCancel(ctx), gameID); err != nil && s.logger != nil {
			s.logger.Error("deindex game failed", "game_id", gameID, "error", err)
		}
	}()
}
