package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/redact"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/google/uuid"
)

const cardColumns = `id, user_id, word, translation, example, deck,
	review_count, correct_count, last_reviewed, next_review, created_at`

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// Create implements store.CardStore.Create
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.OwnerID,
		card.Word,
		card.Translation,
		card.Example,
		card.Deck,
		card.ReviewCount,
		card.CorrectCount,
		nullTime(card.LastReviewed),
		card.NextReview.UTC(),
		card.CreatedAt.UTC(),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("duplicate card on create",
				slog.String("card_id", card.ID.String()),
				slog.String("deck", card.Deck))
			return store.ErrCardExists
		}
		log.Error("failed to create card",
			slog.String("error", redact.Error(err)),
			slog.String("card_id", card.ID.String()))
		return store.NewStoreError("card", "create", "insert failed", MapError(err))
	}

	log.Debug("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("deck", card.Deck))
	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 AND user_id = $2`
	card, err := scanCard(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card by ID",
			slog.String("error", redact.Error(err)),
			slog.String("card_id", id.String()))
		return nil, store.NewStoreError("card", "get", "query failed", err)
	}
	return card, nil
}

// FindByKey implements store.CardStore.FindByKey
func (s *PostgresCardStore) FindByKey(
	ctx context.Context,
	ownerID uuid.UUID,
	key domain.CardKey,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards
		WHERE user_id = $1 AND word = $2 AND translation = $3 AND deck = $4`
	card, err := scanCard(s.db.QueryRowContext(ctx, query, ownerID, key.Word, key.Translation, key.Deck))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to find card by key", slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("card", "find", "query failed", err)
	}
	return card, nil
}

// List implements store.CardStore.List
func (s *PostgresCardStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.CardFilter,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	filter = filter.Normalized()

	var b strings.Builder
	args := []any{ownerID}
	b.WriteString(`SELECT ` + cardColumns + ` FROM cards WHERE user_id = $1`)

	if filter.Deck != "" {
		args = append(args, filter.Deck)
		fmt.Fprintf(&b, " AND deck = $%d", len(args))
	}
	if filter.DueAt != nil {
		args = append(args, filter.DueAt.UTC())
		fmt.Fprintf(&b, " AND next_review <= $%d", len(args))
	}
	if len(filter.IDs) > 0 {
		args = append(args, uuidStrings(filter.IDs))
		fmt.Fprintf(&b, " AND id = ANY($%d::uuid[])", len(args))
	}
	fmt.Fprintf(&b, " ORDER BY %s %s, id ASC", filter.Sort, strings.ToUpper(string(filter.Order)))

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		log.Error("failed to list cards", slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("card", "list", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	cards := make([]*domain.Card, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row", slog.String("error", redact.Error(err)))
			return nil, store.NewStoreError("card", "list", "scan failed", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating card rows", slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("card", "list", "iteration failed", err)
	}

	log.Debug("cards listed",
		slog.Int("count", len(cards)),
		slog.String("sort", string(filter.Sort)),
		slog.String("order", string(filter.Order)))
	return cards, nil
}

// ListKeys implements store.CardStore.ListKeys
func (s *PostgresCardStore) ListKeys(ctx context.Context, ownerID uuid.UUID) ([]domain.CardKey, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT word, translation, deck FROM cards WHERE user_id = $1`, ownerID)
	if err != nil {
		log.Error("failed to list card keys", slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("card", "list keys", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	keys := make([]domain.CardKey, 0)
	for rows.Next() {
		var k domain.CardKey
		if err := rows.Scan(&k.Word, &k.Translation, &k.Deck); err != nil {
			return nil, store.NewStoreError("card", "list keys", "scan failed", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", "list keys", "iteration failed", err)
	}
	return keys, nil
}

// UpdateContent implements store.CardStore.UpdateContent
func (s *PostgresCardStore) UpdateContent(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE cards
		SET word = $1, translation = $2, example = $3, deck = $4
		WHERE id = $5 AND user_id = $6
	`, card.Word, card.Translation, card.Example, card.Deck, card.ID, card.OwnerID)
	return s.finishUpdate(ctx, "update content", card.ID, result, err)
}

// UpdateReview implements store.CardStore.UpdateReview
func (s *PostgresCardStore) UpdateReview(ctx context.Context, card *domain.Card) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE cards
		SET review_count = $1, correct_count = $2, last_reviewed = $3, next_review = $4
		WHERE id = $5 AND user_id = $6
	`,
		card.ReviewCount,
		card.CorrectCount,
		nullTime(card.LastReviewed),
		card.NextReview.UTC(),
		card.ID,
		card.OwnerID,
	)
	return s.finishUpdate(ctx, "update review", card.ID, result, err)
}

// UpdateDeck implements store.CardStore.UpdateDeck
func (s *PostgresCardStore) UpdateDeck(ctx context.Context, ownerID, id uuid.UUID, deck string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE cards SET deck = $1 WHERE id = $2 AND user_id = $3`,
		deck, id, ownerID)
	return s.finishUpdate(ctx, "update deck", id, result, err)
}

func (s *PostgresCardStore) finishUpdate(
	ctx context.Context,
	operation string,
	id uuid.UUID,
	result sql.Result,
	err error,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("duplicate card on "+operation, slog.String("card_id", id.String()))
			return store.ErrCardExists
		}
		log.Error("failed to "+operation,
			slog.String("error", redact.Error(err)),
			slog.String("card_id", id.String()))
		return store.NewStoreError("card", operation, "update failed", MapError(err))
	}

	if err := CheckRowsAffected(result, "card"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("card not found for "+operation, slog.String("card_id", id.String()))
			return store.ErrCardNotFound
		}
		return store.NewStoreError("card", operation, "rows affected", err)
	}
	return nil
}

// Delete implements store.CardStore.Delete
func (s *PostgresCardStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM cards WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("error", redact.Error(err)),
			slog.String("card_id", id.String()))
		return store.NewStoreError("card", "delete", "delete failed", err)
	}
	if err := CheckRowsAffected(result, "card"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrCardNotFound
		}
		return store.NewStoreError("card", "delete", "rows affected", err)
	}

	log.Debug("card deleted", slog.String("card_id", id.String()))
	return nil
}

// DeleteMany implements store.CardStore.DeleteMany
func (s *PostgresCardStore) DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.deleteWhere(ctx, "delete many",
		`DELETE FROM cards WHERE user_id = $1 AND id = ANY($2::uuid[])`,
		ownerID, uuidStrings(ids))
}

// DeleteByDeck implements store.CardStore.DeleteByDeck
func (s *PostgresCardStore) DeleteByDeck(ctx context.Context, ownerID uuid.UUID, deck string) (int64, error) {
	return s.deleteWhere(ctx, "delete by deck",
		`DELETE FROM cards WHERE user_id = $1 AND deck = $2`, ownerID, deck)
}

// DeleteAll implements store.CardStore.DeleteAll
func (s *PostgresCardStore) DeleteAll(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return s.deleteWhere(ctx, "delete all", `DELETE FROM cards WHERE user_id = $1`, ownerID)
}

func (s *PostgresCardStore) deleteWhere(ctx context.Context, operation, query string, args ...any) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to "+operation, slog.String("error", redact.Error(err)))
		return 0, store.NewStoreError("card", operation, "delete failed", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("card", operation, "rows affected", err)
	}

	log.Debug("cards deleted", slog.String("operation", operation), slog.Int64("count", n))
	return n, nil
}

// DistinctDecks implements store.CardStore.DistinctDecks
func (s *PostgresCardStore) DistinctDecks(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT deck FROM cards WHERE user_id = $1`, ownerID)
	if err != nil {
		log.Error("failed to list decks", slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("card", "distinct decks", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	decks := make([]string, 0)
	for rows.Next() {
		var deck string
		if err := rows.Scan(&deck); err != nil {
			return nil, store.NewStoreError("card", "distinct decks", "scan failed", err)
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", "distinct decks", "iteration failed", err)
	}
	return decks, nil
}

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		card         domain.Card
		lastReviewed sql.NullTime
	)
	if err := row.Scan(
		&card.ID,
		&card.OwnerID,
		&card.Word,
		&card.Translation,
		&card.Example,
		&card.Deck,
		&card.ReviewCount,
		&card.CorrectCount,
		&lastReviewed,
		&card.NextReview,
		&card.CreatedAt,
	); err != nil {
		return nil, err
	}

	if lastReviewed.Valid {
		t := lastReviewed.Time.UTC()
		card.LastReviewed = &t
	}
	card.NextReview = card.NextReview.UTC()
	card.CreatedAt = card.CreatedAt.UTC()
	return &card, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
