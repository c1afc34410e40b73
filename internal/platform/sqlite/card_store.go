package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/redact"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/google/uuid"
)

const cardColumns = `id, user_id, word, translation, example, deck,
	review_count, correct_count, last_reviewed, next_review, created_at`

// CardStore implements store.CardStore on SQLite.
type CardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCardStore creates a SQLite CardStore over a connection or transaction.
// If logger is nil, a default logger will be used.
func NewCardStore(db store.DBTX, logger *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store"), slog.String("driver", "sqlite")),
	}
}

var _ store.CardStore = (*CardStore)(nil)

// Create implements store.CardStore.Create
func (s *CardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cards (`+cardColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.ID.String(),
		card.OwnerID.String(),
		card.Word,
		card.Translation,
		card.Example,
		card.Deck,
		card.ReviewCount,
		card.CorrectCount,
		formatNullTime(card.LastReviewed),
		formatTime(card.NextReview),
		formatTime(card.CreatedAt),
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
func (s *CardStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := scanCard(s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = ? AND user_id = ?`,
		id.String(), ownerID.String()))
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
func (s *CardStore) FindByKey(ctx context.Context, ownerID uuid.UUID, key domain.CardKey) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := scanCard(s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards
		WHERE user_id = ? AND word = ? AND translation = ? AND deck = ?`,
		ownerID.String(), key.Word, key.Translation, key.Deck))
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
func (s *CardStore) List(ctx context.Context, ownerID uuid.UUID, filter store.CardFilter) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	filter = filter.Normalized()

	var b strings.Builder
	args := []any{ownerID.String()}
	b.WriteString(`SELECT ` + cardColumns + ` FROM cards WHERE user_id = ?`)

	if filter.Deck != "" {
		b.WriteString(" AND deck = ?")
		args = append(args, filter.Deck)
	}
	if filter.DueAt != nil {
		b.WriteString(" AND next_review <= ?")
		args = append(args, formatTime(*filter.DueAt))
	}
	if len(filter.IDs) > 0 {
		b.WriteString(" AND id IN (" + placeholders(len(filter.IDs)) + ")")
		for _, id := range filter.IDs {
			args = append(args, id.String())
		}
	}
	b.WriteString(" ORDER BY " + string(filter.Sort) + " " + strings.ToUpper(string(filter.Order)) + ", id ASC")

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
		return nil, store.NewStoreError("card", "list", "iteration failed", err)
	}

	log.Debug("cards listed",
		slog.Int("count", len(cards)),
		slog.String("sort", string(filter.Sort)),
		slog.String("order", string(filter.Order)))
	return cards, nil
}

// ListKeys implements store.CardStore.ListKeys
func (s *CardStore) ListKeys(ctx context.Context, ownerID uuid.UUID) ([]domain.CardKey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word, translation, deck FROM cards WHERE user_id = ?`, ownerID.String())
	if err != nil {
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
func (s *CardStore) UpdateContent(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("card validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE cards SET word = ?, translation = ?, example = ?, deck = ? WHERE id = ? AND user_id = ?`,
		card.Word, card.Translation, card.Example, card.Deck, card.ID.String(), card.OwnerID.String())
	return s.finishUpdate(ctx, "update content", card.ID, result, err)
}

// UpdateReview implements store.CardStore.UpdateReview
func (s *CardStore) UpdateReview(ctx context.Context, card *domain.Card) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE cards SET review_count = ?, correct_count = ?, last_reviewed = ?, next_review = ?
		WHERE id = ? AND user_id = ?`,
		card.ReviewCount,
		card.CorrectCount,
		formatNullTime(card.LastReviewed),
		formatTime(card.NextReview),
		card.ID.String(),
		card.OwnerID.String(),
	)
	return s.finishUpdate(ctx, "update review", card.ID, result, err)
}

// UpdateDeck implements store.CardStore.UpdateDeck
func (s *CardStore) UpdateDeck(ctx context.Context, ownerID, id uuid.UUID, deck string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE cards SET deck = ? WHERE id = ? AND user_id = ?`,
		deck, id.String(), ownerID.String())
	return s.finishUpdate(ctx, "update deck", id, result, err)
}

func (s *CardStore) finishUpdate(
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

	n, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("card", operation, "rows affected", err)
	}
	if n == 0 {
		log.Debug("card not found for "+operation, slog.String("card_id", id.String()))
		return store.ErrCardNotFound
	}
	return nil
}

// Delete implements store.CardStore.Delete
func (s *CardStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	n, err := s.deleteWhere(ctx, "delete",
		`DELETE FROM cards WHERE id = ? AND user_id = ?`, id.String(), ownerID.String())
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrCardNotFound
	}
	return nil
}

// DeleteMany implements store.CardStore.DeleteMany
func (s *CardStore) DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID.String())
	for _, id := range ids {
		args = append(args, id.String())
	}
	return s.deleteWhere(ctx, "delete many",
		`DELETE FROM cards WHERE user_id = ? AND id IN (`+placeholders(len(ids))+`)`, args...)
}

// DeleteByDeck implements store.CardStore.DeleteByDeck
func (s *CardStore) DeleteByDeck(ctx context.Context, ownerID uuid.UUID, deck string) (int64, error) {
	return s.deleteWhere(ctx, "delete by deck",
		`DELETE FROM cards WHERE user_id = ? AND deck = ?`, ownerID.String(), deck)
}

// DeleteAll implements store.CardStore.DeleteAll
func (s *CardStore) DeleteAll(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return s.deleteWhere(ctx, "delete all", `DELETE FROM cards WHERE user_id = ?`, ownerID.String())
}

func (s *CardStore) deleteWhere(ctx context.Context, operation, query string, args ...any) (int64, error) {
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
func (s *CardStore) DistinctDecks(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT deck FROM cards WHERE user_id = ?`, ownerID.String())
	if err != nil {
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
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		card                  domain.Card
		id, ownerID           string
		lastReviewed          sql.NullString
		nextReview, createdAt string
	)
	if err := row.Scan(
		&id,
		&ownerID,
		&card.Word,
		&card.Translation,
		&card.Example,
		&card.Deck,
		&card.ReviewCount,
		&card.CorrectCount,
		&lastReviewed,
		&nextReview,
		&createdAt,
	); err != nil {
		return nil, err
	}

	var err error
	if card.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if card.OwnerID, err = uuid.Parse(ownerID); err != nil {
		return nil, err
	}
	if card.NextReview, err = parseTime(nextReview); err != nil {
		return nil, err
	}
	if card.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if lastReviewed.Valid {
		t, err := parseTime(lastReviewed.String)
		if err != nil {
			return nil, err
		}
		card.LastReviewed = &t
	}
	return &card, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
