package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/BogdanBedrinec/cards/internal/transfer"
	"github.com/google/uuid"
)

// ImportReport summarises an import.
//
// Received counts the records that carried a word and a translation,
// UniqueInFile those left after removing repeats within the payload, and
// Inserted those actually stored. SkippedAsDuplicates is always
// UniqueInFile minus Inserted.
type ImportReport struct {
	Received            int
	UniqueInFile        int
	Inserted            int
	SkippedAsDuplicates int
}

// TransferService imports and exports card batches.
type TransferService interface {
	// Import parses payload and adds the cards the owner does not have yet.
	// A record whose word, translation and deck already exist is skipped,
	// whether the duplicate is earlier in the payload or already stored.
	Import(ctx context.Context, ownerID uuid.UUID, format transfer.Format, payload []byte) (*ImportReport, error)

	// Export writes all of the owner's cards to w, oldest first.
	Export(ctx context.Context, ownerID uuid.UUID, format transfer.Format, w io.Writer) error
}

type transferServiceImpl struct {
	cards  store.CardStore
	opts   options
	logger *slog.Logger
}

// NewTransferService creates a new TransferService.
func NewTransferService(cards store.CardStore, logger *slog.Logger, opts ...Option) (TransferService, error) {
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &transferServiceImpl{
		cards:  cards,
		opts:   newOptions(opts),
		logger: logger.With(slog.String("component", "transfer_service")),
	}, nil
}

func (s *transferServiceImpl) Import(
	ctx context.Context,
	ownerID uuid.UUID,
	format transfer.Format,
	payload []byte,
) (*ImportReport, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.opts.now()

	parsed, err := transfer.Parse(format, payload)
	if err != nil {
		return nil, err
	}

	var records []transfer.Record
	for _, r := range parsed {
		if r.Complete() {
			records = append(records, r.Normalize())
		}
	}
	if len(records) == 0 {
		return nil, domain.NewValidationError("data", "contains no card with both word and translation", nil)
	}

	report := &ImportReport{Received: len(records)}

	inFile := make(map[domain.CardKey]struct{}, len(records))
	unique := records[:0:0]
	for _, r := range records {
		if _, dup := inFile[r.Key()]; dup {
			continue
		}
		inFile[r.Key()] = struct{}{}
		unique = append(unique, r)
	}
	report.UniqueInFile = len(unique)

	existingKeys, err := s.cards.ListKeys(ctx, ownerID)
	if err != nil {
		return nil, wrap("import cards", "failed to load existing cards", err)
	}
	existing := make(map[domain.CardKey]struct{}, len(existingKeys))
	for _, k := range existingKeys {
		existing[k] = struct{}{}
	}

	for _, r := range unique {
		if _, dup := existing[r.Key()]; dup {
			continue
		}

		card, err := r.ToCard(ownerID, now)
		if err != nil {
			log.Debug("skipping invalid import record", slog.String("error", err.Error()))
			continue
		}

		err = s.cards.Create(ctx, card)
		switch {
		case err == nil:
			report.Inserted++
		case store.IsDuplicateError(err):
			// stored concurrently since the keys were loaded
		default:
			return nil, wrap("import cards", "failed to save card", err)
		}
	}
	report.SkippedAsDuplicates = report.UniqueInFile - report.Inserted

	log.Info("cards imported",
		slog.String("format", string(format)),
		slog.Int("received", report.Received),
		slog.Int("unique_in_file", report.UniqueInFile),
		slog.Int("inserted", report.Inserted),
		slog.Int("skipped", report.SkippedAsDuplicates))
	return report, nil
}

func (s *transferServiceImpl) Export(
	ctx context.Context,
	ownerID uuid.UUID,
	format transfer.Format,
	w io.Writer,
) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}

	cards, err := s.cards.List(ctx, ownerID, store.CardFilter{Sort: store.SortByCreatedAt, Order: store.OrderAsc})
	if err != nil {
		return wrap("export cards", "failed to list cards", err)
	}

	if err := transfer.Write(w, format, transfer.FromCards(cards), s.opts.now()); err != nil {
		return NewServiceError("export cards", "failed to write export", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("cards exported",
		slog.String("format", string(format)),
		slog.Int("count", len(cards)))
	return nil
}
