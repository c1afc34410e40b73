package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/BogdanBedrinec/cards/internal/api/shared"
	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/service"
	"github.com/BogdanBedrinec/cards/internal/transfer"
)

// TransferHandler handles card import and export.
type TransferHandler struct {
	transfers service.TransferService
	logger    *slog.Logger
	now       func() time.Time
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transfers service.TransferService, logger *slog.Logger) *TransferHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TransferHandler")
	}

	return &TransferHandler{
		transfers: transfers,
		logger:    logger.With(slog.String("component", "transfer_handler")),
		now:       time.Now,
	}
}

// ExportCards handles GET /cards/export?format=json|csv
// The export is buffered so that a failure can still be reported as an
// error response.
func (h *TransferHandler) ExportCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	format, err := transfer.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var buf bytes.Buffer
	if err := h.transfers.Export(r.Context(), ownerID, format, &buf); err != nil {
		HandleAPIError(w, r, err, "Failed to export cards")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(h.now())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Warn("failed to write export", slog.String("error", err.Error()))
	}
}

// ImportCards handles POST /cards/import
func (h *TransferHandler) ImportCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	var req ImportRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	format, err := transfer.ParseFormat(req.Format)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	payload, err := importPayload(format, req.Data)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	report, err := h.transfers.Import(r.Context(), ownerID, format, payload)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ImportResponse{
		Message:             "import finished",
		Received:            report.Received,
		UniqueInFile:        report.UniqueInFile,
		Inserted:            report.Inserted,
		SkippedAsDuplicates: report.SkippedAsDuplicates,
	})
}

// importPayload extracts the raw file from the data field. CSV must arrive
// as a JSON string; JSON data is handed to the parser as is.
func importPayload(format transfer.Format, data json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, domain.NewValidationError("data", "is required", nil)
	}

	if format != transfer.FormatCSV {
		return trimmed, nil
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err != nil {
		return nil, domain.NewValidationError("data", "must be a string for csv", domain.ErrInvalidFormat)
	}
	return []byte(text), nil
}
