// Package ingestion imports evaluation records sent as JSON email
// attachments.
package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fmuoria/intern-evaluation/internal/models"
	"github.com/fmuoria/intern-evaluation/internal/scoring"
	"github.com/fmuoria/intern-evaluation/internal/store"
)

// importNamespace seeds ids for attached records that carry none, so the
// same attachment always maps to the same record
var importNamespace = uuid.MustParse("0b7d2a54-3c1e-4f7a-9e61-5d8c2b4a9f03")

// ImportFailure names an attachment that could not be imported
type ImportFailure struct {
	MessageID string `json:"message_id"`
	Filename  string `json:"filename"`
	Reason    string `json:"reason"`
}

// ImportResult summarises one import run
type ImportResult struct {
	Imported   []string        `json:"imported"`
	Duplicates []string        `json:"duplicates"`
	Ignored    int             `json:"ignored"`
	Failed     []ImportFailure `json:"failed"`
}

// Importer moves record attachments from a mail source into a store
type Importer struct {
	source MailSource
	store  store.RecordSource
	logger *zap.Logger
}

// NewImporter creates an importer
func NewImporter(source MailSource, st store.RecordSource, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{source: source, store: st, logger: logger}
}

// Import fetches the attachments of messages matching subject and stores
// each JSON attachment as a record. Records are scored before they are
// stored; ones that fail validation are reported, not stored. Records that
// already exist are reported as duplicates.
func (im *Importer) Import(ctx context.Context, subject string) (*ImportResult, error) {
	attachments, err := im.source.FetchAttachments(ctx, subject)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Imported: []string{}, Duplicates: []string{}, Failed: []ImportFailure{}}
	for _, a := range attachments {
		if !strings.EqualFold(filepath.Ext(a.Filename), ".json") {
			result.Ignored++
			continue
		}

		rec, err := decodeAttachment(a)
		if err == nil {
			_, err = scoring.Score(rec)
		}
		if err == nil {
			err = im.store.Put(ctx, rec)
		}

		switch {
		case err == nil:
			result.Imported = append(result.Imported, rec.ID)
			im.logger.Info("Imported evaluation record",
				zap.String("record_id", rec.ID), zap.String("filename", a.Filename))
		case errors.Is(err, store.ErrAlreadyExists):
			result.Duplicates = append(result.Duplicates, rec.ID)
		default:
			result.Failed = append(result.Failed, ImportFailure{
				MessageID: a.MessageID,
				Filename:  a.Filename,
				Reason:    err.Error(),
			})
			im.logger.Warn("Skipped attachment",
				zap.String("message_id", a.MessageID), zap.String("filename", a.Filename), zap.Error(err))
		}
	}

	return result, nil
}

// decodeAttachment parses a record and fills the id and evaluator from the
// message when the attachment leaves them out
func decodeAttachment(a Attachment) (models.EvaluationRecord, error) {
	var rec models.EvaluationRecord
	dec := json.NewDecoder(bytes.NewReader(a.Data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return rec, fmt.Errorf("%w: %v", scoring.ErrInvalidRecord, err)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewSHA1(importNamespace, []byte(a.MessageID+"/"+a.Filename)).String()
	}
	if rec.EvaluatorName == "" && a.Sender != "Unknown" {
		rec.EvaluatorName = a.Sender
	}
	return rec, nil
}
