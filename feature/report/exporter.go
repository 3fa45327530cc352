package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"cycle-count/core/storage"
	"cycle-count/feature/count/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrNotCompleted is returned when the session has not been signed off yet.
var ErrNotCompleted = fmt.Errorf("report: session not completed")

// Exporter writes a completed session's discrepancy table to object
// storage as CSV.
type Exporter struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewExporter creates an exporter writing into the given bucket.
func NewExporter(client storage.Client, bucket string, logger *zap.Logger) *Exporter {
	return &Exporter{client: client, bucket: bucket, logger: logger}
}

// Export renders and uploads the report. Only completed sessions are
// exportable; the discrepancy table is final once signed. Returns the
// object key.
func (e *Exporter) Export(ctx context.Context, session *models.Session) (string, error) {
	if session.Status != models.StatusCompleted {
		return "", ErrNotCompleted
	}

	if err := e.ensureBucket(ctx); err != nil {
		return "", err
	}

	payload, err := render(session)
	if err != nil {
		return "", err
	}

	key := objectKey(session)
	_, err = e.client.PutObject(ctx, e.bucket, key,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "text/csv"},
	)
	if err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}

	e.logger.Info("exported session report",
		zap.String("session_id", session.ID),
		zap.String("object", key),
		zap.Int("discrepancies", len(session.Discrepancies)),
	)
	return key, nil
}

func (e *Exporter) ensureBucket(ctx context.Context) error {
	exists, err := e.client.BucketExists(ctx, e.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := e.client.MakeBucket(ctx, e.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

func objectKey(session *models.Session) string {
	return fmt.Sprintf("reports/%s/%s.csv",
		session.CreatedAt.Format("2006-01-02"), session.ID)
}

// render produces the CSV: a header row, then one row per discrepancy.
func render(session *models.Session) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"identifier", "sku", "name", "price", "type", "auto_resolved", "reason", "note"},
	}
	for _, d := range session.Discrepancies {
		rows = append(rows, []string{
			d.Identifier,
			d.SKU,
			d.Name,
			strconv.FormatFloat(d.Price, 'f', 2, 64),
			string(d.Type),
			strconv.FormatBool(d.AutoResolved),
			string(d.Reason),
			d.Note,
		})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
