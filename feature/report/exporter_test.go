package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"cycle-count/core/storage/mocks"
	"cycle-count/feature/count/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func completedSession() *models.Session {
	created := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	s := models.NewSession(nil, created)
	s.Status = models.StatusCompleted
	s.Discrepancies = []models.Discrepancy{
		{Identifier: "IMEI-101", SKU: "PHONE-X", Name: "Phone X", Price: 799, Type: models.TypeShortage, AutoResolved: true, Reason: models.ReasonSold},
		{Identifier: "STRAY-1", Type: models.TypeOverage, Reason: models.ReasonOther, Note: "mislabeled bin"},
	}
	return s
}

func TestExport(t *testing.T) {
	session := completedSession()

	var uploaded []byte
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "count-reports").Return(true, nil)
	client.On("PutObject", mock.Anything, "count-reports", "reports/2026-08-25/"+session.ID+".csv",
		mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			var err error
			uploaded, err = io.ReadAll(args.Get(3).(io.Reader))
			require.NoError(t, err)
			assert.Equal(t, int64(len(uploaded)), args.Get(4).(int64))
		}).
		Return(minio.UploadInfo{}, nil)

	exporter := NewExporter(client, "count-reports", zap.NewNop())
	key, err := exporter.Export(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, "reports/2026-08-25/"+session.ID+".csv", key)
	client.AssertExpectations(t)

	rows, err := csv.NewReader(bytes.NewReader(uploaded)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"identifier", "sku", "name", "price", "type", "auto_resolved", "reason", "note"}, rows[0])
	assert.Equal(t, []string{"IMEI-101", "PHONE-X", "Phone X", "799.00", "SHORTAGE", "true", "SOLD", ""}, rows[1])
	assert.Equal(t, []string{"STRAY-1", "", "", "0.00", "OVERAGE", "false", "OTHER", "mislabeled bin"}, rows[2])
}

func TestExport_CreatesMissingBucket(t *testing.T) {
	session := completedSession()

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "count-reports").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "count-reports", mock.Anything).Return(nil)
	client.On("PutObject", mock.Anything, "count-reports", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	exporter := NewExporter(client, "count-reports", zap.NewNop())
	_, err := exporter.Export(context.Background(), session)
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestExport_RefusesUnfinishedSession(t *testing.T) {
	session := completedSession()
	session.Status = models.StatusReconciling

	exporter := NewExporter(new(mocks.Client), "count-reports", zap.NewNop())
	_, err := exporter.Export(context.Background(), session)
	assert.ErrorIs(t, err, ErrNotCompleted)
}
