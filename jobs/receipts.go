package jobs

import (
	"bytes"
	"context"
	"encoding/base64"
	"time"

	"bitbucket.org/rewixxcloud/jobs_client/cache"
	"bitbucket.org/rewixxcloud/jobs_client/config"
	"bitbucket.org/rewixxcloud/jobs_client/models"
	"bitbucket.org/rewixxcloud/jobs_client/receiptstore"
	"bitbucket.org/rewixxcloud/jobs_client/workflow"
	"github.com/google/uuid"
)

// UploadReceipt persists the raw file locally first, then sends it to the
// extraction service. When extraction fails the attachment stays saved and
// no session is returned; the operator sees the image, just not a
// reconciliation workflow. On success the returned session starts at the
// step the seeding rules decide.
func (m *Manager) UploadReceipt(ctx context.Context, jobId int, filename string, contentType string, data []byte) (*workflow.VerificationSession, error) {
	att := models.ReceiptAttachment{
		ID:         uuid.NewString(),
		Data:       "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data),
		UploadedAt: time.Now().UTC(),
		Name:       filename,
		Size:       int64(len(data)),
		Type:       contentType,
	}
	list, err := m.receipts.Save(ctx, jobId, att)
	if err != nil {
		config.LogError(m.logger, "receipts.go", "UploadReceipt", "saving attachment locally", filename, err)
		return nil, err
	}
	m.projectReceipts(jobId, list, cache.MutationReceiptAttach)

	draft, err := m.backend.ExtractReceipt(ctx, filename, bytes.NewReader(data))
	if err != nil {
		// recoverable: evidence is kept, reconciliation simply never opens
		config.LogWarn(m.logger, "receipts.go", "UploadReceipt", "extraction failed; attachment kept", err)
		return nil, nil
	}
	return workflow.NewVerificationSession(jobId, *draft), nil
}

// ConfirmReceipt runs the session's confirm step against this manager's
// material ledger.
func (m *Manager) ConfirmReceipt(ctx context.Context, session *workflow.VerificationSession) (*workflow.ConfirmResult, error) {
	return session.Confirm(ctx, m)
}

// LoadReceipts returns the locally stored attachments for a job.
func (m *Manager) LoadReceipts(ctx context.Context, jobId int) []models.ReceiptAttachment {
	return m.receipts.Load(ctx, jobId)
}

// RemoveReceipt deletes one attachment by position; index -1 clears the
// whole record. Both views are re-projected from the surviving list.
func (m *Manager) RemoveReceipt(ctx context.Context, jobId int, index int) error {
	if index == -1 {
		return m.ClearReceipts(ctx, jobId)
	}
	list, err := m.receipts.Remove(ctx, jobId, index)
	if err != nil {
		config.LogError(m.logger, "receipts.go", "RemoveReceipt", "removing attachment", index, err)
		return err
	}
	m.projectReceipts(jobId, list, cache.MutationReceiptRemove)
	return nil
}

func (m *Manager) ClearReceipts(ctx context.Context, jobId int) error {
	if err := m.receipts.Clear(ctx, jobId); err != nil {
		config.LogError(m.logger, "receipts.go", "ClearReceipts", "clearing attachments", jobId, err)
		return err
	}
	m.projectReceipts(jobId, nil, cache.MutationReceiptRemove)
	return nil
}

// projectReceipts pushes the attachment payload list onto the job's
// receipt images in both views, so detail and list agree on the count
// without a remote round trip.
func (m *Manager) projectReceipts(jobId int, list []models.ReceiptAttachment, kind cache.MutationKind) {
	payloads := receiptstore.Payloads(list)
	m.applyPolicy(kind, jobId, func(j *models.Job) {
		j.ReceiptImageUrls = payloads
	})
}
