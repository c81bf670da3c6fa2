// Package receiptstore persists raw receipt attachments per job in the
// local key-value store. Attachments are evidence only: the server never
// sees the payload bytes, and the store survives restarts independently of
// the remote ledger.
package receiptstore

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/rewixxcloud/jobs_client/config"
	"bitbucket.org/rewixxcloud/jobs_client/models"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "job_receipts_"

func recordKey(jobId int) string {
	return fmt.Sprintf("%s%d", keyPrefix, jobId)
}

// Store is a read-modify-write list store. Saves run under a short lock so
// two writers (a second tab, a background confirm) cannot interleave the
// load-append-persist sequence.
type Store struct {
	kv     KV
	logger *logrus.Logger
}

func New(kv KV) *Store {
	return &Store{kv: kv, logger: config.GetLogger()}
}

// NewDefault is backed by the shared Redis connection.
func NewDefault() *Store {
	return New(NewRedisKV())
}

// Load returns the attachment list for a job, empty when absent. A corrupt
// record is logged and treated as empty rather than surfaced.
func (s *Store) Load(ctx context.Context, jobId int) []models.ReceiptAttachment {
	var list []models.ReceiptAttachment
	found, err := s.kv.Get(ctx, recordKey(jobId), &list)
	if err != nil {
		config.LogWarn(s.logger, "store.go", "Load", "reading local receipts", err)
		return []models.ReceiptAttachment{}
	}
	if !found || list == nil {
		return []models.ReceiptAttachment{}
	}
	return list
}

// Save appends one attachment to the job's record. The whole list is read
// and written back; there is no append primitive in the underlying store.
func (s *Store) Save(ctx context.Context, jobId int, att models.ReceiptAttachment) ([]models.ReceiptAttachment, error) {
	unlock, err := s.kv.Lock(ctx, recordKey(jobId), 5*time.Second)
	if err != nil {
		return nil, err
	}
	defer unlock()

	list := s.Load(ctx, jobId)
	list = append(list, att)
	if err := s.kv.Set(ctx, recordKey(jobId), list); err != nil {
		return nil, err
	}
	return list, nil
}

// Remove deletes the attachment at the given position. Out-of-range indices
// are ignored and the current list is returned unchanged.
func (s *Store) Remove(ctx context.Context, jobId int, index int) ([]models.ReceiptAttachment, error) {
	unlock, err := s.kv.Lock(ctx, recordKey(jobId), 5*time.Second)
	if err != nil {
		return nil, err
	}
	defer unlock()

	list := s.Load(ctx, jobId)
	if index < 0 || index >= len(list) {
		return list, nil
	}
	list = append(list[:index], list[index+1:]...)
	if err := s.kv.Set(ctx, recordKey(jobId), list); err != nil {
		return nil, err
	}
	return list, nil
}

// Clear drops the whole per-job record.
func (s *Store) Clear(ctx context.Context, jobId int) error {
	return s.kv.Delete(ctx, recordKey(jobId))
}

// Payloads projects an attachment list onto the string payloads shown as
// the job's receipt images.
func Payloads(list []models.ReceiptAttachment) []string {
	out := make([]string, 0, len(list))
	for _, att := range list {
		out = append(out, att.Data)
	}
	return out
}
