// Package jobs composes the remote backend, the selected-job view, the
// job-list cache, the local receipt store and the reconciliation workflow
// into the single façade the UI talks to.
package jobs

import (
	"context"

	"bitbucket.org/rewixxcloud/jobs_client/cache"
	"bitbucket.org/rewixxcloud/jobs_client/config"
	"bitbucket.org/rewixxcloud/jobs_client/models"
	"bitbucket.org/rewixxcloud/jobs_client/receiptstore"
	"bitbucket.org/rewixxcloud/jobs_client/remote"
	"bitbucket.org/rewixxcloud/jobs_client/utils"
	"github.com/sirupsen/logrus"
)

type Manager struct {
	backend   Backend
	selected  *cache.SelectedJob
	listCache *cache.JobListCache
	receipts  *receiptstore.Store
	logger    *logrus.Logger
}

func NewManager(backend Backend, receipts *receiptstore.Store) *Manager {
	return &Manager{
		backend:   backend,
		selected:  cache.NewSelectedJob(),
		listCache: cache.NewJobListCache(),
		receipts:  receipts,
		logger:    config.GetLogger(),
	}
}

// NewDefaultManager wires the live backend and the Redis-backed receipt
// store.
func NewDefaultManager() *Manager {
	return NewManager(remote.NewClient(), receiptstore.NewDefault())
}

func (m *Manager) SelectedJob() *cache.SelectedJob { return m.selected }
func (m *Manager) ListCache() *cache.JobListCache  { return m.listCache }
func (m *Manager) Receipts() *receiptstore.Store   { return m.receipts }

// ListJobs serves the requested page from cache when possible. Fetched
// pages get each job's locally stored receipt payloads merged in before
// caching, so attachment counts render without a remote round trip.
func (m *Manager) ListJobs(ctx context.Context, query models.JobListQuery) (*models.JobsConnection, error) {
	if page, ok := m.listCache.GetPage(query); ok {
		return page, nil
	}
	page, err := m.backend.ListJobs(ctx, query)
	if err != nil {
		config.LogError(m.logger, "manager.go", "ListJobs", "fetching job list", query, err)
		return nil, err
	}
	for i := range page.Jobs {
		m.mergeLocalReceipts(ctx, &page.Jobs[i])
	}
	m.listCache.SetPage(query, page)
	return page, nil
}

// SelectJob opens a job for details: local receipt payloads are merged
// into the view before it is published to the selected cell.
func (m *Manager) SelectJob(ctx context.Context, job models.Job) models.Job {
	m.mergeLocalReceipts(ctx, &job)
	m.selected.Set(job)
	return job
}

func (m *Manager) CloseJobDetails() {
	m.selected.Clear()
}

// RefreshSelectedJob refetches the selected job from the server and swaps
// it in unless a newer local patch landed while the fetch was in flight,
// in which case the stale snapshot is dropped.
func (m *Manager) RefreshSelectedJob(ctx context.Context) error {
	current := m.selected.Get()
	if current == nil {
		return utils.ErrorNoJobSelected
	}
	fetched, err := m.backend.GetJob(ctx, current.ID)
	if err != nil {
		config.LogError(m.logger, "manager.go", "RefreshSelectedJob", "refetching job", current.ID, err)
		return err
	}
	m.mergeLocalReceipts(ctx, fetched)
	m.selected.ReplaceIfCurrent(current.Version, *fetched)
	return nil
}

func (m *Manager) CreateJob(ctx context.Context, input *models.NewJob) (*models.Job, error) {
	job, err := m.backend.CreateJob(ctx, input)
	if err != nil {
		config.LogError(m.logger, "manager.go", "CreateJob", "creating job", input, err)
		return nil, err
	}
	m.applyPolicy(cache.MutationJobCreate, job.ID, nil)
	return job, nil
}

// UpdateJob patches the selected view immediately with the server's
// response, then invalidates the list pages: the list carries
// server-derived cost fields the optimistic patch cannot compute.
func (m *Manager) UpdateJob(ctx context.Context, job models.Job) (*models.Job, error) {
	updated, err := m.backend.UpdateJob(ctx, &job)
	if err != nil {
		config.LogError(m.logger, "manager.go", "UpdateJob", "updating job", job.ID, err)
		return nil, err
	}
	m.applyPolicy(cache.MutationJobEdit, updated.ID, func(j *models.Job) {
		images := j.ReceiptImageUrls
		*j = updated.Clone()
		if len(j.ReceiptImageUrls) == 0 {
			// local attachments are not known to the server; keep them
			j.ReceiptImageUrls = images
		}
	})
	return updated, nil
}

func (m *Manager) DeleteJob(ctx context.Context, id int) error {
	if err := m.backend.DeleteJob(ctx, id); err != nil {
		config.LogError(m.logger, "manager.go", "DeleteJob", "deleting job", id, err)
		return err
	}
	if current := m.selected.Get(); current != nil && current.ID == id {
		m.selected.Clear()
	}
	m.applyPolicy(cache.MutationJobDelete, id, nil)
	return nil
}

// applyPolicy routes a successful mutation through the policy table: patch
// the selected view and the cached list entry in place, invalidate the
// list pages, or both. A failing list patch (for example the job is on no
// cached page) is logged and the cache left as-is; it never propagates.
func (m *Manager) applyPolicy(kind cache.MutationKind, jobId int, patch func(*models.Job)) {
	policy := cache.PolicyFor(kind)
	if policy.PatchInPlace && patch != nil {
		m.selected.Patch(jobId, patch)
		if err := m.listCache.PatchJob(jobId, patch); err != nil {
			config.LogWarn(m.logger, "manager.go", "applyPolicy", "patching list cache ("+string(kind)+")", err)
		}
	}
	if policy.InvalidateList {
		m.listCache.InvalidateAll()
	}
}

// mergeLocalReceipts combines server-known receipt URLs with the locally
// stored payloads, deduplicated, preserving order.
func (m *Manager) mergeLocalReceipts(ctx context.Context, job *models.Job) {
	local := m.receipts.Load(ctx, job.ID)
	if len(local) == 0 {
		return
	}
	seen := make(map[string]bool, len(job.ReceiptImageUrls))
	combined := make([]string, 0, len(job.ReceiptImageUrls)+len(local))
	for _, img := range job.ReceiptImageUrls {
		if !seen[img] {
			seen[img] = true
			combined = append(combined, img)
		}
	}
	for _, payload := range receiptstore.Payloads(local) {
		if !seen[payload] {
			seen[payload] = true
			combined = append(combined, payload)
		}
	}
	job.ReceiptImageUrls = combined
}
