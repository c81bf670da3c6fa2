package cache

import (
	"fmt"
	"sync"

	"bitbucket.org/rewixxcloud/jobs_client/config"
	"bitbucket.org/rewixxcloud/jobs_client/models"
	"bitbucket.org/rewixxcloud/jobs_client/utils"
)

// JobListCache holds the fetched job-list pages keyed by their query
// parameters. Pages are kept in memory and mirrored into Redis best-effort
// so a restarted client can render the last page without a round trip;
// when Redis is absent the cache is purely in-memory.
type JobListCache struct {
	mu    sync.Mutex
	pages map[string]*models.JobsConnection
}

func NewJobListCache() *JobListCache {
	return &JobListCache{pages: map[string]*models.JobsConnection{}}
}

func pageKey(q models.JobListQuery) string {
	q = q.Normalized()
	return fmt.Sprintf("JobsPage:p=%d:ps=%d:f=%s:s=%s", q.Page, q.PageSize, q.StatusFilter, q.SearchTerm)
}

func (c *JobListCache) GetPage(q models.JobListQuery) (*models.JobsConnection, bool) {
	key := pageKey(q)
	c.mu.Lock()
	if page, ok := c.pages[key]; ok {
		out := clonePage(page)
		c.mu.Unlock()
		return out, true
	}
	c.mu.Unlock()

	// warm-start fallback
	var warm models.JobsConnection
	found, err := config.GetRedisObject(key, &warm)
	if err != nil || !found {
		return nil, false
	}
	c.mu.Lock()
	c.pages[key] = clonePage(&warm)
	c.mu.Unlock()
	return &warm, true
}

func (c *JobListCache) SetPage(q models.JobListQuery, page *models.JobsConnection) {
	key := pageKey(q)
	c.mu.Lock()
	c.pages[key] = clonePage(page)
	c.mu.Unlock()

	if err := config.SetRedisObject(key, page, config.GetCacheLifespan()); err != nil {
		config.LogWarn(config.GetLogger(), "jobList.go", "SetPage", "mirroring page to redis", err)
	}
}

// PatchJob edits the job in place inside every cached page that contains
// it, without touching pagination fields, so the job never disappears from
// view mid-edit. Returns ErrorCacheEntryMissing when no cached page holds
// the job.
func (c *JobListCache) PatchJob(jobId int, fn func(*models.Job)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	patched := false
	for key, page := range c.pages {
		for i := range page.Jobs {
			if page.Jobs[i].ID == jobId {
				fn(&page.Jobs[i])
				patched = true
				if err := config.SetRedisObject(key, page, config.GetCacheLifespan()); err != nil {
					config.LogWarn(config.GetLogger(), "jobList.go", "PatchJob", "mirroring patched page to redis", err)
				}
				break
			}
		}
	}
	if !patched {
		return utils.ErrorCacheEntryMissing
	}
	return nil
}

// Invalidate drops one page so the next read refetches it.
func (c *JobListCache) Invalidate(q models.JobListQuery) {
	key := pageKey(q)
	c.mu.Lock()
	delete(c.pages, key)
	c.mu.Unlock()
	if err := config.RemoveRedisKey(key); err != nil {
		config.LogWarn(config.GetLogger(), "jobList.go", "Invalidate", "removing mirrored page", err)
	}
}

// InvalidateAll drops every cached page; used after job-level edits where
// server-derived fields (computed costs) are unknown to the optimistic
// patch.
func (c *JobListCache) InvalidateAll() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.pages))
	for key := range c.pages {
		keys = append(keys, key)
	}
	c.pages = map[string]*models.JobsConnection{}
	c.mu.Unlock()
	if len(keys) > 0 {
		if err := config.RemoveRedisKey(keys...); err != nil {
			config.LogWarn(config.GetLogger(), "jobList.go", "InvalidateAll", "removing mirrored pages", err)
		}
	}
}

func clonePage(page *models.JobsConnection) *models.JobsConnection {
	out := *page
	out.Jobs = make([]models.Job, len(page.Jobs))
	for i := range page.Jobs {
		out.Jobs[i] = page.Jobs[i].Clone()
	}
	return &out
}
