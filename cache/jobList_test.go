package cache

import (
	"errors"
	"testing"

	"bitbucket.org/rewixxcloud/jobs_client/models"
	"bitbucket.org/rewixxcloud/jobs_client/utils"
)

func page(jobs ...models.Job) *models.JobsConnection {
	return &models.JobsConnection{
		Jobs:      jobs,
		TotalJobs: len(jobs),
		PageSize:  10,
	}
}

func TestGetPageMissAndHit(t *testing.T) {
	c := NewJobListCache()
	q := models.JobListQuery{Page: 0, PageSize: 10}

	if _, ok := c.GetPage(q); ok {
		t.Fatalf("empty cache must miss")
	}

	c.SetPage(q, page(sampleJob(1, "Kitchen Remodel"), sampleJob(2, "Deck Build")))
	got, ok := c.GetPage(q)
	if !ok {
		t.Fatalf("expected a hit")
	}
	if len(got.Jobs) != 2 || got.Jobs[0].ID != 1 {
		t.Fatalf("page = %+v", got)
	}

	// hit returns a copy, not the cached slice
	got.Jobs[0].Title = "mutated"
	again, _ := c.GetPage(q)
	if again.Jobs[0].Title != "Kitchen Remodel" {
		t.Fatalf("caller mutation leaked into the cache: %q", again.Jobs[0].Title)
	}
}

func TestPageKeyNormalizesQuery(t *testing.T) {
	c := NewJobListCache()
	c.SetPage(models.JobListQuery{}, page(sampleJob(1, "Kitchen Remodel")))

	// zero value and explicit defaults address the same entry
	if _, ok := c.GetPage(models.JobListQuery{Page: 0, PageSize: 10, StatusFilter: models.JobStatusFilterAll}); !ok {
		t.Fatalf("normalized query must hit the zero-value entry")
	}
}

func TestPatchJobEditsEveryPageHoldingIt(t *testing.T) {
	c := NewJobListCache()
	first := models.JobListQuery{Page: 0, PageSize: 10}
	filtered := models.JobListQuery{Page: 0, PageSize: 10, StatusFilter: "In Progress"}
	c.SetPage(first, page(sampleJob(1, "Kitchen Remodel"), sampleJob(2, "Deck Build")))
	c.SetPage(filtered, page(sampleJob(1, "Kitchen Remodel")))

	if err := c.PatchJob(1, func(j *models.Job) { j.Title = "Kitchen Remodel Phase 2" }); err != nil {
		t.Fatalf("patch: %v", err)
	}

	for _, q := range []models.JobListQuery{first, filtered} {
		got, ok := c.GetPage(q)
		if !ok {
			t.Fatalf("page missing after patch")
		}
		if got.Jobs[0].Title != "Kitchen Remodel Phase 2" {
			t.Fatalf("page %+v not patched: %q", q, got.Jobs[0].Title)
		}
		if got.TotalJobs != len(got.Jobs) {
			t.Fatalf("pagination fields changed by patch")
		}
	}
}

func TestPatchJobMissingReturnsSentinel(t *testing.T) {
	c := NewJobListCache()
	c.SetPage(models.JobListQuery{}, page(sampleJob(1, "Kitchen Remodel")))

	err := c.PatchJob(99, func(j *models.Job) { j.Title = "ghost" })
	if !errors.Is(err, utils.ErrorCacheEntryMissing) {
		t.Fatalf("expected ErrorCacheEntryMissing, got %v", err)
	}
}

func TestInvalidate(t *testing.T) {
	c := NewJobListCache()
	q1 := models.JobListQuery{Page: 0, PageSize: 10}
	q2 := models.JobListQuery{Page: 1, PageSize: 10}
	c.SetPage(q1, page(sampleJob(1, "Kitchen Remodel")))
	c.SetPage(q2, page(sampleJob(2, "Deck Build")))

	c.Invalidate(q1)
	if _, ok := c.GetPage(q1); ok {
		t.Fatalf("invalidated page must miss")
	}
	if _, ok := c.GetPage(q2); !ok {
		t.Fatalf("other pages must survive a single invalidate")
	}

	c.InvalidateAll()
	if _, ok := c.GetPage(q2); ok {
		t.Fatalf("InvalidateAll must drop every page")
	}
}

func TestPolicyTable(t *testing.T) {
	cases := []struct {
		kind MutationKind
		want CachePolicy
	}{
		{MutationMaterialAdd, CachePolicy{PatchInPlace: true}},
		{MutationMaterialRemove, CachePolicy{PatchInPlace: true}},
		{MutationMaterialUpdate, CachePolicy{PatchInPlace: true}},
		{MutationReceiptAttach, CachePolicy{PatchInPlace: true}},
		{MutationReceiptRemove, CachePolicy{PatchInPlace: true}},
		{MutationJobCreate, CachePolicy{InvalidateList: true}},
		{MutationJobDelete, CachePolicy{InvalidateList: true}},
		{MutationJobEdit, CachePolicy{PatchInPlace: true, InvalidateList: true}},
	}
	for _, tc := range cases {
		if got := PolicyFor(tc.kind); got != tc.want {
			t.Fatalf("%s: policy = %+v, want %+v", tc.kind, got, tc.want)
		}
	}
}
