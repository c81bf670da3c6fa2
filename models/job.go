package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Job is the client-held view of a job. The server owns the record; the
// copy cached here carries a Version stamp bumped on every applied local
// patch so an out-of-order patch can be recognized as stale.
type Job struct {
	ID                 int             `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Status             JobStatus       `json:"status"`
	CustomerId         int             `json:"customerId"`
	StartDate          *time.Time      `json:"startDate"`
	EndDate            *time.Time      `json:"endDate"`
	JobPrice           decimal.Decimal `json:"jobPrice"`
	CustomMaterialCost decimal.Decimal `json:"customMaterialCost"`
	IncludeTax         *bool           `json:"includeTax"`
	ReceiptImageUrls   []string        `json:"receiptImageUrls"`
	Sales              []Sale          `json:"sales"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`

	// Version is local only, never sent to the server.
	Version int64 `json:"-"`
}

type NewJob struct {
	Title              string          `json:"title" binding:"required"`
	Description        string          `json:"description"`
	Status             JobStatus       `json:"status" binding:"required"`
	CustomerId         int             `json:"customerId"`
	StartDate          *time.Time      `json:"startDate"`
	EndDate            *time.Time      `json:"endDate"`
	JobPrice           decimal.Decimal `json:"jobPrice"`
	CustomMaterialCost decimal.Decimal `json:"customMaterialCost"`
	IncludeTax         *bool           `json:"includeTax"`
}

// JobListQuery are the list/search parameters; zero value means first page
// of ten with no filters.
type JobListQuery struct {
	Page         int    `json:"page"`
	PageSize     int    `json:"pageSize"`
	SearchTerm   string `json:"searchTerm"`
	StatusFilter string `json:"statusFilter"`
}

func (q JobListQuery) Normalized() JobListQuery {
	if q.PageSize <= 0 {
		q.PageSize = 10
	}
	if q.Page < 0 {
		q.Page = 0
	}
	q.StatusFilter = NormalizeStatusFilter(q.StatusFilter)
	return q
}

// JobsConnection is one page of the job list as returned by the server.
type JobsConnection struct {
	Jobs        []Job `json:"jobs"`
	TotalJobs   int   `json:"totalJobs"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// Clone returns a copy safe to mutate without aliasing the cached slices.
func (j Job) Clone() Job {
	out := j
	if j.ReceiptImageUrls != nil {
		out.ReceiptImageUrls = make([]string, len(j.ReceiptImageUrls))
		copy(out.ReceiptImageUrls, j.ReceiptImageUrls)
	}
	if j.Sales != nil {
		out.Sales = make([]Sale, len(j.Sales))
		copy(out.Sales, j.Sales)
	}
	return out
}

// FindSale returns the index of the sale with the given id, or -1.
func (j Job) FindSale(saleId int) int {
	for i := range j.Sales {
		if j.Sales[i].ID == saleId {
			return i
		}
	}
	return -1
}
