package jobs

import (
	"context"
	"io"

	"bitbucket.org/rewixxcloud/jobs_client/models"
	"bitbucket.org/rewixxcloud/jobs_client/remote"
)

// Backend is the slice of the remote API the manager depends on. The
// production implementation is remote.Client; tests substitute fakes.
type Backend interface {
	GetJob(ctx context.Context, id int) (*models.Job, error)
	ListJobs(ctx context.Context, query models.JobListQuery) (*models.JobsConnection, error)
	CreateJob(ctx context.Context, input *models.NewJob) (*models.Job, error)
	UpdateJob(ctx context.Context, job *models.Job) (*models.Job, error)
	DeleteJob(ctx context.Context, id int) error

	AddMaterial(ctx context.Context, jobId int, material models.NewMaterial) (*models.Sale, error)
	RemoveMaterial(ctx context.Context, jobId int, saleId int) error
	UpdateMaterial(ctx context.Context, jobId int, saleId int, update models.MaterialQuantityUpdate) (*models.Sale, error)

	SearchProducts(ctx context.Context, name string) ([]models.Product, error)
	CreateProduct(ctx context.Context, input models.NewProduct) (*models.Product, error)

	ExtractReceipt(ctx context.Context, filename string, file io.Reader) (*models.ReceiptDraft, error)
}

var _ Backend = (*remote.Client)(nil)
