package jobs

import (
	"context"

	"bitbucket.org/rewixxcloud/jobs_client/cache"
	"bitbucket.org/rewixxcloud/jobs_client/config"
	"bitbucket.org/rewixxcloud/jobs_client/models"
	"github.com/shopspring/decimal"
)

// AddMaterial posts a material line against a job and, when that job is the
// one currently selected, appends the returned sale to its view without a
// refetch. The list cache entry is patched in place; it is never
// invalidated here, so the job cannot vanish from the list mid-edit.
func (m *Manager) AddMaterial(ctx context.Context, jobId int, material models.NewMaterial) (*models.Sale, error) {
	sale, err := m.backend.AddMaterial(ctx, jobId, material)
	if err != nil {
		config.LogError(m.logger, "materials.go", "AddMaterial", "adding material", material, err)
		return nil, err
	}
	m.applyPolicy(cache.MutationMaterialAdd, jobId, func(j *models.Job) {
		j.Sales = append(j.Sales, *sale)
	})
	return sale, nil
}

// RemoveMaterial removes a sale by id. Only the targeted sale disappears
// from the selected view and the cached list entry; the job itself stays.
func (m *Manager) RemoveMaterial(ctx context.Context, jobId int, saleId int) error {
	if err := m.backend.RemoveMaterial(ctx, jobId, saleId); err != nil {
		config.LogError(m.logger, "materials.go", "RemoveMaterial", "removing material", saleId, err)
		return err
	}
	m.applyPolicy(cache.MutationMaterialRemove, jobId, func(j *models.Job) {
		kept := j.Sales[:0]
		for _, sale := range j.Sales {
			if sale.ID != saleId {
				kept = append(kept, sale)
			}
		}
		j.Sales = kept
	})
	return nil
}

// UpdateMaterial is the quantity-only partial update. The server's
// replacement sale is swapped in by id; when two updates to the same sale
// race, the last response to resolve wins (there is no version check on
// sales).
func (m *Manager) UpdateMaterial(ctx context.Context, jobId int, saleId int, quantity int) (*models.Sale, error) {
	sale, err := m.backend.UpdateMaterial(ctx, jobId, saleId, models.MaterialQuantityUpdate{Quantity: quantity})
	if err != nil {
		config.LogError(m.logger, "materials.go", "UpdateMaterial", "updating material quantity", saleId, err)
		return nil, err
	}
	m.applyPolicy(cache.MutationMaterialUpdate, jobId, func(j *models.Job) {
		if i := j.FindSale(saleId); i >= 0 {
			j.Sales[i] = *sale
		}
	})
	return sale, nil
}

// ScannedMaterial is a line item that arrived from a scan (receipt or
// barcode) and may not correspond to any provisioned product yet.
type ScannedMaterial struct {
	Name        string
	Description string
	Category    string
	Supplier    string
	Notes       string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// AddScannedMaterial provisions a product for the scanned line when none
// matches, then adds the material. Search failure is not fatal: a fresh
// product is created instead.
func (m *Manager) AddScannedMaterial(ctx context.Context, jobId int, scanned ScannedMaterial) (*models.Sale, error) {
	product, err := m.provisionProduct(ctx, scanned)
	if err != nil {
		config.LogError(m.logger, "materials.go", "AddScannedMaterial", "provisioning product", scanned.Name, err)
		return nil, err
	}
	quantity := scanned.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	return m.AddMaterial(ctx, jobId, models.NewMaterial{
		ProductId: product.ID,
		Quantity:  quantity,
		UnitPrice: scanned.UnitPrice,
		Notes:     scanned.Notes,
	})
}

func (m *Manager) provisionProduct(ctx context.Context, scanned ScannedMaterial) (*models.Product, error) {
	candidates, err := m.backend.SearchProducts(ctx, scanned.Name)
	if err != nil {
		// fall through and create a new product
		config.LogWarn(m.logger, "materials.go", "provisionProduct", "product search failed; creating new product", err)
		candidates = nil
	}
	if existing := models.ChooseExistingProduct(candidates, scanned.Name, scanned.UnitPrice); existing != nil {
		return existing, nil
	}

	category := scanned.Category
	if category == "" {
		category = models.ProductCategoryBarcodeScan
	}
	supplier := scanned.Supplier
	if supplier == "" {
		supplier = models.ProductSupplierUnknown
	}
	description := scanned.Description
	if description == "" {
		description = "Product from scan: " + scanned.Name
	}
	return m.backend.CreateProduct(ctx, models.NewProduct{
		Name:        scanned.Name,
		Description: description,
		UnitPrice:   scanned.UnitPrice,
		Category:    category,
		Supplier:    supplier,
	})
}

// AddReceiptLine satisfies workflow.LineItemLedger: one finalized receipt
// line becomes one provisioned product plus one material call.
func (m *Manager) AddReceiptLine(ctx context.Context, jobId int, vendor string, item models.ReceiptItem) (*models.Sale, error) {
	supplier := vendor
	if supplier == "" {
		supplier = models.ProductSupplierUnknown
	}
	return m.AddScannedMaterial(ctx, jobId, ScannedMaterial{
		Name:        item.Name,
		Description: "Product from receipt: " + item.Name,
		Category:    models.ProductCategoryReceiptItem,
		Supplier:    supplier,
		Notes:       "From receipt: " + item.Name,
		UnitPrice:   item.Price,
		Quantity:    item.Quantity,
	})
}
