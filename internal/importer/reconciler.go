package importer

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"procurement-service/internal/models"
	"procurement-service/internal/repository"
)

// ReconcileOptions controls how a parsed price list is applied.
type ReconcileOptions struct {
	// ReplaceListings purges the shop's existing listings before applying the
	// document, so the document becomes the shop's complete offer. When false
	// the document's goods accumulate on top of existing listings.
	ReplaceListings bool
}

// Reconciler applies parsed price lists to the catalog. Application is not
// transactional: a failure partway leaves earlier rows in place, and the
// summary reflects what was actually applied.
type Reconciler struct {
	catalog *repository.CatalogRepository
	logger  *logrus.Logger
}

func NewReconciler(catalog *repository.CatalogRepository, logger *logrus.Logger) *Reconciler {
	return &Reconciler{catalog: catalog, logger: logger}
}

// Reconcile applies doc to the catalog on behalf of sellerID. Re-applying the
// same document is idempotent: row counts do not grow and values converge.
func (r *Reconciler) Reconcile(ctx context.Context, doc *PriceList, sellerID uuid.UUID, opts ReconcileOptions) (*models.ImportSummary, error) {
	summary := &models.ImportSummary{Shop: doc.Shop}

	shop, err := r.catalog.GetOrCreateShop(ctx, doc.Shop, sellerID)
	if err != nil {
		return summary, err
	}

	// Declared categories are upserted up front so goods can be validated
	// against the document's own category set.
	declared := make(map[uint]struct{}, len(doc.Categories))
	for _, c := range doc.Categories {
		if _, err := r.catalog.UpsertCategory(ctx, c.ID, c.Name); err != nil {
			return summary, err
		}
		if err := r.catalog.AttachCategoryToShop(ctx, c.ID, shop.ID); err != nil {
			return summary, err
		}
		declared[c.ID] = struct{}{}
		summary.Categories++
	}

	if opts.ReplaceListings {
		removed, err := r.catalog.DeleteListingsByShop(ctx, shop.ID)
		if err != nil {
			return summary, err
		}
		summary.ListingsRemoved = removed
	}

	for _, good := range doc.Goods {
		if _, ok := declared[good.CategoryID]; !ok {
			return summary, &UnknownCategoryError{ExternalID: good.ExternalID, CategoryID: good.CategoryID}
		}

		product, err := r.catalog.GetOrCreateProduct(ctx, good.Name, good.Model, good.CategoryID)
		if err != nil {
			return summary, err
		}
		summary.Products++

		_, created, err := r.catalog.UpsertListing(ctx, shop.ID, product.ID, good.ExternalID,
			good.Quantity, good.Price, good.PriceRRC)
		if err != nil {
			return summary, err
		}
		if created {
			summary.ListingsCreated++
		} else {
			summary.ListingsUpdated++
		}

		for name, value := range good.Parameters {
			parameter, err := r.catalog.GetOrCreateParameter(ctx, name)
			if err != nil {
				return summary, err
			}
			if err := r.catalog.UpsertProductAttribute(ctx, product.ID, parameter.ID, value); err != nil {
				return summary, err
			}
			summary.Attributes++
		}
	}

	r.logger.WithFields(logrus.Fields{
		"shop":             doc.Shop,
		"categories":       summary.Categories,
		"products":         summary.Products,
		"listings_created": summary.ListingsCreated,
		"listings_updated": summary.ListingsUpdated,
		"listings_removed": summary.ListingsRemoved,
	}).Info("Price list reconciled")

	return summary, nil
}
