package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cateringhub/internal/infra/fixtures"
)

// SeedCatalog upserts the catalog. Vendors are only inserted when missing so
// live rating and booking counters survive a restart.
func (c *Client) SeedCatalog(ctx context.Context, catalog fixtures.Catalog) error {
	upsert := options.Update().SetUpsert(true)
	replace := options.Replace().SetUpsert(true)

	vendorsCol := c.DB.Collection(colVendors)
	for _, v := range catalog.Vendors {
		doc := newVendorDocument(v)
		if doc.Version == 0 {
			doc.Version = 1
		}
		if _, err := vendorsCol.UpdateByID(ctx, doc.ID, bson.M{"$setOnInsert": doc}, upsert); err != nil {
			return fmt.Errorf("seed vendor %s: %w", doc.ID, err)
		}
	}
	packagesCol := c.DB.Collection(colPackages)
	for _, p := range catalog.Packages {
		doc := newPackageDocument(p)
		if _, err := packagesCol.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, replace); err != nil {
			return fmt.Errorf("seed package %s: %w", doc.ID, err)
		}
	}
	eventsCol := c.DB.Collection(colEvents)
	for _, e := range catalog.Events {
		doc := newEventDocument(e)
		if _, err := eventsCol.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, replace); err != nil {
			return fmt.Errorf("seed event %s: %w", doc.ID, err)
		}
	}
	methodsCol := c.DB.Collection(colPaymentMethods)
	for _, m := range catalog.PaymentMethods {
		doc := newMethodDocument(m)
		if _, err := methodsCol.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, replace); err != nil {
			return fmt.Errorf("seed payment method %s: %w", doc.ID, err)
		}
	}
	return nil
}

var _ fixtures.Seeder = (*Client)(nil)
