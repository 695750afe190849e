package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cateringhub/internal/app/uow"
	domainbooking "cateringhub/internal/domain/booking"
	domainevents "cateringhub/internal/domain/events"
	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/domain/payments"
	domainreviews "cateringhub/internal/domain/reviews"
	"cateringhub/internal/domain/shared/failure"
	"cateringhub/internal/domain/vendors"
)

var errNotificationNotFound = failure.NotFound("notification")

type bookingRepository struct {
	unit *Unit
	col  *mongo.Collection
}

func (r bookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, conflict(err)
	}
	return doc.toAggregate()
}

func (r bookingRepository) Insert(ctx context.Context, b *domainbooking.Booking) error {
	if err := r.unit.writable(); err != nil {
		return err
	}
	doc := newBookingDocument(b)
	doc.Version = 1
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %w", domainbooking.ErrReferenceTaken, uow.ErrConflict)
		}
		return conflict(err)
	}
	b.Version = doc.Version
	return nil
}

func (r bookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if err := r.unit.writable(); err != nil {
		return err
	}
	doc := newBookingDocument(b)
	doc.Version = b.Version + 1
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID, "version": b.Version}, bson.M{"$set": doc})
	if err != nil {
		return conflict(err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.ByID(ctx, b.ID); err != nil {
			return err
		}
		return fmt.Errorf("%w: %w", domainbooking.ErrConcurrentUpdate, uow.ErrConflict)
	}
	b.Version = doc.Version
	return nil
}

func (r bookingRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"booking_reference": reference}, options.Count().SetLimit(1))
	if err != nil {
		return false, conflict(err)
	}
	return n > 0, nil
}

func (r bookingRepository) ListByConsumer(ctx context.Context, consumerID string, statuses []domainbooking.Status) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"consumer_id": consumerID}, statuses)
}

func (r bookingRepository) ListByVendor(ctx context.Context, vendorID vendors.VendorID, statuses []domainbooking.Status) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"vendor_id": string(vendorID)}, statuses)
}

func (r bookingRepository) list(ctx context.Context, filter bson.M, statuses []domainbooking.Status) ([]*domainbooking.Booking, error) {
	if len(statuses) > 0 {
		values := make([]string, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, string(s))
		}
		filter["status"] = bson.M{"$in": values}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, conflict(err)
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, conflict(err)
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, doc := range docs {
		b, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

type vendorRepository struct {
	unit *Unit
	col  *mongo.Collection
}

func (r vendorRepository) ByID(ctx context.Context, id vendors.VendorID) (*vendors.Vendor, error) {
	var doc vendorDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, vendors.ErrNotFound
		}
		return nil, conflict(err)
	}
	return doc.toAggregate()
}

func (r vendorRepository) Save(ctx context.Context, v *vendors.Vendor) error {
	if err := r.unit.writable(); err != nil {
		return err
	}
	doc := newVendorDocument(v)
	doc.Version = v.Version + 1
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID, "version": v.Version}, bson.M{"$set": doc})
	if err != nil {
		return conflict(err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.ByID(ctx, v.ID); err != nil {
			return err
		}
		return uow.ErrVendorChanged
	}
	v.Version = doc.Version
	return nil
}

type packageRepository struct {
	col *mongo.Collection
}

func (r packageRepository) ByID(ctx context.Context, id vendors.PackageID) (*vendors.Package, error) {
	var doc packageDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, vendors.ErrPackageNotFound
		}
		return nil, conflict(err)
	}
	return doc.toAggregate()
}

type eventRepository struct {
	col *mongo.Collection
}

func (r eventRepository) ByID(ctx context.Context, id domainevents.EventID) (*domainevents.Event, error) {
	var doc eventDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainevents.ErrNotFound
		}
		return nil, conflict(err)
	}
	return doc.toAggregate(), nil
}

type methodRepository struct {
	col *mongo.Collection
}

func (r methodRepository) ByID(ctx context.Context, id payments.MethodID) (*payments.Method, error) {
	var doc methodDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, payments.ErrNotFound
		}
		return nil, conflict(err)
	}
	return doc.toAggregate(), nil
}

type reviewRepository struct {
	unit *Unit
	col  *mongo.Collection
}

func (r reviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainreviews.Review, error) {
	var doc reviewDocument
	if err := r.col.FindOne(ctx, bson.M{"booking_id": string(bookingID)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreviews.ErrNotFound
		}
		return nil, conflict(err)
	}
	return doc.toAggregate(), nil
}

func (r reviewRepository) Insert(ctx context.Context, review *domainreviews.Review) error {
	if err := r.unit.writable(); err != nil {
		return err
	}
	if _, err := r.col.InsertOne(ctx, newReviewDocument(review)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainreviews.ErrAlreadyReviewed
		}
		return conflict(err)
	}
	return nil
}

func (r reviewRepository) ListByVendor(ctx context.Context, vendorID vendors.VendorID) ([]*domainreviews.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"vendor_id": string(vendorID)}, opts)
	if err != nil {
		return nil, conflict(err)
	}
	var docs []reviewDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, conflict(err)
	}
	out := make([]*domainreviews.Review, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

type notificationRepository struct {
	unit *Unit
	col  *mongo.Collection
}

func (r notificationRepository) Insert(ctx context.Context, n *notifications.Notification) error {
	if err := r.unit.writable(); err != nil {
		return err
	}
	_, err := r.col.InsertOne(ctx, newNotificationDocument(n))
	return conflict(err)
}

func (r notificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*notifications.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, conflict(err)
	}
	var docs []notificationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, conflict(err)
	}
	out := make([]*notifications.Notification, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

// MarkDelivered keeps the first delivery time when a message is redelivered.
func (r notificationRepository) MarkDelivered(ctx context.Context, id notifications.NotificationID, at time.Time) error {
	if err := r.unit.writable(); err != nil {
		return err
	}
	filter := bson.M{"_id": string(id), "delivered_at": bson.M{"$exists": false}}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"delivered_at": at.UTC()}})
	if err != nil {
		return conflict(err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": string(id)}, options.Count().SetLimit(1))
	if err != nil {
		return conflict(err)
	}
	if n == 0 {
		return errNotificationNotFound
	}
	return nil
}
