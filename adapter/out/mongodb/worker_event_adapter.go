package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event_scraper/core/domain"
	"event_scraper/core/port/out"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// =============================================================================
// MongoDB Event Adapter
// =============================================================================

const defaultEventsCollection = "events"

// trailingLabelPattern finds registration links that still end in a label word.
const trailingLabelPattern = `(registration|register|here|click|link)$`

// EventAdapter implements out.EventStore using MongoDB.
type EventAdapter struct {
	collection *mongo.Collection
}

var _ out.EventStore = (*EventAdapter)(nil)

// NewEventAdapter creates a new MongoDB event adapter.
func NewEventAdapter(db *mongo.Database, collection string) *EventAdapter {
	if collection == "" {
		collection = defaultEventsCollection
	}
	return &EventAdapter{collection: db.Collection(collection)}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *EventAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "title", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("title_date_unique"),
		},
		{
			Keys: bson.D{{Key: "date", Value: 1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// =============================================================================
// Document Model
// =============================================================================

type attendeeDocument struct {
	Name         string    `bson:"name"`
	MobileNumber string    `bson:"mobileNumber"`
	JoinedAt     time.Time `bson:"joinedAt"`
}

// eventDocument uses the camelCase field names the web client reads.
type eventDocument struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Title            string             `bson:"title"`
	Description      string             `bson:"description"`
	Summary          string             `bson:"summary,omitempty"`
	Date             string             `bson:"date"`
	Time             string             `bson:"time"`
	Venue            string             `bson:"venue"`
	RegistrationLink string             `bson:"registrationLink"`
	CreatedAt        time.Time          `bson:"createdAt"`
	Attendees        []attendeeDocument `bson:"attendees"`
	UsedDefaultDate  bool               `bson:"usedDefaultDate"`
}

// =============================================================================
// Dedup and Insert
// =============================================================================

// Exists reports whether an event with the same title and date is stored.
func (a *EventAdapter) Exists(ctx context.Context, key domain.DedupKey) (bool, error) {
	n, err := a.collection.CountDocuments(ctx, keyFilter(key), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count events: %w", err)
	}
	return n > 0, nil
}

// Insert stores a new event and returns its id. A unique index violation is
// reported as out.ErrDuplicateKey.
func (a *EventAdapter) Insert(ctx context.Context, record *domain.EventRecord) (string, error) {
	doc := toDocument(record)
	doc.ID = primitive.NilObjectID

	res, err := a.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", out.ErrDuplicateKey
		}
		return "", fmt.Errorf("failed to insert event: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// =============================================================================
// Query Operations
// =============================================================================

// List returns all events ordered by date ascending.
func (a *EventAdapter) List(ctx context.Context) ([]*domain.EventRecord, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return a.find(ctx, bson.M{}, findOpts)
}

// Get returns one event. An unknown or malformed id is out.ErrEventNotFound.
func (a *EventAdapter) Get(ctx context.Context, id string) (*domain.EventRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, out.ErrEventNotFound
	}

	var doc eventDocument
	err = a.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, out.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return toRecord(&doc), nil
}

// AddAttendee appends an attendee unless the mobile number already joined.
func (a *EventAdapter) AddAttendee(ctx context.Context, id string, attendee domain.Attendee) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return out.ErrEventNotFound
	}

	filter := bson.M{
		"_id":                    oid,
		"attendees.mobileNumber": bson.M{"$ne": attendee.MobileNumber},
	}
	update := bson.M{"$push": bson.M{"attendees": attendeeDocument(attendee)}}

	res, err := a.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to add attendee: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Nothing matched: either the event is missing or the number is taken.
	n, err := a.collection.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check event: %w", err)
	}
	if n == 0 {
		return out.ErrEventNotFound
	}
	return out.ErrAlreadyJoined
}

// =============================================================================
// Link Repair
// =============================================================================

// FindLinksWithTrailingLabel returns events whose registration link ends in a
// label word, case-insensitively.
func (a *EventAdapter) FindLinksWithTrailingLabel(ctx context.Context) ([]*domain.EventRecord, error) {
	filter := bson.M{
		"registrationLink": primitive.Regex{Pattern: trailingLabelPattern, Options: "i"},
	}
	return a.find(ctx, filter, options.Find())
}

// UpdateLink replaces the registration link of one event.
func (a *EventAdapter) UpdateLink(ctx context.Context, id, link string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return out.ErrEventNotFound
	}

	res, err := a.collection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"registrationLink": link}},
	)
	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}
	if res.MatchedCount == 0 {
		return out.ErrEventNotFound
	}
	return nil
}

func (a *EventAdapter) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.EventRecord, error) {
	cursor, err := a.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]*domain.EventRecord, 0)
	for cursor.Next(ctx) {
		var doc eventDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		events = append(events, toRecord(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return events, nil
}

// =============================================================================
// Conversion Helpers
// =============================================================================

func keyFilter(key domain.DedupKey) bson.M {
	return bson.M{"title": key.Title, "date": key.Date}
}

func toDocument(r *domain.EventRecord) *eventDocument {
	doc := &eventDocument{
		Title:            r.Title,
		Description:      r.Description,
		Summary:          r.Summary,
		Date:             r.Date,
		Time:             r.Time,
		Venue:            r.Venue,
		RegistrationLink: r.RegistrationLink,
		CreatedAt:        r.CreatedAt,
		Attendees:        make([]attendeeDocument, 0, len(r.Attendees)),
		UsedDefaultDate:  r.UsedDefaultDate,
	}
	if oid, err := primitive.ObjectIDFromHex(r.ID); err == nil {
		doc.ID = oid
	}
	for _, at := range r.Attendees {
		doc.Attendees = append(doc.Attendees, attendeeDocument(at))
	}
	return doc
}

func toRecord(doc *eventDocument) *domain.EventRecord {
	r := &domain.EventRecord{
		Title:            doc.Title,
		Description:      doc.Description,
		Summary:          doc.Summary,
		Date:             doc.Date,
		Time:             doc.Time,
		Venue:            doc.Venue,
		RegistrationLink: doc.RegistrationLink,
		CreatedAt:        doc.CreatedAt,
		Attendees:        make([]domain.Attendee, 0, len(doc.Attendees)),
		UsedDefaultDate:  doc.UsedDefaultDate,
	}
	if !doc.ID.IsZero() {
		r.ID = doc.ID.Hex()
	}
	for _, at := range doc.Attendees {
		r.Attendees = append(r.Attendees, domain.Attendee(at))
	}
	return r
}
