package motors

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoInventoryRepository struct {
	classifications *mongo.Collection
	vehicles        *mongo.Collection
	counters        *mongo.Collection
}

type dbClassification struct {
	ID   int    `bson:"_id"`
	Name string `bson:"name"`
}

// dbVehicle keeps a copy of the classification name so searches need no
// lookup. Classifications are never renamed.
type dbVehicle struct {
	ID                 int     `bson:"_id"`
	Make               string  `bson:"make"`
	Model              string  `bson:"model"`
	Year               string  `bson:"year"`
	Description        string  `bson:"description"`
	Image              string  `bson:"image"`
	Thumbnail          string  `bson:"thumbnail"`
	Price              float64 `bson:"price"`
	Miles              int     `bson:"miles"`
	Color              string  `bson:"color"`
	ClassificationID   int     `bson:"classification_id"`
	ClassificationName string  `bson:"classification_name"`
}

var vehicleOrder = bson.D{{Key: "make", Value: 1}, {Key: "model", Value: 1}, {Key: "_id", Value: 1}}

// NewMongoInventoryRepository keeps the inventory in db.classifications and
// db.vehicles and ensures the unique classification name index.
func NewMongoInventoryRepository(ctx context.Context, db *mongo.Database) (Repository, error) {
	classifications := db.Collection("classifications")
	_, err := classifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create classification index: %w", err)
	}

	return &mongoInventoryRepository{
		classifications: classifications,
		vehicles:        db.Collection("vehicles"),
		counters:        db.Collection("counters"),
	}, nil
}

func (m *mongoInventoryRepository) Classifications(ctx context.Context) ([]Classification, error) {
	cur, err := m.classifications.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}

	var docs []dbClassification
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}

	out := make([]Classification, 0, len(docs))
	for _, d := range docs {
		out = append(out, Classification{ID: d.ID, Name: d.Name})
	}
	return out, nil
}

func (m *mongoInventoryRepository) ClassificationByID(ctx context.Context, id int) (*Classification, error) {
	var d dbClassification
	err := m.classifications.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return &Classification{ID: d.ID, Name: d.Name}, nil
}

func (m *mongoInventoryRepository) AddClassification(ctx context.Context, name string) (*Classification, error) {
	id, err := nextID(ctx, m.counters, "classification")
	if err != nil {
		return nil, err
	}

	if _, err := m.classifications.InsertOne(ctx, dbClassification{ID: id, Name: name}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrExistingClassification
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return &Classification{ID: id, Name: name}, nil
}

func (m *mongoInventoryRepository) AllVehicles(ctx context.Context) ([]Vehicle, error) {
	return m.findVehicles(ctx, bson.M{})
}

func (m *mongoInventoryRepository) VehiclesByClassification(ctx context.Context, classificationID int) ([]Vehicle, error) {
	return m.findVehicles(ctx, bson.M{"classification_id": classificationID})
}

func (m *mongoInventoryRepository) Search(ctx context.Context, term string) ([]Vehicle, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	return m.findVehicles(ctx, bson.M{"$or": bson.A{
		bson.M{"make": pattern},
		bson.M{"model": pattern},
		bson.M{"description": pattern},
		bson.M{"classification_name": pattern},
	}})
}

func (m *mongoInventoryRepository) VehicleByID(ctx context.Context, id int) (*Vehicle, error) {
	var d dbVehicle
	err := m.vehicles.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	v := vehicleFromDBVehicle(d)
	return &v, nil
}

func (m *mongoInventoryRepository) AddVehicle(ctx context.Context, v *Vehicle) error {
	c, err := m.ClassificationByID(ctx, v.ClassificationID)
	if errors.Is(err, ErrNotFound) {
		return ErrUnknownClassification
	} else if err != nil {
		return err
	}

	id, err := nextID(ctx, m.counters, "vehicle")
	if err != nil {
		return err
	}

	d := dbVehicleFromVehicle(v)
	d.ID = id
	d.ClassificationName = c.Name
	if _, err := m.vehicles.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}

	v.ID = id
	v.ClassificationName = c.Name
	return nil
}

func (m *mongoInventoryRepository) findVehicles(ctx context.Context, filter bson.M) ([]Vehicle, error) {
	cur, err := m.vehicles.Find(ctx, filter, options.Find().SetSort(vehicleOrder))
	if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}

	var docs []dbVehicle
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}

	out := make([]Vehicle, 0, len(docs))
	for _, d := range docs {
		out = append(out, vehicleFromDBVehicle(d))
	}
	return out, nil
}

// nextID atomically increments the named sequence in counters.
func nextID(ctx context.Context, counters *mongo.Collection, name string) (int, error) {
	var seq struct {
		Value int `bson:"seq"`
	}
	err := counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&seq)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return seq.Value, nil
}

func dbVehicleFromVehicle(v *Vehicle) dbVehicle {
	return dbVehicle{v.ID, v.Make, v.Model, v.Year, v.Description, v.Image, v.Thumbnail, v.Price, v.Miles, v.Color, v.ClassificationID, v.ClassificationName}
}

func vehicleFromDBVehicle(d dbVehicle) Vehicle {
	return Vehicle{d.ID, d.Make, d.Model, d.Year, d.Description, d.Image, d.Thumbnail, d.Price, d.Miles, d.Color, d.ClassificationID, d.ClassificationName}
}
