package directory

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// userDocument is the slice of the stored user access checks read
type userDocument struct {
	Status       string `bson:"status"`
	Organization struct {
		Status string `bson:"status"`
	} `bson:"organization"`
	RoleRef Role `bson:"roleRef"`
}

// MongoDirectory implements Directory over the platform's user database
type MongoDirectory struct {
	users    *mongo.Collection
	devices  *mongo.Collection
	sessions *mongo.Collection
}

// NewMongoDirectory returns a *MongoDirectory over db's identity collections
func NewMongoDirectory(db *mongo.Database) *MongoDirectory {
	return &MongoDirectory{
		users:    db.Collection("users"),
		devices:  db.Collection("devices"),
		sessions: db.Collection("sessions"),
	}
}

// mongoID widens a hex id to its ObjectID form, passing other ids through
func mongoID(id string) interface{} {
	if objectID, err := primitive.ObjectIDFromHex(id); err == nil {
		return objectID
	}
	return id
}

// UserByID loads the user stored under userID
func (d *MongoDirectory) UserByID(ctx context.Context, userID string) (User, error) {
	var doc userDocument
	err := d.users.FindOne(ctx, bson.M{"_id": mongoID(userID)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return User{}, ErrUserNotFound
	} else if err != nil {
		return User{}, fmt.Errorf("Failed to look up user %s: %w", userID, err)
	}

	return User{
		ID:                 userID,
		Status:             doc.Status,
		OrganizationStatus: doc.Organization.Status,
		Role:               doc.RoleRef,
	}, nil
}

// DeviceIDByClientID resolves a client id header to the registered device's id
func (d *MongoDirectory) DeviceIDByClientID(ctx context.Context, clientID string) (string, error) {
	var doc struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err := d.devices.FindOne(ctx, bson.M{"clientId": clientID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrDeviceNotFound
	} else if err != nil {
		return "", fmt.Errorf("Failed to look up device %s: %w", clientID, err)
	}
	return doc.ID.Hex(), nil
}

// HasSessionElsewhere reports whether the user holds an unrevoked session on another device
func (d *MongoDirectory) HasSessionElsewhere(ctx context.Context, userID string, deviceID string) (bool, error) {
	filter := bson.M{
		"user":      mongoID(userID),
		"device":    bson.M{"$ne": mongoID(deviceID)},
		"revokedAt": bson.M{"$exists": false},
	}
	count, err := d.sessions.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("Failed to count sessions for user %s: %w", userID, err)
	}
	return count > 0, nil
}

// ClearRememberMe drops the user's remembered login flag
func (d *MongoDirectory) ClearRememberMe(ctx context.Context, userID string) error {
	update := bson.M{"$set": bson.M{"rememberMe": false}}
	if _, err := d.users.UpdateOne(ctx, bson.M{"_id": mongoID(userID)}, update); err != nil {
		return fmt.Errorf("Failed to clear remembered login for user %s: %w", userID, err)
	}
	return nil
}
