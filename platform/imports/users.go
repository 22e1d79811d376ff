package imports

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserImporter represents a user directory that invited employees can be written into
type UserImporter interface {
	ImportEmployee(ctx context.Context, organizationID string, employee Employee) error
}

// MongoUserImporter implements UserImporter over a users collection
type MongoUserImporter struct {
	users *mongo.Collection
}

func NewMongoUserImporter(db *mongo.Database) *MongoUserImporter {
	return &MongoUserImporter{
		users: db.Collection("users"),
	}
}

// splitEmployeeName breaks a combined name into first and last parts
func splitEmployeeName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

/*
ImportEmployee inserts the employee into the users collection unless a user
with the same first name, last name, and email already exists
*/
func (m *MongoUserImporter) ImportEmployee(ctx context.Context, organizationID string, employee Employee) error {
	orgID, err := primitive.ObjectIDFromHex(organizationID)
	if err != nil {
		return fmt.Errorf("Failed to parse organization id %s: %w", organizationID, err)
	}

	firstName, lastName := splitEmployeeName(employee.Name)
	filter := bson.M{
		"firstName": firstName,
		"lastName":  lastName,
		"email":     employee.Email,
	}

	err = m.users.FindOne(ctx, filter).Err()
	if err == nil {
		log.Printf("User with email %s already exists. Skipping insertion\n", employee.Email)
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("Failed to look up user %s: %w", employee.Email, err)
	}

	now := time.Now().UTC()
	document := bson.M{
		"firstName":    firstName,
		"lastName":     lastName,
		"email":        employee.Email,
		"role":         employee.Role,
		"phoneNumber":  employee.PhoneNumber,
		"status":       "active",
		"createdAt":    now,
		"updatedAt":    now,
		"organization": orgID,
	}
	if _, err = m.users.InsertOne(ctx, document); err != nil {
		return fmt.Errorf("Failed to insert user %s: %w", employee.Email, err)
	}
	return nil
}
