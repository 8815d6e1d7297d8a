// config/db.go
package config

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB establishes connection to MongoDB
func ConnectDB() *mongo.Client {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = os.Getenv("MONGODB_URI")
	}

	// Only use Docker service name as fallback in development
	if mongoURI == "" {
		env := os.Getenv("ENV")
		if env == "development" || env == "dev" {
			mongoURI = "mongodb://mongodb:27017"
		} else {
			log.Fatal("MONGO_URI or MONGODB_URI environment variable is required for production")
		}
	}

	log.Printf("Connecting to MongoDB at: %s", maskMongoURI(mongoURI))

	clientOptions := options.Client().ApplyURI(mongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatal("MongoDB connection error:", err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatal("MongoDB ping error:", err)
	}

	log.Println("Connected to MongoDB")

	setupCollections(client)

	return client
}

// GetCollection returns MongoDB collection
func GetCollection(client *mongo.Client, collectionName string) *mongo.Collection {
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "agensi"
	}
	return client.Database(dbName).Collection(collectionName)
}

// setupCollections ensures all necessary collections and indexes exist
func setupCollections(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "agensi"
	}

	db := client.Database(dbName)

	collections := []string{
		"profiles", "live_sessions", "daily_sales", "monthly_sales",
		"payroll_rules", "commission_rules", "payouts", "investor_ledger",
		"inventory", "content", "notifications",
	}
	for _, collName := range collections {
		db.CreateCollection(ctx, collName)
	}

	// Email index for profiles collection
	profileColl := db.Collection("profiles")
	emailIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := profileColl.Indexes().CreateOne(ctx, emailIndexModel)
	if err != nil {
		log.Printf("Error creating email index: %v", err)
	}

	// At most one open live session per creator: unique on userId while
	// checkOut is still null. Closed sessions fall outside the filter, so a
	// creator can hold any number of finished sessions.
	sessionColl := db.Collection("live_sessions")
	openSessionIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.D{{Key: "checkOut", Value: bson.D{{Key: "$type", Value: "null"}}}}),
	}
	_, err = sessionColl.Indexes().CreateOne(ctx, openSessionIndexModel)
	if err != nil {
		log.Printf("Error creating open session index: %v", err)
	}

	// Lookup indexes for the reporting queries
	dailyColl := db.Collection("daily_sales")
	_, err = dailyColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
	})
	if err != nil {
		log.Printf("Error creating daily sales index: %v", err)
	}

	sessionDateIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
	}
	_, err = sessionColl.Indexes().CreateOne(ctx, sessionDateIndex)
	if err != nil {
		log.Printf("Error creating session date index: %v", err)
	}

	// Payout figures live nested under result, which is what history queries
	// filter on.
	payoutColl := db.Collection("payouts")
	_, err = payoutColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "result.userId", Value: 1}, {Key: "result.period", Value: 1}},
	})
	if err != nil {
		log.Printf("Error creating payout index: %v", err)
	}

	log.Println("Database collections and indexes setup complete")
}

// maskMongoURI masks the password in MongoDB URI for logging
func maskMongoURI(uri string) string {
	if idx := strings.Index(uri, "@"); idx > 0 {
		if colonIdx := strings.LastIndex(uri[:idx], ":"); colonIdx > 0 {
			return uri[:colonIdx+1] + "***" + uri[idx:]
		}
	}
	return uri
}
