package seeders

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/mongo"
)

// MainSeeder coordinates the individual seeders
type MainSeeder struct {
	db *mongo.Database
}

func NewMainSeeder(db *mongo.Database) *MainSeeder {
	return &MainSeeder{db: db}
}

func (s *MainSeeder) SeedAll(ctx context.Context) error {
	log.Println("Starting database seeding...")

	if err := NewAdminSeeder(s.db).SeedAdmin(ctx); err != nil {
		return err
	}

	log.Println("Database seeding completed")
	return nil
}

func (s *MainSeeder) SeedAdminOnly(ctx context.Context) error {
	return NewAdminSeeder(s.db).SeedAdmin(ctx)
}
