package seeders

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/psikotes-ai/psikotes_api/model"
	"github.com/psikotes-ai/psikotes_api/shared"
)

// AdminSeeder handles seeding the initial admin account
type AdminSeeder struct {
	db *mongo.Database
}

func NewAdminSeeder(db *mongo.Database) *AdminSeeder {
	return &AdminSeeder{db: db}
}

func (s *AdminSeeder) SeedAdmin(ctx context.Context) error {
	users := s.db.Collection("users")

	count, err := users.CountDocuments(ctx, bson.M{"role": shared.RoleAdmin})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("Admin user already exists, skipping admin seeding")
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@psikotes.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	id, _ := uuid.NewV7()

	now := time.Now()
	admin := model.User{
		ID:         id.String(),
		Email:      email,
		Username:   "admin",
		Password:   string(hashedPassword),
		Role:       shared.RoleAdmin,
		Membership: shared.MembershipMember,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := users.InsertOne(ctx, &admin); err != nil {
		log.Printf("Error creating admin user: %v", err)
		return err
	}

	log.Printf("Created admin user: %s", admin.Email)
	return nil
}
