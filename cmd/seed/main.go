package main

import (
	"context"
	"log"
	"time"

	"sdr-backend/internal/auth"
	"sdr-backend/internal/config"
	"sdr-backend/internal/db"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.AdminPassword == "" {
		log.Fatal("ADMIN_PASSWORD must be set to seed the admin user")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatal(err)
	}

	now := time.Now().In(cfg.Timezone)
	update := bson.M{
		"$set": bson.M{
			"password_hash": hash,
			"role":          auth.RoleAdmin,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID().Hex(),
			"created_at": now,
		},
	}

	res, err := cols.Users.UpdateOne(ctx,
		bson.M{"username": cfg.AdminUser},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Fatal(err)
	}

	if res.UpsertedCount > 0 {
		log.Printf("admin user %q created", cfg.AdminUser)
	} else {
		log.Printf("admin user %q updated", cfg.AdminUser)
	}
}
