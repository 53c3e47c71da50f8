// Command seed loads sample data into MongoDB.
//
//	seed               replace users and products with the samples
//	seed -destroy      delete users and products
//	seed -reset-admin  create or restore admin@example.com / 123456
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"collect-and-cruise/internal/config"
	"collect-and-cruise/internal/services"
	"collect-and-cruise/internal/store/mongostore"
)

func main() {
	destroy := flag.Bool("destroy", false, "delete users and products")
	resetAdmin := flag.Bool("reset-admin", false, "create or restore the default admin account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.StoreDriver != config.DriverMongo {
		log.Fatal("seed needs STORE_DRIVER=mongo")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := mongostore.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB)
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		log.Fatal(err)
	}
	st := mongostore.New(db)

	switch {
	case *resetAdmin:
		admin, err := services.ResetAdmin(ctx, st.Users)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Admin %s reset, password %s", admin.Email, services.SeedPassword)
	case *destroy:
		if err := services.DestroyData(ctx, st); err != nil {
			log.Fatal(err)
		}
		log.Println("Data Destroyed!")
	default:
		if err := services.ImportSampleData(ctx, st); err != nil {
			log.Fatal(err)
		}
		log.Println("Data Imported!")
	}
}
