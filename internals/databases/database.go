package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bookworm_backend/internals/configs"
	authorModel "bookworm_backend/internals/features/catalog/authors/model"
	bookModel "bookworm_backend/internals/features/catalog/books/model"
	fineModel "bookworm_backend/internals/features/lending/fines/model"
	loanModel "bookworm_backend/internals/features/lending/loans/model"
	memberModel "bookworm_backend/internals/features/membership/members/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("[INFO] Connecting to PostgreSQL...")

	sslmode := configs.GetEnv("DB_SSLMODE", "require")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=bookworm&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		sslmode,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // plays nice with PgBouncer transaction pooling
	}), &gorm.Config{
		Logger: configs.NewGormLogger(),
	})
	if err != nil {
		log.Fatalf("[ERROR] DB connect failed: %v", err)
	}
	DB = db
	log.Println("[INFO] DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("[WARN] pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// Migrate keeps the relational schema in step with the models.
func Migrate() {
	if err := DB.AutoMigrate(
		&authorModel.AuthorModel{},
		&bookModel.BookModel{},
		&memberModel.MemberModel{},
		&loanModel.LoanModel{},
		&fineModel.FineModel{},
		&fineModel.PaymentModel{},
	); err != nil {
		log.Fatalf("[ERROR] migrate failed: %v", err)
	}
	log.Println("[INFO] schema migrated.")
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
