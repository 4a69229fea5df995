package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/riyajha981219/squareboat-job-portal/internal/auth"
	"github.com/riyajha981219/squareboat-job-portal/internal/config"
	"github.com/riyajha981219/squareboat-job-portal/internal/database"
)

// Seeds an initial account with a generated one-time password. Meant for
// bootstrapping a recruiter on a fresh deployment.
func main() {
	var (
		name    = flag.String("name", "", "account display name (required)")
		email   = flag.String("email", "", "account email (required)")
		role    = flag.String("role", string(database.RoleRecruiter), "account role: candidate or recruiter")
		dbHost  = flag.String("db-host", "", "database host (optional, defaults to DATABASE_HOST)")
		dbPort  = flag.Int("db-port", 0, "database port (optional, defaults to DATABASE_PORT)")
		dbName  = flag.String("db-name", "", "database name (optional, defaults to POSTGRES_DB)")
		dbUser  = flag.String("db-user", "", "database user (optional, defaults to POSTGRES_USER)")
		dbPass  = flag.String("db-password", "", "database password (optional, defaults to POSTGRES_PASSWORD)")
		sslMode = flag.String("db-sslmode", "", "database sslmode (optional, defaults to DATABASE_SSLMODE)")
	)
	flag.Parse()

	n := strings.TrimSpace(*name)
	e := strings.TrimSpace(strings.ToLower(*email))
	r := database.Role(strings.TrimSpace(*role))
	if n == "" {
		log.Fatal("missing required flag: --name")
	}
	if e == "" {
		log.Fatal("missing required flag: --email")
	}
	if r != database.RoleCandidate && r != database.RoleRecruiter {
		log.Fatalf("invalid role %q: must be candidate or recruiter", r)
	}

	dbCfg, err := loadDatabaseConfig(*dbHost, *dbPort, *dbName, *dbUser, *dbPass, *sslMode)
	if err != nil {
		log.Fatalf("load database config: %v", err)
	}

	db, err := database.InitDatabase(dbCfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	if err := db.AutoMigrate(&database.User{}, &database.Job{}, &database.Application{}); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	var existing database.User
	switch err := db.Where("email = ?", e).First(&existing).Error; {
	case err == nil:
		log.Fatalf("account %q already exists", e)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		log.Fatalf("query account: %v", err)
	}

	password, err := generateRandomPassword(24)
	if err != nil {
		log.Fatalf("generate password: %v", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	user := database.User{
		Name:         n,
		Email:        e,
		PasswordHash: hashed,
		Role:         r,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("create account: %v", err)
	}

	fmt.Printf("Created %s account:\n", r)
	fmt.Printf("Email: %s\n", e)
	fmt.Printf("Password: %s\n", password)
	fmt.Printf("Note: this password is shown only once. Log in and change it.\n")
}

func loadDatabaseConfig(host string, port int, name, user, password, sslmode string) (config.DatabaseConfig, error) {
	if strings.TrimSpace(host) == "" {
		host = os.Getenv("DATABASE_HOST")
	}
	if port <= 0 {
		if env := strings.TrimSpace(os.Getenv("DATABASE_PORT")); env != "" {
			p, err := strconv.Atoi(env)
			if err != nil {
				return config.DatabaseConfig{}, fmt.Errorf("parse DATABASE_PORT: %w", err)
			}
			port = p
		}
	}
	if strings.TrimSpace(name) == "" {
		name = os.Getenv("POSTGRES_DB")
	}
	if strings.TrimSpace(user) == "" {
		user = os.Getenv("POSTGRES_USER")
	}
	if strings.TrimSpace(password) == "" {
		password = os.Getenv("POSTGRES_PASSWORD")
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = os.Getenv("DATABASE_SSLMODE")
	}

	if strings.TrimSpace(host) == "" {
		host = "localhost"
	}
	if port <= 0 {
		port = 5432
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = "disable"
	}
	if strings.TrimSpace(name) == "" {
		return config.DatabaseConfig{}, errors.New("database name is required (POSTGRES_DB)")
	}
	if strings.TrimSpace(user) == "" {
		return config.DatabaseConfig{}, errors.New("database user is required (POSTGRES_USER)")
	}
	if strings.TrimSpace(password) == "" {
		return config.DatabaseConfig{}, errors.New("database password is required (POSTGRES_PASSWORD)")
	}

	return config.DatabaseConfig{
		Host:     host,
		Port:     port,
		Name:     name,
		User:     user,
		Password: password,
		SSLMode:  sslmode,
	}, nil
}

func generateRandomPassword(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 24
	}
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
