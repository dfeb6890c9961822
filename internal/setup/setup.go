// Package setup creates a fresh spaarpot database.
package setup

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/pebbling/spaarpot/internal/db"
	"github.com/pebbling/spaarpot/internal/model"
	"github.com/pebbling/spaarpot/internal/store"
)

// AdminPasswordLength is the length of generated admin passwords.
const AdminPasswordLength = 16

// InitDatabase creates a database at path, applies the schema and
// migrations, seeds the catalog and creates an admin account with a
// generated password. On failure the partial database file is removed.
func InitDatabase(ctx context.Context, path, adminEmail string) (*sql.DB, string, error) {
	email, err := model.NormalizeEmail(adminEmail)
	if err != nil {
		return nil, "", fmt.Errorf("admin email: %w", err)
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, "", err
	}

	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		if path != db.MemoryPath {
			os.Remove(path)
		}
		return nil, "", err
	}

	if err := db.Migrate(database); err != nil {
		return fail(fmt.Errorf("running migrations: %w", err))
	}
	if err := db.SeedCatalog(database); err != nil {
		return fail(fmt.Errorf("seeding catalog: %w", err))
	}

	password, err := GeneratePassword(AdminPasswordLength)
	if err != nil {
		return fail(fmt.Errorf("generating password: %w", err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fail(fmt.Errorf("hashing password: %w", err))
	}

	if _, err := store.CreateUser(ctx, database, email, "Admin", string(hash), model.RoleAdmin); err != nil {
		return fail(fmt.Errorf("creating admin user: %w", err))
	}

	return database, password, nil
}

// PrintResult prints the outcome of InitDatabase for the operator.
func PrintResult(dbPath, email, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized, catalog seeded.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}

// GeneratePassword creates a random password of the given length.
func GeneratePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
