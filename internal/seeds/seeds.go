// Package seeds inserts the demo accounts used by local development and
// the hosted preview.
package seeds

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/AirLinkPros/airlink-backend/internal/auth"
)

// DefaultPassword is used for demo accounts when no password is given.
const DefaultPassword = "airlink-demo"

// UserStore is the subset of auth.Store the seeder needs.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*auth.User, error)
	InsertUser(ctx context.Context, email, name, passwordHash, role string) (*auth.User, error)
}

type Account struct {
	Email string
	Name  string
	Role  string
}

// DemoAccounts mirror the contractors and homeowners in the demo catalog.
var DemoAccounts = []Account{
	{Email: "alex@airlinkpros.com", Name: "Alex Contractor", Role: auth.RoleContractor},
	{Email: "sam@brightspark.example", Name: "Sam R.", Role: auth.RoleContractor},
	{Email: "jordan@peakroofing.example", Name: "Jordan P.", Role: auth.RoleContractor},
	{Email: "lindsey@example.com", Name: "Lindsey", Role: auth.RoleHomeowner},
	{Email: "priya@example.com", Name: "Priya", Role: auth.RoleHomeowner},
}

func SeedAll(ctx context.Context, store UserStore, password string) error {
	if password == "" {
		password = DefaultPassword
	}
	n, err := SeedUsers(ctx, store, DemoAccounts, password)
	if err != nil {
		return err
	}
	log.Printf("✅ Seeded %d demo accounts", n)
	return nil
}

// SeedUsers inserts accounts that do not exist yet and reports how many
// were created. Existing emails are skipped.
func SeedUsers(ctx context.Context, store UserStore, accounts []Account, password string) (int, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), auth.BcryptCost)
	if err != nil {
		return 0, fmt.Errorf("hash seed password: %w", err)
	}

	created := 0
	for _, a := range accounts {
		_, err := store.FindUserByEmail(ctx, a.Email)
		if err == nil {
			log.Printf("⚠️ Account exists, skipping: %s", a.Email)
			continue
		} else if !errors.Is(err, auth.ErrUserNotFound) {
			return created, fmt.Errorf("DB error on account %s: %w", a.Email, err)
		}

		if _, err := store.InsertUser(ctx, a.Email, a.Name, string(hashed), a.Role); err != nil {
			if errors.Is(err, auth.ErrEmailTaken) {
				continue
			}
			return created, fmt.Errorf("failed to create account %s: %w", a.Email, err)
		}
		created++
	}
	return created, nil
}
