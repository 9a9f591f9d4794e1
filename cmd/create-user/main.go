package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/stemsi/schoolhub-backend/internal/ability"
	"github.com/stemsi/schoolhub-backend/internal/config"
	"github.com/stemsi/schoolhub-backend/internal/database"
	"github.com/stemsi/schoolhub-backend/internal/logger"
	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/repository"
	"github.com/stemsi/schoolhub-backend/internal/service"
	"github.com/stemsi/schoolhub-backend/internal/validator"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	// Only account creation is used, so no session or token services.
	authService := service.NewAuthService(repository.NewUserRepository(pool), nil, nil, cfg.BcryptCost, log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label)
		v, _ := reader.ReadString('\n')
		return strings.TrimSpace(v)
	}

	fmt.Println("=== Create New User ===")

	firstName := prompt("Enter First Name: ")
	lastName := prompt("Enter Last Name: ")
	if firstName == "" || lastName == "" {
		fmt.Println("Error: First and last name are required")
		return
	}

	email := prompt("Enter Email: ")
	if !validator.IsEmail(email) {
		fmt.Println("Error: A valid email is required")
		return
	}

	login := prompt("Enter Login: ")
	if len(login) < 3 {
		fmt.Println("Error: Login must be at least 3 characters")
		return
	}

	role := ability.Role(strings.ToUpper(prompt("Enter Role (ADMIN, TEACHER, STUDENT) [ADMIN]: ")))
	if role == "" {
		role = ability.RoleAdmin
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // Newline after password input
	if err != nil {
		fmt.Println("Error reading password")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	user := &model.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Login:     login,
		Role:      role,
	}

	if err := authService.CreateAccount(ctx, user, string(bytePassword)); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			fmt.Printf("Error: unknown role %q\n", role)
		case errors.Is(err, service.ErrWeakPassword):
			fmt.Printf("Error: password must be at least %d characters and at most %d bytes, with an uppercase letter, a lowercase letter and a digit\n",
				validator.PasswordMinLength, validator.PasswordMaxByteSize)
		case errors.Is(err, service.ErrAccountExists):
			fmt.Println("Error: email or login already in use")
		default:
			log.Fatal().Err(err).Msg("Failed to create user")
		}
		return
	}

	fmt.Printf("\nSuccess! %s '%s %s' (%s) created with ID: %d\n", user.Role, user.FirstName, user.LastName, user.Email, user.ID)
}
