package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/admitra/admitra-backend/internal/config"
	"github.com/admitra/admitra-backend/internal/database"
	"github.com/admitra/admitra-backend/internal/logger"
	"github.com/admitra/admitra-backend/internal/model"
	"github.com/admitra/admitra-backend/internal/repository"
	"github.com/admitra/admitra-backend/internal/service"
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

	staffService := service.NewStaffService(repository.NewStaffRepository(pool))
	authService := service.NewAuthService(cfg, nil)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Staff Account ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	fmt.Print("Enter Role (admin/proctor): ")
	roleInput, _ := reader.ReadString('\n')
	var role model.StaffRole
	switch strings.ToLower(strings.TrimSpace(roleInput)) {
	case "admin":
		role = model.StaffRoleAdmin
	case "proctor":
		role = model.StaffRoleProctor
	default:
		fmt.Println("Error: Role must be admin or proctor")
		return
	}

	fmt.Print("Enter Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	password := strings.TrimSpace(string(passwordBytes))
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	hash, err := authService.HashPassword(password)
	if err != nil {
		fmt.Printf("Error hashing password: %v\n", err)
		return
	}

	staff := &model.Staff{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	if err := staffService.Create(ctx, staff); err != nil {
		fmt.Printf("Error creating staff account: %v\n", err)
		return
	}

	fmt.Printf("Staff account created: id=%d role=%s\n", staff.ID, staff.Role)
}
