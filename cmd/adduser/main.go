package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"expense_manager/internal/app/service"
	"expense_manager/internal/common/security"
	"expense_manager/internal/domain/model"
	"expense_manager/internal/domain/repository"
	"expense_manager/internal/platform/config"
	"expense_manager/internal/platform/database"

	"golang.org/x/term"
)

// adduser provisions accounts from the shell, used to seed the first admin
// before any token can be minted.
func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username")
	role := fs.String("role", model.RoleUser, "Role: user or admin")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> [-role user|admin] [-password <password>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: user")
	}
	if !model.ValidRole(*role) {
		return fmt.Errorf("invalid role %q, must be %q or %q", *role, model.RoleUser, model.RoleAdmin)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout) // Print newline after password input
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	cfg := config.Load()

	db, err := database.Connect(cfg.DBConnStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Bootstrap(ctx, db); err != nil {
		return fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	issuer := security.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	authService := service.NewAuthService(repository.NewPgUserRepository(db), issuer)

	user, err := authService.CreateUser(ctx, service.CreateUserRequest{
		Username: *username,
		Password: password,
		Role:     *role,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %q (role %s) created with ID %s\n", user.Username, user.Role, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Read without echo when stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
