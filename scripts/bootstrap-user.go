package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/term"

	"github.com/alphabank/alphabank-api/internal/auth"
	"github.com/alphabank/alphabank-api/internal/cpf"
	"github.com/alphabank/alphabank-api/internal/model"
	"github.com/alphabank/alphabank-api/internal/repository"
)

type output struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		jwtSecret   = flag.String("jwt-secret", os.Getenv("JWT_SECRET"), "Token signing secret (at least 32 bytes)")
		email       = flag.String("email", "admin@alphabank.local", "User email")
		fullName    = flag.String("name", "AlphaBank Admin", "Full name")
		cpfInput    = flag.String("cpf", "", "CPF (digits or formatted)")
		birthDate   = flag.String("birth-date", "1990-01-01", "Birth date (YYYY-MM-DD)")
		ttl         = flag.Duration("ttl", 24*time.Hour, "Token lifetime")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fail("DATABASE_URL is required")
	}
	if !cpf.Valid(*cpfInput) {
		fail("a valid -cpf is required")
	}
	birth, err := model.ParseDate(*birthDate)
	if err != nil {
		fail("invalid -birth-date:", err)
	}

	issuer, err := auth.NewTokenIssuer([]byte(*jwtSecret), *ttl)
	if err != nil {
		fail("token issuer:", err)
	}

	password, err := readPassword()
	if err != nil {
		fail("read password:", err)
	}
	if len(password) < 6 {
		fail("password must be at least 6 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fail("hash password:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL, repository.Options{MaxConns: 1})
	if err != nil {
		fail("connect database:", err)
	}
	defer repo.Close()

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		FullName:     strings.TrimSpace(*fullName),
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		PasswordHash: hash,
		CPF:          cpf.Normalize(*cpfInput),
		BirthDate:    birth,
		CreatedAt:    now,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			fail("email already registered:", user.Email)
		case errors.Is(err, repository.ErrCPFExists):
			fail("cpf already registered")
		default:
			fail("create user:", err)
		}
	}

	token, err := issuer.Issue(user.ID, now)
	if err != nil {
		fail("issue token:", err)
	}

	out := output{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: now.Add(issuer.TTL()).Format(time.RFC3339),
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fail("invalid format; use plain or json")
	}
}

// readPassword prompts on the terminal without echo, or reads one line
// from stdin when it is not a terminal.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func fail(args ...any) {
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}
