package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Digitalmustiii/novaauthentication/internal/bootstrap"
	domainauth "github.com/Digitalmustiii/novaauthentication/internal/domain/auth"
	apperrors "github.com/Digitalmustiii/novaauthentication/internal/errors"
)

const defaultCommandTimeout = time.Minute

// readPassword reads a single line from r. Only the line terminator is
// stripped; surrounding spaces are part of the password.
func readPassword(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", errors.New("no password on stdin")
	}
	return strings.TrimRight(sc.Text(), "\r"), nil
}

func printUser(w io.Writer, u *domainauth.PublicUser) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(u)
}

func runHashPassword(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	pw, err := readPassword(cmdCtx.Stdin)
	if err != nil {
		return err
	}
	hasher, err := bootstrap.BuildHasher(cmdCtx.Config.Auth.Password)
	if err != nil {
		return err
	}
	hash, err := hasher.Hash(pw)
	if err != nil {
		return err
	}
	return writef(cmdCtx.Stdout, "%s\n", hash)
}

func runCreateUser(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pw, err := readPassword(cmdCtx.Stdin)
	if err != nil {
		return err
	}
	in := domainauth.SignUpInput{Name: *name, Email: *email, Password: pw}.Normalize()
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return errors.New("-name, -email and a password on stdin are required")
	}

	hasher, err := bootstrap.BuildHasher(cmdCtx.Config.Auth.Password)
	if err != nil {
		return err
	}
	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return err
	}

	return withStore(cmdCtx, func(ctx context.Context, h *storeHandle) error {
		u, createErr := h.Users.CreateUser(ctx, domainauth.NewUser{Name: in.Name, Email: in.Email, PasswordHash: hash})
		if createErr != nil {
			return fmt.Errorf("create user: %w", createErr)
		}
		cmdCtx.Logger.Info("user created", "user_id", u.ID)
		return printUser(cmdCtx.Stdout, u.Public())
	})
}

func runFindUser(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("find-user", flag.ContinueOnError)
	email := fs.String("email", "", "email address (exact match)")
	id := fs.String("id", "", "user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*email == "") == (*id == "") {
		return errors.New("exactly one of -email or -id is required")
	}

	return withStore(cmdCtx, func(ctx context.Context, h *storeHandle) error {
		var (
			u   *domainauth.User
			err error
		)
		if *email != "" {
			u, err = h.Users.FindUserByEmail(ctx, strings.TrimSpace(*email))
		} else {
			u, err = h.Users.FindUserByID(ctx, strings.TrimSpace(*id))
		}
		if apperrors.IsNotFound(err) || (err == nil && u == nil) {
			return errors.New("user not found")
		}
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		return printUser(cmdCtx.Stdout, u.Public())
	})
}

func runCacheEvict(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("cache-evict", flag.ContinueOnError)
	id := fs.String("id", "", "user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return errors.New("-id is required")
	}

	return withStore(cmdCtx, func(ctx context.Context, h *storeHandle) error {
		if h.Cache == nil {
			return errors.New("user cache is disabled (set CACHE_USER_ENABLED=true)")
		}
		if err := h.Cache.Evict(ctx, strings.TrimSpace(*id)); err != nil {
			return fmt.Errorf("evict user: %w", err)
		}
		cmdCtx.Logger.Info("user evicted from cache", "user_id", *id)
		return writef(cmdCtx.Stdout, "evicted %s\n", strings.TrimSpace(*id))
	})
}
