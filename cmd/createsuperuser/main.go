// Command createsuperuser registers an administrator account, or with
// -existing promotes an account that is already registered. It is the only
// way to create one.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Sinanalungal/Image-Generator-Backend/internal/app"
	"github.com/Sinanalungal/Image-Generator-Backend/internal/config"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/cqrs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/errs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/logger"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
	"go.uber.org/zap"
)

func main() {
	var cmd cqrs.CreateAccountCommand
	var existing string
	flag.StringVar(&existing, "existing", "", "promote the registered account with this email instead of creating one")
	flag.StringVar(&cmd.Username, "username", "", "username (3-100 characters)")
	flag.StringVar(&cmd.Email, "email", "", "email address")
	flag.StringVar(&cmd.PhoneNumber, "phone", "", "phone number (10 characters)")
	flag.StringVar(&cmd.Password, "password", os.Getenv("SUPERUSER_PASSWORD"), "password (defaults to $SUPERUSER_PASSWORD)")
	flag.Parse()

	if err := run(cmd, existing); err != nil {
		fmt.Fprintln(os.Stderr, "createsuperuser:", err)
		os.Exit(1)
	}
}

func run(cmd cqrs.CreateAccountCommand, existing string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Options{Name: "createsuperuser", Path: cfg.Log.Path, Debug: cfg.Log.Debug})
	defer log.Sync()

	ctx := context.Background()
	application, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	var account *models.Account
	if existing != "" {
		account, err = application.Accounts.GetAccountByEmail(ctx, cqrs.GetAccountByEmailQuery{Email: existing})
		if err != nil {
			return fmt.Errorf("no account registered as %s: %w", existing, err)
		}
		account, err = application.Commands.PromoteToAdmin(ctx, cqrs.PromoteAccountCommand{AccountID: account.ID})
	} else {
		account, err = application.Commands.CreateSuperuser(ctx, cmd)
	}
	if err != nil {
		return describe(err)
	}

	log.Info("superuser created", zap.Int64("id", account.ID), zap.String("email", account.Email))
	fmt.Printf("Superuser %s <%s> created with id %d.\n", account.Username, account.Email, account.ID)
	return nil
}

// describe renders field errors one per line for the terminal.
func describe(err error) error {
	var v *errs.ValidationError
	if !errors.As(err, &v) {
		return err
	}
	var b strings.Builder
	for _, field := range v.SortedFields() {
		for _, msg := range v.Fields[field] {
			fmt.Fprintf(&b, "\n  %s: %s", field, msg)
		}
	}
	return fmt.Errorf("invalid input:%s", b.String())
}
