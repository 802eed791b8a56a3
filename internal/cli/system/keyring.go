package system

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/cli"
	"github.com/julianstephens/salonlux/internal/keyring"
	"github.com/julianstephens/salonlux/internal/storage/postgres"
)

func lookupSecret(name string) (keyring.Secret, error) {
	s, ok := keyring.Secrets[name]
	if !ok {
		names := make([]string, 0, len(keyring.Secrets))
		for n := range keyring.Secrets {
			names = append(names, n)
		}
		sort.Strings(names)
		return keyring.Secret{}, errors.Newf("unknown secret %q (expected one of %s)", name, strings.Join(names, ", "))
	}
	return s, nil
}

// KeyringSetCmd stores a secret in the OS keyring.
type KeyringSetCmd struct {
	Name  string `arg:"" help:"Secret to store: db-connection, redis-password or advisor-key."`
	Value string `arg:"" optional:"" help:"Secret value. Prompted for when omitted."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	secret, err := lookupSecret(cmd.Name)
	if err != nil {
		return err
	}

	value := cmd.Value
	if value == "" {
		err := huh.NewInput().
			Title(secret.Label).
			EchoMode(huh.EchoModePassword).
			Value(&value).
			Run()
		if err != nil {
			return errors.Wrap(err, "failed to read secret")
		}
	}

	out := ctx.Stdout()
	if secret == keyring.DatabaseConnection {
		if _, err := postgres.ValidateConnString(value); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return errors.Wrap(err, "invalid connection string")
			}
			fmt.Fprintln(out, "⚠️  Warning: Connection string contains embedded credentials.")
			fmt.Fprintln(out, "   It will be stored as-is in the encrypted OS keyring.")
		}
	}

	if err := keyring.Set(secret, value); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ %s stored in OS keyring\n", secret.Label)
	return nil
}

// KeyringDeleteCmd removes a secret from the OS keyring.
type KeyringDeleteCmd struct {
	Name string `arg:"" help:"Secret to delete: db-connection, redis-password or advisor-key."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	secret, err := lookupSecret(cmd.Name)
	if err != nil {
		return err
	}
	if err := keyring.Delete(secret); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.Newf("no %s found in keyring", secret.Label)
		}
		return err
	}
	fmt.Fprintf(ctx.Stdout(), "✓ %s deleted from OS keyring\n", secret.Label)
	return nil
}

// KeyringStatusCmd reports keyring availability and which secrets are set.
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()
	if !keyring.IsAvailable() {
		fmt.Fprintln(out, "❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	fmt.Fprintln(out, "✓ OS keyring is available")

	names := make([]string, 0, len(keyring.Secrets))
	for n := range keyring.Secrets {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		_, err := keyring.Get(keyring.Secrets[name])
		switch {
		case err == nil:
			fmt.Fprintf(out, "  ✓ %s is stored\n", name)
		case errors.Is(err, keyring.ErrNotFound):
			fmt.Fprintf(out, "  ℹ %s is not stored\n", name)
		default:
			fmt.Fprintf(out, "  ❌ %s: %v\n", name, err)
		}
	}
	return nil
}
