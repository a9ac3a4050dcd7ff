// Package airflow adapts the airflow command-line surface: schema
// migrations, user management, connection management, and variable import.
// All calls go through an injected Runner; nothing here talks to the
// metadata database directly.
package airflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dataservices/airflow-bootstrap/internal/catalog"
	"github.com/dataservices/airflow-bootstrap/internal/execx"
)

const defaultBinary = "airflow"

// Client drives the airflow CLI.
type Client struct {
	runner execx.Runner
	binary string
}

func New(runner execx.Runner) *Client {
	return &Client{runner: runner, binary: defaultBinary}
}

// InitDB runs the non-destructive schema initializer. Safe on an
// already-initialized store.
func (c *Client) InitDB(ctx context.Context) error {
	if _, err := c.runner.Run(ctx, c.binary, "db", "init"); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// UpgradeDB applies pending schema migrations. No-op when already current.
func (c *Client) UpgradeDB(ctx context.Context) error {
	if _, err := c.runner.Run(ctx, c.binary, "db", "upgrade"); err != nil {
		return fmt.Errorf("upgrading schema: %w", err)
	}
	return nil
}

// CreateUser registers an account. The CLI errors when the username already
// exists; that error propagates unchanged — callers wanting idempotence
// check ListUsernames first.
func (c *Client) CreateUser(ctx context.Context, account catalog.Account) error {
	_, err := c.runner.Run(ctx, c.binary, "users", "create",
		"--role", account.Role,
		"--username", account.Username,
		"--email", account.Email,
		"--firstname", account.FirstName,
		"--lastname", account.LastName,
		"--password", account.Password,
	)
	if err != nil {
		return fmt.Errorf("creating user %s: %w", account.Username, err)
	}
	return nil
}

// ListUsernames returns the usernames currently registered.
func (c *Client) ListUsernames(ctx context.Context) ([]string, error) {
	result, err := c.runner.Run(ctx, c.binary, "users", "list", "--output", "json")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	var rows []struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(result.Stdout, &rows); err != nil {
		return nil, fmt.Errorf("parsing user list: %w", err)
	}

	usernames := make([]string, 0, len(rows))
	for _, row := range rows {
		usernames = append(usernames, row.Username)
	}
	return usernames, nil
}

// DeleteConnection removes a connection record. A missing record is not an
// error: the sync flow deletes blindly before re-adding.
func (c *Client) DeleteConnection(ctx context.Context, id string) error {
	result, err := c.runner.Run(ctx, c.binary, "connections", "delete", id)
	if err != nil {
		if result != nil && isNotFound(result.Stderr) {
			zerolog.Ctx(ctx).Debug().Str("conn_id", id).Msg("Connection did not exist, nothing to delete")
			return nil
		}
		return fmt.Errorf("deleting connection %s: %w", id, err)
	}
	return nil
}

// AddConnection registers a connection record of type http.
func (c *Client) AddConnection(ctx context.Context, conn catalog.Connection) error {
	args := []string{"connections", "add", conn.ID,
		"--conn-type", "http",
		"--conn-host", conn.Host,
		"--conn-schema", conn.Schema,
	}
	if conn.Password != "" {
		args = append(args, "--conn-password", conn.Password)
	}
	if _, err := c.runner.Run(ctx, c.binary, args...); err != nil {
		return fmt.Errorf("adding connection %s: %w", conn.ID, err)
	}
	return nil
}

// SyncConnections deletes and recreates every record in the catalog, in
// order. After success the store holds exactly the declared records. There
// is no partial-failure recovery: an error mid-catalog leaves earlier
// records updated and later ones stale.
func (c *Client) SyncConnections(ctx context.Context, conns []catalog.Connection) error {
	logger := zerolog.Ctx(ctx)
	for _, conn := range conns {
		if err := c.DeleteConnection(ctx, conn.ID); err != nil {
			return err
		}
		if err := c.AddConnection(ctx, conn); err != nil {
			return err
		}
		logger.Info().Str("conn_id", conn.ID).Str("host", conn.Host).Msg("Connection registered")
	}
	return nil
}

// ImportVariables bulk-loads the variable bundle at path. Overwrite
// semantics belong to the CLI.
func (c *Client) ImportVariables(ctx context.Context, path string) error {
	if _, err := c.runner.Run(ctx, c.binary, "variables", "import", path); err != nil {
		return fmt.Errorf("importing variables from %s: %w", path, err)
	}
	return nil
}

// GenerateVariables runs the derived-variable script. What the script
// computes is opaque to the bootstrap.
func (c *Client) GenerateVariables(ctx context.Context, script string) error {
	if _, err := c.runner.Run(ctx, "python3", script); err != nil {
		return fmt.Errorf("generating derived variables: %w", err)
	}
	return nil
}

func isNotFound(stderr []byte) bool {
	msg := strings.ToLower(string(stderr))
	return strings.Contains(msg, "not found") || strings.Contains(msg, "did not find")
}
