package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/verte-zerg/typechallenge/internal/logger"
)

// LogNotifier records that credentials were issued. The password is never logged.
type LogNotifier struct{}

// Deliver implements Notifier.
func (LogNotifier) Deliver(ctx context.Context, creds Credentials) error {
	logger.FromContext(ctx).Info("credentials issued",
		slog.String("component", "auth"),
		slog.String("user", creds.Username),
		slog.String("email", creds.Email),
	)
	return nil
}

// WriterNotifier prints credentials once, for terminal registration.
type WriterNotifier struct {
	W io.Writer
}

// Deliver implements Notifier.
func (n WriterNotifier) Deliver(_ context.Context, creds Credentials) error {
	_, err := fmt.Fprintf(n.W, "Welcome, %s!\nUsername: %s\nPassword: %s\nKeep these credentials safe; the password is not shown again.\n",
		creds.Name, creds.Username, creds.Password)
	return err
}
