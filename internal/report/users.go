package report

import (
	"fmt"
	"io"

	"github.com/verte-zerg/typechallenge/internal/model"
)

// RenderUsers writes one row per registered account. Password hashes are never shown.
func RenderUsers(w io.Writer, users []model.User) error {
	if len(users) == 0 {
		_, err := fmt.Fprintln(w, "No registered users.")
		return err
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.Username, u.Name, u.Email, u.CreatedAt.Local().Format(completedAtLayout)})
	}
	for _, line := range formatTable([]string{"Username", "Name", "Email", "Registered"}, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write users: %w", err)
		}
	}
	return nil
}
