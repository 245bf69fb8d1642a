package sessions

import (
	"fmt"
	"strings"
)

const tableWidth = 100

// FormatTable renders sessions as a fixed-width table for the terminal.
func FormatTable(list []Session) string {
	if len(list) == 0 {
		return "No sessions found."
	}

	userWidth := 10
	for _, s := range list {
		userWidth = max(userWidth, len(s.UserID))
	}

	rule := strings.Repeat("=", tableWidth)
	var sb strings.Builder
	sb.WriteString("\n" + rule + "\n")
	fmt.Fprintf(&sb, "%-40s %-*s %-10s %-20s\n", "Session ID", userWidth, "User", "Messages", "Last Updated")
	sb.WriteString(rule + "\n")
	for _, s := range list {
		updated := "Unknown"
		if !s.UpdatedAt.IsZero() {
			updated = s.UpdatedAt.Local().Format("2006-01-02 15:04:05")
		}
		user := s.UserID
		if user == "" {
			user = "Unknown"
		}
		fmt.Fprintf(&sb, "%-40s %-*s %-10d %-20s\n", truncateID(s.ID), userWidth, user, s.MessageCount, updated)
	}
	sb.WriteString(rule + "\n")
	return sb.String()
}

func truncateID(id string) string {
	if len(id) > 37 {
		return id[:37] + "..."
	}
	return id
}
