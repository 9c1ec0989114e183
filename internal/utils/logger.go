package utils

import (
	"log"
	"strings"
)

// LogEvent writes one key=value line per domain event. Keep messages
// summarized; proof files, tokens and passwords never belong in the log.
func LogEvent(requestID, module, action, message string) {
	rid := strings.TrimSpace(requestID)
	if rid == "" {
		rid = "-"
	}
	log.Printf("[%s] action=%s request_id=%s msg=%s",
		strings.ToUpper(strings.TrimSpace(module)), action, rid, message)
}
