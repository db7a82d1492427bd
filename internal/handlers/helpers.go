package handlers

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/gatherly/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

func isValidEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// parseDate accepts RFC3339 timestamps and bare dates, the two shapes
// clients send for startDate/endDate/arrivalTime style fields.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// parseUUIDList parses a list of reference ids, reporting the first bad one.
func parseUUIDList(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		id, err := parseUUID(value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// isDuplicateKey covers the postgres driver's translated error and sqlite's
// raw unique-constraint message from the test harness.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}

// applyQueryFilters adds equality filters for whitelisted query parameters.
// The original backend passed the raw query straight to the document store;
// against SQL only known columns are accepted.
func applyQueryFilters(query *gorm.DB, params map[string]string, allowed map[string]string) *gorm.DB {
	for param, column := range allowed {
		if value, ok := params[param]; ok && value != "" {
			query = query.Where(column+" = ?", value)
		}
	}
	return query
}

// findUsersByID resolves a set of reference ids to user rows, failing with
// gorm.ErrRecordNotFound when any id does not exist.
func findUsersByID(db *gorm.DB, ids []uuid.UUID) ([]models.User, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	var users []models.User
	if err := db.Find(&users, "id IN ?", unique).Error; err != nil {
		return nil, err
	}
	if len(users) != len(unique) {
		return nil, gorm.ErrRecordNotFound
	}
	return users, nil
}
