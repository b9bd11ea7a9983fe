package api

import (
	"fmt"
	"sort"
	"strings"
)

// EntityOrderFields maps the externally visible orderBy names of each entity
// to their storage columns.
var EntityOrderFields = map[string]map[string]string{
	"transfers": {
		"id":        "id",
		"value":     "value",
		"timestamp": "block_timestamp",
		"logIndex":  "log_index",
	},
	"accounts": {
		"id":            "id",
		"totalSent":     "total_sent",
		"totalReceived": "total_received",
		"sentCount":     "sent_count",
		"receivedCount": "received_count",
	},
}

// OrderByColumn resolves an orderBy parameter to a storage column. Empty
// input falls back to the entity key.
func OrderByColumn(entity string, orderBy string) (string, error) {
	fields, exists := EntityOrderFields[entity]
	if !exists {
		return "", fmt.Errorf("unknown entity: %s", entity)
	}
	if orderBy == "" {
		return "id", nil
	}
	column, ok := fields[orderBy]
	if !ok {
		return "", fmt.Errorf("invalid orderBy field '%s' for entity '%s'. Valid fields are: %s",
			orderBy, entity, strings.Join(validOrderFields(fields), ", "))
	}
	return column, nil
}

// ValidateOrderDirection accepts empty, asc or desc (case-insensitive).
func ValidateOrderDirection(orderDirection string) error {
	switch strings.ToLower(orderDirection) {
	case "", "asc", "desc":
		return nil
	default:
		return fmt.Errorf("invalid orderDirection '%s', must be 'asc' or 'desc'", orderDirection)
	}
}

func validOrderFields(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
