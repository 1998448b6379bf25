package utils

import (
	"log"
	"strings"

	"github.com/google/uuid"
)

// GenerateID generates a new UUID v4 string
func GenerateID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		log.Printf("Failed to generate UUID: %v", err)
		return ""
	}
	return id.String()
}

// GenerateName returns a compact record name, 10 hex chars like the desk naming series
func GenerateName() string {
	return strings.ReplaceAll(GenerateID(), "-", "")[:10]
}
