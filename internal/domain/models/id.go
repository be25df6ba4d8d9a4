package models

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID allocates a collision-resistant identifier with a readable entity
// prefix, e.g. "S-3f1c…". UUIDs keep uniqueness under concurrent requests.
func NewID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
