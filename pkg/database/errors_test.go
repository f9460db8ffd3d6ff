package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestConstraintClassification(t *testing.T) {
	unique := fmt.Errorf("create user: %w", &pq.Error{Code: "23505"})
	foreign := fmt.Errorf("delete events: %w", &pq.Error{Code: "23503"})

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsForeignKeyViolation(unique))
	assert.True(t, IsForeignKeyViolation(foreign))
	assert.False(t, IsUniqueViolation(foreign))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsForeignKeyViolation(nil))
}
