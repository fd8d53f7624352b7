package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStore_SeedAndQuery(t *testing.T) {
	s := NewStore(t)

	Exec(t, s,
		`INSERT INTO broker (b_id, b_name) VALUES (1, 'Alice')`,
		`INSERT INTO broker (b_id, b_name) VALUES (2, 'Bob')`,
	)

	assert.Equal(t, "Bob", QueryString(t, s, `SELECT b_name FROM broker WHERE b_id = ?`, 2))
	assert.Equal(t, int64(2), QueryInt(t, s, `SELECT count(*) FROM broker`))
}
