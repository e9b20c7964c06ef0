package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextCallAt(t *testing.T) {
	call := Call{
		NextCallDate: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		NextCallTime: "10:30:00",
	}
	at, err := call.NextCallAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 12, 10, 30, 0, 0, time.UTC), at)
}

func TestNextCallAtRejectsMalformedTime(t *testing.T) {
	call := Call{
		NextCallDate: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		NextCallTime: "25:99",
	}
	_, err := call.NextCallAt()
	assert.ErrorIs(t, err, ErrInvalidInput)
}
