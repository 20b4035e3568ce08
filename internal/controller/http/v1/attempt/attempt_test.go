package attempt

import (
	"testing"

	"presencia/backend/internal/attendance/workflow"
	"presencia/backend/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavedResponseCarriesClosingDelay(t *testing.T) {
	entry := entity.LogEntry{
		UserID: 7,
		Type:   entity.TypeCheckIn,
	}

	payload := savedResponse(entry)
	require.Equal(t, true, payload["status"])

	data, ok := payload["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, entry, data["record"])
	assert.Equal(t, int(workflow.ObservationDelay.Seconds()), data["closes_in_seconds"])
}
