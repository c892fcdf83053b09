package twitter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtaskPayload(t *testing.T) {
	raw := subtaskPayload("flow-1", "LoginEnterPassword", map[string]any{
		"enter_password": map[string]any{"password": "p\"w", "link": "next_link"},
	})

	var got struct {
		FlowToken     string           `json:"flow_token"`
		SubtaskInputs []map[string]any `json:"subtask_inputs"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, "flow-1", got.FlowToken)
	require.Len(t, got.SubtaskInputs, 1)
	assert.Equal(t, "LoginEnterPassword", got.SubtaskInputs[0]["subtask_id"])
	assert.Equal(t, map[string]any{"password": "p\"w", "link": "next_link"}, got.SubtaskInputs[0]["enter_password"])
}

func TestParseFlowResponse(t *testing.T) {
	fr, err := parseFlowResponse([]byte(`{"flow_token":"f","subtasks":[{"subtask_id":"LoginEnterPassword"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "f", fr.FlowToken)
	require.Len(t, fr.Subtasks, 1)
	assert.Equal(t, "LoginEnterPassword", fr.Subtasks[0].SubtaskID)

	_, err = parseFlowResponse([]byte(`{"subtasks":[]}`))
	assert.ErrorContains(t, err, "empty flow_token")

	_, err = parseFlowResponse([]byte(`nope`))
	assert.Error(t, err)
}
