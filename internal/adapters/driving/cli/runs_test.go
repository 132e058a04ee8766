package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archie/internal/core/domain"
)

func TestRunsCmd_Empty(t *testing.T) {
	setupServices(t, &Services{History: &mockRunHistory{}})

	out, err := execute(t, "runs")

	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestRunsCmd_ListsRuns(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	history := &mockRunHistory{reports: []domain.BatchReport{
		{RunID: "run-2", Job: domain.JobFixCreators, State: domain.BatchDone, Processed: 3, StartedAt: started},
		{RunID: "run-1", Job: domain.JobUpdate, State: domain.BatchAborted, Processed: 1, Moved: 2, StartedAt: started},
	}}
	setupServices(t, &Services{History: history})

	out, err := execute(t, "runs", "--limit", "5")

	require.NoError(t, err)
	assert.Equal(t, 5, history.limit)
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, "run-2")
	assert.Contains(t, out, "fix_creators")
	assert.Contains(t, out, "aborted")
}

func TestRunsShowCmd(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	history := &mockRunHistory{reports: []domain.BatchReport{{
		RunID:      "run-1",
		Job:        domain.JobUpdate,
		State:      domain.BatchAborted,
		Error:      "storage error on document D3: storage unavailable",
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}}}
	setupServices(t, &Services{History: history})

	out, err := execute(t, "runs", "show", "run-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Run run-1 aborted")
	assert.Contains(t, out, "(1.5s)")
	assert.Contains(t, out, "Error:    storage error on document D3")
}

func TestRunsShowCmd_NotFound(t *testing.T) {
	setupServices(t, &Services{History: &mockRunHistory{}})

	_, err := execute(t, "runs", "show", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunsCmd_NotConfigured(t *testing.T) {
	setupServices(t, &Services{})

	_, err := execute(t, "runs")

	assert.EqualError(t, err, "run history not configured")
}
