package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zulandar/teamdesk/internal/apperr"
	"github.com/zulandar/teamdesk/internal/models"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestTaskHeader_Order(t *testing.T) {
	assert.Equal(t,
		[]string{"task_id", "title", "type", "assignee", "status", "pipeline_stage", "due", "created", "notes"},
		TaskHeader())
}

func TestTaskRows_EmptyDates(t *testing.T) {
	rows := TaskRows([]models.Task{{ID: "a", Title: "no dates"}})
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0][6], "due")
	assert.Equal(t, "", rows[0][7], "created")
	assert.NotContains(t, strings.Join(rows[0], ","), "null")
	assert.NotContains(t, strings.Join(rows[0], ","), "<nil>")
}

func TestRoundTrip(t *testing.T) {
	in := []models.Task{
		{
			ID: "3f1d", Title: "Call back, re: offer", Type: "Calls", Assignee: "Dana",
			Status: models.StatusOnHold, PipelineStage: models.StageUnderContract,
			Due: date(2026, 7, 4), Notes: "line one\nline two",
			CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{ID: "9a9a", Title: "Bare", Status: models.StatusBacklog, PipelineStage: models.StageBacklog},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTaskCSV(&buf, in))
	out, err := ReadTaskCSV(&buf)
	require.NoError(t, err)
	require.Len(t, out, 2)

	for i := range in {
		assert.Equal(t, in[i].ID, out[i].ID)
		assert.Equal(t, in[i].Title, out[i].Title)
		assert.Equal(t, in[i].Type, out[i].Type)
		assert.Equal(t, in[i].Assignee, out[i].Assignee)
		assert.Equal(t, in[i].Status, out[i].Status)
		assert.Equal(t, in[i].PipelineStage, out[i].PipelineStage)
		assert.Equal(t, in[i].Notes, out[i].Notes)
		if in[i].Due == nil {
			assert.Nil(t, out[i].Due)
		} else {
			require.NotNil(t, out[i].Due)
			assert.True(t, in[i].Due.Equal(*out[i].Due))
		}
	}
	assert.True(t, in[0].CreatedAt.Equal(out[0].CreatedAt))
}

func TestParseTasks_Coercion(t *testing.T) {
	header := []string{"Title", "status", "due", "extra", "pipeline_stage"}
	rows := [][]string{
		{"Fix sign", "in progress", "not-a-date", "ignored", "Rocket"},
		{"", "", "", "", ""},
		{"Short row"},
	}
	out := ParseTasks(header, rows)
	require.Len(t, out, 2, "blank rows are skipped")

	assert.Equal(t, "Fix sign", out[0].Title)
	assert.Equal(t, models.StatusInProgress, out[0].Status)
	assert.Nil(t, out[0].Due)
	assert.Equal(t, models.StageBacklog, out[0].PipelineStage)
	assert.Equal(t, "", out[0].ID)

	assert.Equal(t, "Short row", out[1].Title)
	assert.Equal(t, models.StatusBacklog, out[1].Status)
}

func TestCoerce(t *testing.T) {
	status := TaskFields[4]
	assert.Equal(t, "Completed", coerce(status, " completed ").Text)
	assert.Equal(t, "Backlog", coerce(status, "finished").Text)

	due := TaskFields[6]
	assert.Nil(t, coerce(due, "").Time)
	assert.Nil(t, coerce(due, "31/12/2026").Time)
	require.NotNil(t, coerce(due, "2026-12-31").Time)

	created := TaskFields[7]
	require.NotNil(t, coerce(created, "2026-12-31 08:00:00").Time)
}

func TestReadTaskCSV_Unreadable(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"no known columns", "foo,bar\n1,2\n"},
		{"broken quoting", "title,notes\n\"unterminated,x\n"},
		{"binary", "\x89PNG\r\n\x1a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTaskCSV(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrImport))
		})
	}
}

func TestReadTaskCSV_HeaderOnly(t *testing.T) {
	out, err := ReadTaskCSV(strings.NewReader("task_id,title\n"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestWriteBundle(t *testing.T) {
	var buf bytes.Buffer
	err := WriteBundle(&buf, Bundle{
		Tasks: []models.Task{{ID: "t1", Title: "task"}},
		Calls: []models.Call{{ID: "c1", LeadName: "Lee", Outcome: "No answer", CalledAt: time.Date(2026, 2, 3, 10, 15, 0, 0, time.UTC)}},
		BPOs:  []models.BPO{{ID: "b1", PropertyAddress: "1 Main", EstimatedValue: 250000.5, Date: *date(2026, 2, 3)}},
		VOPs:  []models.VOP{{ID: "v1", Recipient: "a@b.c", Status: "Opened", SentDate: *date(2026, 2, 4)}},
	})
	require.NoError(t, err)

	sections := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n\n")
	require.Len(t, sections, 4)
	assert.True(t, strings.HasPrefix(sections[0], "task_id,title,"))
	assert.Contains(t, sections[1], "call_id,lead_name,phone,agent,datetime,outcome,notes")
	assert.Contains(t, sections[1], "c1,Lee,,,2026-02-03 10:15,No answer,")
	assert.Contains(t, sections[2], "b1,1 Main,250000.5,,,2026-02-03,")
	assert.Contains(t, sections[3], "v1,,a@b.c,2026-02-04,Opened,")
}

func TestChatRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ChatHeader, ChatRows([]ChatLine{
		{Role: "user", Content: "hi, there", Timestamp: "2026-01-01 10:00:00"},
	})))
	assert.Equal(t, "role,content,ts\nuser,\"hi, there\",2026-01-01 10:00:00\n", buf.String())
}
