package dashboard

import (
	"html/template"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/zulandar/teamdesk/internal/models"
	"github.com/zulandar/teamdesk/internal/session"
	"github.com/zulandar/teamdesk/internal/tabular"
)

// TaskView is a task as rendered by pages and the JSON API.
type TaskView struct {
	ID            string `json:"task_id"`
	Title         string `json:"title"`
	Type          string `json:"type"`
	Assignee      string `json:"assignee"`
	Status        string `json:"status"`
	PipelineStage string `json:"pipeline_stage"`
	Due           string `json:"due"`
	Notes         string `json:"notes"`
	Created       string `json:"created"`
}

func taskView(t models.Task) TaskView {
	v := TaskView{
		ID:            t.ID,
		Title:         t.Title,
		Type:          t.Type,
		Assignee:      t.Assignee,
		Status:        t.Status,
		PipelineStage: t.PipelineStage,
		Notes:         t.Notes,
		Created:       t.CreatedAt.UTC().Format(tabular.TimestampLayout),
	}
	if t.Due != nil {
		v.Due = t.Due.Format(tabular.DateLayout)
	}
	return v
}

func taskViews(tasks []models.Task) []TaskView {
	out := make([]TaskView, len(tasks))
	for i, t := range tasks {
		out[i] = taskView(t)
	}
	return out
}

// CallView is a call log entry.
type CallView struct {
	ID       string `json:"call_id"`
	LeadName string `json:"lead_name"`
	Phone    string `json:"phone"`
	Agent    string `json:"agent"`
	CalledAt string `json:"datetime"`
	Outcome  string `json:"outcome"`
	Notes    string `json:"notes"`
}

// BPOView is a BPO log entry.
type BPOView struct {
	ID              string  `json:"bpo_id"`
	PropertyAddress string  `json:"property_address"`
	EstimatedValue  float64 `json:"estimated_value"`
	CompsSummary    string  `json:"comps_summary"`
	Agent           string  `json:"agent"`
	Date            string  `json:"date"`
	Notes           string  `json:"notes"`
}

// VOPView is a VOP log entry.
type VOPView struct {
	ID           string `json:"vop_id"`
	EmailSubject string `json:"email_subject"`
	Recipient    string `json:"recipient"`
	SentDate     string `json:"sent_date"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
}

func callViews(calls []models.Call) []CallView {
	out := make([]CallView, len(calls))
	for i, c := range calls {
		out[i] = CallView{
			ID:       c.ID,
			LeadName: c.LeadName,
			Phone:    c.Phone,
			Agent:    c.Agent,
			CalledAt: c.CalledAt.Format(tabular.DateTimeLayout),
			Outcome:  c.Outcome,
			Notes:    c.Notes,
		}
	}
	return out
}

func bpoViews(bpos []models.BPO) []BPOView {
	out := make([]BPOView, len(bpos))
	for i, b := range bpos {
		out[i] = BPOView{
			ID:              b.ID,
			PropertyAddress: b.PropertyAddress,
			EstimatedValue:  b.EstimatedValue,
			CompsSummary:    b.CompsSummary,
			Agent:           b.Agent,
			Date:            b.Date.Format(tabular.DateLayout),
			Notes:           b.Notes,
		}
	}
	return out
}

func vopViews(vops []models.VOP) []VOPView {
	out := make([]VOPView, len(vops))
	for i, v := range vops {
		out[i] = VOPView{
			ID:           v.ID,
			EmailSubject: v.EmailSubject,
			Recipient:    v.Recipient,
			SentDate:     v.SentDate.Format(tabular.DateLayout),
			Status:       v.Status,
			Notes:        v.Notes,
		}
	}
	return out
}

// SettingsView is the chat settings of a session. The key itself is never
// sent back.
type SettingsView struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	HasAPIKey   bool    `json:"has_api_key"`
}

func settingsView(s session.Settings) SettingsView {
	return SettingsView{
		Model:       s.Params.Model,
		MaxTokens:   s.Params.MaxTokens,
		Temperature: s.Params.Temperature,
		HasAPIKey:   s.APIKey != "",
	}
}

// distinctTypes returns the non-empty task types in sorted order.
func distinctTypes(tasks []models.Task) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tasks {
		if t.Type != "" && !seen[t.Type] {
			seen[t.Type] = true
			out = append(out, t.Type)
		}
	}
	sort.Strings(out)
	return out
}

// countRow is one label/count pair in a summary table.
type countRow struct {
	Label string
	Count int
}

// orderedCounts lists counts in the given order, then any other labels
// sorted by name.
func orderedCounts(counts map[string]int, order []string) []countRow {
	out := make([]countRow, 0, len(counts))
	listed := make(map[string]bool, len(order))
	for _, label := range order {
		listed[label] = true
		if n, ok := counts[label]; ok {
			out = append(out, countRow{label, n})
		}
	}
	var rest []string
	for label := range counts {
		if !listed[label] {
			rest = append(rest, label)
		}
	}
	sort.Strings(rest)
	for _, label := range rest {
		out = append(out, countRow{label, counts[label]})
	}
	return out
}

var templateFuncs = template.FuncMap{
	"statusClass": func(status string) string {
		return "status-" + strings.ReplaceAll(strings.ToLower(status), " ", "-")
	},
	"money": func(v float64) string {
		return "$" + commaInt(int64(v+0.5))
	},
	"pct": func(n, total int) int {
		if total == 0 {
			return 0
		}
		return n * 100 / total
	},
	"shortID": func(id string) string {
		if len(id) > 8 {
			return id[:8]
		}
		return id
	},
	"pathEscape": url.PathEscape,
	"now":        func() string { return time.Now().Format(tabular.DateLayout) },
}

func commaInt(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	out := strings.Join(append([]string{s}, groups...), ",")
	if neg {
		out = "-" + out
	}
	return out
}
