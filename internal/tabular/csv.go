package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/zulandar/teamdesk/internal/models"
)

// Headers of the side logs, matching their record fields.
var (
	CallHeader = []string{"call_id", "lead_name", "phone", "agent", "datetime", "outcome", "notes"}
	BPOHeader  = []string{"bpo_id", "property_address", "estimated_value", "comps_summary", "agent", "date", "notes"}
	VOPHeader  = []string{"vop_id", "email_subject", "recipient", "sent_date", "status", "notes"}
	ChatHeader = []string{"role", "content", "ts"}
)

// ChatLine is one exported chat turn.
type ChatLine struct {
	Role      string
	Content   string
	Timestamp string
}

// Bundle is every table of a session, for the combined export.
type Bundle struct {
	Tasks []models.Task
	Calls []models.Call
	BPOs  []models.BPO
	VOPs  []models.VOP
}

// WriteCSV writes a header row followed by rows.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("tabular: write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("tabular: write rows: %w", err)
	}
	return nil
}

// CallRows renders the call log.
func CallRows(calls []models.Call) [][]string {
	rows := make([][]string, len(calls))
	for i, c := range calls {
		rows[i] = []string{c.ID, c.LeadName, c.Phone, c.Agent, formatTime(&c.CalledAt, DateTimeLayout), c.Outcome, c.Notes}
	}
	return rows
}

// BPORows renders the BPO log.
func BPORows(bpos []models.BPO) [][]string {
	rows := make([][]string, len(bpos))
	for i, b := range bpos {
		rows[i] = []string{
			b.ID,
			b.PropertyAddress,
			strconv.FormatFloat(b.EstimatedValue, 'f', -1, 64),
			b.CompsSummary,
			b.Agent,
			formatTime(&b.Date, DateLayout),
			b.Notes,
		}
	}
	return rows
}

// VOPRows renders the VOP log.
func VOPRows(vops []models.VOP) [][]string {
	rows := make([][]string, len(vops))
	for i, v := range vops {
		rows[i] = []string{v.ID, v.EmailSubject, v.Recipient, formatTime(&v.SentDate, DateLayout), v.Status, v.Notes}
	}
	return rows
}

// ChatRows renders exported chat turns.
func ChatRows(lines []ChatLine) [][]string {
	rows := make([][]string, len(lines))
	for i, l := range lines {
		rows[i] = []string{l.Role, l.Content, l.Timestamp}
	}
	return rows
}

// WriteBundle writes the task, call, BPO and VOP CSVs one after another,
// separated by a blank line.
func WriteBundle(w io.Writer, b Bundle) error {
	parts := []struct {
		header []string
		rows   [][]string
	}{
		{TaskHeader(), TaskRows(b.Tasks)},
		{CallHeader, CallRows(b.Calls)},
		{BPOHeader, BPORows(b.BPOs)},
		{VOPHeader, VOPRows(b.VOPs)},
	}
	for i, p := range parts {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("tabular: write bundle: %w", err)
			}
		}
		if err := WriteCSV(w, p.header, p.rows); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t *time.Time, layout string) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

func columns(specs []FieldSpec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Column
	}
	return out
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
