package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/teamdesk/internal/activity"
	"github.com/zulandar/teamdesk/internal/apperr"
	"github.com/zulandar/teamdesk/internal/chat"
	"github.com/zulandar/teamdesk/internal/models"
	"github.com/zulandar/teamdesk/internal/session"
	"github.com/zulandar/teamdesk/internal/tabular"
	"github.com/zulandar/teamdesk/internal/task"
	"go.uber.org/zap"
)

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("dashboard: %w: invalid request body: %v", apperr.ErrValidation, err)
	}
	return nil
}

// sendCSV renders a CSV attachment. The body is built before any header is
// written so a failure can still be reported as an error status.
func (s *server) sendCSV(c *gin.Context, filename string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func wantsCSV(c *gin.Context) bool {
	return strings.EqualFold(c.Query("format"), "csv")
}

// ---------------------------------------------------------------------------
// Personas and chat
// ---------------------------------------------------------------------------

func (s *server) apiPersonas(c *gin.Context) {
	c.JSON(http.StatusOK, s.personas.List())
}

func (s *server) apiPersona(c *gin.Context) {
	p, err := s.personas.Get(c.Param("name"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *server) apiChatGet(c *gin.Context) {
	name := c.Param("persona")
	msgs, err := current(c).Chat.ExportVisible(name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"persona": name, "messages": msgs})
}

type chatRequest struct {
	Text string `json:"text"`
}

func (s *server) apiChatSend(c *gin.Context) {
	sess := current(c)
	name := c.Param("persona")
	var req chatRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	reply, err := sess.Chat.Send(c.Request.Context(), name, req.Text, sess.Settings().Params)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat.VisibleMessage{Role: reply.Role, Content: reply.Content, Timestamp: reply.Timestamp})
}

func (s *server) apiChatReset(c *gin.Context) {
	name := c.Param("persona")
	if err := current(c).Chat.Reset(name); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"persona": name, "messages": []chat.VisibleMessage{}})
}

func (s *server) apiChatExport(c *gin.Context) {
	name := c.Param("persona")
	msgs, err := current(c).Chat.ExportVisible(name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	lines := make([]tabular.ChatLine, len(msgs))
	for i, m := range msgs {
		lines[i] = tabular.ChatLine{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp}
	}
	s.sendCSV(c, chat.ExportFilename(name, time.Now()), func(w io.Writer) error {
		return tabular.WriteCSV(w, tabular.ChatHeader, tabular.ChatRows(lines))
	})
}

type settingsRequest struct {
	APIKey      *string  `json:"api_key"`
	Model       *string  `json:"model"`
	MaxTokens   *int     `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
}

func (s *server) apiSettingsGet(c *gin.Context) {
	sess := current(c)
	c.JSON(http.StatusOK, settingsView(sess.Settings()))
}

// apiSettingsPut changes only the supplied fields. An explicit empty
// api_key drops the session key and falls back to the server's key.
func (s *server) apiSettingsPut(c *gin.Context) {
	sess := current(c)
	var req settingsRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	next := sess.Settings()
	if req.APIKey != nil {
		next.APIKey = strings.TrimSpace(*req.APIKey)
	}
	if req.Model != nil {
		next.Params.Model = *req.Model
	}
	if req.MaxTokens != nil {
		next.Params.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		next.Params.Temperature = *req.Temperature
	}
	if err := s.sessions.UpdateSettings(sess, next); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"settings":     settingsView(sess.Settings()),
		"chat_enabled": sess.Chat.HasClient(),
	})
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

func (s *server) apiTaskList(c *gin.Context) {
	tasks, err := current(c).Tasks.Filter(criteriaFromQuery(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskViews(tasks))
}

type taskRequest struct {
	Title         string `json:"title"`
	Type          string `json:"type"`
	Assignee      string `json:"assignee"`
	Status        string `json:"status"`
	PipelineStage string `json:"pipeline_stage"`
	Due           string `json:"due"`
	Notes         string `json:"notes"`
}

func (s *server) apiTaskCreate(c *gin.Context) {
	var req taskRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	due, err := parseOptionalDate(req.Due)
	if err != nil {
		s.respondError(c, err)
		return
	}
	t, err := current(c).Tasks.Create(task.CreateOpts{
		Title:         req.Title,
		Type:          req.Type,
		Assignee:      req.Assignee,
		Status:        req.Status,
		PipelineStage: req.PipelineStage,
		Due:           due,
		Notes:         req.Notes,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, taskView(*t))
}

func (s *server) apiTaskGet(c *gin.Context) {
	t, err := current(c).Tasks.Get(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskView(*t))
}

func (s *server) apiTaskUpdate(c *gin.Context) {
	sess := current(c)
	id := c.Param("id")
	var changes map[string]interface{}
	if err := bindJSON(c, &changes); err != nil {
		s.respondError(c, err)
		return
	}
	if err := sess.Tasks.Update(id, changes); err != nil {
		s.respondError(c, err)
		return
	}
	t, err := sess.Tasks.Get(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskView(*t))
}

func (s *server) apiTaskDelete(c *gin.Context) {
	if err := current(c).Tasks.Delete(c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type bulkRequest struct {
	IDs    []string `json:"ids"`
	Action string   `json:"action"`
	Value  string   `json:"value"`
}

func (s *server) apiTaskBulk(c *gin.Context) {
	var req bulkRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	if err := current(c).Tasks.BulkApply(req.IDs, task.BulkAction{Kind: req.Action, Value: req.Value}); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"action": req.Action, "selected": len(req.IDs)})
}

// apiTaskImport replaces the task table with an uploaded CSV, sent either
// as the raw request body or as the "file" field of a multipart form.
func (s *server) apiTaskImport(c *gin.Context) {
	sess := current(c)
	var (
		n   int
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		n, err = importUpload(c, sess)
	} else {
		var rows []models.Task
		rows, err = tabular.ReadTaskCSV(c.Request.Body)
		if err == nil {
			err = sess.Tasks.ImportRows(rows)
			n = len(rows)
		}
	}
	if err != nil {
		s.logger.Info("task import rejected", zap.String("session", sess.ID), zap.Error(err))
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": n})
}

func (s *server) apiTaskDemo(c *gin.Context) {
	sess := current(c)
	if err := sess.Tasks.ResetToDemo(); err != nil {
		s.respondError(c, err)
		return
	}
	count, err := sess.Tasks.Count()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": count})
}

func (s *server) apiTaskSummary(c *gin.Context) {
	sum, err := current(c).Tasks.Summary()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *server) apiTaskExport(c *gin.Context) {
	tasks, err := current(c).Tasks.All()
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.sendCSV(c, "tasks.csv", func(w io.Writer) error {
		return tabular.WriteTaskCSV(w, tasks)
	})
}

// ---------------------------------------------------------------------------
// Side logs
// ---------------------------------------------------------------------------

func (s *server) apiCallList(c *gin.Context) {
	calls, err := current(c).Activity.Calls()
	if err != nil {
		s.respondError(c, err)
		return
	}
	if wantsCSV(c) {
		s.sendCSV(c, "calls.csv", func(w io.Writer) error {
			return tabular.WriteCSV(w, tabular.CallHeader, tabular.CallRows(calls))
		})
		return
	}
	c.JSON(http.StatusOK, callViews(calls))
}

type callRequest struct {
	LeadName string `json:"lead_name"`
	Phone    string `json:"phone"`
	Agent    string `json:"agent"`
	CalledAt string `json:"datetime"`
	Outcome  string `json:"outcome"`
	Notes    string `json:"notes"`
}

func (s *server) apiCallCreate(c *gin.Context) {
	var req callRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	opts := activity.CallOpts{
		LeadName: req.LeadName,
		Phone:    req.Phone,
		Agent:    req.Agent,
		Outcome:  req.Outcome,
		Notes:    req.Notes,
	}
	if req.CalledAt != "" {
		t, err := parseTimestamp(req.CalledAt)
		if err != nil {
			s.respondError(c, err)
			return
		}
		opts.CalledAt = t
	}
	call, err := current(c).Activity.LogCall(opts)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, callViews([]models.Call{*call})[0])
}

func (s *server) apiBPOList(c *gin.Context) {
	bpos, err := current(c).Activity.BPOs()
	if err != nil {
		s.respondError(c, err)
		return
	}
	if wantsCSV(c) {
		s.sendCSV(c, "bpos.csv", func(w io.Writer) error {
			return tabular.WriteCSV(w, tabular.BPOHeader, tabular.BPORows(bpos))
		})
		return
	}
	c.JSON(http.StatusOK, bpoViews(bpos))
}

type bpoRequest struct {
	PropertyAddress string  `json:"property_address"`
	EstimatedValue  float64 `json:"estimated_value"`
	CompsSummary    string  `json:"comps_summary"`
	Agent           string  `json:"agent"`
	Date            string  `json:"date"`
	Notes           string  `json:"notes"`
}

func (s *server) apiBPOCreate(c *gin.Context) {
	var req bpoRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	opts := activity.BPOOpts{
		PropertyAddress: req.PropertyAddress,
		EstimatedValue:  req.EstimatedValue,
		CompsSummary:    req.CompsSummary,
		Agent:           req.Agent,
		Notes:           req.Notes,
	}
	d, err := parseOptionalDate(req.Date)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if d != nil {
		opts.Date = *d
	}
	bpo, err := current(c).Activity.LogBPO(opts)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bpoViews([]models.BPO{*bpo})[0])
}

func (s *server) apiVOPList(c *gin.Context) {
	vops, err := current(c).Activity.VOPs()
	if err != nil {
		s.respondError(c, err)
		return
	}
	if wantsCSV(c) {
		s.sendCSV(c, "vops.csv", func(w io.Writer) error {
			return tabular.WriteCSV(w, tabular.VOPHeader, tabular.VOPRows(vops))
		})
		return
	}
	c.JSON(http.StatusOK, vopViews(vops))
}

type vopRequest struct {
	EmailSubject string `json:"email_subject"`
	Recipient    string `json:"recipient"`
	SentDate     string `json:"sent_date"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
}

func (s *server) apiVOPCreate(c *gin.Context) {
	var req vopRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	opts := activity.VOPOpts{
		EmailSubject: req.EmailSubject,
		Recipient:    req.Recipient,
		Status:       req.Status,
		Notes:        req.Notes,
	}
	d, err := parseOptionalDate(req.SentDate)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if d != nil {
		opts.SentDate = *d
	}
	vop, err := current(c).Activity.LogVOP(opts)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vopViews([]models.VOP{*vop})[0])
}

// apiExportBundle writes every session table as one CSV download.
func (s *server) apiExportBundle(c *gin.Context) {
	b, err := collectBundle(current(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.sendCSV(c, "teamdesk_export.csv", func(w io.Writer) error {
		return tabular.WriteBundle(w, b)
	})
}

func collectBundle(sess *session.Session) (tabular.Bundle, error) {
	var (
		b   tabular.Bundle
		err error
	)
	if b.Tasks, err = sess.Tasks.All(); err != nil {
		return b, err
	}
	if b.Calls, err = sess.Activity.Calls(); err != nil {
		return b, err
	}
	if b.BPOs, err = sess.Activity.BPOs(); err != nil {
		return b, err
	}
	if b.VOPs, err = sess.Activity.VOPs(); err != nil {
		return b, err
	}
	return b, nil
}

func parseTimestamp(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range []string{tabular.TimestampLayout, tabular.DateTimeLayout, datetimeLocalLayout} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("dashboard: %w: %q is not a timestamp", apperr.ErrValidation, v)
}
