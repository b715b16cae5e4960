package dashboard

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/teamdesk/internal/activity"
	"github.com/zulandar/teamdesk/internal/apperr"
	"github.com/zulandar/teamdesk/internal/llm"
	"github.com/zulandar/teamdesk/internal/models"
	"github.com/zulandar/teamdesk/internal/session"
	"github.com/zulandar/teamdesk/internal/tabular"
	"github.com/zulandar/teamdesk/internal/task"
)

// datetimeLocalLayout is the value format of <input type="datetime-local">.
const datetimeLocalLayout = "2006-01-02T15:04"

// render fills in the fields every page shares and writes the layout.
func render(c *gin.Context, page string, data gin.H) {
	data["page"] = page
	data["Error"] = c.Query("err")
	data["Notice"] = c.Query("ok")
	c.HTML(http.StatusOK, "layout.html", data)
}

// pageError renders a failure to load a page.
func (s *server) pageError(c *gin.Context, err error) {
	s.logger.Sugar().Errorw("page load failed", "path", c.Request.URL.Path, "error", err)
	c.String(apperr.HTTPStatus(err), err.Error())
}

// ---------------------------------------------------------------------------
// Chat
// ---------------------------------------------------------------------------

func (s *server) chatPage(c *gin.Context) {
	sess := current(c)
	if name := c.Query("persona"); name != "" && s.personas.Has(name) {
		sess.SetActivePersona(name)
	}
	active := sess.ActivePersona()

	p, err := s.personas.Get(active)
	if err != nil {
		s.pageError(c, err)
		return
	}
	msgs, err := sess.Chat.ExportVisible(active)
	if err != nil {
		s.pageError(c, err)
		return
	}

	render(c, "chat", gin.H{
		"Personas":    s.personas.Names(),
		"Active":      active,
		"Instruction": p.Instruction,
		"Messages":    msgs,
		"Settings":    settingsView(sess.Settings()),
		"ChatEnabled": sess.Chat.HasClient(),
		"Models":      llm.Models,
		"MinTokens":   llm.MinMaxTokens,
		"MaxTokens":   llm.MaxMaxTokens,
		"MinTemp":     llm.MinTemperature,
		"MaxTemp":     llm.MaxTemperature,
	})
}

func chatQuery(persona string) url.Values {
	return url.Values{"persona": {persona}}
}

func (s *server) chatSend(c *gin.Context) {
	sess := current(c)
	name := c.PostForm("persona")
	_, err := sess.Chat.Send(c.Request.Context(), name, c.PostForm("message"), sess.Settings().Params)
	redirect(c, "/chat", chatQuery(name), err, "")
}

func (s *server) chatReset(c *gin.Context) {
	sess := current(c)
	name := c.PostForm("persona")
	err := sess.Chat.Reset(name)
	redirect(c, "/chat", chatQuery(name), err, "Conversation reset.")
}

func (s *server) settingsSave(c *gin.Context) {
	sess := current(c)
	back := chatQuery(sess.ActivePersona())

	params, err := paramsFromForm(c, sess.Settings().Params)
	if err != nil {
		redirect(c, "/chat", back, err, "")
		return
	}
	// A blank key field keeps the key already in use.
	key := strings.TrimSpace(c.PostForm("api_key"))
	if key == "" {
		key = sess.Settings().APIKey
	}
	err = s.sessions.UpdateSettings(sess, session.Settings{APIKey: key, Params: params})
	redirect(c, "/chat", back, err, "Settings saved.")
}

func paramsFromForm(c *gin.Context, base llm.Params) (llm.Params, error) {
	p := base
	if v, ok := c.GetPostForm("model"); ok {
		p.Model = v
	}
	if v, ok := c.GetPostForm("max_tokens"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return p, fmt.Errorf("dashboard: %w: max_tokens %q is not a number", apperr.ErrValidation, v)
		}
		p.MaxTokens = n
	}
	if v, ok := c.GetPostForm("temperature"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return p, fmt.Errorf("dashboard: %w: temperature %q is not a number", apperr.ErrValidation, v)
		}
		p.Temperature = f
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

func criteriaFromQuery(c *gin.Context) task.Criteria {
	return task.Criteria{
		Assignee: c.Query("assignee"),
		Status:   c.Query("status"),
		Type:     c.Query("type"),
		Text:     c.Query("q"),
	}
}

func (s *server) tasksPage(c *gin.Context) {
	sess := current(c)
	all, err := sess.Tasks.All()
	if err != nil {
		s.pageError(c, err)
		return
	}
	assignees, err := sess.Tasks.Assignees()
	if err != nil {
		s.pageError(c, err)
		return
	}
	crit := criteriaFromQuery(c)
	shown := task.Filter(all, crit)
	sum := task.Summarize(all)

	render(c, "tasks", gin.H{
		"Tasks":      taskViews(shown),
		"Total":      len(all),
		"Criteria":   crit,
		"Any":        task.Any,
		"Assignees":  assignees,
		"Types":      distinctTypes(all),
		"Statuses":   models.TaskStatuses,
		"Stages":     models.PipelineStages,
		"ByStatus":   orderedCounts(sum.ByStatus, models.TaskStatuses),
		"ByStage":    orderedCounts(sum.ByStage, models.PipelineStages),
		"ByAssignee": orderedCounts(sum.ByAssignee, nil),
	})
}

// tasksBack preserves the filters the user had applied.
func tasksBack(c *gin.Context) url.Values {
	q := url.Values{}
	for _, k := range []string{"assignee", "status", "type", "q"} {
		if v := c.Query(k); v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func (s *server) taskCreate(c *gin.Context) {
	sess := current(c)
	due, err := parseOptionalDate(c.PostForm("due"))
	if err != nil {
		redirect(c, "/tasks", tasksBack(c), err, "")
		return
	}
	t, err := sess.Tasks.Create(task.CreateOpts{
		Title:         c.PostForm("title"),
		Type:          c.PostForm("type"),
		Assignee:      c.PostForm("assignee"),
		Status:        c.PostForm("status"),
		PipelineStage: c.PostForm("pipeline_stage"),
		Due:           due,
		Notes:         c.PostForm("notes"),
	})
	if err != nil {
		redirect(c, "/tasks", tasksBack(c), err, "")
		return
	}
	redirect(c, "/tasks", tasksBack(c), nil, fmt.Sprintf("Added %q.", t.Title))
}

func (s *server) taskUpdate(c *gin.Context) {
	sess := current(c)
	changes := make(map[string]interface{})
	for _, key := range []string{"title", "type", "assignee", "status", "pipeline_stage", "due", "notes"} {
		if v, ok := c.GetPostForm(key); ok {
			changes[key] = v
		}
	}
	err := sess.Tasks.Update(c.Param("id"), changes)
	redirect(c, "/tasks", tasksBack(c), err, "Task updated.")
}

func (s *server) taskDelete(c *gin.Context) {
	sess := current(c)
	err := sess.Tasks.Delete(c.Param("id"))
	redirect(c, "/tasks", tasksBack(c), err, "Task deleted.")
}

func (s *server) tasksBulk(c *gin.Context) {
	sess := current(c)
	ids := c.PostFormArray("ids")
	action := task.BulkAction{Kind: c.PostForm("action"), Value: c.PostForm("value")}
	err := sess.Tasks.BulkApply(ids, action)
	redirect(c, "/tasks", tasksBack(c), err, fmt.Sprintf("Applied %s to %d selected.", action.Kind, len(ids)))
}

func (s *server) tasksImport(c *gin.Context) {
	sess := current(c)
	n, err := importUpload(c, sess)
	redirect(c, "/tasks", nil, err, fmt.Sprintf("Imported %d tasks.", n))
}

func importUpload(c *gin.Context, sess *session.Session) (int, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return 0, fmt.Errorf("dashboard: %w: no file uploaded", apperr.ErrImport)
	}
	f, err := fh.Open()
	if err != nil {
		return 0, fmt.Errorf("dashboard: %w: %v", apperr.ErrImport, err)
	}
	defer f.Close()

	rows, err := tabular.ReadTaskCSV(f)
	if err != nil {
		return 0, err
	}
	if err := sess.Tasks.ImportRows(rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *server) tasksDemo(c *gin.Context) {
	sess := current(c)
	err := sess.Tasks.ResetToDemo()
	redirect(c, "/tasks", nil, err, "Demo tasks restored.")
}

func parseOptionalDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	d, err := time.Parse(tabular.DateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w: date %q is not YYYY-MM-DD", apperr.ErrValidation, v)
	}
	return &d, nil
}

// ---------------------------------------------------------------------------
// Logs
// ---------------------------------------------------------------------------

func (s *server) logsPage(c *gin.Context) {
	sess := current(c)
	calls, err := sess.Activity.Calls()
	if err != nil {
		s.pageError(c, err)
		return
	}
	bpos, err := sess.Activity.BPOs()
	if err != nil {
		s.pageError(c, err)
		return
	}
	vops, err := sess.Activity.VOPs()
	if err != nil {
		s.pageError(c, err)
		return
	}
	vopCounts, err := sess.Activity.VOPStatusCounts()
	if err != nil {
		s.pageError(c, err)
		return
	}

	render(c, "logs", gin.H{
		"Calls":       callViews(calls),
		"BPOs":        bpoViews(bpos),
		"VOPs":        vopViews(vops),
		"VOPCounts":   orderedCounts(vopCounts, models.VOPStatuses),
		"Outcomes":    models.CallOutcomes,
		"VOPStatuses": models.VOPStatuses,
	})
}

func (s *server) callCreate(c *gin.Context) {
	sess := current(c)
	opts, err := callFromForm(c)
	if err == nil {
		_, err = sess.Activity.LogCall(opts)
	}
	redirect(c, "/logs", nil, err, "Call logged.")
}

func callFromForm(c *gin.Context) (activity.CallOpts, error) {
	opts := activity.CallOpts{
		LeadName: c.PostForm("lead_name"),
		Phone:    c.PostForm("phone"),
		Agent:    c.PostForm("agent"),
		Outcome:  c.PostForm("outcome"),
		Notes:    c.PostForm("notes"),
	}
	if v := strings.TrimSpace(c.PostForm("called_at")); v != "" {
		t, err := time.Parse(datetimeLocalLayout, v)
		if err != nil {
			return opts, fmt.Errorf("dashboard: %w: call time %q is not a date and time", apperr.ErrValidation, v)
		}
		opts.CalledAt = t
	}
	return opts, nil
}

func (s *server) bpoCreate(c *gin.Context) {
	sess := current(c)
	opts, err := bpoFromForm(c)
	if err == nil {
		_, err = sess.Activity.LogBPO(opts)
	}
	redirect(c, "/logs", nil, err, "BPO logged.")
}

func bpoFromForm(c *gin.Context) (activity.BPOOpts, error) {
	opts := activity.BPOOpts{
		PropertyAddress: c.PostForm("property_address"),
		CompsSummary:    c.PostForm("comps_summary"),
		Agent:           c.PostForm("agent"),
		Notes:           c.PostForm("notes"),
	}
	if v := strings.TrimSpace(c.PostForm("estimated_value")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("dashboard: %w: estimated value %q is not a number", apperr.ErrValidation, v)
		}
		opts.EstimatedValue = f
	}
	d, err := parseOptionalDate(c.PostForm("date"))
	if err != nil {
		return opts, err
	}
	if d != nil {
		opts.Date = *d
	}
	return opts, nil
}

func (s *server) vopCreate(c *gin.Context) {
	sess := current(c)
	opts, err := vopFromForm(c)
	if err == nil {
		_, err = sess.Activity.LogVOP(opts)
	}
	redirect(c, "/logs", nil, err, "VOP logged.")
}

func vopFromForm(c *gin.Context) (activity.VOPOpts, error) {
	opts := activity.VOPOpts{
		EmailSubject: c.PostForm("email_subject"),
		Recipient:    c.PostForm("recipient"),
		Status:       c.PostForm("status"),
		Notes:        c.PostForm("notes"),
	}
	d, err := parseOptionalDate(c.PostForm("sent_date"))
	if err != nil {
		return opts, err
	}
	if d != nil {
		opts.SentDate = *d
	}
	return opts, nil
}
