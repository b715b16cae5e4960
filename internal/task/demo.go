package task

import "github.com/zulandar/teamdesk/internal/models"

// DemoType is the task type of every demo task.
const DemoType = "Operational"

var demoTitles = []string{
	"Set up CRM pipeline stages",
	"Import lead list from last open house",
	"Build cold-call script for expired listings",
	"Schedule weekly team stand-up",
	"Create VOP email template",
	"Verify bounced VOP addresses",
	"Prepare BPO template and comps checklist",
	"Complete pending BPO requests",
	"Draft listing description template",
	"Order listing photography for new listings",
	"Plan next open house",
	"Print open house sign-in sheets",
	"Write buyer consultation checklist",
	"Write seller pre-listing packet",
	"Set up transaction coordinator checklist",
	"Collect missing closing documents",
	"Launch 7-day social media calendar",
	"Write email nurture sequence for cold leads",
	"Send Google review requests to past clients",
	"Reply to recent Google reviews",
	"Send neighborhood farming mailer",
	"Compile expired and FSBO outreach list",
	"Research local grant and assistance programs",
	"Clean up duplicate contacts in CRM",
	"Review pipeline bottlenecks",
	"Publish weekly report and KPIs",
}

// DemoTitles returns the titles of the demo task set, in order.
func DemoTitles() []string {
	out := make([]string, len(demoTitles))
	copy(out, demoTitles)
	return out
}

// DemoTasks returns the unsaved demo tasks: Backlog, Operational and
// unassigned.
func DemoTasks() []models.Task {
	out := make([]models.Task, len(demoTitles))
	for i, title := range demoTitles {
		out[i] = models.Task{
			Title:         title,
			Type:          DemoType,
			Status:        models.StatusBacklog,
			PipelineStage: models.StageBacklog,
		}
	}
	return out
}
