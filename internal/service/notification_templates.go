package service

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/college-icrs/icrs-api/internal/models"
)

var notificationTemplates = template.Must(template.New("notifications").Parse(`
{{define "submitted"}}<h2>Grievance received</h2>
<p>Hello {{.Recipient}},</p>
<p>Your grievance <b>{{.Title}}</b> has been submitted. Current status: <b>{{.Status}}</b>.</p>
{{if .Assignee}}<p>It has been routed to {{.Assignee}}.</p>{{end}}<p>Reference: {{.GrievanceID}}</p>{{end}}
{{define "assigned"}}<h2>Grievance assigned</h2>
<p>Hello {{.Recipient}},</p>
<p>Your grievance <b>{{.Title}}</b> is now handled by {{.Assignee}}. Current status: <b>{{.Status}}</b>.</p>
<p>Reference: {{.GrievanceID}}</p>{{end}}
{{define "status"}}<h2>Grievance status updated</h2>
<p>Hello {{.Recipient}},</p>
<p>The status of your grievance <b>{{.Title}}</b> changed from <b>{{.From}}</b> to <b>{{.Status}}</b>.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}<p>Reference: {{.GrievanceID}}</p>{{end}}
{{define "comment"}}<h2>New comment on a grievance</h2>
<p>Hello {{.Recipient}},</p>
<p>{{.Author}} commented on <b>{{.Title}}</b>:</p>
<blockquote>{{.Body}}</blockquote>
<p>Reference: {{.GrievanceID}}</p>{{end}}
`))

type notificationView struct {
	Recipient   string
	Title       string
	GrievanceID string
	Status      string
	From        string
	Assignee    string
	Reason      string
	Author      string
	Body        string
}

func renderNotification(name string, view notificationView) (string, error) {
	var buf bytes.Buffer
	if err := notificationTemplates.ExecuteTemplate(&buf, name, view); err != nil {
		return "", fmt.Errorf("render %s notification: %w", name, err)
	}
	return buf.String(), nil
}

func grievanceView(g *models.Grievance, recipient string) notificationView {
	return notificationView{
		Recipient:   recipient,
		Title:       g.Title,
		GrievanceID: g.ID,
		Status:      g.Status.Label(),
		Assignee:    deref(g.AssigneeName),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
