package notifications

import (
	"bytes"
	"html/template"

	"sdr-backend/internal/leads"
)

const leadNotificationTemplate = `<!DOCTYPE html>
<html>
<body>
  <h3>New ramp rental lead</h3>
  <p><strong>Name:</strong> {{.FirstName}} {{.LastName}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <p><strong>Phone:</strong> {{.Phone}}</p>
  <p><strong>Address:</strong> {{.Address}}</p>
  <p><strong>Timeline:</strong> {{.Timeline}}</p>
  <p><strong>Lead ID:</strong> {{.ID}}</p>
  <p><strong>Upstream ID:</strong> {{.UpstreamID}}</p>
  <p><strong>Notes:</strong><br/>{{.Notes}}</p>
</body>
</html>`

var leadNotificationTmpl = template.Must(template.New("lead_notification").Parse(leadNotificationTemplate))

type leadEmailData struct {
	ID         string
	UpstreamID string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	Timeline   string
	Notes      string
}

func buildLeadNotificationHTML(lead leads.Lead) (string, error) {
	data := leadEmailData{
		ID:         lead.ID,
		UpstreamID: lead.UpstreamID,
		FirstName:  lead.Submission.Customer.FirstName,
		LastName:   lead.Submission.Customer.LastName,
		Email:      orDash(lead.Submission.Customer.Email),
		Phone:      orDash(lead.Submission.Customer.Phone),
		Address:    lead.Submission.Customer.Address.FormattedAddress,
		Timeline:   orDash(lead.Submission.Timeline),
		Notes:      orDash(lead.Submission.Notes),
	}

	var buf bytes.Buffer
	if err := leadNotificationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func orDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}
