package helpers

import (
	"fmt"

	"github.com/oksasatya/tahfidz-portal/pkg/mailer"
	mailtpl "github.com/oksasatya/tahfidz-portal/pkg/mailer/templates"
)

// SubjectFor returns the default subject of a templated job.
func SubjectFor(job *mailer.EmailJob) string {
	if job.Subject != "" {
		return job.Subject
	}
	switch job.Template {
	case mailtpl.LoginNotification:
		return "New login to your portal account"
	case mailtpl.OrganizationMismatch:
		return "Sign-in attempt through another center's portal"
	default:
		return "Notification"
	}
}

func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}
