package application

import (
	"context"
	"expvar"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
	"github.com/oksasatya/tahfidz-portal/pkg/mailer"
	mailtpl "github.com/oksasatya/tahfidz-portal/pkg/mailer/templates"
)

// Publisher puts a job on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type AuthAction string

const (
	ActionLogin                AuthAction = "login"
	ActionLoginFailed          AuthAction = "login_failed"
	ActionOrganizationMismatch AuthAction = "organization_mismatch"
	ActionLogout               AuthAction = "logout"
	ActionSignUp               AuthAction = "signup"
)

// activityCounts is served on /api/debug/vars.
var activityCounts = expvar.NewMap("auth_activity")

// AuthActivity describes one authentication outcome of a portal client.
type AuthActivity struct {
	Action       AuthAction
	Email        string
	Session      entity.Session
	ExpectedSlug string
	Mismatch     *OrganizationMismatchError
	IP           string
	UserAgent    string
	At           time.Time
}

// ActivityRecorder writes audit rows and queues notification emails.
// Every dependency is optional.
type ActivityRecorder struct {
	Audit     repository.AuditRepository
	Publisher Publisher
	AppName   string
	Logger    *logrus.Logger
}

func NewActivityRecorder(audit repository.AuditRepository, pub Publisher, appName string, logger *logrus.Logger) *ActivityRecorder {
	return &ActivityRecorder{Audit: audit, Publisher: pub, AppName: appName, Logger: logger}
}

func (r *ActivityRecorder) Record(ctx context.Context, a AuthActivity) {
	activityCounts.Add(string(a.Action), 1)
	if a.At.IsZero() {
		a.At = time.Now()
	}
	if r.Audit != nil {
		if err := r.Audit.Insert(ctx, auditEntry(a)); err != nil {
			r.warn(err, "audit insert failed", a)
		}
	}
	if r.Publisher == nil {
		return
	}
	job, ok := r.emailFor(a)
	if !ok {
		return
	}
	if err := r.Publisher.PublishJSON(ctx, job); err != nil {
		r.warn(err, "publish email failed", a)
	}
}

func auditEntry(a AuthActivity) repository.AuditEntry {
	meta := map[string]any{}
	if a.ExpectedSlug != "" {
		meta["expected_slug"] = a.ExpectedSlug
	}
	if a.Session.Organization != nil {
		meta["organization_slug"] = a.Session.Organization.Slug
	}
	if a.Mismatch != nil {
		meta["actual_slug"] = a.Mismatch.ActualSlug
	}
	e := repository.AuditEntry{
		Email:     a.Email,
		Action:    string(a.Action),
		IP:        a.IP,
		UserAgent: a.UserAgent,
		Metadata:  meta,
	}
	if a.Session.Identity != nil {
		e.IdentityID = a.Session.Identity.ID
	}
	return e
}

func (r *ActivityRecorder) emailFor(a AuthActivity) (mailer.EmailJob, bool) {
	opts := []mailtpl.Option{mailtpl.WithIP(a.IP), mailtpl.WithUserAgent(a.UserAgent), mailtpl.WithTime(a.At)}
	switch a.Action {
	case ActionLogin:
		if a.Session.Profile == nil {
			return mailer.EmailJob{}, false
		}
		if o := a.Session.Organization; o != nil {
			opts = append(opts, mailtpl.WithOrganization(o.Name, o.Slug))
		}
		opts = append(opts, mailtpl.WithRole(string(a.Session.Profile.Role)))
		return mailer.EmailJob{
			To:       a.Email,
			Template: mailtpl.LoginNotification,
			Data:     mailtpl.NewLoginNotificationData(r.AppName, a.Session.Profile.FullName, a.Email, opts...),
		}, true
	case ActionOrganizationMismatch:
		if a.Mismatch == nil {
			return mailer.EmailJob{}, false
		}
		opts = append(opts, mailtpl.WithOrganization(a.Mismatch.ActualName, a.Mismatch.ActualSlug))
		return mailer.EmailJob{
			To:       a.Email,
			Template: mailtpl.OrganizationMismatch,
			Data:     mailtpl.NewOrganizationMismatchData(r.AppName, "", a.Email, a.Mismatch.ExpectedSlug, opts...),
		}, true
	}
	return mailer.EmailJob{}, false
}

func (r *ActivityRecorder) warn(err error, msg string, a AuthActivity) {
	if r.Logger != nil {
		r.Logger.WithError(err).WithField("action", a.Action).Warn(msg)
	}
}
