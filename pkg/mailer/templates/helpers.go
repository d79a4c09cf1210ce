package templates

import (
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04 MST")
	}
}
func WithRole(role string) Option { return func(d *EmailData) { d.Role = role } }
func WithOrganization(name, slug string) Option {
	return func(d *EmailData) {
		d.OrganizationName = name
		d.OrganizationSlug = slug
	}
}

func NewBaseEmailData(appName, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,
		AppName:        appName,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewLoginNotificationData(appName, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(appName, LoginNotification, name, email, opts...))
}

func NewOrganizationMismatchData(appName, name, email, expectedSlug string, opts ...Option) map[string]any {
	d := NewBaseEmailData(appName, OrganizationMismatch, name, email, opts...)
	d.ExpectedSlug = expectedSlug
	return ToMap(d)
}
