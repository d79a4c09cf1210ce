package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

// EmailData defines standard fields for email templates.
type EmailData struct {
	// Basic info
	Name           string `json:"Name"`
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`
	AppName        string `json:"AppName"`

	// Portal
	OrganizationName string `json:"OrganizationName"`
	OrganizationSlug string `json:"OrganizationSlug"`
	ExpectedSlug     string `json:"ExpectedSlug"`
	Role             string `json:"Role"`

	// Request
	IP        string    `json:"IP"`
	Time      string    `json:"Time"`
	TimeAt    time.Time `json:"TimeAt"`
	UserAgent string    `json:"UserAgent"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return fallback
		}
		zero := reflect.Zero(rv.Type()).Interface()
		if reflect.DeepEqual(value, zero) {
			return fallback
		}
		return value
	}
}

func baseFuncs() map[string]any {
	return map[string]any{
		"upper":   strings.ToUpper,
		"default": defaultFn,
	}
}

var (
	htmlFuncMap = htmpl.FuncMap(baseFuncs())
	textFuncMap = texttpl.FuncMap(baseFuncs())
)

// ---- Template names ----

const (
	LoginNotification    = "login_notification"
	OrganizationMismatch = "organization_mismatch"
)

type source struct {
	subject, text, html string
}

var sources = map[string]source{
	LoginNotification: {
		subject: `New login to {{ .AppName | default "your portal" }}`,
		text: `Assalamu alaikum {{ .Name | default .Email }},

Your account signed in to {{ .OrganizationName | default "the portal" }} as {{ .Role | default "member" }}.
Time: {{ .Time }}
IP: {{ .IP | default "unknown" }}
Device: {{ .UserAgent | default "unknown" }}

If this was not you, contact your center's administration.
`,
		html: `<p>Assalamu alaikum {{ .Name | default .Email }},</p>
<p>Your account signed in to <strong>{{ .OrganizationName | default "the portal" }}</strong> as {{ .Role | default "member" }}.</p>
<ul>
<li>Time: {{ .Time }}</li>
<li>IP: {{ .IP | default "unknown" }}</li>
<li>Device: {{ .UserAgent | default "unknown" }}</li>
</ul>
<p>If this was not you, contact your center's administration.</p>
`,
	},
	OrganizationMismatch: {
		subject: `Sign-in attempt through another center's portal`,
		text: `Assalamu alaikum {{ .Name | default .Email }},

Someone signed in with your account through the portal "{{ .ExpectedSlug }}".
Your account belongs to {{ .OrganizationName | default "no center" }}, so the session was closed.
Time: {{ .Time }}
IP: {{ .IP | default "unknown" }}
`,
		html: `<p>Assalamu alaikum {{ .Name | default .Email }},</p>
<p>Someone signed in with your account through the portal <code>{{ .ExpectedSlug }}</code>.
Your account belongs to <strong>{{ .OrganizationName | default "no center" }}</strong>, so the session was closed.</p>
<ul>
<li>Time: {{ .Time }}</li>
<li>IP: {{ .IP | default "unknown" }}</li>
</ul>
`,
	},
}

func renderText(name, src string, data any) (string, error) {
	var buf bytes.Buffer
	tpl, err := texttpl.New(name).Funcs(textFuncMap).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse text %q: %w", name, err)
	}
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

func renderHTML(name, src string, data any) (string, error) {
	var buf bytes.Buffer
	tpl, err := htmpl.New(name).Funcs(htmlFuncMap).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse html %q: %w", name, err)
	}
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

// Render renders subject, text and html of the named template.
func Render(name string, data any) (subject string, text string, html string, err error) {
	src, ok := sources[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	if subject, err = renderText(name+".subject", src.subject, data); err != nil {
		return "", "", "", err
	}
	if text, err = renderText(name+".text", src.text, data); err != nil {
		return "", "", "", err
	}
	if html, err = renderHTML(name+".html", src.html, data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
