package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLoginNotification(t *testing.T) {
	a := assert.New(t)
	data := NewLoginNotificationData("Tahfidz", "Ahmad", "ahmad@x.test",
		WithOrganization("مركز النور لتحفيظ القرآن", "alnoor"),
		WithRole("teacher"),
		WithTime(time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)),
	)

	subject, text, html, err := Render(LoginNotification, data)
	require.NoError(t, err)
	a.Equal("New login to Tahfidz", subject)
	a.Contains(text, "مركز النور لتحفيظ القرآن")
	a.Contains(text, "01 May 2024, 08:30 UTC")
	a.Contains(text, "IP: unknown")
	a.Contains(html, "<strong>")
}

func TestRenderMismatchEscapesHTML(t *testing.T) {
	data := NewOrganizationMismatchData("Tahfidz", "", "a@x.test", "<script>")
	_, text, html, err := Render(OrganizationMismatch, data)
	require.NoError(t, err)
	assert.Contains(t, text, "a@x.test")
	assert.Contains(t, text, "no center")
	assert.NotContains(t, html, "<script>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render("verify_email", nil)
	assert.Error(t, err)
}
