package mail

import "fmt"

// PasswordResetMessage builds the canned password-reset email. The link is
// valid for one hour; the reset service enforces that window server-side.
func PasswordResetMessage(to string, resetLink string) *Message {
	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Follow this link to choose a new password:\n\n%s\n\n"+
			"The link expires in 1 hour. If you did not request a reset, "+
			"you can ignore this message.\n", resetLink)

	return &Message{
		To:      to,
		Subject: "Password reset",
		Body:    body,
	}
}

// ReportMessage builds the canned report-delivery email with the rendered
// report attached as a plain-text file.
func ReportMessage(to string, title string, report []byte) *Message {
	return &Message{
		To:      to,
		Subject: fmt.Sprintf("Experiment report: %s", title),
		Body:    fmt.Sprintf("The report %q is attached.\n", title),
		Attachments: []Attachment{
			{Filename: "report.txt", ContentType: "text/plain", Data: report},
		},
	}
}
