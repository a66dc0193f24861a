package services

import (
	"html/template"
	"strings"
)

// ConfirmationData fills the application-received email.
type ConfirmationData struct {
	ParentName      string
	ReferenceNumber string
	ChildrenNames   []string
	SubmissionDate  string // e.g. "January 02, 2026"
}

var confirmationHTML = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Application Confirmation</title></head>
<body style="margin:0;padding:0;font-family:Arial,sans-serif;background-color:#f5f5f5;">
  <table role="presentation" style="max-width:600px;margin:0 auto;background-color:#ffffff;border-radius:8px;">
    <tr>
      <td style="background:linear-gradient(135deg,#DC2626 0%,#2563EB 100%);padding:40px 30px;text-align:center;">
        <h1 style="margin:0;color:#ffffff;font-size:28px;">Little Gems School</h1>
        <p style="margin:10px 0 0 0;color:rgba(255,255,255,0.9);">Application Received</p>
      </td>
    </tr>
    <tr>
      <td style="padding:40px 30px;color:#374151;font-size:16px;line-height:1.6;">
        <p>Dear <strong>{{.ParentName}}</strong>,</p>
        <p>Thank you for submitting an application to Little Gems School. We have
        successfully received your application and it is currently being reviewed
        by our admissions team.</p>
        <table role="presentation" style="width:100%;background-color:#EFF6FF;border-left:4px solid #2563EB;margin:30px 0;">
          <tr><td style="padding:20px;">
            <p style="margin:0 0 8px 0;font-size:14px;color:#1E40AF;font-weight:600;">Application Reference Number</p>
            <p style="margin:0;font-size:24px;color:#1E3A8A;font-weight:bold;letter-spacing:1px;">{{.ReferenceNumber}}</p>
            <p style="margin:12px 0 0 0;font-size:13px;color:#3B82F6;">Please save this reference number for tracking your application</p>
          </td></tr>
        </table>
        <p style="margin:0;font-size:14px;color:#6B7280;">Submission Date</p>
        <p style="margin:4px 0 16px 0;font-weight:500;color:#111827;">{{.SubmissionDate}}</p>
        <p style="margin:0;font-size:14px;color:#6B7280;">Children</p>
        <p style="margin:4px 0 16px 0;font-weight:500;color:#111827;">{{range $i, $n := .ChildrenNames}}{{if $i}}, {{end}}{{$n}}{{end}}</p>
        <p>Our admissions team will review your application within 5-7 business
        days. You will receive an email notification once it has been reviewed.
        If selected, we will contact you to schedule an interview.</p>
      </td>
    </tr>
  </table>
</body>
</html>`))

// ConfirmationEmail renders the HTML and plain-text confirmation bodies.
func ConfirmationEmail(data ConfirmationData) (html, text string, err error) {
	var b strings.Builder
	if err := confirmationHTML.Execute(&b, data); err != nil {
		return "", "", err
	}

	var t strings.Builder
	t.WriteString("Little Gems School - Application Received\n\n")
	t.WriteString("Dear " + data.ParentName + ",\n\n")
	t.WriteString("Thank you for submitting an application to Little Gems School.\n\n")
	t.WriteString("Application Reference Number: " + data.ReferenceNumber + "\n")
	t.WriteString("Submission Date: " + data.SubmissionDate + "\n")
	t.WriteString("Children: " + strings.Join(data.ChildrenNames, ", ") + "\n\n")
	t.WriteString("Our admissions team will review your application within 5-7 business days.\n")
	t.WriteString("Please save the reference number for tracking your application.\n")

	return b.String(), t.String(), nil
}

// ConfirmationSubject is the subject line used for the confirmation email.
func ConfirmationSubject(reference string) string {
	return "Application Received - " + reference
}

var verificationHTML = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Verify Your Email</title></head>
<body style="margin:0;padding:0;font-family:Arial,sans-serif;background-color:#f5f5f5;">
  <table role="presentation" style="max-width:600px;margin:0 auto;background-color:#ffffff;border-radius:8px;">
    <tr>
      <td style="background:linear-gradient(135deg,#DC2626 0%,#2563EB 100%);padding:40px 30px;text-align:center;">
        <h1 style="margin:0;color:#ffffff;font-size:28px;">Little Gems School</h1>
        <p style="margin:10px 0 0 0;color:rgba(255,255,255,0.9);">Verify Your Email</p>
      </td>
    </tr>
    <tr>
      <td style="padding:40px 30px;color:#374151;font-size:16px;line-height:1.6;">
        <p>Dear <strong>{{.FullName}}</strong>,</p>
        <p>Please confirm your email address to continue with your admissions
        application. Click the link below, or paste the verification code into
        the form if the link does not open.</p>
        <p style="text-align:center;margin:30px 0;">
          <a href="{{.Link}}" style="background-color:#2563EB;color:#ffffff;padding:12px 24px;border-radius:6px;text-decoration:none;">Verify Email</a>
        </p>
        <p style="margin:0;font-size:14px;color:#6B7280;">Verification code</p>
        <p style="margin:4px 0 16px 0;font-weight:bold;letter-spacing:1px;color:#111827;">{{.Token}}</p>
        <p style="font-size:13px;color:#6B7280;">The link and code expire in 24 hours.</p>
      </td>
    </tr>
  </table>
</body>
</html>`))

// VerificationEmail renders the HTML and text bodies for the signup /
// resend-verification email.
func VerificationEmail(fullName, link, token string) (html, text string, err error) {
	var b strings.Builder
	if err := verificationHTML.Execute(&b, struct {
		FullName, Link, Token string
	}{fullName, link, token}); err != nil {
		return "", "", err
	}

	var t strings.Builder
	t.WriteString("Little Gems School - Verify Your Email\n\n")
	t.WriteString("Dear " + fullName + ",\n\n")
	t.WriteString("Please confirm your email address to continue with your admissions application.\n\n")
	t.WriteString("Verification link: " + link + "\n")
	t.WriteString("Verification code: " + token + "\n\n")
	t.WriteString("The link and code expire in 24 hours.\n")

	return b.String(), t.String(), nil
}
