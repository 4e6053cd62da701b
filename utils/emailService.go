package utils

import (
	"fmt"
	"gsp/config"
	"net/smtp"
	"strings"
)

// SendEmail delivers an HTML mail through the configured SMTP account
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: Gas Subsidy Portal <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1A3C6E; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1A3C6E; line-height: 1.6; }
			.content h2 { color: #1A3C6E; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #D7A037; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>GAS SUBSIDY PORTAL</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 Government Gas Supply Program. All rights reserved.<br>
				This is an automated notification. Please do not reply to this email.
			</div>
		</div>
	</body>
	</html>`, title, bodyContent)
}

// SendApplicationApprovedEmail notifies the applicant of approval
func SendApplicationApprovedEmail(email, name, certificateNumber string) {
	subject := "Your Gas Subsidy Application Has Been Approved"
	body := getEmailTemplate("Application Approved", fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your application for the subsidized gas cylinder program has been <strong>approved</strong>.</p>
		<div class="info-box">Certificate Number: <strong>%s</strong></div>
		<p>You can download your eligibility certificate from the portal. The certificate is valid for one year from the date of issue.</p>`,
		name, certificateNumber))

	go SendEmail([]string{email}, subject, body)
}

// SendApplicationRejectedEmail notifies the applicant of rejection
func SendApplicationRejectedEmail(email, name, reason string) {
	subject := "Update on Your Gas Subsidy Application"
	body := getEmailTemplate("Application Rejected", fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We regret to inform you that your application for the subsidized gas cylinder program has been <strong>rejected</strong>.</p>
		<div class="info-box">Reason: %s</div>
		<p>If you believe this decision is incorrect, please contact your district office.</p>`,
		name, reason))

	go SendEmail([]string{email}, subject, body)
}
