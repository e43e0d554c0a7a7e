package notification

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/watheeq/watheeq-backend/internal/request/domain"
	"github.com/watheeq/watheeq-backend/pkg/config"
	"github.com/watheeq/watheeq-backend/pkg/logger"
)

// EmailNotifier sends request lifecycle mails over SMTP. When sender
// credentials are not configured it logs the mail instead, so demo
// environments work without an SMTP account.
type EmailNotifier struct {
	cfg    config.EmailConfig
	logger *logger.Logger
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg config.EmailConfig, log *logger.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, logger: log}
}

// NotifyAdminNewRequest mails the camera operator about a new request
func (n *EmailNotifier) NotifyAdminNewRequest(requestID int64, adminLink, incidentDate, incidentTime string) {
	if n.cfg.AdminEmail == "" {
		n.logger.Info().Int64("request_id", requestID).Msg("admin email not configured, skipping notification")
		return
	}

	subject := fmt.Sprintf("طلب جديد #%d - لقطات كاميرات", requestID)
	body := fmt.Sprintf(`<div dir="rtl" style="font-family: Tajawal, Arial, sans-serif; padding: 20px;">
	<h2 style="color: #0c8a3e;">طلب جديد #%d</h2>
	<p>تم استلام طلب جديد للقطات الكاميرات.</p>
	<p><strong>التاريخ:</strong> %s</p>
	<p><strong>الوقت:</strong> %s</p>
	<p style="margin-top: 20px;">
		<a href="%s" style="background: #0c8a3e; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px;">رفع الفيديو</a>
	</p>
</div>`, requestID, incidentDate, incidentTime, adminLink)

	n.send(n.cfg.AdminEmail, subject, body)
}

// NotifyVideoReady mails the download link once the footage is uploaded.
// The recipient is the admin address until user accounts carry an email.
func (n *EmailNotifier) NotifyVideoReady(requestID int64, downloadURL string, req *domain.Request) {
	if n.cfg.AdminEmail == "" {
		n.logger.Info().Int64("request_id", requestID).Msg("admin email not configured, skipping notification")
		return
	}

	subject := fmt.Sprintf("فيديو الحادث جاهز - طلب #%d", requestID)
	body := fmt.Sprintf(`<div dir="rtl" style="font-family: Tajawal, Arial, sans-serif; padding: 20px;">
	<h2 style="color: #0c8a3e;">تم تجهيز الفيديو</h2>
	<p>فيديو الحادث للطلب رقم <strong>#%d</strong> جاهز للتحميل.</p>
	<p><strong>العنوان:</strong> %s</p>
	<p><strong>التاريخ:</strong> %s</p>
	<p><strong>الوقت:</strong> من %s إلى %s</p>
	<p style="margin-top: 20px;">
		<a href="%s" style="background: #0c8a3e; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px;">تحميل الفيديو</a>
	</p>
	<p style="margin-top: 20px; color: #666; font-size: 13px;">هذا الرابط صالح لمدة 24 ساعة.</p>
</div>`, requestID, req.NationalAddress, req.IncidentDate, req.IncidentStart, req.IncidentEnd, downloadURL)

	n.send(n.cfg.AdminEmail, subject, body)
}

// send delivers one HTML mail, or logs it when credentials are missing.
// Delivery failures are logged and swallowed; mail must never fail the
// request flow.
func (n *EmailNotifier) send(to, subject, bodyHTML string) {
	if n.cfg.Sender == "" || n.cfg.Password == "" {
		preview := bodyHTML
		if len(preview) > 100 {
			preview = preview[:100]
		}
		n.logger.Info().Str("to", to).Str("subject", subject).Str("body", preview).Msg("email (demo)")
		return
	}

	var msg strings.Builder
	msg.WriteString("From: " + n.cfg.Sender + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(bodyHTML)

	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)
	auth := smtp.PlainAuth("", n.cfg.Sender, n.cfg.Password, n.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, n.cfg.Sender, []string{to}, []byte(msg.String())); err != nil {
		n.logger.Error().Err(err).Str("to", to).Msg("failed to send email")
		return
	}
	n.logger.Info().Str("to", to).Str("subject", subject).Msg("email sent")
}
