package services

import (
	"fmt"
	"log"
	"net/smtp"
)

// Mailer delivers the confirmation and recovery links. No mail library is
// used: the deployment only needs plain SMTP, and the dev fallback just logs
// the link.
type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (m SMTPMailer) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	msg := []byte("From: " + m.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" + body + "\r\n")
	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Password, m.Host)
	}
	return smtp.SendMail(addr, auth, m.From, []string{to}, msg)
}

// LogMailer is the dev-mode fallback when SMTP is not configured.
type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	log.Printf("mail (dev) to=%s subject=%q\n%s", to, subject, body)
	return nil
}

func ConfirmMail(baseURL, token string) (string, string) {
	link := baseURL + "/auth/confirm?token=" + token + "&type=" + TokenPurposeConfirm
	return "【書道ひろば】メールアドレスの確認",
		"以下のリンクをクリックして、メールアドレスを確認してください。\n\n" + link + "\n\nこのリンクの有効期限は24時間です。"
}

func RecoveryMail(baseURL, token string) (string, string) {
	link := baseURL + "/auth/reset-password?token=" + token + "&type=" + TokenPurposeRecovery
	return "【書道ひろば】パスワードの再設定",
		"以下のリンクをクリックして、新しいパスワードを設定してください。\n\n" + link + "\n\nこのリンクの有効期限は1時間です。"
}
