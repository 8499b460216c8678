package datapush

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"sort"
	"strings"

	"github.com/jordan-wright/email"

	"AirlineSentiment/src/config"
)

// sendFunc 实际发送，测试中替换
type sendFunc func(e *email.Email, addr string, auth smtp.Auth, tlsConfig *tls.Config) error

// Mailer 通过 SMTP(SSL) 发送报表邮件
type Mailer struct {
	server   string
	username string
	password string
	to       []string
	subject  string
	send     sendFunc
}

func NewMailer(c *config.Config) *Mailer {
	return &Mailer{
		server:   c.SendEmail.Server,
		username: c.SendEmail.Username,
		password: c.SendEmail.Password,
		to:       c.SendEmail.To,
		subject:  c.SendEmail.Subject,
		send: func(e *email.Email, addr string, auth smtp.Auth, tlsConfig *tls.Config) error {
			return e.SendWithTLS(addr, auth, tlsConfig)
		},
	}
}

// Enabled 服务器与收件人都配置了才发送
func (m *Mailer) Enabled() bool {
	return m.server != "" && m.username != "" && len(m.to) > 0
}

// BuildMessage 组装邮件，附件不存在时只记录在正文里
func (m *Mailer) BuildMessage(summary Summary) (*email.Email, error) {
	e := email.NewEmail()
	e.From = fmt.Sprintf("Tweet Sentiment <%s>", m.username)
	e.To = m.to
	e.Subject = m.subject
	e.Text = []byte(formatSummary(summary))

	if path := summary.ReportFile; path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("附件文件不存在: %s", path)
		}
		if _, err := e.AttachFile(path); err != nil {
			return nil, fmt.Errorf("附件添加失败: %w", err)
		}
	}
	return e, nil
}

// Send 发送摘要邮件
func (m *Mailer) Send(summary Summary) error {
	e, err := m.BuildMessage(summary)
	if err != nil {
		return err
	}

	// 确保服务器地址包含端口
	smtpAddr := m.server
	if !strings.Contains(smtpAddr, ":") {
		smtpAddr += ":465" // 默认 SSL 端口
	}
	host := strings.Split(smtpAddr, ":")[0]

	if err := m.send(e, smtpAddr, smtp.PlainAuth("", m.username, m.password, host), &tls.Config{ServerName: host}); err != nil {
		return fmt.Errorf("邮件发送失败: %w (Server: %s)", err, smtpAddr)
	}
	return nil
}

func formatSummary(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tweets: %d (%s)\n", s.Total, s.GeneratedAt.Format("2006-01-02 15:04:05"))
	for _, label := range []string{"positive", "negative", "neutral"} {
		fmt.Fprintf(&b, "  %-8s %d\n", label, s.Sentiments[label])
	}
	if len(s.Airlines) > 0 {
		b.WriteString("Airlines:\n")
		for _, name := range sortedKeys(s.Airlines) {
			fmt.Fprintf(&b, "  %-15s %d\n", name, s.Airlines[name])
		}
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
