package notification

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pobyzaarif/goshortcute"

	"futureBridge/pkg/logger"
)

type MailjetConfig struct {
	BaseUrl           string
	BasicAuthUsername string
	BasicAuthPassword string
	SenderEmail       string
	SenderName        string
}

// MailjetRepository delivers transactional mail, currently only the OTP
// login message.
type MailjetRepository struct {
	cfg    MailjetConfig
	client *http.Client
}

func NewMailjetRepository(cfg MailjetConfig) *MailjetRepository {
	return &MailjetRepository{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type address struct {
	Email string `json:"Email"`
	Name  string `json:"Name"`
}

type message struct {
	From     address   `json:"From"`
	To       []address `json:"To"`
	Subject  string    `json:"Subject"`
	TextPart string    `json:"TextPart"`
	HTMLPart string    `json:"HTMLPart"`
}

type sendPayload struct {
	Messages []message `json:"Messages"`
}

func (r *MailjetRepository) SendEmail(toName, toEmail, subject, body string) error {
	payload := sendPayload{Messages: []message{{
		From:     address{Email: r.cfg.SenderEmail, Name: r.cfg.SenderName},
		To:       []address{{Email: toEmail, Name: toName}},
		Subject:  subject,
		TextPart: body,
		HTMLPart: body,
	}}}

	payloadByte, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, r.cfg.BaseUrl+"/v3.1/send", strings.NewReader(string(payloadByte)))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	basicAuth := goshortcute.StringtoBase64Encode(r.cfg.BasicAuthUsername + ":" + r.cfg.BasicAuthPassword)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+basicAuth)

	res, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		return nil
	}

	resBody, _ := io.ReadAll(res.Body)
	logger.Warn("mailer rejected message", "status", res.StatusCode, "response", string(resBody))
	return fmt.Errorf("mailer service return negative response %v", res.StatusCode)
}
