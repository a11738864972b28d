package alert

import (
	"fmt"
	"log"
	"strings"

	"er-capacity-scraper/config"
	"er-capacity-scraper/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Alert describes a threshold crossing worth notifying about
type Alert struct {
	Hospital string
	Waiting  int
}

func (a Alert) String() string {
	return fmt.Sprintf("%s has %d patients waiting for an inpatient bed", a.Hospital, a.Waiting)
}

// Evaluate checks the report against the configured thresholds
func Evaluate(report models.Report, cfg *config.Config) []Alert {
	threshold := cfg.Alerts.WaitingThreshold
	if threshold <= 0 {
		return nil
	}

	var alerts []Alert
	for _, h := range report.Hospitals {
		waiting, ok := h.Stat(models.StatWaitingForBed)
		if !ok {
			continue
		}
		if waiting >= threshold {
			alerts = append(alerts, Alert{Hospital: h.Name, Waiting: waiting})
		}
	}

	return alerts
}

// Notifier sends alerts to a Telegram chat
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier creates a Notifier for the given bot token and chat
func NewNotifier(botToken string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}
	log.Printf("Authorized on account %s\n", bot.Self.UserName)

	return &Notifier{bot: bot, chatID: chatID}, nil
}

// NotifyAlerts sends one message summarizing all threshold crossings
func (n *Notifier) NotifyAlerts(alerts []Alert) {
	if len(alerts) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString("🚨 ER capacity alert:\n")
	for _, a := range alerts {
		sb.WriteString(fmt.Sprintf("• %s\n", a))
	}

	n.send(sb.String())
}

// NotifyFailure reports a failed update run
func (n *Notifier) NotifyFailure(err error) {
	n.send(fmt.Sprintf("❌ ER capacity update failed: %v", err))
}

func (n *Notifier) send(text string) {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		log.Printf("Error sending Telegram notification: %v\n", err)
	}
}
