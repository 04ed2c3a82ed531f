package telegram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"rubkoff/assistant/config"
	"rubkoff/assistant/internal/models"
)

// Service sends notifications to a Telegram chat when a user picks a
// house. Notifications are best effort: a failure here never blocks
// the recommendation flow.
type Service struct {
	logger  *logrus.Logger
	client  *http.Client
	config  *config.TelegramConfig
	apiBase string
}

func NewService(cfg *config.TelegramConfig, logger *logrus.Logger) *Service {
	return &Service{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		config:  cfg,
		apiBase: "https://api.telegram.org",
	}
}

// SendMessage sends an HTML-formatted message to the configured chat.
// A disabled service is a silent no-op.
func (s *Service) SendMessage(message string) error {
	if !s.config.Enabled {
		return nil
	}

	if s.config.BotToken == "" {
		return errors.New("Telegram bot token is not configured")
	}

	if s.config.NotificationChatID == "" {
		return errors.New("Telegram notification chat ID is not configured")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.config.BotToken)
	payload := map[string]interface{}{
		"chat_id":    s.config.NotificationChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %v", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// NotifyHouseSelection reports which house came out on top of a
// user's survey.
func (s *Service) NotifyHouseSelection(user *models.User, house *models.House) error {
	if !s.config.Enabled {
		return nil
	}

	message := fmt.Sprintf(
		"🏠 Пользователю %s (ID: %d) подобран дом:\n\n"+
			"🔑 %s\n"+
			"💰 Цена: %.1f млн ₽\n"+
			"📐 Площадь: %.0f м²\n",
		displayName(user),
		user.UserID,
		house.Name,
		house.Price,
		house.Area,
	)

	if house.Bedrooms != nil {
		message += fmt.Sprintf("🛏️ Спален: %d\n", *house.Bedrooms)
	}
	if house.Bathrooms != nil {
		message += fmt.Sprintf("🚿 Санузлов: %d\n", *house.Bathrooms)
	}
	if house.Floors != nil {
		message += fmt.Sprintf("⬆️ Этажей: %.0f\n", *house.Floors)
	}

	message += fmt.Sprintf("\n🌐 %s", house.URL)

	if err := s.SendMessage(message); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  user.UserID,
		"house_id": house.ID,
	}).Info("Sent house selection notification")
	return nil
}

func displayName(user *models.User) string {
	if user.Username != "" {
		return "@" + user.Username
	}
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		return "клиент"
	}
	return name
}
