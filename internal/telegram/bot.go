package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"nutrigenie/internal/app"
	"nutrigenie/internal/config"
	"nutrigenie/internal/metrics"
	"nutrigenie/internal/render"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var errNoSuchMeal = errors.New("no such meal")

// API is the part of the Telegram client the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// MetricsSource provides the data of the admin report.
type MetricsSource interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
	GetAgentUsage(ctx context.Context, days int) ([]metrics.AgentUsage, error)
}

// Bot exposes the App as Telegram commands. Each chat has its own session.
type Bot struct {
	api      API
	app      *app.App
	metrics  MetricsSource
	allowed  map[int64]bool
	adminID  int64
	dataPath string
}

// NewBot initializes the Telegram client and sets the webhook when a URL
// is configured.
func NewBot(cfg *config.Config, application *app.App, metricsStore MetricsSource) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	if cfg.TelegramWebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("failed to build webhook config: %w", err)
		}
		resp, err := bot.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
		}
		log.Printf("Webhook set response: %s", resp.Description)
	}

	return newBot(bot, cfg, application, metricsStore), nil
}

func newBot(api API, cfg *config.Config, application *app.App, metricsStore MetricsSource) *Bot {
	allowed := make(map[int64]bool, len(cfg.TelegramAllowedUserIDs))
	for _, id := range cfg.TelegramAllowedUserIDs {
		allowed[id] = true
	}

	dataPath := cfg.StoragePath
	if cfg.StorageBackend == config.BackendSQLite {
		dataPath = filepath.Dir(cfg.DatabasePath)
	}

	return &Bot{
		api:      api,
		app:      application,
		metrics:  metricsStore,
		allowed:  allowed,
		adminID:  cfg.AdminTelegramID,
		dataPath: dataPath,
	}
}

// ServeHTTP handles webhook updates. Messages are processed in the
// background so Telegram gets its answer right away.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !b.isAllowed(update.Message.From.ID) {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(context.Background(), update.Message)
}

// isAllowed reports whether userID may use the bot. An empty allow list
// lets everyone in.
func (b *Bot) isAllowed(userID int64) bool {
	if len(b.allowed) == 0 {
		return true
	}
	return b.allowed[userID]
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	sessionID := fmt.Sprintf("tg-%d", chatID)

	command := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	if command == "" {
		// A bare link is read as a grocery source.
		text := strings.TrimSpace(msg.Text)
		if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
			command, args = "grocery", text
		}
	}

	switch command {
	case "start", "help":
		b.reply(chatID, helpText)
	case "login":
		b.handleLogin(sessionID, chatID, args)
	case "logout":
		b.app.Logout(sessionID)
		b.reply(chatID, "👋 Logged out. Your preferences and saved meals are kept.")
	case "plan":
		b.handlePlan(ctx, sessionID, chatID)
	case "day":
		b.handleDay(ctx, sessionID, chatID, args)
	case "steps":
		b.handleSteps(ctx, sessionID, chatID, args)
	case "fav":
		b.handleFavorite(ctx, sessionID, chatID, args)
	case "grocery":
		b.handleGrocery(ctx, sessionID, chatID, args)
	case "track":
		b.handleTrack(ctx, sessionID, chatID, args)
	case "saved":
		b.handleSaved(ctx, sessionID, chatID)
	case "profile":
		b.handleProfile(ctx, sessionID, chatID)
	case "set":
		b.handleSet(ctx, sessionID, chatID, args)
	case "water":
		b.handleWater(ctx, sessionID, chatID, args)
	case "metrics":
		b.handleMetricsRequest(ctx, msg)
	default:
		b.reply(chatID, "🤔 I did not understand that.\n\n"+helpText)
	}
}

func (b *Bot) handleMetricsRequest(ctx context.Context, msg *tgbotapi.Message) {
	if b.adminID == 0 || msg.From.ID != b.adminID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	usage, err := b.metrics.GetDailyUsage(ctx, 7)
	if err != nil {
		log.Printf("Error fetching daily usage: %v", err)
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	agents, err := b.metrics.GetAgentUsage(ctx, 7)
	if err != nil {
		log.Printf("Error fetching agent usage: %v", err)
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth(b.dataPath, b.app.Sessions().Len())
	b.reply(msg.Chat.ID, render.MetricsReport(usage, agents, health))
}

// reply sends text as Markdown, split into several messages when needed.
func (b *Bot) reply(chatID int64, text string) {
	for _, chunk := range render.Chunks(text, render.MaxMessageLen) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := b.api.Send(msg); err != nil {
			log.Printf("Failed to send message to chat %d: %v", chatID, err)
			return
		}
	}
}

// status sends a placeholder that is later replaced by the result.
func (b *Bot) status(chatID int64, text string) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(msg)
	if err != nil {
		log.Printf("Failed to send status to chat %d: %v", chatID, err)
		return 0
	}
	return sent.MessageID
}

// replace edits the status message with the first chunk of text and sends
// the rest as new messages.
func (b *Bot) replace(chatID int64, messageID int, text string) {
	if messageID == 0 {
		b.reply(chatID, text)
		return
	}

	chunks := render.Chunks(text, render.MaxMessageLen)
	edit := tgbotapi.NewEditMessageText(chatID, messageID, chunks[0])
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit message in chat %d: %v", chatID, err)
	}
	for _, chunk := range chunks[1:] {
		b.reply(chatID, chunk)
	}
}

func (b *Bot) replyError(chatID int64, err error) {
	b.reply(chatID, "❌ "+render.Escape(userMessage(err)))
}

func userMessage(err error) string {
	if errors.Is(err, errNoSuchMeal) {
		return "Pick a meal number from the day shown."
	}
	return app.UserMessage(err)
}
