package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	app "plant-doctor/internal/application"
	"plant-doctor/internal/container"
	"plant-doctor/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я помогаю определить болезни и вредителей растений по фото листа.

📸 Отправьте фото поражённого листа, и я попробую поставить диагноз.

📋 Команды:
/diagnose — начать диагностику
/extended — больше ракурсов (точнее, но медленнее)
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото листа
2️⃣ Бот прогонит снимок через классификатор и языковую модель
3️⃣ Вы получите диагноз, уверенность и рекомендации, а если найдены пятна, то и фото с подсветкой

💡 Рекомендации:
• Снимайте при дневном свете, без вспышки
• Лист должен занимать большую часть кадра
• Если подозреваете вредителя, снимите и нижнюю сторону листа

📋 Команды:
/diagnose — начать диагностику
/extended — больше ракурсов
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото листа для диагностики."
	msgCancelled       = "❌ Операция отменена. Отправьте /diagnose для новой диагностики."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото листа."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Анализирую снимок..."
	msgBusy            = "⏳ Предыдущее фото ещё обрабатывается, подождите немного."
	msgOverloaded      = "😓 Сейчас слишком много запросов. Попробуйте через минуту."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgExtendedOn      = "🔄 Расширенный режим включён: снимок проверяется с поворотами."
	msgExtendedOff     = "➡️ Расширенный режим выключен."
)

// Ограничение Telegram на подпись к фото.
const maxCaption = 1024

// Bot представляет Telegram-бота
type Bot struct {
	api       *tgbotapi.BotAPI
	users     *app.UserService
	diagnosis *app.DiagnosisService
	jobs      *errgroup.Group
	http      *http.Client
	log       *slog.Logger
}

// NewBot создаёт нового бота. workers ограничивает число одновременных диагностик.
func NewBot(token string, c *container.Container, workers int, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	logger.Info("authorized", "account", api.Self.UserName)

	jobs := &errgroup.Group{}
	jobs.SetLimit(max(workers, 1))

	return &Bot{
		api:       api,
		users:     c.UserService,
		diagnosis: c.DiagnosisService,
		jobs:      jobs,
		http:      http.DefaultClient,
		log:       logger.With("component", "telegram"),
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
// и дожидается начатых диагностик.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer func() { _ = b.jobs.Wait() }()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	var (
		reply string
		err   error
	)
	switch msg.Command() {
	case "start":
		_, err = b.users.Cancel(ctx, userID, chatID)
		reply = msgStart

	case "help":
		reply = msgHelp

	case "diagnose":
		_, err = b.users.BeginDiagnosis(ctx, userID, chatID)
		reply = msgAwaitingPhoto

	case "cancel":
		_, err = b.users.Cancel(ctx, userID, chatID)
		reply = msgCancelled

	case "extended":
		var user *entity.User
		user, err = b.users.ToggleExtended(ctx, userID, chatID)
		reply = msgExtendedOff
		if user != nil && user.Extended {
			reply = msgExtendedOn
		}

	default:
		reply = msgUnknownCommand
	}

	switch {
	case errors.Is(err, app.ErrBusy):
		reply = msgBusy
	case err != nil:
		b.log.Error("command failed", "command", msg.Command(), "user_id", userID, "error", err)
		reply = msgProcessingError
	}
	b.sendMessage(chatID, reply)
}

// handlePhoto занимает пользователя и отдаёт снимок в пул диагностики.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	user, err := b.users.StartProcessing(ctx, userID, chatID)
	if errors.Is(err, app.ErrBusy) {
		b.sendMessage(chatID, msgBusy)
		return
	}
	if err != nil {
		b.log.Error("failed to start processing", "user_id", userID, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	// Получаем файл с максимальным разрешением
	fileID := msg.Photo[len(msg.Photo)-1].FileID

	started := b.jobs.TryGo(func() error {
		b.diagnose(ctx, user, fileID)
		return nil
	})
	if !started {
		if err := b.users.FinishProcessing(ctx, userID); err != nil {
			b.log.Warn("failed to reset user state", "user_id", userID, "error", err)
		}
		b.sendMessage(chatID, msgOverloaded)
	}
}

func (b *Bot) diagnose(ctx context.Context, user *entity.User, fileID string) {
	b.sendMessage(user.ChatID, msgProcessing)

	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.log.Error("failed to download photo", "user_id", user.ID, "error", err)
		if err := b.users.FinishProcessing(context.WithoutCancel(ctx), user.ID); err != nil {
			b.log.Warn("failed to reset user state", "user_id", user.ID, "error", err)
		}
		b.sendMessage(user.ChatID, msgProcessingError)
		return
	}

	d, err := b.diagnosis.DiagnoseForUser(ctx, user, imageData)
	if err != nil {
		b.log.Error("diagnosis failed", "user_id", user.ID, "error", err)
		b.sendMessage(user.ChatID, msgProcessingError)
		return
	}

	text := FormatDiagnosis(d)
	if len(d.Highlighted) == 0 {
		b.sendMessage(user.ChatID, text)
		return
	}

	photo := tgbotapi.NewPhoto(user.ChatID, tgbotapi.FileBytes{Name: "lesions.jpg", Bytes: d.Highlighted})
	fits := utf8.RuneCountInString(text) <= maxCaption
	if fits {
		photo.Caption = text
	}
	if _, err := b.api.Send(photo); err != nil {
		b.log.Warn("failed to send highlighted photo", "error", err)
		fits = false
	}
	if !fits {
		b.sendMessage(user.ChatID, text)
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}
