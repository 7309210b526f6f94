package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/akostiuk/zoewatch/core/logger"
	"github.com/akostiuk/zoewatch/core/model"
	"github.com/akostiuk/zoewatch/core/storage"
)

const (
	msgWelcome = "Вітаю! Я повідомлятиму про графіки погодинних відключень по Запорізькій області.\n" +
		"Оберіть свою чергу командою /group, наприклад: /group 3.1"
	msgUnknownGroup = "Невідома черга. Доступні: 1.1–6.2, наприклад: /group 3.1"
	msgSubscribed   = "Готово! Ви підписані на чергу %s."
	msgUnsubscribed = "Підписку скасовано."
	msgNoGroup      = "Ви ще не обрали чергу. Скористайтесь /group, наприклад: /group 3.1"
	msgNoSchedule   = "Графік на сьогодні ще не опубліковано."
	msgNoWindow     = "Для вашої черги %s на сьогодні даних немає."
	msgWindow       = "Черга %s на %s:\n%s"
	msgUnknownCmd   = "Доступні команди: /start, /group <черга>, /schedule, /stop"
)

// Bot serves subscriber commands: queue selection, current schedule lookup
// and unsubscription.
type Bot struct {
	api  *tgbotapi.BotAPI
	dir  storage.SubscriberDirectory
	repo storage.ScheduleRepository
	log  logger.Logger
	poll time.Duration
	now  func() time.Time
}

// NewBot creates the command loop sharing the sender's bot connection.
func NewBot(sender *Sender, cfg Config, dir storage.SubscriberDirectory, repo storage.ScheduleRepository, log logger.Logger) *Bot {
	return &Bot{
		api:  sender.API(),
		dir:  dir,
		repo: repo,
		log:  log,
		poll: time.Duration(cfg.PollTimeoutSeconds) * time.Second,
		now:  time.Now,
	}
}

// Run long-polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(b.poll.Seconds())
	updates := b.api.GetUpdatesChan(u)
	b.log.Infof("command loop started as @%s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			b.handle(ctx, update.Message)
		}
	}
}

func (b *Bot) handle(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !msg.IsCommand() {
		b.reply(chatID, msgUnknownCmd)
		return
	}
	switch msg.Command() {
	case "start":
		b.reply(chatID, msgWelcome)
	case "group":
		b.handleGroup(ctx, chatID, strings.TrimSpace(msg.CommandArguments()))
	case "schedule":
		b.handleSchedule(ctx, chatID)
	case "stop":
		if err := b.dir.Unsubscribe(ctx, chatID); err != nil {
			b.log.Errorf("unsubscribe %d: %v", chatID, err)
			return
		}
		b.reply(chatID, msgUnsubscribed)
	default:
		b.reply(chatID, msgUnknownCmd)
	}
}

func (b *Bot) handleGroup(ctx context.Context, chatID int64, arg string) {
	if !model.ValidGroup(arg) {
		b.reply(chatID, msgUnknownGroup)
		return
	}
	if err := b.dir.Subscribe(ctx, chatID, model.Group(arg)); err != nil {
		b.log.Errorf("subscribe %d to %s: %v", chatID, arg, err)
		return
	}
	b.replyf(chatID, msgSubscribed, arg)
}

func (b *Bot) handleSchedule(ctx context.Context, chatID int64) {
	sub, found, err := b.dir.Get(ctx, chatID)
	if err != nil {
		b.log.Errorf("lookup subscriber %d: %v", chatID, err)
		return
	}
	if !found || sub.Group == "" {
		b.reply(chatID, msgNoGroup)
		return
	}
	today := b.now().UTC().Truncate(24 * time.Hour)
	sched, found, err := b.repo.GetByDate(ctx, today)
	if err != nil {
		b.log.Errorf("lookup schedule: %v", err)
		return
	}
	if !found {
		b.reply(chatID, msgNoSchedule)
		return
	}
	window := sched[sub.Group]
	if window == "" {
		b.replyf(chatID, msgNoWindow, sub.Group)
		return
	}
	b.replyf(chatID, msgWindow, sub.Group, today.Format("02.01"), window)
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Errorf("reply to %d: %v", chatID, err)
	}
}

func (b *Bot) replyf(chatID int64, format string, args ...any) {
	b.reply(chatID, fmt.Sprintf(format, args...))
}
