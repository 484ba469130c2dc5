// Package telegram connects the dispatcher to a Telegram chat via long polling.
package telegram

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/Tiliavir/timew-bot/internal/dispatch"
	"github.com/Tiliavir/timew-bot/internal/keyboard"
	"github.com/Tiliavir/timew-bot/internal/render"
)

// MaxMessageLength is Telegram's limit for a text message.
const MaxMessageLength = 4096

const (
	fence       = "```"
	callbackAck = "OK"
	emptyReply  = "(no output)"
)

// Keyboard and reply styles.
const (
	KeyboardInline = "inline"
	KeyboardReply  = "reply"
	ReplyText      = "text"
	ReplyImage     = "image"
)

// API is the part of tgbotapi.BotAPI the bot uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Dispatcher executes one line of operator input.
type Dispatcher interface {
	Handle(ctx context.Context, s *dispatch.Session, text string) (dispatch.Reply, error)
}

// Options configures a Bot.
type Options struct {
	OperatorID  int64
	Keyboard    string
	Reply       string
	PollTimeout int
	Log         *slog.Logger
}

// Bot serves a single operator. Updates are handled strictly one at a time.
type Bot struct {
	api     API
	handler Dispatcher
	session dispatch.Session
	opts    Options
	log     *slog.Logger
}

// New returns a Bot reading updates from api.
func New(api API, d Dispatcher, opts Options) *Bot {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	return &Bot{api: api, handler: d, opts: opts, log: log}
}

// Run polls for updates until ctx is done or the update channel closes.
// An update that is being handled when ctx ends is completed first.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.opts.PollTimeout
	updates := b.api.GetUpdatesChan(u)
	b.log.Info("polling for updates", "operator", b.opts.OperatorID)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("stopped polling")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(context.WithoutCancel(ctx), upd)
		}
	}
}

// Announce sends the current status and keyboard to the operator's private chat.
func (b *Bot) Announce(ctx context.Context) error {
	reply, err := b.handler.Handle(ctx, &b.session, "")
	if err != nil {
		return err
	}
	return b.send(b.opts.OperatorID, reply)
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	log := b.log.With("event", uuid.NewString(), "update", upd.UpdateID)

	var (
		from   *tgbotapi.User
		chatID int64
		text   string
	)
	switch {
	case upd.CallbackQuery != nil:
		cq := upd.CallbackQuery
		from, text = cq.From, cq.Data
		if cq.Message != nil && cq.Message.Chat != nil {
			chatID = cq.Message.Chat.ID
		} else if from != nil {
			chatID = from.ID
		}
	case upd.Message != nil:
		from, text = upd.Message.From, upd.Message.Text
		if upd.Message.Chat != nil {
			chatID = upd.Message.Chat.ID
		}
	default:
		log.Debug("ignoring update kind")
		return
	}

	if from == nil || from.ID != b.opts.OperatorID {
		log.Debug("dropping update from unauthorized sender")
		return
	}

	if upd.CallbackQuery != nil {
		if _, err := b.api.Request(tgbotapi.NewCallback(upd.CallbackQuery.ID, callbackAck)); err != nil {
			log.Warn("answering callback", "error", err)
		}
	}

	log.Info("handling input", "text", text)
	reply, err := b.handler.Handle(ctx, &b.session, text)
	if err != nil {
		log.Error("dispatch failed", "error", err)
		return
	}
	if err := b.send(chatID, reply); err != nil {
		log.Error("sending reply", "error", err)
	}
}

func (b *Bot) send(chatID int64, reply dispatch.Reply) error {
	text := reply.Text
	if strings.TrimSpace(text) == "" {
		text = emptyReply
	}
	markup := b.markup(reply.Keyboard)

	if b.opts.Reply == ReplyImage {
		data, err := render.PNG(text)
		if err != nil {
			return err
		}
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "output.png", Bytes: data})
		photo.ReplyMarkup = markup
		_, err = b.api.Send(photo)
		return err
	}

	msg := tgbotapi.NewMessage(chatID, CodeBlock(text))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) markup(g keyboard.Grid) any {
	if b.opts.Keyboard == KeyboardReply {
		rows := make([][]tgbotapi.KeyboardButton, 0, len(g))
		for _, row := range g {
			btns := make([]tgbotapi.KeyboardButton, len(row))
			for i, label := range row {
				btns[i] = tgbotapi.NewKeyboardButton(label)
			}
			rows = append(rows, btns)
		}
		kb := tgbotapi.NewReplyKeyboard(rows...)
		kb.ResizeKeyboard = true
		return kb
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(g))
	for _, row := range g {
		btns := make([]tgbotapi.InlineKeyboardButton, len(row))
		for i, label := range row {
			btns[i] = tgbotapi.NewInlineKeyboardButtonData(label, label)
		}
		rows = append(rows, btns)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// CodeBlock wraps text in a Markdown code block that fits one message.
func CodeBlock(text string) string {
	text = strings.ReplaceAll(text, fence, "'''")
	limit := MaxMessageLength - 2*len(fence) - 2
	if utf8.RuneCountInString(text) > limit {
		text = string([]rune(text)[:limit])
	}
	return fence + "\n" + text + "\n" + fence
}
