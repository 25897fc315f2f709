// Package telegram feeds Telegram long-polling updates to the command dispatcher.
package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/elstrm2/NutritionTracker/internal/bot"
)

// API is the part of *tgbotapi.BotAPI the poller uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Handler interface {
	Handle(ctx context.Context, cmd bot.Command) bot.Reply
}

type Options struct {
	Workers          int
	PollTimeout      int // seconds
	MaxMessageLength int
}

// Poller dispatches text messages on a fixed number of workers. Messages from one chat
// always land on the same worker, so a user's commands run in the order they were sent.
type Poller struct {
	api     API
	handler Handler
	logger  *slog.Logger
	opts    Options
}

func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

func NewPoller(api API, handler Handler, logger *slog.Logger, opts Options) *Poller {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = bot.DefaultMaxMessageLength
	}
	return &Poller{api: api, handler: handler, logger: logger, opts: opts}
}

// Run polls until ctx is cancelled or the update channel closes, then waits for queued
// messages to be answered.
func (p *Poller) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.opts.PollTimeout
	updates := p.api.GetUpdatesChan(cfg)

	queues := make([]chan *tgbotapi.Message, p.opts.Workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan *tgbotapi.Message, 16)
		wg.Add(1)
		go func(q <-chan *tgbotapi.Message) {
			defer wg.Done()
			for msg := range q {
				p.handle(ctx, msg)
			}
		}(queues[i])
	}
	p.logger.Info("telegram polling started", slog.Int("workers", p.opts.Workers))

loop:
	for {
		select {
		case <-ctx.Done():
			p.api.StopReceivingUpdates()
			break loop
		case update, ok := <-updates:
			if !ok {
				break loop
			}
			msg := update.Message
			if msg == nil || msg.Text == "" {
				continue
			}
			idx := int(uint64(msg.Chat.ID) % uint64(len(queues)))
			select {
			case queues[idx] <- msg:
			case <-ctx.Done():
				p.api.StopReceivingUpdates()
				break loop
			}
		}
	}

	for _, q := range queues {
		close(q)
	}
	wg.Wait()
	p.logger.Info("telegram polling stopped")
	return nil
}

func (p *Poller) handle(ctx context.Context, msg *tgbotapi.Message) {
	userID := strconv.FormatInt(msg.Chat.ID, 10)
	if msg.From != nil {
		userID = strconv.FormatInt(msg.From.ID, 10)
	}
	reply := p.handler.Handle(context.WithoutCancel(ctx), bot.Command{UserID: userID, Text: msg.Text})
	for _, chunk := range reply.Chunks(p.opts.MaxMessageLength) {
		if _, err := p.api.Send(tgbotapi.NewMessage(msg.Chat.ID, chunk)); err != nil {
			p.logger.Error("send reply failed", slog.Int64("chat", msg.Chat.ID), slog.String("error", err.Error()))
			return
		}
	}
}
