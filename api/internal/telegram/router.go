package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"study-helper/api/internal/explain"
	"study-helper/api/internal/llm"
	"study-helper/api/internal/logger"
	"study-helper/api/internal/markup"
	"study-helper/api/internal/render"
	"study-helper/api/internal/util"
)

// Bot is the part of *tgbotapi.BotAPI the router needs.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Router struct {
	Bot        Bot
	Engines    *llm.Engines
	EngManager *llm.Manager
	Log        *logger.Logger

	// ExplainOptions are applied to every explainer the router builds.
	ExplainOptions []explain.Option

	flight inFlight
	wg     sync.WaitGroup
}

// HandleUpdate dispatches one update. Explanations run in the background so
// one slow chat does not hold up the others; Wait blocks until they finish.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	if upd.Message.IsCommand() {
		r.HandleCommand(upd)
		return
	}

	cid := upd.Message.Chat.ID
	topic := strings.TrimSpace(upd.Message.Text)
	if topic == "" {
		return
	}
	if !r.flight.acquire(cid) {
		r.send(cid, textBusy)
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.flight.release(cid)
		r.explain(ctx, cid, topic)
	}()
}

// Wait blocks until every running explanation has replied.
func (r *Router) Wait() { r.wg.Wait() }

func (r *Router) HandleCommand(upd tgbotapi.Update) {
	cid := upd.Message.Chat.ID
	switch upd.Message.Command() {
	case "start", "help":
		r.send(cid, textStart)
	case "engine":
		name := strings.ToLower(strings.TrimSpace(upd.Message.CommandArguments()))
		if name == "" {
			msg := tgbotapi.NewMessage(cid, textEngineUsage+"\ncurrent: "+r.EngManager.Get(cid).Name())
			msg.ReplyMarkup = makeEngineKeyboard()
			r.sendConfig(msg)
			return
		}
		r.switchEngine(cid, name)
	default:
		r.send(cid, textUnknownCmd)
	}
}

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, ""))
	if cb.Message == nil || !strings.HasPrefix(cb.Data, callbackEnginePrefix) {
		return
	}
	r.switchEngine(cb.Message.Chat.ID, strings.TrimPrefix(cb.Data, callbackEnginePrefix))
}

func (r *Router) switchEngine(cid int64, name string) {
	eng, err := r.Engines.GetEngine(name)
	if err != nil {
		r.send(cid, errorPrefix+err.Error())
		return
	}
	r.EngManager.Set(cid, eng)
	r.send(cid, "✅ Engine: "+eng.Name()+" ("+eng.GetModel()+")")
}

func (r *Router) explain(ctx context.Context, cid int64, topic string) {
	_, _ = r.Bot.Request(tgbotapi.NewChatAction(cid, tgbotapi.ChatTyping))

	x := explain.New(r.EngManager.Get(cid), append([]explain.Option{explain.WithLogger(r.log())}, r.ExplainOptions...)...)
	out := x.Explain(ctx, topic)
	if out.Failure != nil {
		r.send(cid, errorPrefix+out.Failure.Message)
		return
	}

	msgs := render.TelegramMessages(markup.FormatOrLiteral(out.Text), render.TelegramLimit)
	for i, m := range msgs {
		msg := tgbotapi.NewMessage(cid, m.HTML)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := r.Bot.Send(msg); err != nil {
			// Telegram rejected the markup; what was already delivered stays
			r.log().Warn("send html failed, falling back to plain", "chat_id", cid, "chunk", i, "error", err)
			for _, rest := range msgs[i:] {
				r.send(cid, util.Truncate(rest.Plain, render.TelegramLimit))
			}
			return
		}
	}
}

func (r *Router) send(chatID int64, text string) {
	r.sendConfig(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) sendConfig(msg tgbotapi.MessageConfig) {
	if _, err := r.Bot.Send(msg); err != nil {
		r.log().Warn("telegram send failed", "chat_id", msg.ChatID, "error", err)
	}
}

func (r *Router) log() *logger.Logger {
	if r.Log == nil {
		return logger.Nop()
	}
	return r.Log
}
