package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	textStart = "👋 I'm your study helper.\n" +
		"Send me any topic, for example \"photosynthesis\" or \"how vaccines work\", " +
		"and I'll explain it simply.\n\nCommands: /help, /engine"
	textBusy        = "⏳ Still thinking about your previous topic, one moment…"
	textUnknownCmd  = "Unknown command. Try /help."
	textEngineUsage = "Choose the engine that talks to Gemini:"
	errorPrefix     = "❌ Error: "

	callbackEnginePrefix = "engine:"
)

// Engine picker shown by /engine without arguments.
func makeEngineKeyboard() tgbotapi.InlineKeyboardMarkup {
	rest := tgbotapi.NewInlineKeyboardButtonData("gemini (REST)", callbackEnginePrefix+"gemini")
	sdk := tgbotapi.NewInlineKeyboardButtonData("genai (SDK)", callbackEnginePrefix+"genai")
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(rest, sdk))
}
