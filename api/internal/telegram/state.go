package telegram

import "sync"

// inFlight tracks chats with an explanation still running. One per chat.
type inFlight struct {
	m sync.Map // chatID -> struct{}
}

// acquire marks chatID busy; false when it already was.
func (f *inFlight) acquire(chatID int64) bool {
	_, busy := f.m.LoadOrStore(chatID, struct{}{})
	return !busy
}

func (f *inFlight) release(chatID int64) { f.m.Delete(chatID) }

func (f *inFlight) busy(chatID int64) bool {
	_, ok := f.m.Load(chatID)
	return ok
}
