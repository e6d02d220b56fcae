package bot

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// fakeAPI records outbound calls instead of talking to Telegram.
type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
	updates  chan tgbotapi.Update
	stopped  bool

	// sendErr, when set, decides whether a Send fails.
	sendErr func(c tgbotapi.Chattable) error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 100, updates: make(chan tgbotapi.Update, 10)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		if err := f.sendErr(c); err != nil {
			return tgbotapi.Message{}, err
		}
	}
	f.sent = append(f.sent, c)
	f.nextID++

	msg := tgbotapi.Message{MessageID: f.nextID}
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		msg.Chat = &tgbotapi.Chat{ID: m.ChatID}
		msg.Text = m.Text
	}
	return msg, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

// messagesTo returns the plain messages sent to chatID, in order.
func (f *fakeAPI) messagesTo(chatID int64) []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok && m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeAPI) edits() []tgbotapi.EditMessageTextConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []tgbotapi.EditMessageTextConfig
	for _, c := range f.sent {
		if e, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeAPI) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// lastMessageID is the message ID handed out by the latest successful Send.
func (f *fakeAPI) lastMessageID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nextID
}

func (f *fakeAPI) callbackAnswers() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.requests {
		if _, ok := c.(tgbotapi.CallbackConfig); ok {
			n++
		}
	}
	return n
}
