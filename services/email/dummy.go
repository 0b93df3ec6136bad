package emailsvc

import (
	"sync"

	"github.com/hudumahq/huduma/core"
)

// dummyService records messages instead of sending them. TEST only.
type dummyService struct {
	mu   sync.Mutex
	sent []core.EmailMessage
}

var _ core.EmailService = (*dummyService)(nil)

func NewDummyService() *dummyService {
	return &dummyService{}
}

func (svc *dummyService) SendMessages(messages ...*core.EmailMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, msg := range messages {
		if msg.HasRecipients() && msg.HasContent() {
			svc.sent = append(svc.sent, *msg)
		}
	}
}

func (svc *dummyService) SentMessages() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]core.EmailMessage(nil), svc.sent...)
}

func (svc *dummyService) Clear() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sent = nil
}
