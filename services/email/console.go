package emailsvc

import (
	"fmt"
	"net/mail"
	"os"
	"strings"
	"sync"

	"github.com/hudumahq/huduma/core"
)

// consoleService writes emails to stdout instead of sending them. DEV only.
type consoleService struct {
	from mail.Address
	mu   sync.Mutex
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) *consoleService {
	return &consoleService{from: conf.DefaultFromEmail()}
}

func (svc *consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if msg.HasRecipients() && msg.HasContent() {
				svc.write(msg)
			}
		}()
	}
}

func (svc *consoleService) write(msg *core.EmailMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	var b strings.Builder
	b.WriteString("---------- EMAIL ----------\n")
	b.WriteString(fmt.Sprintf("From: %s\n", svc.from.String()))
	b.WriteString(fmt.Sprintf("To: %s\n", joinAddresses(msg.To)))
	if len(msg.Cc) > 0 {
		b.WriteString(fmt.Sprintf("Cc: %s\n", joinAddresses(msg.Cc)))
	}
	b.WriteString(fmt.Sprintf("Subject: %s\n\n", msg.Subject))
	b.WriteString(msg.Body)
	b.WriteString("\n---------------------------\n")
	_, _ = fmt.Fprint(os.Stdout, b.String())
}

func joinAddresses(addrs []mail.Address) string {
	strs := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		strs = append(strs, addr.String())
	}
	return strings.Join(strs, ", ")
}
