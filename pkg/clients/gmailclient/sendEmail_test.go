package gmailclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	message := buildMessage("midia@pib.org", "ana@example.com", "Escala de Junho", "📅 *QUA 04/06*")

	assert.Equal(t,
		"From: midia@pib.org\r\n"+
			"To: ana@example.com\r\n"+
			"Subject: Escala de Junho\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"UTF-8\"\r\n"+
			"\r\n"+
			"📅 *QUA 04/06*",
		message)
}

func TestBuildMessage_EncodesSubject(t *testing.T) {
	message := buildMessage("", "ana@example.com", "Escala Produção", "corpo")

	assert.NotContains(t, message, "From:")
	assert.Contains(t, message, "Subject: =?utf-8?q?Escala_Produ=C3=A7=C3=A3o?=\r\n")
}
