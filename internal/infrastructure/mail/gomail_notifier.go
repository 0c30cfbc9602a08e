// Package mail implementa el puerto Notifier sobre SMTP usando gomail.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/pkg/config"
)

var _ ports.Notifier = (*GomailNotifier)(nil)

// GomailNotifier envía correos HTML vía SMTP. Una conexión por envío: el
// volumen de actas no justifica mantener el dialer abierto.
type GomailNotifier struct {
	dialer *gomail.Dialer
	from   string
	log    zerolog.Logger
}

// NewGomailNotifier construye el notificador a partir de la configuración SMTP.
func NewGomailNotifier(cfg config.SMTPConfig, log zerolog.Logger) *GomailNotifier {
	return &GomailNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		log:    log.With().Str("component", "mail").Logger(),
	}
}

// Send envía el mensaje. Respeta la cancelación del contexto antes de marcar
// la conexión; una vez iniciado el envío no se interrumpe.
func (n *GomailNotifier) Send(ctx context.Context, msg ports.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	for _, att := range msg.Attachments {
		att := att
		m.Attach(att.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := io.Copy(w, bytes.NewReader(att.Data))
				return err
			}),
			gomail.SetHeader(map[string][]string{
				"Content-Type": {att.ContentType},
			}),
		)
	}

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("enviar correo: %w", err)
	}
	n.log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msg("correo enviado")
	return nil
}
