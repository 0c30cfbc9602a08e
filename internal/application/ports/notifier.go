package ports

import "context"

// Attachment archivo adjunto de un correo (ej. PDF del acta firmada).
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message correo saliente en HTML.
type Message struct {
	To          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Notifier puerto de envío de correo. La entrega es best-effort: un error aquí
// se registra y se reintenta desde el outbox, nunca revierte una transición ya
// confirmada.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
