package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var _ repository.TokenRepository = (*TokenRepo)(nil)

const tokenColumns = `id, value, acta_id, recipient_email, status, issued_at, expires_at,
	consumed_at, client_ip, client_user_agent, rejection_reason`

// TokenRepo implementación de TokenRepository sobre PostgreSQL.
type TokenRepo struct {
	q Querier
}

// NewTokenRepository construye el adaptador de tokens de firma.
func NewTokenRepository(q Querier) *TokenRepo {
	return &TokenRepo{q: q}
}

// Create persiste un token recién emitido.
func (r *TokenRepo) Create(token *entity.SignatureToken) error {
	query := `
		INSERT INTO signature_tokens (` + tokenColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		token.ID, token.Value, token.ActaID, token.RecipientEmail, token.Status,
		token.IssuedAt, token.ExpiresAt, token.ConsumedAt,
		token.ClientIP, token.ClientUserAgent, token.RejectionReason,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert signature token: %w", err)
	}
	return nil
}

// GetByValue obtiene un token por su valor opaco, o nil si no existe.
func (r *TokenRepo) GetByValue(value string) (*entity.SignatureToken, error) {
	return r.get(`SELECT `+tokenColumns+` FROM signature_tokens WHERE value = $1`, value)
}

// GetByValueForUpdate obtiene el token bloqueando su fila (SELECT FOR UPDATE).
// Dos canjes concurrentes se serializan: el segundo ve el token ya consumido.
func (r *TokenRepo) GetByValueForUpdate(value string) (*entity.SignatureToken, error) {
	return r.get(`SELECT `+tokenColumns+` FROM signature_tokens WHERE value = $1 FOR UPDATE`, value)
}

func (r *TokenRepo) get(query, value string) (*entity.SignatureToken, error) {
	var t entity.SignatureToken
	err := r.q.QueryRow(context.Background(), query, value).Scan(
		&t.ID, &t.Value, &t.ActaID, &t.RecipientEmail, &t.Status,
		&t.IssuedAt, &t.ExpiresAt, &t.ConsumedAt,
		&t.ClientIP, &t.ClientUserAgent, &t.RejectionReason,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get signature token: %w", err)
	}
	return &t, nil
}

// Update actualiza el resultado del canje (estado, metadatos del cliente).
func (r *TokenRepo) Update(token *entity.SignatureToken) error {
	query := `
		UPDATE signature_tokens SET status = $2, consumed_at = $3,
			client_ip = $4, client_user_agent = $5, rejection_reason = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		token.ID, token.Status, token.ConsumedAt,
		token.ClientIP, token.ClientUserAgent, token.RejectionReason,
	)
	if err != nil {
		return fmt.Errorf("update signature token: %w", err)
	}
	return nil
}

// CancelPending cancela todos los tokens pendientes del acta. Se invoca antes
// de emitir un token nuevo para que solo el último enlace enviado sea válido.
func (r *TokenRepo) CancelPending(actaID string, now time.Time) error {
	query := `
		UPDATE signature_tokens SET status = $3, consumed_at = $2
		WHERE acta_id = $1 AND status = $4`
	_, err := r.q.Exec(context.Background(), query,
		actaID, now, entity.TokenStatusCancelado, entity.TokenStatusPendiente,
	)
	if err != nil {
		return fmt.Errorf("cancel pending tokens: %w", err)
	}
	return nil
}
