package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Activos-api/internal/application/acta"
	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/domain"
)

// SignatureHandler maneja los endpoints públicos de firma. No hay sesión: la
// posesión del token es la autorización del portador.
type SignatureHandler struct {
	orch *acta.Orchestrator
}

// NewSignatureHandler construye el handler de firma.
func NewSignatureHandler(orch *acta.Orchestrator) *SignatureHandler {
	return &SignatureHandler{orch: orch}
}

// View godoc
// @Summary      Vista pública del acta a firmar
// @Description  Devuelve la vista redactada del acta (número, contraparte y
//
//	líneas, sin datos internos). Si el token ya fue canjeado o expiró, la
//	vista incluye el estado terminal para que el front pinte la pantalla
//	correspondiente.
//
// @Tags         firma
// @Produce      json
// @Param        token  path  string  true  "Token de firma"
// @Success      200  {object}  dto.SignatureViewResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/firma/{token} [get]
func (h *SignatureHandler) View(c *fiber.Ctx) error {
	view, err := h.orch.View(c.Context(), c.Params("token"))
	if err != nil {
		return signatureError(c, err)
	}
	return c.JSON(view)
}

// Sign godoc
// @Summary      Firmar el acta
// @Description  Canje de un solo uso: confirma el inventario, marca el acta
//
//	firmada y guarda la imagen de la firma. Un segundo intento sobre el
//	mismo token retorna 409.
//
// @Tags         firma
// @Accept       json
// @Produce      json
// @Param        token  path  string  true  "Token de firma"
// @Param        body   body  dto.SignRequest  true  "firma: PNG en base64"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/firma/{token}/firmar [post]
func (h *SignatureHandler) Sign(c *fiber.Ctx) error {
	var in dto.SignRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	meta := acta.ClientMeta{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
	if err := h.orch.Sign(c.Context(), c.Params("token"), in.Firma, meta); err != nil {
		return signatureError(c, err)
	}
	return c.JSON(fiber.Map{"message": "acta firmada"})
}

// Reject godoc
// @Summary      Rechazar el acta
// @Description  Canje de un solo uso: libera las reservas y deja el acta
//
//	rechazada con el motivo declarado.
//
// @Tags         firma
// @Accept       json
// @Produce      json
// @Param        token  path  string  true  "Token de firma"
// @Param        body   body  dto.RejectRequest  true  "motivo del rechazo"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/firma/{token}/rechazar [post]
func (h *SignatureHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	meta := acta.ClientMeta{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
	if err := h.orch.Reject(c.Context(), c.Params("token"), in.Motivo, meta); err != nil {
		return signatureError(c, err)
	}
	return c.JSON(fiber.Map{"message": "acta rechazada"})
}

// signatureError mapea errores del canje a HTTP. El token inexistente y el
// token de otra acta responden igual (404) para no filtrar información.
func signatureError(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "firma o motivo inválido"})
	case domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "token no encontrado"})
	case domain.ErrTokenUsed:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TOKEN_USED", Message: "el token ya fue utilizado"})
	case domain.ErrTokenExpired:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TOKEN_EXPIRED", Message: "el token expiró"})
	case domain.ErrInvalidTransition:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "el acta ya no admite firma"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
