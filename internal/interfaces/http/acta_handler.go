package http

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/Activos-api/internal/application/acta"
	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// ActaHandler maneja las peticiones HTTP de actas (protegido).
type ActaHandler struct {
	orch       *acta.Orchestrator
	uploadsDir string
}

// NewActaHandler construye el handler de actas.
func NewActaHandler(orch *acta.Orchestrator, uploadsDir string) *ActaHandler {
	return &ActaHandler{orch: orch, uploadsDir: uploadsDir}
}

// Create godoc
// @Summary      Crear acta (entrega, devolución o consumo)
// @Description  Reserva el inventario, emite el token de firma y encola el
//
//	correo a la contraparte. Acepta JSON directo o multipart con el campo
//	"payload" (JSON) y archivos "fotos" como evidencia por línea.
//
// @Tags         actas
// @Security     Bearer
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        body  body  dto.CreateActaRequest  true  "kind, counterparty, lines"
// @Success      201   {object}  dto.ActaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/actas [post]
func (h *ActaHandler) Create(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}

	var in dto.CreateActaRequest
	photoPaths, err := h.parseBody(c, &in)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	out, err := h.orch.Create(c.Context(), actorID, in, photoPaths)
	if err != nil {
		return actaError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Detalle de un acta
// @Tags         actas
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del acta (UUID)"
// @Success      200  {object}  dto.ActaResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/actas/{id} [get]
func (h *ActaHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.orch.Get(c.Context(), c.Params("id"))
	if err != nil {
		return actaError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar actas
// @Tags         actas
// @Security     Bearer
// @Produce      json
// @Param        kind    query  string  false  "Filtrar por tipo (entrega|devolucion|consumo)"
// @Param        status  query  string  false  "Filtrar por estado"
// @Param        q       query  string  false  "Búsqueda por contraparte o número (sin acentos)"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339)"
// @Param        limit   query  int     false  "Tamaño de página (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.ActaResponse
// @Router       /api/actas [get]
func (h *ActaHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	f := repository.ActaFilter{
		Kind:   c.Query("kind"),
		Status: c.Query("status"),
		Search: c.Query("q"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		f.To = &t
	}

	actas, err := h.orch.List(c.Context(), f)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{
		"actas": actas,
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// Reissue godoc
// @Summary      Reenviar solicitud de firma
// @Description  Cancela el token pendiente, emite uno nuevo y vuelve a encolar
//
//	el correo. Solo actas pendiente_firma.
//
// @Tags         actas
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del acta (UUID)"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/actas/{id}/reenviar [post]
func (h *ActaHandler) Reissue(c *fiber.Ctx) error {
	if err := h.orch.ReissueSignatureRequest(c.Context(), c.Params("id")); err != nil {
		return actaError(c, err)
	}
	return c.JSON(fiber.Map{"message": "solicitud de firma reenviada"})
}

// RegisterReturn godoc
// @Summary      Registrar devolución en mostrador
// @Description  El operador registra la devolución de líneas de una entrega
//
//	firmada declarando el resultado de cada activo (disponible, dañado,
//	perdido). Acepta JSON o multipart con "payload" y "fotos".
//
// @Tags         actas
// @Security     Bearer
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        id    path  string  true  "ID del acta de entrega (UUID)"
// @Param        body  body  dto.ReturnRequest  true  "lines: item_id + outcome"
// @Success      200   {object}  dto.ActaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/actas/{id}/devolucion [post]
func (h *ActaHandler) RegisterReturn(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}

	var in dto.ReturnRequest
	photoPaths, err := h.parseBody(c, &in)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	out, err := h.orch.RegisterReturn(c.Context(), actorID, c.Params("id"), in, photoPaths)
	if err != nil {
		return actaError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar un acta nunca firmada
// @Description  Libera las reservas, cancela el token y borra el documento.
//
//	Las actas firmadas o rechazadas son inmutables.
//
// @Tags         actas
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del acta (UUID)"
// @Success      204  "sin contenido"
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/actas/{id} [delete]
func (h *ActaHandler) Delete(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.orch.Delete(c.Context(), actorID, c.Params("id")); err != nil {
		return actaError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PDF godoc
// @Summary      Descargar el acta en PDF
// @Tags         actas
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID del acta (UUID)"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/actas/{id}/pdf [get]
func (h *ActaHandler) PDF(c *fiber.Ctx) error {
	filename, raw, err := h.orch.RenderPDF(c.Context(), c.Params("id"))
	if err != nil {
		return actaError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(raw)
}

// parseBody decodifica el cuerpo como JSON directo o, si la petición es
// multipart, desde el campo "payload"; los archivos "fotos" se guardan en el
// directorio de uploads y se devuelven sus rutas en el orden recibido.
func (h *ActaHandler) parseBody(c *fiber.Ctx, dst any) ([]string, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, c.BodyParser(dst)
	}

	if err := json.Unmarshal([]byte(c.FormValue("payload")), dst); err != nil {
		return nil, err
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, fh := range form.File["fotos"] {
		name := uuid.New().String() + filepath.Ext(fh.Filename)
		path := filepath.Join(h.uploadsDir, name)
		if err := c.SaveFile(fh, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// actaError mapea errores de dominio del ciclo de actas a HTTP.
func actaError(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "acta o activo no encontrado"})
	case domain.ErrDuplicate:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "línea duplicada para el mismo activo"})
	case domain.ErrInsufficientStock:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case domain.ErrItemNotAvailable:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ITEM_NOT_AVAILABLE", Message: "el activo no está en el estado requerido"})
	case domain.ErrInvalidTransition:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "el acta no admite esta operación en su estado actual"})
	case domain.ErrLineNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "LINE_NOT_FOUND", Message: "la línea no pertenece al acta"})
	case domain.ErrLineAlreadyReturned:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LINE_ALREADY_RETURNED", Message: "la línea ya fue devuelta"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
