package httpserver

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"wallart-proxy/common"
	"wallart-proxy/internal/compose"
	"wallart-proxy/internal/lister"

	"github.com/gofiber/fiber/v2"
)

type handlers struct {
	lister        *lister.Service
	composer      *compose.Service
	trustedDomain string
}

type processImageRequest struct {
	InteriorImage string `json:"interiorImage"`
	ArtworkImage  string `json:"artworkImage"`
}

type processImageResponse struct {
	FinalImage  string `json:"finalImage"`
	MIMEType    string `json:"mimeType,omitempty"`
	Description string `json:"description,omitempty"`
}

// listModels GET /api/listModels
func (h *handlers) listModels(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodGet {
		c.Set(fiber.HeaderAllow, fiber.MethodGet)
		return writeError(c, fiber.StatusMethodNotAllowed, "Method Not Allowed")
	}

	result := h.lister.List(c.UserContext())
	return c.Status(result.Status).JSON(result.Body)
}

// processImage OPTIONS|POST /api/processImage
func (h *handlers) processImage(c *fiber.Ctx) error {
	applyCORS(c, h.trustedDomain)

	switch c.Method() {
	case fiber.MethodOptions:
		c.Status(fiber.StatusOK)
		return nil
	case fiber.MethodPost:
	default:
		return writeError(c, fiber.StatusMethodNotAllowed, "Method not allowed. Use POST.")
	}

	var req processImageRequest
	if body := bytes.TrimSpace(c.Body()); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "Request body must be a JSON object.")
		}
	}

	out, err := h.composer.Compose(c.UserContext(), req.InteriorImage, req.ArtworkImage)
	if err != nil {
		return composeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(processImageResponse{
		FinalImage:  base64.StdEncoding.EncodeToString(out.Image),
		MIMEType:    out.MIMEType,
		Description: out.Description,
	})
}

// composeError 把合成错误映射为状态码与错误信息
func composeError(c *fiber.Ctx, err error) error {
	var inputErr *compose.InputError
	var noImage *compose.NoImageError

	switch {
	case errors.Is(err, compose.ErrMissingImages):
		return writeError(c, fiber.StatusBadRequest, "Both interiorImage and artworkImage are required (Base64 strings).")
	case errors.As(err, &inputErr):
		return writeError(c, fiber.StatusBadRequest, inputErr.Field+" is not valid Base64.")
	case errors.Is(err, compose.ErrMissingAPIKey):
		return writeError(c, fiber.StatusInternalServerError, "Server misconfiguration: GEMINI_API_KEY is missing.")
	case errors.As(err, &noImage):
		body := fiber.Map{"error": "Model did not return an image."}
		if noImage.Description != "" {
			body["description"] = noImage.Description
		}
		return c.Status(fiber.StatusBadGateway).JSON(body)
	}

	common.WithError(err).WithField("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).Error("Failed to process image")
	return writeError(c, fiber.StatusInternalServerError, err.Error())
}

// writeError 统一的 JSON 错误响应
func writeError(c *fiber.Ctx, status int, msg string) error {
	if msg == "" {
		msg = http.StatusText(status)
		if msg == "" {
			msg = "Internal Server Error"
		}
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}
