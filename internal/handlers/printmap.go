package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"mapprint/internal/chrome"
	"mapprint/internal/domain"
	u "mapprint/internal/utils"
)

const errGeneratingPDF = "error generating pdf"

// Renderer turns a page address into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, targetURL string) ([]byte, error)
}

// MapDump is the diagnostic body returned for dump=1.
type MapDump struct {
	Zoom      int     `json:"zoom"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	URL       string  `json:"url"`
}

// PrintMapService bundles configuration and the renderer for the print route.
type PrintMapService struct {
	Config   *u.Config
	Renderer Renderer
}

// NewPrintMapService creates a service backed by a per-request headless Chrome.
func NewPrintMapService(cfg u.Config) *PrintMapService {
	return NewPrintMapServiceWith(cfg, chrome.NewRenderer(cfg))
}

// NewPrintMapServiceWith creates a service with a custom renderer.
func NewPrintMapServiceWith(cfg u.Config, r Renderer) *PrintMapService {
	return &PrintMapService{
		Config:   &cfg,
		Renderer: r,
	}
}

// Matches reports whether a request belongs to the print route: a GET whose
// request URI, query string included, contains the route segment.
func (svc *PrintMapService) Matches(method, requestURI string) bool {
	return method == fiber.MethodGet && strings.Contains(requestURI, svc.Config.Map.PrintRoute)
}

// HandlePrintMap answers GET requests on the print route with either the
// diagnostic dump or the rendered map PDF.
func (svc *PrintMapService) HandlePrintMap(c *fiber.Ctx) error {
	params := c.Queries()
	u.Info("Print request",
		"ip", ClientIP(c),
		"url", c.OriginalURL(),
		"method", c.Method(),
		"query", params,
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
	)

	q, err := svc.extractMapQuery(params)
	if err != nil {
		return err
	}

	if q.IsDump() {
		return c.JSON(MapDump{
			Zoom:      q.Zoom,
			Longitude: q.Longitude,
			Latitude:  q.Latitude,
			URL:       q.URL(),
		})
	}

	mapURL := q.URL()
	u.Info("About to retrieve url", "url", mapURL)

	pdf, err := svc.Renderer.Render(c.UserContext(), mapURL)
	if err != nil || pdf == nil {
		u.Error("PDF generation failed", "url", mapURL, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, errGeneratingPDF)
	}

	u.Info("PDF generated", "url", mapURL, "bytes", len(pdf))
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentLength, strconv.Itoa(len(pdf)))
	return c.Send(pdf)
}

// extractMapQuery parses the query and applies the configured parameter mode.
// A missing zoom always stops the request; malformed values stop it only in
// strict mode and otherwise fall back to the defaults.
func (svc *PrintMapService) extractMapQuery(params map[string]string) (domain.MapQuery, error) {
	q, err := domain.ParseMapQuery(params)
	switch {
	case err == nil:
		return q, nil
	case errors.Is(err, domain.ErrZoomMissing):
		return q, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	case svc.Config.Map.ParamMode == u.ParamModeStrict:
		return q, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	default:
		u.Warn("Ignoring malformed parameters, using defaults", "error", err)
		return q, nil
	}
}

// ClientIP prefers the first X-Forwarded-For entry over the socket peer.
func ClientIP(c *fiber.Ctx) string {
	if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return c.Context().RemoteIP().String()
}
