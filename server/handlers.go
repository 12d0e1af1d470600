package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nomatterpluda/browser-history-search/dispatch"
	"github.com/nomatterpluda/browser-history-search/extract"
	"github.com/nomatterpluda/browser-history-search/search"
)

type handlers struct {
	dispatcher Dispatcher
	logger     *slog.Logger
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: msg})
}

func (h *handlers) search(c echo.Context) error {
	var req search.Request
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid search request")
	}
	result := h.dispatcher.Dispatch(c.Request().Context(), dispatch.Command{
		Type:  dispatch.SearchHistory,
		Query: req.Query,
		Page:  req.Page,
		Limit: req.Limit,
	})
	return c.JSON(http.StatusOK, result)
}

func (h *handlers) command(c echo.Context) error {
	var cmd dispatch.Command
	if err := c.Bind(&cmd); err != nil {
		return badRequest(c, "invalid command")
	}
	result := h.dispatcher.Dispatch(c.Request().Context(), cmd)
	if !result.Success && result.Error == dispatch.ErrUnknownCommand.Error() {
		return c.JSON(http.StatusBadRequest, result)
	}
	return c.JSON(http.StatusOK, result)
}

// contentRequest is either raw HTML to extract or text already extracted.
type contentRequest struct {
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	HTML         string    `json:"html"`
	Content      string    `json:"content"`
	ExtractedAt  time.Time `json:"extractedAt"`
	TimeOnPageMS int64     `json:"timeOnPage"`
	Screenshot   []byte    `json:"screenshot"`
}

func (h *handlers) content(c echo.Context) error {
	var req contentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid content")
	}

	payload := &dispatch.ContentPayload{
		URL:          req.URL,
		Title:        req.Title,
		Content:      req.Content,
		ExtractedAt:  req.ExtractedAt,
		TimeOnPageMS: req.TimeOnPageMS,
		Screenshot:   req.Screenshot,
	}
	if req.HTML != "" {
		extracted, err := extract.FromHTML(strings.NewReader(req.HTML), req.URL, time.Duration(req.TimeOnPageMS)*time.Millisecond)
		if err != nil {
			h.logger.Debug("extraction rejected page", "url", req.URL, "err", err)
			return c.JSON(http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		}
		payload.Content = extracted.Content
		if payload.Title == "" {
			payload.Title = extracted.Title
		}
	}

	result := h.dispatcher.Dispatch(c.Request().Context(), dispatch.Command{
		Type:    dispatch.ContentExtracted,
		Content: payload,
	})
	if !result.Success {
		return c.JSON(http.StatusUnprocessableEntity, result)
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *handlers) health(c echo.Context) error {
	result := h.dispatcher.Dispatch(c.Request().Context(), dispatch.Command{Type: dispatch.Ping})
	return c.JSON(http.StatusOK, result)
}
