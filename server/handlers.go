package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/relay"
	"github.com/zvonler/adminreport/report"
	"github.com/zvonler/adminreport/reportstate"
	"github.com/zvonler/adminreport/session"
	"github.com/zvonler/adminreport/utils"
)

type periodResponse struct {
	Key  string `json:"key"`
	From string `json:"from"`
	To   string `json:"to"`
	Days int    `json:"days"`
}

type stateResponse struct {
	reportstate.State
	Message string `json:"message"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrPeriodNotFound):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, model.ErrConfigUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, model.ErrNotAuthorized),
		errors.Is(err, model.ErrInvalidResponse),
		errors.Is(err, relay.ErrRelayUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": report.StatusMessage(err)})
}

// errorHandler keeps raw error text out of responses.
func errorHandler(logger *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		logger.Errorw("unhandled request error", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": report.StatusMessage(err)})
	}
}

func toStateResponse(st reportstate.State) stateResponse {
	msg := ""
	switch st.Status {
	case reportstate.Error:
		msg = report.StatusMessage(st.Err)
	case reportstate.Ready:
		msg = report.StatusMessage(nil)
	}
	return stateResponse{State: st, Message: msg}
}

func (s *Server) getPeriod(c *fiber.Ctx) error {
	p, err := s.session.ResolvePeriod(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(periodResponse{
		Key:  p.Key(),
		From: utils.FormatDate(p.Start),
		To:   utils.FormatDate(p.End),
		Days: p.Days,
	})
}

func (s *Server) syncRoster(c *fiber.Ctx) error {
	roster, err := s.session.SyncRoster(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"admins": len(roster.AllowedNicks)})
}

func (s *Server) loadInactives(c *fiber.Ctx) error {
	record, err := s.session.LoadInactives(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"entries": len(record.Entries), "admins": len(record.ByNick)})
}

func (s *Server) getForumState(c *fiber.Ctx) error {
	return c.JSON(toStateResponse(s.session.ReportState()))
}

func (s *Server) refreshForum(c *fiber.Ctx) error {
	if _, err := s.session.ForumData(c.UserContext()); err != nil {
		if errors.Is(err, model.ErrPeriodNotFound) {
			return errorResponse(c, err)
		}
		return c.Status(statusFor(err)).JSON(toStateResponse(s.session.ReportState()))
	}
	return c.JSON(toStateResponse(s.session.ReportState()))
}

func (s *Server) getForumReport(c *fiber.Ctx) error {
	text, err := s.session.ForumReport(c.UserContext())
	if err != nil {
		s.logger.Infow("forum report built with errors", "error", err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(text)
}

func (s *Server) getAdminReport(c *fiber.Ctx) error {
	opts := session.AdminReportOptions{
		IncludeMissing: c.QueryBool("includeMissing", false),
		SyncRoster:     c.QueryBool("sync", false),
		LoadInactives:  c.QueryBool("inactives", false),
		WithNotes:      c.QueryBool("notes", true),
		WithForum:      c.QueryBool("forum", false),
	}
	text, err := s.session.AdminReport(c.UserContext(), opts)
	if err != nil && text == "" {
		return errorResponse(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(text)
}

func (s *Server) reloadConfig(c *fiber.Ctx) error {
	if err := s.session.ReloadConfig(); err != nil {
		return errorResponse(c, err)
	}
	cfg := s.session.Config()
	return c.JSON(fiber.Map{"groups": len(cfg.Groups), "forums": len(cfg.Forums)})
}
