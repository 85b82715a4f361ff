package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/greenleaf/internal/booking/domain"
	"github.com/smallbiznis/greenleaf/internal/booking/export"
	"github.com/smallbiznis/greenleaf/internal/booking/render"
	"github.com/smallbiznis/greenleaf/internal/config"
	obscontext "github.com/smallbiznis/greenleaf/internal/observability/context"
)

// refParam reads the booking reference from the path, falling back to ?ref=.
func refParam(c *gin.Context) string {
	ref := firstNonEmpty(c.Param("ref"), c.Query("ref"))
	if ref != "" {
		c.Set("ref_id", ref)
	}
	return ref
}

func (s *Server) maxPayloadBytes() int64 {
	if s.cfg.MaxPayloadBytes > 0 {
		return s.cfg.MaxPayloadBytes
	}
	return config.DefaultMaxPayloadBytes
}

func (s *Server) SaveBooking(c *gin.Context) {
	// One byte past the limit lets the service tell "too large" from "exactly at limit".
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, s.maxPayloadBytes()+1))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	admin := s.isAdmin(c)
	actor := string(domain.ActorUser)
	if admin {
		actor = string(domain.ActorAdmin)
	}
	ctx := obscontext.WithActor(c.Request.Context(), actor)

	res, err := s.bookingSvc.Save(ctx, domain.SaveRequest{
		Body:  body,
		Admin: admin,
		IP:    clientIP(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("ref_id", res.Record.RefID)

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"id":      res.Record.RefID,
		"version": res.Record.Version,
		"locked":  res.Record.Locked,
		"indexed": res.Indexed,
	})
}

func (s *Server) GetBooking(c *gin.Context) {
	rec, err := s.bookingSvc.View(c.Request.Context(), domain.ViewRequest{
		RefID: refParam(c),
		IP:    clientIP(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) GetJob(c *gin.Context) {
	view, err := s.bookingSvc.GetJob(c.Request.Context(), refParam(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) PrintBooking(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "html")))
	if format != "html" && format != "pdf" {
		AbortWithError(c, newValidationError("format", "invalid_format", "format must be html or pdf"))
		return
	}

	var (
		out   []byte
		refID string
	)
	_, err := s.bookingSvc.Print(c.Request.Context(), domain.PrintRequest{
		RefID: refParam(c),
		IP:    clientIP(c),
		Render: func(rec domain.BookingRecord) error {
			refID = rec.RefID
			doc := render.NewDocument(rec, render.Options{
				BrandName:     s.cfg.BrandName,
				PublicBaseURL: s.cfg.PublicBaseURL,
				GeneratedAt:   s.clock.Now(),
			})
			if format == "pdf" {
				pdf, err := render.PDF(doc)
				if err != nil {
					return fmt.Errorf("render pdf: %w", err)
				}
				out = pdf
				return nil
			}
			var buf bytes.Buffer
			if err := render.WriteHTML(&buf, doc); err != nil {
				return fmt.Errorf("render html: %w", err)
			}
			out = buf.Bytes()
			return nil
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if format == "pdf" {
		c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, refID))
		c.Data(http.StatusOK, "application/pdf", out)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", out)
}

func (s *Server) ExportBookingsCSV(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be an integer"))
		return
	}

	rows, err := s.bookingSvc.Export(c.Request.Context(), domain.ListRequest{
		Query: c.Query("q"),
		Limit: limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	writeCSV(c, rows)
}

func writeCSV(c *gin.Context, rows []domain.ExportRow) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, rows); err != nil {
		AbortWithError(c, fmt.Errorf("write csv: %w", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
