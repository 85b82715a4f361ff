package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/greenleaf/internal/booking/domain"
	"github.com/smallbiznis/greenleaf/internal/booking/export"
	"github.com/smallbiznis/greenleaf/internal/maintenance"
)

const adminBodyLimit = 64 << 10

func readAdminBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, adminBodyLimit))
	if err != nil {
		return nil, err
	}
	return bytes.TrimSpace(body), nil
}

// bindOptionalJSON decodes the body into dst, leaving dst untouched when the
// body is empty.
func bindOptionalJSON(c *gin.Context, dst any) error {
	body, err := readAdminBody(c)
	if err != nil {
		return invalidRequestError()
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return invalidRequestError()
	}
	return nil
}

type lockRequest struct {
	RefID  string `json:"refId"`
	Action string `json:"action"`
}

func (s *Server) SetBookingLock(c *gin.Context) {
	var req lockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	action, err := domain.ParseLockAction(req.Action)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if req.RefID != "" {
		c.Set("ref_id", req.RefID)
	}

	res, err := s.bookingSvc.SetLock(c.Request.Context(), domain.LockRequest{
		RefID:  req.RefID,
		Action: action,
		IP:     clientIP(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"id":      res.Record.RefID,
		"locked":  res.Record.Locked,
		"version": res.Record.Version,
	})
}

// stageFields holds the stage update inputs, from a JSON or form-encoded body.
type stageFields struct {
	values map[string]string
	// dueAtSet is true when the body carried a non-blank dueAt string.
	dueAtSet bool
}

func parseStageBody(body []byte) stageFields {
	fields := stageFields{values: map[string]string{}}
	if len(body) == 0 {
		return fields
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil {
		for k, v := range obj {
			if str, ok := v.(string); ok {
				fields.values[k] = str
				if k == "dueAt" && strings.TrimSpace(str) != "" {
					fields.dueAtSet = true
				}
			}
		}
		return fields
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		return fields
	}
	for k := range form {
		fields.values[k] = form.Get(k)
		if k == "dueAt" && strings.TrimSpace(form.Get(k)) != "" {
			fields.dueAtSet = true
		}
	}
	return fields
}

func (s *Server) SetBookingStage(c *gin.Context) {
	body, err := readAdminBody(c)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	fields := parseStageBody(body)

	ref := firstNonEmpty(fields.values["ref"], fields.values["refId"], c.Query("ref"), c.Query("refId"))
	stage := firstNonEmpty(fields.values["stage"], c.Query("stage"))

	var dueAt *string
	if fields.dueAtSet {
		v := fields.values["dueAt"]
		dueAt = &v
	} else if v, ok := c.GetQuery("dueAt"); ok {
		dueAt = &v
	}
	if ref != "" {
		c.Set("ref_id", ref)
	}

	view, err := s.bookingSvc.SetStage(c.Request.Context(), domain.SetStageRequest{
		RefID: ref,
		Stage: stage,
		DueAt: dueAt,
		IP:    clientIP(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"job":     view.Job,
		"history": view.History,
	})
}

func (s *Server) ListBookings(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be an integer"))
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "json")))
	if format != "json" && format != "csv" {
		AbortWithError(c, newValidationError("format", "invalid_format", "format must be json or csv"))
		return
	}

	entries, err := s.bookingSvc.List(c.Request.Context(), domain.ListRequest{
		Query: c.Query("q"),
		Limit: limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if format == "csv" {
		writeCSV(c, export.RowsFromIndex(entries))
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) RebuildIndex(c *gin.Context) {
	count, err := s.bookingSvc.RebuildIndex(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": count})
}

func (s *Server) MigrateBlobs(c *gin.Context) {
	var req maintenance.MigrateRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.FromPrefix = firstNonEmpty(req.FromPrefix, c.Query("fromPrefix"))
	req.ToPrefix = firstNonEmpty(req.ToPrefix, c.Query("toPrefix"))
	dryRun, err := parseOptionalBool(c.Query("dryRun"))
	if err != nil {
		AbortWithError(c, newValidationError("dryRun", "invalid_dry_run", "dryRun must be a boolean"))
		return
	}
	if dryRun != nil {
		req.DryRun = *dryRun
	}

	res, err := s.maintenance.Migrate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) CleanupBlobs(c *gin.Context) {
	var req maintenance.CleanupRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	req.Prefix = firstNonEmpty(req.Prefix, c.Query("prefix"))
	dryRun, err := parseOptionalBool(c.Query("dryRun"))
	if err != nil {
		AbortWithError(c, newValidationError("dryRun", "invalid_dry_run", "dryRun must be a boolean"))
		return
	}
	if dryRun != nil {
		req.DryRun = dryRun
	}

	res, err := s.maintenance.Cleanup(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
