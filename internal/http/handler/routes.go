package handler

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"docaudit/internal/contentsource"
	"docaudit/internal/service"
	"docaudit/internal/version"
)

// actor resolves the acting user from the X-Actor header. Authentication is
// terminated upstream; the header carries the already-verified identity.
func actor(c *fiber.Ctx) string {
	if v := c.Get("X-Actor"); v != "" {
		return v
	}
	return "anonymous"
}

type importRequestBody struct {
	SourceRef     string `json:"source_ref"`
	SectionID     string `json:"section_id"`
	DocumentID    string `json:"document_id"`
	FileOnly      bool   `json:"file_only"`
	NewSubfolder  bool   `json:"new_subfolder"`
	SubfolderName string `json:"subfolder_name"`
}

type rollbackRequestBody struct {
	Version int `json:"version"`
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers
// translate transport concerns only; orchestration lives in the services.
func RegisterRoutes(app *fiber.App, db *sql.DB, batchSvc service.BatchService, importSvc service.ImportService, fileSvc service.FileService) {
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// Batch upload (multipart/form-data, repeated field name: files)
	app.Post("/documents/:id/files", func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "MULTIPART_REQUIRED", "multipart form is required")
		}
		headers := form.File["files"]
		if len(headers) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "at least one file is required")
		}

		candidates := make([]service.UploadCandidate, 0, len(headers))
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
			}
			ct := fh.Header.Get("Content-Type")
			if ct == "" {
				ct = "application/octet-stream"
			}
			candidates = append(candidates, service.UploadCandidate{Name: fh.Filename, ContentType: ct, Data: data})
		}

		res, err := batchSvc.UploadBatch(c.UserContext(), c.Params("id"), candidates, actor(c))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTargetRequired), errors.Is(err, service.ErrNoFiles):
				return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", err.Error())
			case errors.Is(err, service.ErrTooManyFiles):
				return writeError(c, fiber.StatusUnprocessableEntity, "TOO_MANY_FILES", err.Error())
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		status := fiber.StatusCreated
		if res.Outcome != service.BatchAllSucceeded {
			// Partial and total failures still carry per-item detail.
			status = fiber.StatusMultiStatus
		}
		return c.Status(status).JSON(res)
	})

	// External bulk import
	app.Post("/imports", func(c *fiber.Ctx) error {
		var body importRequestBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := importSvc.Import(c.UserContext(), service.ImportRequest{
			SourceRef:     body.SourceRef,
			SectionID:     body.SectionID,
			DocumentID:    body.DocumentID,
			FileOnly:      body.FileOnly,
			NewSubfolder:  body.NewSubfolder,
			SubfolderName: body.SubfolderName,
			Actor:         actor(c),
		})
		if err != nil {
			switch {
			case errors.Is(err, contentsource.ErrInvalidRef):
				return writeError(c, fiber.StatusBadRequest, "INVALID_SOURCE_REF", "source reference is not a recognized link or id")
			case errors.Is(err, service.ErrFolderRef):
				return writeError(c, fiber.StatusBadRequest, "FOLDER_REF_NOT_ALLOWED", "folder reference not allowed for file-only import")
			case errors.Is(err, service.ErrTargetRequired):
				return writeError(c, fiber.StatusBadRequest, "TARGET_REQUIRED", "target section or document is required")
			case errors.Is(err, service.ErrNoSource):
				return writeError(c, fiber.StatusServiceUnavailable, "SOURCE_UNAVAILABLE", "content source not configured")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusOK).JSON(res)
	})

	// List a document's files
	app.Get("/documents/:id/files", func(c *fiber.Ctx) error {
		files, err := fileSvc.ListByDocument(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"files": files})
	})

	app.Get("/files/:id", func(c *fiber.Ctx) error {
		f, err := fileSvc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(f)
	})

	app.Get("/files/:id/download", func(c *fiber.Ctx) error {
		url, err := fileSvc.DownloadURL(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"url": url})
	})

	app.Get("/files/:id/versions", func(c *fiber.Ctx) error {
		versions, err := fileSvc.ListVersions(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"versions": versions})
	})

	// Inline edit: raw body replaces the file's content under its current key
	app.Put("/files/:id/content", func(c *fiber.Ctx) error {
		data := c.Body()
		if len(data) == 0 {
			return writeError(c, fiber.StatusBadRequest, "BODY_REQUIRED", "request body is required")
		}
		ct := c.Get(fiber.HeaderContentType)
		if ct == "" {
			ct = "application/octet-stream"
		}

		f, err := fileSvc.InlineEdit(c.UserContext(), c.Params("id"), data, ct, actor(c))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(f)
	})

	app.Delete("/files/:id", func(c *fiber.Ctx) error {
		if err := fileSvc.Delete(c.UserContext(), c.Params("id"), actor(c)); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Post("/files/:id/versions", func(c *fiber.Ctx) error {
		v, err := fileSvc.Snapshot(c.UserContext(), c.Params("id"), actor(c))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if v == nil {
			// Versioning is degraded; the request was acknowledged, not recorded.
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "versioning_degraded"})
		}
		return c.Status(fiber.StatusCreated).JSON(v)
	})

	app.Post("/files/:id/rollback", func(c *fiber.Ctx) error {
		var body rollbackRequestBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if body.Version <= 0 {
			if v, err := strconv.Atoi(c.Query("version", "0")); err == nil && v > 0 {
				body.Version = v
			}
		}
		if body.Version <= 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_VERSION", "version must be a positive integer")
		}

		f, err := fileSvc.Rollback(c.UserContext(), c.Params("id"), body.Version, actor(c))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			case errors.Is(err, version.ErrVersionNotFound):
				return writeError(c, fiber.StatusNotFound, "VERSION_NOT_FOUND", "version not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(f)
	})
}
