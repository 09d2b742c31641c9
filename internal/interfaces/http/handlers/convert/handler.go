package convert

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"singmerge/internal/application/convert/usecases"
	"singmerge/internal/domain/document"
	"singmerge/internal/shared/errors"
	"singmerge/internal/shared/logger"
	"singmerge/internal/shared/utils"
)

// Options are the server-side defaults applied to every request
type Options struct {
	MaxLinks      int
	OmitOnWarning bool
	// DefaultTarget fills the publish target fields a request leaves empty
	DefaultTarget usecases.PublishTarget
	CommitMessage string
}

// Handler serves the conversion API
type Handler struct {
	mergeUC   MergeConfigExecutor
	renderUC  ConvertLinksExecutor
	publishUC PublishConfigExecutor
	templates TemplateSource
	opts      Options
	logger    logger.Interface
}

// NewHandler creates a new Handler instance. publishUC may be nil when publishing is not configured.
func NewHandler(
	mergeUC MergeConfigExecutor,
	renderUC ConvertLinksExecutor,
	publishUC PublishConfigExecutor,
	templates TemplateSource,
	opts Options,
	logger logger.Interface,
) *Handler {
	return &Handler{
		mergeUC:   mergeUC,
		renderUC:  renderUC,
		publishUC: publishUC,
		templates: templates,
		opts:      opts,
		logger:    logger,
	}
}

// PublishEnabled reports whether the publish route should be registered
func (h *Handler) PublishEnabled() bool {
	return h.publishUC != nil
}

// Merge handles POST /api/v1/convert
func (h *Handler) Merge(c *gin.Context) {
	var req MergeRequest
	if !h.bind(c, &req, "merge") {
		return
	}

	cmd, err := h.mergeCommand(&req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result := h.mergeUC.Execute(c.Request.Context(), cmd)
	if result.Status == usecases.StatusError {
		utils.ErrorResponseWithData(c, mergeError(result.Err), toMergeResponse(result))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, result.Message, toMergeResponse(result))
}

// Render handles POST /api/v1/convert/:format. ?raw=true returns the bare rendered body.
func (h *Handler) Render(c *gin.Context) {
	var req RenderRequest
	if !h.bind(c, &req, "render") {
		return
	}

	links := req.all()
	if err := usecases.ValidateBatchSize(links, h.opts.MaxLinks); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	format := c.Param("format")
	result, err := h.renderUC.Execute(c.Request.Context(), usecases.ConvertLinksCommand{
		Links:  links,
		Format: format,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if raw, _ := strconv.ParseBool(c.Query("raw")); raw {
		c.Data(http.StatusOK, result.ContentType, []byte(result.Content))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "links converted", &RenderResponse{
		Format:      format,
		ContentType: result.ContentType,
		Content:     result.Content,
		Tags:        nonNil(result.Tags),
		Skipped:     nonNilSkipped(result.Skipped),
	})
}

// Publish handles POST /api/v1/publish
func (h *Handler) Publish(c *gin.Context) {
	if h.publishUC == nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "publishing is not configured")
		return
	}

	var req PublishRequest
	if !h.bind(c, &req, "publish") {
		return
	}

	mergeCmd, err := h.mergeCommand(&req.MergeRequest)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	message := req.CommitMessage
	if message == "" {
		message = h.opts.CommitMessage
	}

	result := h.publishUC.Execute(c.Request.Context(), usecases.PublishConfigCommand{
		Merge:         mergeCmd,
		Target:        h.target(&req),
		CommitMessage: message,
	})

	resp := toMergeResponse(result.MergeConfigResult)
	resp.Receipt = result.Receipt

	switch {
	case result.Status == usecases.StatusError:
		utils.ErrorResponseWithData(c, mergeError(result.Err), resp)
	case result.Published && result.Receipt != nil && result.Receipt.Created:
		utils.SuccessResponse(c, http.StatusCreated, result.Message, resp)
	default:
		utils.SuccessResponse(c, http.StatusOK, result.Message, resp)
	}
}

// bind decodes and validates the JSON body, writing the error response itself on failure.
func (h *Handler) bind(c *gin.Context, req interface{}, op string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Warnw("invalid request body", "operation", op, "error", err)
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid request body", err.Error()))
		return false
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.logger.Warnw("request validation failed", "operation", op, "error", err)
		utils.ErrorResponseWithError(c, err)
		return false
	}
	return true
}

func (h *Handler) mergeCommand(req *MergeRequest) (usecases.MergeConfigCommand, error) {
	links := req.all()
	if err := usecases.ValidateBatchSize(links, h.opts.MaxLinks); err != nil {
		return usecases.MergeConfigCommand{}, err
	}

	template, err := templateBytes(req.Template)
	if err != nil {
		return usecases.MergeConfigCommand{}, err
	}
	if template == nil {
		var ok bool
		if h.templates != nil {
			template, ok = h.templates.Get()
		}
		if !ok {
			return usecases.MergeConfigCommand{}, errors.NewValidationError(
				"template is required",
				"the server has no default template configured",
			)
		}
	}

	omit := h.opts.OmitOnWarning
	if req.OmitOnWarning != nil {
		omit = *req.OmitOnWarning
	}

	return usecases.MergeConfigCommand{
		Template:      template,
		Links:         links,
		OmitOnWarning: omit,
	}, nil
}

func (h *Handler) target(req *PublishRequest) usecases.PublishTarget {
	t := h.opts.DefaultTarget
	if v := strings.TrimSpace(req.Owner); v != "" {
		t.Owner = v
	}
	if v := strings.TrimSpace(req.Repo); v != "" {
		t.Repo = v
	}
	if v := strings.TrimSpace(req.Branch); v != "" {
		t.Branch = v
	}
	if v := strings.TrimSpace(req.Path); v != "" {
		t.Path = v
	}
	return t
}

// mergeError maps the error behind a failed result to an AppError.
func mergeError(err error) error {
	if err == nil {
		return errors.NewInternalError("merge failed")
	}
	if errors.IsAppError(err) {
		return err
	}
	var te *document.TemplateError
	if stderrors.As(err, &te) {
		return errors.NewTemplateError("template is unusable", te.Error()).WithCause(err)
	}
	return errors.NewInternalError("merge failed").WithCause(err)
}
