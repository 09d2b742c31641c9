package convert

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"singmerge/internal/application/convert/usecases"
	"singmerge/internal/domain/link"
	"singmerge/internal/interfaces/http/handlers/testutil"
	apperrors "singmerge/internal/shared/errors"
)

const testTemplate = `{"outbounds":[{"tag":"proxy","type":"selector","outbounds":[]},{"tag":"direct","type":"direct"},{"tag":"block","type":"block"}]}`

// =====================================================================
// Test doubles
// =====================================================================

type staticTemplates struct {
	content []byte
}

func (s staticTemplates) Get() ([]byte, bool) {
	if s.content == nil {
		return nil, false
	}
	return append([]byte(nil), s.content...), true
}

type mockPublishUC struct {
	cmd    usecases.PublishConfigCommand
	result *usecases.PublishConfigResult
}

func (m *mockPublishUC) Execute(ctx context.Context, cmd usecases.PublishConfigCommand) *usecases.PublishConfigResult {
	m.cmd = cmd
	return m.result
}

func newTestHandler(templates TemplateSource, publishUC PublishConfigExecutor, opts Options) *Handler {
	log := testutil.NewMockLogger()
	parser, namer := link.NewParser(), link.NewDefaultNamer()
	return NewHandler(
		usecases.NewMergeConfigUseCase(parser, namer, usecases.MergeOptions{}, log),
		usecases.NewConvertLinksUseCase(parser, namer, log),
		publishUC,
		templates,
		opts,
		log,
	)
}

func parseMerge(t *testing.T, body []byte) (testutil.APIResponse, MergeResponse) {
	t.Helper()
	var resp testutil.APIResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	var data MergeResponse
	if len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, &data))
	}
	return resp, data
}

// =====================================================================
// Merge
// =====================================================================

func TestHandler_Merge_DefaultTemplate(t *testing.T) {
	h := newTestHandler(staticTemplates{content: []byte(testTemplate)}, nil, Options{MaxLinks: 50})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/convert", map[string]any{
		"text": "# my nodes\ntrojan://pw@host.example:443#MyNode\n\nnot-a-link\n",
	})
	h.Merge(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp, data := parseMerge(t, w.Body.Bytes())
	assert.True(t, resp.Success)
	assert.Equal(t, usecases.StatusSuccess, data.Status)
	assert.Equal(t, []string{"MyNode 01"}, data.Tags)
	require.Len(t, data.Skipped, 1)
	assert.Equal(t, 2, data.Skipped[0].Index)

	var cfg struct {
		Outbounds []struct {
			Tag       string   `json:"tag"`
			Outbounds []string `json:"outbounds"`
		} `json:"outbounds"`
	}
	require.NoError(t, json.Unmarshal(data.Config, &cfg))
	require.Len(t, cfg.Outbounds, 4)
	assert.Equal(t, "MyNode 01", cfg.Outbounds[1].Tag)
	assert.Equal(t, []string{"MyNode 01"}, cfg.Outbounds[0].Outbounds)
}

func TestHandler_Merge_TemplateInRequest(t *testing.T) {
	h := newTestHandler(nil, nil, Options{})

	tests := []struct {
		name     string
		template any
	}{
		{name: "object", template: json.RawMessage(`{"outbounds":[]}`)},
		{name: "string", template: `{"outbounds":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/convert", map[string]any{
				"links":    []string{"trojan://pw@host.example:443#A"},
				"template": tt.template,
			})
			h.Merge(c)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			_, data := parseMerge(t, w.Body.Bytes())
			assert.Equal(t, []string{"A 01"}, data.Tags)
		})
	}
}

func TestHandler_Merge_Warning(t *testing.T) {
	h := newTestHandler(staticTemplates{content: []byte(testTemplate)}, nil, Options{})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/convert", map[string]any{
		"links":           []string{"vmess://###"},
		"omit_on_warning": true,
	})
	h.Merge(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp, data := parseMerge(t, w.Body.Bytes())
	assert.True(t, resp.Success)
	assert.Equal(t, usecases.StatusWarning, data.Status)
	assert.Empty(t, data.Config)
	assert.Len(t, data.Skipped, 1)
}

func TestHandler_Merge_Errors(t *testing.T) {
	tests := []struct {
		name       string
		templates  TemplateSource
		opts       Options
		body       any
		wantStatus int
		wantType   apperrors.ErrorType
	}{
		{
			name:       "malformed body",
			templates:  staticTemplates{content: []byte(testTemplate)},
			body:       `{"links":`,
			wantStatus: http.StatusBadRequest,
			wantType:   apperrors.ErrorTypeBadRequest,
		},
		{
			name:       "no links",
			templates:  staticTemplates{content: []byte(testTemplate)},
			body:       map[string]any{},
			wantStatus: http.StatusBadRequest,
			wantType:   apperrors.ErrorTypeValidation,
		},
		{
			name:       "too many links",
			templates:  staticTemplates{content: []byte(testTemplate)},
			opts:       Options{MaxLinks: 1},
			body:       map[string]any{"text": "trojan://a@h:1\ntrojan://b@h:2"},
			wantStatus: http.StatusBadRequest,
			wantType:   apperrors.ErrorTypeValidation,
		},
		{
			name:       "no template anywhere",
			body:       map[string]any{"text": "trojan://a@h:1"},
			wantStatus: http.StatusBadRequest,
			wantType:   apperrors.ErrorTypeValidation,
		},
		{
			name:       "broken template",
			body:       map[string]any{"text": "trojan://a@h:1", "template": json.RawMessage(`{"route":{}}`)},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apperrors.ErrorTypeTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(tt.templates, nil, tt.opts)

			c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/convert", tt.body)
			h.Merge(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp, _ := parseMerge(t, w.Body.Bytes())
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, string(tt.wantType), resp.Error.Type)
		})
	}
}

// =====================================================================
// Render
// =====================================================================

func TestHandler_Render(t *testing.T) {
	h := newTestHandler(nil, nil, Options{})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/convert/clash", map[string]any{
		"links": []string{"trojan://pw@host.example:443#A"},
	})
	testutil.SetURLParam(c, "format", "clash")
	h.Render(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var data RenderResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "clash", data.Format)
	assert.Contains(t, data.Content, "name: A 01")
	assert.Equal(t, []string{"A 01"}, data.Tags)
	assert.Empty(t, data.Skipped)
}

func TestHandler_Render_Raw(t *testing.T) {
	h := newTestHandler(nil, nil, Options{})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/convert/clash?raw=true", map[string]any{
		"links": []string{"trojan://pw@host.example:443#A"},
	})
	testutil.SetURLParam(c, "format", "clash")
	testutil.SetQueryParams(c, map[string]string{"raw": "true"})
	h.Render(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/yaml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "proxies:")
}

func TestHandler_Render_UnknownFormat(t *testing.T) {
	h := newTestHandler(nil, nil, Options{})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/convert/surge", map[string]any{
		"links": []string{"trojan://pw@host.example:443#A"},
	})
	testutil.SetURLParam(c, "format", "surge")
	h.Render(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =====================================================================
// Publish
// =====================================================================

func TestHandler_Publish(t *testing.T) {
	publishUC := &mockPublishUC{result: &usecases.PublishConfigResult{
		MergeConfigResult: &usecases.MergeConfigResult{
			Status:        usecases.StatusSuccess,
			Message:       "converted 1 links; published to me/configs@main:config.json",
			ConfigContent: `{"outbounds":[]}`,
			Tags:          []string{"A 01"},
		},
		Published: true,
		Receipt:   &usecases.PublishReceipt{CommitSHA: "abc", Created: true},
	}}
	h := newTestHandler(staticTemplates{content: []byte(testTemplate)}, publishUC, Options{
		DefaultTarget: usecases.PublishTarget{Owner: "me", Repo: "configs", Branch: "main", Path: "config.json"},
		CommitMessage: "default message",
	})
	require.True(t, h.PublishEnabled())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/publish", map[string]any{
		"links":  []string{"trojan://pw@host.example:443#A"},
		"branch": "staging",
	})
	h.Publish(c)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	_, data := parseMerge(t, w.Body.Bytes())
	require.NotNil(t, data.Receipt)
	assert.Equal(t, "abc", data.Receipt.CommitSHA)

	assert.Equal(t, usecases.PublishTarget{Owner: "me", Repo: "configs", Branch: "staging", Path: "config.json"}, publishUC.cmd.Target)
	assert.Equal(t, "default message", publishUC.cmd.CommitMessage)
	assert.Equal(t, testTemplate, string(publishUC.cmd.Merge.Template))
}

func TestHandler_Publish_Failure(t *testing.T) {
	cause := errors.New("boom")
	publishUC := &mockPublishUC{result: &usecases.PublishConfigResult{
		MergeConfigResult: &usecases.MergeConfigResult{
			Status:        usecases.StatusError,
			Message:       "config merged but publishing failed",
			ConfigContent: `{"outbounds":[]}`,
			Err:           apperrors.NewUpstreamError("failed to publish config to github").WithCause(cause),
		},
	}}
	h := newTestHandler(staticTemplates{content: []byte(testTemplate)}, publishUC, Options{})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/publish", map[string]any{
		"links": []string{"trojan://pw@host.example:443#A"},
	})
	h.Publish(c)

	require.Equal(t, http.StatusBadGateway, w.Code)
	resp, data := parseMerge(t, w.Body.Bytes())
	assert.False(t, resp.Success)
	assert.Equal(t, string(apperrors.ErrorTypeUpstream), resp.Error.Type)
	assert.JSONEq(t, `{"outbounds":[]}`, string(data.Config))
}

func TestHandler_Publish_Disabled(t *testing.T) {
	h := newTestHandler(nil, nil, Options{})
	assert.False(t, h.PublishEnabled())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/publish", map[string]any{"text": "x"})
	h.Publish(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMergeError(t *testing.T) {
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.GetAppError(mergeError(nil)).Type)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.GetAppError(mergeError(errors.New("x"))).Type)

	validation := apperrors.NewValidationError("bad")
	assert.Same(t, validation, mergeError(validation))
}
