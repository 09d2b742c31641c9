package convert

import (
	"encoding/json"
	"strings"

	"singmerge/internal/application/convert/usecases"
	"singmerge/internal/shared/errors"
)

// LinksInput accepts links either as an array or as newline-separated text.
type LinksInput struct {
	Links []string `json:"links" validate:"required_without=Text"`
	Text  string   `json:"text" validate:"required_without=Links"`
}

// all returns the array links followed by the lines of Text
func (in LinksInput) all() []string {
	links := make([]string, 0, len(in.Links))
	links = append(links, in.Links...)
	return append(links, usecases.SplitLinks(in.Text)...)
}

type MergeRequest struct {
	LinksInput
	// Template is a sing-box config object, or a string holding one. Empty selects the server template.
	Template      json.RawMessage `json:"template"`
	OmitOnWarning *bool           `json:"omit_on_warning"`
}

type RenderRequest struct {
	LinksInput
}

type PublishRequest struct {
	MergeRequest
	Owner         string `json:"owner"`
	Repo          string `json:"repo"`
	Branch        string `json:"branch"`
	Path          string `json:"path"`
	CommitMessage string `json:"commit_message" validate:"max=200"`
}

// templateBytes unwraps a template given as a JSON string.
// It returns nil when the request carried no template.
func templateBytes(raw json.RawMessage) ([]byte, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, errors.NewValidationError("template must be a JSON object or a string", err.Error())
		}
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		return []byte(text), nil
	}
	return []byte(trimmed), nil
}

// MergeResponse is the payload of a merge
type MergeResponse struct {
	Status  usecases.Status          `json:"status"`
	Config  json.RawMessage          `json:"config,omitempty"`
	Tags    []string                 `json:"tags"`
	Skipped []usecases.SkippedLink   `json:"skipped"`
	Receipt *usecases.PublishReceipt `json:"receipt,omitempty"`
}

// RenderResponse is the payload of a standalone conversion
type RenderResponse struct {
	Format      string                 `json:"format"`
	ContentType string                 `json:"content_type"`
	Content     string                 `json:"content"`
	Tags        []string               `json:"tags"`
	Skipped     []usecases.SkippedLink `json:"skipped"`
}

func toMergeResponse(r *usecases.MergeConfigResult) *MergeResponse {
	resp := &MergeResponse{
		Status:  r.Status,
		Tags:    nonNil(r.Tags),
		Skipped: nonNilSkipped(r.Skipped),
	}
	if r.ConfigContent != "" {
		resp.Config = json.RawMessage(r.ConfigContent)
	}
	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilSkipped(s []usecases.SkippedLink) []usecases.SkippedLink {
	if s == nil {
		return []usecases.SkippedLink{}
	}
	return s
}
