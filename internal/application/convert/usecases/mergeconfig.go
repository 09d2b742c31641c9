package usecases

import (
	"context"
	"fmt"

	"singmerge/internal/domain/document"
	"singmerge/internal/domain/outbound"
	"singmerge/internal/shared/logger"
	"singmerge/internal/shared/utils/setutil"
)

// Status is the outcome of a merge
type Status string

const (
	StatusSuccess Status = "success"
	// StatusWarning means no link could be converted; the template is returned as is
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// DefaultAdministrativeTags must exist exactly once in every merged config
var DefaultAdministrativeTags = []string{"direct", "block"}

// MergeOptions is fixed at construction time
type MergeOptions struct {
	// ImmutableGroups lists grouping tags whose reference lists are never rewritten
	ImmutableGroups []string
	// Administrative lists required administrative tags. nil selects DefaultAdministrativeTags.
	Administrative []string
}

type MergeConfigCommand struct {
	Template []byte
	Links    []string
	// OmitOnWarning drops the template from a warning result
	OmitOnWarning bool
}

type MergeConfigResult struct {
	Status        Status           `json:"status"`
	Message       string           `json:"message"`
	ConfigContent string           `json:"config,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
	Entries       []outbound.Entry `json:"entries,omitempty"`
	Skipped       []SkippedLink    `json:"skipped,omitempty"`
	// Err is the failure behind a StatusError result
	Err error `json:"-"`
}

// Succeeded reports whether the merge produced a new document
func (r *MergeConfigResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// MergeConfigUseCase converts a batch of share links and merges them into a sing-box template.
// It holds no mutable state and may be shared between goroutines.
type MergeConfigUseCase struct {
	converter      *batchConverter
	excluded       []string
	administrative []string
	logger         logger.Interface
}

func NewMergeConfigUseCase(
	parser LinkParser,
	namer TagNamer,
	opts MergeOptions,
	logger logger.Interface,
) *MergeConfigUseCase {
	administrative := opts.Administrative
	if administrative == nil {
		administrative = DefaultAdministrativeTags
	}

	return &MergeConfigUseCase{
		converter: &batchConverter{
			parser: parser,
			namer:  namer,
			logger: logger,
		},
		excluded:       append([]string(nil), opts.ImmutableGroups...),
		administrative: append([]string(nil), administrative...),
		logger:         logger,
	}
}

// Execute never returns nil. Template failures and unexpected faults become StatusError results.
func (uc *MergeConfigUseCase) Execute(ctx context.Context, cmd MergeConfigCommand) (result *MergeConfigResult) {
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Errorw("merge aborted by unexpected failure", "panic", r)
			result = errorResult(fmt.Errorf("unexpected failure: %v", r))
		}
	}()

	doc, err := document.Load(cmd.Template)
	if err != nil {
		uc.logger.Errorw("failed to load template", "error", err)
		return errorResult(err)
	}

	taken := setutil.NewStringSet(doc.Tags()...)
	converted, skipped := uc.converter.convert(cmd.Links, taken)

	if len(converted) == 0 {
		uc.logger.Warnw("no links converted", "skipped", len(skipped))
		result := &MergeConfigResult{
			Status:  StatusWarning,
			Message: "no valid links were converted; the template was not modified",
			Skipped: skipped,
		}
		if !cmd.OmitOnWarning {
			result.ConfigContent = string(doc.Raw())
		}
		return result
	}

	content, err := uc.merge(doc, converted)
	if err != nil {
		uc.logger.Errorw("failed to merge links into template", "error", err)
		return errorResult(err)
	}

	uc.logger.Infow("config merged",
		"converted", len(converted),
		"skipped", len(skipped),
		"entries", len(doc.Entries()),
	)

	return &MergeConfigResult{
		Status:        StatusSuccess,
		Message:       successMessage(len(converted), len(skipped)),
		ConfigContent: string(content),
		Tags:          tagsOf(converted),
		Entries:       entriesOf(converted),
		Skipped:       skipped,
	}
}

func (uc *MergeConfigUseCase) merge(doc *document.Document, converted []ConvertedLink) ([]byte, error) {
	added := make([]document.RawEntry, 0, len(converted))
	for _, c := range converted {
		entry, err := document.NewRawEntry(c.Entry)
		if err != nil {
			return nil, fmt.Errorf("failed to encode entry %q: %w", c.Tag, err)
		}
		added = append(added, entry)
	}

	entries, err := placeEntries(doc.Entries(), added, uc.administrative, uc.logger)
	if err != nil {
		return nil, err
	}

	entries, err = reconcileGroups(entries, tagsOf(converted), setutil.NewStringSet(uc.excluded...), uc.logger)
	if err != nil {
		return nil, err
	}

	doc.SetEntries(entries)
	return doc.Marshal()
}

func errorResult(err error) *MergeConfigResult {
	return &MergeConfigResult{
		Status:  StatusError,
		Message: err.Error(),
		Err:     err,
	}
}

func successMessage(converted, skipped int) string {
	if skipped == 0 {
		return fmt.Sprintf("converted %d links", converted)
	}
	return fmt.Sprintf("converted %d links, skipped %d", converted, skipped)
}
