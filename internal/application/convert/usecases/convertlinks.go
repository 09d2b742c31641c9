package usecases

import (
	"context"
	"fmt"

	apperrors "singmerge/internal/shared/errors"
	"singmerge/internal/shared/logger"
	"singmerge/internal/shared/utils/setutil"
)

type ConvertLinksCommand struct {
	Links  []string
	Format string
}

type ConvertLinksResult struct {
	Content     string
	ContentType string
	Format      string
	Tags        []string
	Skipped     []SkippedLink
}

// ConvertLinksUseCase renders a batch of links in a standalone format, without a template.
type ConvertLinksUseCase struct {
	converter *batchConverter
	logger    logger.Interface
}

func NewConvertLinksUseCase(parser LinkParser, namer TagNamer, logger logger.Interface) *ConvertLinksUseCase {
	return &ConvertLinksUseCase{
		converter: &batchConverter{parser: parser, namer: namer, logger: logger},
		logger:    logger,
	}
}

func (uc *ConvertLinksUseCase) Execute(ctx context.Context, cmd ConvertLinksCommand) (*ConvertLinksResult, error) {
	formatter, ok := NewFormatter(cmd.Format)
	if !ok {
		uc.logger.Warnw("unsupported format", "format", cmd.Format)
		return nil, apperrors.NewValidationError(
			"unsupported format",
			fmt.Sprintf("%q is not one of %s, %s, %s", cmd.Format, FormatOutbounds, FormatClash, FormatLinks),
		)
	}

	converted, skipped := uc.converter.convert(cmd.Links, setutil.NewStringSet())
	if len(converted) == 0 {
		uc.logger.Warnw("no links converted", "skipped", len(skipped))
		return nil, apperrors.NewValidationError("no valid links were converted")
	}

	content, err := formatter.Format(converted)
	if err != nil {
		uc.logger.Errorw("failed to format links", "error", err, "format", cmd.Format)
		return nil, fmt.Errorf("failed to format links: %w", err)
	}

	uc.logger.Infow("links converted",
		"format", cmd.Format,
		"converted", len(converted),
		"skipped", len(skipped),
	)

	return &ConvertLinksResult{
		Content:     content,
		ContentType: formatter.ContentType(),
		Format:      cmd.Format,
		Tags:        tagsOf(converted),
		Skipped:     skipped,
	}, nil
}
