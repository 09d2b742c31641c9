package convert

import (
	"context"

	"singmerge/internal/application/convert/usecases"
)

// MergeConfigExecutor defines the interface for executing the MergeConfig use case
type MergeConfigExecutor interface {
	Execute(ctx context.Context, cmd usecases.MergeConfigCommand) *usecases.MergeConfigResult
}

// ConvertLinksExecutor defines the interface for executing the ConvertLinks use case
type ConvertLinksExecutor interface {
	Execute(ctx context.Context, cmd usecases.ConvertLinksCommand) (*usecases.ConvertLinksResult, error)
}

// PublishConfigExecutor defines the interface for executing the PublishConfig use case
type PublishConfigExecutor interface {
	Execute(ctx context.Context, cmd usecases.PublishConfigCommand) *usecases.PublishConfigResult
}

// TemplateSource supplies the default template when a request carries none
type TemplateSource interface {
	Get() ([]byte, bool)
}
