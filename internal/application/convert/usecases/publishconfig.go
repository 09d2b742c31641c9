package usecases

import (
	"context"
	"fmt"
	"strings"

	apperrors "singmerge/internal/shared/errors"
	"singmerge/internal/shared/logger"
)

const defaultCommitMessage = "Update sing-box config"

type PublishConfigCommand struct {
	Merge         MergeConfigCommand
	Target        PublishTarget
	CommitMessage string
}

type PublishConfigResult struct {
	*MergeConfigResult
	Published bool            `json:"published"`
	Receipt   *PublishReceipt `json:"receipt,omitempty"`
}

// PublishConfigUseCase merges links into the template and pushes the result to a repository.
// Nothing is published unless the merge succeeded.
type PublishConfigUseCase struct {
	merge     *MergeConfigUseCase
	publisher Publisher
	logger    logger.Interface
}

func NewPublishConfigUseCase(merge *MergeConfigUseCase, publisher Publisher, logger logger.Interface) *PublishConfigUseCase {
	return &PublishConfigUseCase{
		merge:     merge,
		publisher: publisher,
		logger:    logger,
	}
}

func (uc *PublishConfigUseCase) Execute(ctx context.Context, cmd PublishConfigCommand) *PublishConfigResult {
	if err := validateTarget(cmd.Target); err != nil {
		return &PublishConfigResult{MergeConfigResult: errorResult(err)}
	}

	merged := uc.merge.Execute(ctx, cmd.Merge)
	result := &PublishConfigResult{MergeConfigResult: merged}
	if !merged.Succeeded() {
		uc.logger.Warnw("skipping publish", "status", merged.Status, "target", cmd.Target.String())
		return result
	}

	message := strings.TrimSpace(cmd.CommitMessage)
	if message == "" {
		message = defaultCommitMessage
	}

	receipt, err := uc.publisher.Publish(ctx, cmd.Target, []byte(merged.ConfigContent), message)
	if err != nil {
		uc.logger.Errorw("failed to publish config", "error", err, "target", cmd.Target.String())
		merged.Status = StatusError
		merged.Message = fmt.Sprintf("config merged but publishing to %s failed: %v", cmd.Target, err)
		merged.Err = err
		return result
	}

	uc.logger.Infow("config published",
		"target", cmd.Target.String(),
		"commit", receipt.CommitSHA,
		"created", receipt.Created,
	)

	result.Published = true
	result.Receipt = receipt
	merged.Message += "; published to " + cmd.Target.String()
	return result
}

func validateTarget(t PublishTarget) error {
	var missing []string
	if t.Owner == "" {
		missing = append(missing, "owner")
	}
	if t.Repo == "" {
		missing = append(missing, "repo")
	}
	if t.Path == "" {
		missing = append(missing, "path")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("publish target is incomplete", "missing "+strings.Join(missing, ", "))
	}
	return nil
}
