package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"singmerge/internal/application/convert/testutil"
	"singmerge/internal/application/convert/usecases"
	"singmerge/internal/domain/link"
	apperrors "singmerge/internal/shared/errors"
)

var target = usecases.PublishTarget{Owner: "me", Repo: "configs", Branch: "main", Path: "sing-box.json"}

func newPublishUseCase(publisher usecases.Publisher) *usecases.PublishConfigUseCase {
	log := testutil.NewMockLogger()
	merge := usecases.NewMergeConfigUseCase(link.NewParser(), link.NewDefaultNamer(), usecases.MergeOptions{}, log)
	return usecases.NewPublishConfigUseCase(merge, publisher, log)
}

func TestPublishConfig_Success(t *testing.T) {
	publisher := new(testutil.MockPublisher)
	publisher.On("Publish", mock.Anything, target, mock.AnythingOfType("[]uint8"), "Update sing-box config").
		Return(&usecases.PublishReceipt{CommitSHA: "abc123", Created: true}, nil)

	result := newPublishUseCase(publisher).Execute(context.Background(), usecases.PublishConfigCommand{
		Merge: usecases.MergeConfigCommand{
			Template: []byte(`{"outbounds":[{"tag":"direct","type":"direct"}]}`),
			Links:    []string{"trojan://pw@host.example:443#MyNode"},
		},
		Target: target,
	})

	require.Equal(t, usecases.StatusSuccess, result.Status, result.Message)
	assert.True(t, result.Published)
	assert.Equal(t, "abc123", result.Receipt.CommitSHA)
	assert.Contains(t, result.Message, "me/configs@main:sing-box.json")
	publisher.AssertExpectations(t)

	content := publisher.Calls[0].Arguments.Get(2).([]byte)
	assert.Equal(t, result.ConfigContent, string(content))
}

func TestPublishConfig_WarningSkipsPublish(t *testing.T) {
	publisher := new(testutil.MockPublisher)

	result := newPublishUseCase(publisher).Execute(context.Background(), usecases.PublishConfigCommand{
		Merge: usecases.MergeConfigCommand{
			Template: []byte(`{"outbounds":[]}`),
			Links:    []string{"vmess://not-base64"},
		},
		Target:        target,
		CommitMessage: "custom",
	})

	assert.Equal(t, usecases.StatusWarning, result.Status)
	assert.False(t, result.Published)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishConfig_PublishFailure(t *testing.T) {
	publisher := new(testutil.MockPublisher)
	publisher.On("Publish", mock.Anything, target, mock.Anything, "custom").
		Return(nil, errors.New("403 forbidden"))

	result := newPublishUseCase(publisher).Execute(context.Background(), usecases.PublishConfigCommand{
		Merge: usecases.MergeConfigCommand{
			Template: []byte(`{"outbounds":[]}`),
			Links:    []string{"trojan://pw@host.example:443#MyNode"},
		},
		Target:        target,
		CommitMessage: "custom",
	})

	assert.Equal(t, usecases.StatusError, result.Status)
	assert.False(t, result.Published)
	assert.NotEmpty(t, result.ConfigContent, "merged config is kept for the caller")
	assert.Contains(t, result.Message, "403 forbidden")
	assert.Error(t, result.Err)
}

func TestPublishConfig_IncompleteTarget(t *testing.T) {
	publisher := new(testutil.MockPublisher)

	result := newPublishUseCase(publisher).Execute(context.Background(), usecases.PublishConfigCommand{
		Merge:  usecases.MergeConfigCommand{Template: []byte(`{"outbounds":[]}`)},
		Target: usecases.PublishTarget{Owner: "me"},
	})

	assert.Equal(t, usecases.StatusError, result.Status)
	assert.True(t, apperrors.IsValidationError(result.Err))
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
