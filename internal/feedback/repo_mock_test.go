package feedback_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"vcc-feedback/internal/feedback"
	"vcc-feedback/internal/mocks"
	myErr "vcc-feedback/internal/types/errors"
)

func TestSlotRecordStore_StorageErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	slots := mocks.NewMockStorage(ctrl)
	store := feedback.NewSlotRecordStore(slots, zaptest.NewLogger(t).Sugar())
	ctx := context.Background()

	slots.EXPECT().Get(gomock.Any(), feedback.StorageKey).Return("", false, myErr.ErrDBInternal)
	assert.Empty(t, store.Load(ctx))

	slots.EXPECT().Get(gomock.Any(), feedback.StorageKey).Return("", false, nil)
	slots.EXPECT().Set(gomock.Any(), feedback.StorageKey, gomock.Any()).Return(myErr.ErrDBInternal)
	err := store.Append(ctx, feedback.Record{ID: "a", Rating: 5, Body: "b", Visibility: feedback.VisibilityPublic})
	assert.True(t, errors.Is(err, myErr.ErrDBInternal))
}

func TestSlotRecordStore_AppendReadFailureKeepsData(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	slots := mocks.NewMockStorage(ctrl)
	store := feedback.NewSlotRecordStore(slots, zaptest.NewLogger(t).Sugar())

	// Set не ожидается: при ошибке чтения слот не перезаписывается
	slots.EXPECT().Get(gomock.Any(), feedback.StorageKey).Return("", false, myErr.ErrDBInternal)

	err := store.Append(context.Background(), feedback.Record{ID: "a", Rating: 5, Body: "b", Visibility: feedback.VisibilityPublic})
	assert.ErrorIs(t, err, myErr.ErrDBInternal)
}
