package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"invoicedesk/internal/services"
	"invoicedesk/internal/snapshot"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTaskEnqueuer struct {
	mock.Mock
}

func (m *MockTaskEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Snapshot(ctx context.Context, ownerID, invoiceID uuid.UUID) (snapshot.Snapshot, error) {
	args := m.Called(ctx, ownerID, invoiceID)
	return args.Get(0).(snapshot.Snapshot), args.Error(1)
}

func (m *MockDocumentService) Render(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (*snapshot.Document, error) {
	args := m.Called(ctx, ownerID, invoiceID, template)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snapshot.Document), args.Error(1)
}

func (m *MockDocumentService) Archive(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (*services.ArchivedDocument, error) {
	args := m.Called(ctx, ownerID, invoiceID, template)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ArchivedDocument), args.Error(1)
}

func (m *MockDocumentService) RequestArchive(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (string, error) {
	args := m.Called(ctx, ownerID, invoiceID, template)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) DocumentLink(ctx context.Context, ownerID, invoiceID uuid.UUID, template snapshot.TemplateID) (string, error) {
	args := m.Called(ctx, ownerID, invoiceID, template)
	return args.String(0), args.Error(1)
}

func TestNewDocumentArchiveTask(t *testing.T) {
	ownerID, invoiceID := uuid.New(), uuid.New()
	task, err := NewDocumentArchiveTask(ownerID, invoiceID, snapshot.TemplateCompact)
	require.NoError(t, err)
	assert.Equal(t, TypeDocumentArchive, task.Type())

	var payload DocumentArchivePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, DocumentArchivePayload{OwnerID: ownerID, InvoiceID: invoiceID, Template: snapshot.TemplateCompact}, payload)
}

func TestArchiveEnqueuer_UsesQueueAndReturnsTaskID(t *testing.T) {
	ctx := context.Background()
	client := new(MockTaskEnqueuer)
	client.On("EnqueueContext", ctx, mock.MatchedBy(func(task *asynq.Task) bool {
		return task.Type() == TypeDocumentArchive
	}), mock.MatchedBy(func(opts []asynq.Option) bool {
		for _, opt := range opts {
			if opt.Type() == asynq.QueueOpt && opt.Value() == "archives" {
				return len(opts) == 3
			}
		}
		return false
	})).Return(&asynq.TaskInfo{ID: "task-9"}, nil).Once()

	id, err := NewArchiveEnqueuer(client, "archives").EnqueueArchive(ctx, uuid.New(), uuid.New(), snapshot.TemplateClassic)
	require.NoError(t, err)
	assert.Equal(t, "task-9", id)
	client.AssertExpectations(t)
}

func TestArchiveEnqueuer_PropagatesError(t *testing.T) {
	client := new(MockTaskEnqueuer)
	client.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("redis unavailable")).Once()

	_, err := NewArchiveEnqueuer(client, "").EnqueueArchive(context.Background(), uuid.New(), uuid.New(), snapshot.TemplateClassic)
	assert.EqualError(t, err, "redis unavailable")
}

func TestHandleDocumentArchive(t *testing.T) {
	ctx := context.Background()
	ownerID, invoiceID := uuid.New(), uuid.New()
	task, err := NewDocumentArchiveTask(ownerID, invoiceID, snapshot.TemplateCreative)
	require.NoError(t, err)

	tests := []struct {
		name      string
		result    *services.ArchivedDocument
		err       error
		wantErr   bool
		skipRetry bool
	}{
		{name: "archived", result: &services.ArchivedDocument{ObjectKey: "invoices/x/creative/Invoice_1.pdf", ExpiresAt: time.Now()}},
		{name: "invoice deleted", err: services.ErrInvoiceNotFound, wantErr: true, skipRetry: true},
		{name: "storage failure retries", err: errors.New("minio timeout"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := new(MockDocumentService)
			docs.On("Archive", ctx, ownerID, invoiceID, snapshot.TemplateCreative).Return(tt.result, tt.err).Once()

			err := NewDocumentArchiver(docs, zerolog.Nop()).HandleDocumentArchive(ctx, task)
			if !tt.wantErr {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
			}
			docs.AssertExpectations(t)
		})
	}
}

func TestHandleDocumentArchive_BadPayloadSkipsRetry(t *testing.T) {
	docs := new(MockDocumentService)
	err := NewDocumentArchiver(docs, zerolog.Nop()).HandleDocumentArchive(context.Background(), asynq.NewTask(TypeDocumentArchive, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	docs.AssertNotCalled(t, "Archive")
}

func TestNewServeMux_RoutesArchiveTasks(t *testing.T) {
	ctx := context.Background()
	ownerID, invoiceID := uuid.New(), uuid.New()
	docs := new(MockDocumentService)
	docs.On("Archive", ctx, ownerID, invoiceID, snapshot.TemplateClassic).Return(&services.ArchivedDocument{ObjectKey: "k"}, nil).Once()

	task, err := NewDocumentArchiveTask(ownerID, invoiceID, snapshot.TemplateClassic)
	require.NoError(t, err)

	mux := NewServeMux(NewDocumentArchiver(docs, zerolog.Nop()))
	assert.NoError(t, mux.ProcessTask(ctx, task))
	docs.AssertExpectations(t)
}
