package webhook

import (
	"context"
	"errors"
	"testing"

	"github.com/quicrefill/customer-service/internal/domain/entity"
	errs "github.com/quicrefill/customer-service/internal/domain/error"
	mockCache "github.com/quicrefill/customer-service/mocks/port/cache"
	mockCore "github.com/quicrefill/customer-service/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, transactionRef string) (*entity.VerificationResult, error) {
	args := m.Called(ctx, transactionRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VerificationResult), args.Error(1)
}

func TestParseEvent(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		wantRef  string
		wantType string
		wantErr  error
	}{
		{
			name:     "Data-nested reference",
			body:     `{"event":"charge.completed","data":{"tx_ref":"QR-1","id":"9001"}}`,
			wantRef:  "QR-1",
			wantType: "charge.completed",
		},
		{
			name:    "Legacy top-level txRef",
			body:    `{"txRef":"QR-2"}`,
			wantRef: "QR-2",
		},
		{
			name:    "Top-level tx_ref",
			body:    `{"tx_ref":"QR-3"}`,
			wantRef: "QR-3",
		},
		{
			name:    "Invalid JSON",
			body:    `{"event":`,
			wantErr: errs.ErrInvalidRequest,
		},
		{
			name:    "No reference anywhere",
			body:    `{"event":"charge.completed","data":{"id":"9001"}}`,
			wantErr: errs.ErrInvalidRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event, err := ParseEvent([]byte(tc.body))
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantRef, event.TransactionRef)
			assert.Equal(t, tc.wantType, event.Type)
		})
	}
}

func TestProcessReconcilesEvent(t *testing.T) {
	verifier := &mockVerifier{}
	processor := NewProcessor(verifier, nil, mockCore.NewMockLogger())

	verifier.On("Verify", mock.Anything, "QR-1").Return(&entity.VerificationResult{
		TransactionRef: "QR-1",
		Status:         entity.StatusCompleted,
	}, nil)

	result, err := processor.Process(context.Background(),
		[]byte(`{"event":"charge.completed","data":{"tx_ref":"QR-1","id":"9001"}}`))

	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, result.Status)
}

func TestProcessPropagatesVerifierError(t *testing.T) {
	verifier := &mockVerifier{}
	processor := NewProcessor(verifier, nil, mockCore.NewMockLogger())

	verifier.On("Verify", mock.Anything, "QR-1").Return(nil, errors.New("gateway down"))

	_, err := processor.Process(context.Background(), []byte(`{"tx_ref":"QR-1"}`))

	assert.EqualError(t, err, "gateway down")
}

func TestProcessRejectsUnparseablePayload(t *testing.T) {
	verifier := &mockVerifier{}
	processor := NewProcessor(verifier, nil, mockCore.NewMockLogger())

	_, err := processor.Process(context.Background(), []byte("not json"))

	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestProcessMarksDelivery(t *testing.T) {
	verifier := &mockVerifier{}
	seen := &mockCache.MockStore{}
	processor := NewProcessor(verifier, seen, mockCore.NewMockLogger())

	seen.On("Get", mock.Anything, "webhook:seen:QR-1:9001").Return("", false, nil)
	seen.On("Set", mock.Anything, "webhook:seen:QR-1:9001", "1", seenTTL).Return(nil)
	verifier.On("Verify", mock.Anything, "QR-1").Return(&entity.VerificationResult{
		TransactionRef: "QR-1",
		Status:         entity.StatusCompleted,
	}, nil)

	_, err := processor.Process(context.Background(),
		[]byte(`{"data":{"tx_ref":"QR-1","id":"9001"}}`))

	require.NoError(t, err)
	seen.AssertExpectations(t)
}

func TestProcessRedeliveryStillReconciles(t *testing.T) {
	verifier := &mockVerifier{}
	seen := &mockCache.MockStore{}
	processor := NewProcessor(verifier, seen, mockCore.NewMockLogger())

	// Delivery id already remembered: logged as redelivery, still verified
	seen.On("Get", mock.Anything, "webhook:seen:QR-1:9001").Return("1", true, nil)
	verifier.On("Verify", mock.Anything, "QR-1").Return(&entity.VerificationResult{
		TransactionRef: "QR-1",
		Status:         entity.StatusCompleted,
	}, nil)

	_, err := processor.Process(context.Background(),
		[]byte(`{"data":{"tx_ref":"QR-1","id":"9001"}}`))

	require.NoError(t, err)
	seen.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
