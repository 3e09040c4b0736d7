package payout_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	infraeventbus "github.com/venuehq/payouts/infra/eventbus"
	"github.com/venuehq/payouts/internal/fixtures/mocks"
	"github.com/venuehq/payouts/pkg/domain"
	"github.com/venuehq/payouts/pkg/domain/audit"
	"github.com/venuehq/payouts/pkg/domain/events"
	payoutdomain "github.com/venuehq/payouts/pkg/domain/payout"
	"github.com/venuehq/payouts/pkg/domain/wallet"
	"github.com/venuehq/payouts/pkg/dto"
)

func approvedWithdrawal(partnerID uuid.UUID, amount int64) *payoutdomain.Request {
	r := pendingRequest(partnerID)
	r.Type = payoutdomain.TypeWithdrawal
	r.Status = payoutdomain.StatusApproved
	r.Amount = decimal.NewFromInt(amount)
	r.ProcessingFee = decimal.NewFromInt(10)
	r.NetAmount = r.Amount.Sub(r.ProcessingFee)
	return r
}

func processingPayout(partnerID uuid.UUID, requestID uuid.UUID) *payoutdomain.Payout {
	return &payoutdomain.Payout{
		ID:              uuid.New(),
		PayoutReference: domain.NewReference("PO"),
		RequestID:       requestID,
		PartnerID:       partnerID,
		Status:          payoutdomain.StatusProcessing,
		Amount:          decimal.NewFromInt(10_000),
		ProcessingFee:   decimal.NewFromInt(10),
		NetAmount:       decimal.NewFromInt(9_990),
		Currency:        "INR",
		PayoutMethod:    payoutdomain.MethodBankTransfer,
	}
}

func TestProcess_WithdrawalDebitsWallet(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	partnerID := uuid.New()
	request := approvedWithdrawal(partnerID, 10_000)
	admin := domain.Actor{ID: uuid.New()}

	w := wallet.New(partnerID, "INR")
	w.AvailableBalance = decimal.NewFromInt(15_000)
	w.UpdateTotals()

	uow.PayoutRequests.On("Get", mock.Anything, request.ID).Return(request, nil).Once()
	uow.Payouts.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Wallets.On("GetForUpdate", mock.Anything, partnerID).Return(w, nil).Once()
	uow.Wallets.On("Update", mock.Anything, mock.MatchedBy(func(got *wallet.Wallet) bool {
		return got.AvailableBalance.Equal(decimal.NewFromInt(5_000))
	})).Return(nil).Once()
	uow.WalletTransactions.On("Create", mock.Anything, mock.MatchedBy(func(tx *wallet.Transaction) bool {
		return tx.Type == wallet.TypePayoutDeducted &&
			tx.Amount.Equal(decimal.NewFromInt(10_000))
	})).Return(nil).Once()
	uow.PayoutRequests.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Audits.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionProcessingStarted && e.PayoutRequestID != nil
	})).Return(nil).Once()
	uow.Audits.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionCreated && e.PayoutID != nil
	})).Return(nil).Once()

	record, err := svc.Process(context.Background(), request.ID, dto.ProcessPayout{}, admin)
	require.NoError(t, err)

	assert.Equal(t, payoutdomain.StatusProcessing, record.Status)
	assert.Equal(t, request.ID, record.RequestID)
	assert.True(t, record.NetAmount.Equal(decimal.NewFromInt(9_990)))
	assert.Equal(t, payoutdomain.StatusProcessing, request.Status)

	published := bus.Published()
	require.Len(t, published, 1)
	_, ok := published[0].(events.PayoutProcessing)
	assert.True(t, ok)

	uow.Wallets.AssertExpectations(t)
	uow.WalletTransactions.AssertExpectations(t)
	uow.Audits.AssertExpectations(t)
}

func TestProcess_InsufficientBalanceAborts(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	partnerID := uuid.New()
	request := approvedWithdrawal(partnerID, 10_000)

	w := wallet.New(partnerID, "INR")
	w.AvailableBalance = decimal.NewFromInt(500)

	uow.PayoutRequests.On("Get", mock.Anything, request.ID).Return(request, nil).Once()
	uow.Payouts.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Wallets.On("GetForUpdate", mock.Anything, partnerID).Return(w, nil).Once()

	_, err := svc.Process(context.Background(), request.ID, dto.ProcessPayout{}, domain.Actor{ID: uuid.New()})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	assert.Empty(t, bus.Published())
	uow.PayoutRequests.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.Audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProcess_NonApprovedRejected(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	request := pendingRequest(uuid.New())
	uow.PayoutRequests.On("Get", mock.Anything, request.ID).Return(request, nil).Once()

	_, err := svc.Process(context.Background(), request.ID, dto.ProcessPayout{}, domain.Actor{ID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestProcess_NonWithdrawalSkipsLedger(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	request := pendingRequest(uuid.New())
	request.Status = payoutdomain.StatusApproved

	uow.PayoutRequests.On("Get", mock.Anything, request.ID).Return(request, nil).Once()
	uow.Payouts.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	uow.PayoutRequests.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Audits.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()

	_, err := svc.Process(context.Background(), request.ID, dto.ProcessPayout{}, domain.Actor{ID: uuid.New()})
	require.NoError(t, err)

	uow.Wallets.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
}

func TestProcess_FeeOverride(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	request := pendingRequest(uuid.New())
	request.Status = payoutdomain.StatusApproved

	uow.PayoutRequests.On("Get", mock.Anything, request.ID).Return(request, nil).Once()
	uow.Payouts.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	uow.PayoutRequests.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Audits.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()

	fee := decimal.NewFromInt(500)
	record, err := svc.Process(context.Background(), request.ID, dto.ProcessPayout{
		ProcessingFee: &fee,
	}, domain.Actor{ID: uuid.New()})
	require.NoError(t, err)
	assert.True(t, record.ProcessingFee.Equal(fee))
	assert.True(t, record.NetAmount.Equal(decimal.NewFromInt(9_500)))
}

func TestComplete_CascadesToRequest(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	partnerID := uuid.New()
	request := pendingRequest(partnerID)
	request.Status = payoutdomain.StatusProcessing
	record := processingPayout(partnerID, request.ID)

	uow.Payouts.On("Get", mock.Anything, record.ID).Return(record, nil).Once()
	uow.Payouts.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.PayoutRequests.On("Get", mock.Anything, request.ID).Return(request, nil).Once()
	uow.PayoutRequests.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Audits.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionCompleted
	})).Return(nil).Once()

	completed, err := svc.Complete(context.Background(), record.ID, "UTR123456", domain.Actor{ID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, payoutdomain.StatusCompleted, completed.Status)
	assert.Equal(t, "UTR123456", completed.BankReference)
	require.NotNil(t, completed.CompletedDate)
	assert.Equal(t, payoutdomain.StatusCompleted, request.Status)
	require.NotNil(t, request.CompletedDate)

	published := bus.Published()
	require.Len(t, published, 1)
	ev, ok := published[0].(events.PayoutCompleted)
	require.True(t, ok)
	assert.Equal(t, "UTR123456", ev.BankReference)
}

func TestComplete_AlreadyCompletedRejected(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	record := processingPayout(uuid.New(), uuid.New())
	record.Status = payoutdomain.StatusCompleted
	uow.Payouts.On("Get", mock.Anything, record.ID).Return(record, nil).Once()

	_, err := svc.Complete(context.Background(), record.ID, "", domain.Actor{ID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestFail_WithdrawalRefundsWallet(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	partnerID := uuid.New()
	request := approvedWithdrawal(partnerID, 10_000)
	request.Status = payoutdomain.StatusProcessing
	record := processingPayout(partnerID, request.ID)

	w := wallet.New(partnerID, "INR")
	w.AvailableBalance = decimal.NewFromInt(5_000)
	w.UpdateTotals()

	uow.Payouts.On("Get", mock.Anything, record.ID).Return(record, nil).Once()
	uow.PayoutRequests.On("Get", mock.Anything, request.ID).Return(request, nil).Once()
	uow.Payouts.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Wallets.On("GetForUpdate", mock.Anything, partnerID).Return(w, nil).Once()
	uow.Wallets.On("Update", mock.Anything, mock.MatchedBy(func(got *wallet.Wallet) bool {
		return got.AvailableBalance.Equal(decimal.NewFromInt(15_000))
	})).Return(nil).Once()
	uow.WalletTransactions.On("Create", mock.Anything, mock.MatchedBy(func(tx *wallet.Transaction) bool {
		return tx.Type == wallet.TypeRefundReceived &&
			tx.Amount.Equal(decimal.NewFromInt(10_000)) &&
			tx.ReferenceID == record.ID.String()
	})).Return(nil).Once()
	uow.PayoutRequests.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Audits.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionFailed
	})).Return(nil).Once()

	failed, err := svc.Fail(context.Background(), record.ID, "account closed", domain.Actor{ID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, payoutdomain.StatusFailed, failed.Status)
	assert.Equal(t, "account closed", failed.FailureReason)
	assert.Equal(t, payoutdomain.StatusFailed, request.Status)

	published := bus.Published()
	require.Len(t, published, 1)
	ev, ok := published[0].(events.PayoutFailed)
	require.True(t, ok)
	assert.Equal(t, "account closed", ev.Reason)

	uow.Wallets.AssertExpectations(t)
	uow.WalletTransactions.AssertExpectations(t)
}

func TestFail_NonWithdrawalSkipsRefund(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	partnerID := uuid.New()
	request := pendingRequest(partnerID)
	request.Status = payoutdomain.StatusProcessing
	record := processingPayout(partnerID, request.ID)

	uow.Payouts.On("Get", mock.Anything, record.ID).Return(record, nil).Once()
	uow.PayoutRequests.On("Get", mock.Anything, request.ID).Return(request, nil).Once()
	uow.Payouts.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.PayoutRequests.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Audits.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := svc.Fail(context.Background(), record.ID, "rail rejected", domain.Actor{ID: uuid.New()})
	require.NoError(t, err)
	uow.Wallets.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
}
