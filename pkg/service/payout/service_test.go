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
	"github.com/venuehq/payouts/pkg/config"
	"github.com/venuehq/payouts/pkg/domain"
	"github.com/venuehq/payouts/pkg/domain/audit"
	"github.com/venuehq/payouts/pkg/domain/bank"
	"github.com/venuehq/payouts/pkg/domain/events"
	payoutdomain "github.com/venuehq/payouts/pkg/domain/payout"
	"github.com/venuehq/payouts/pkg/domain/wallet"
	"github.com/venuehq/payouts/pkg/dto"
	payoutsvc "github.com/venuehq/payouts/pkg/service/payout"
)

// fixedSettings satisfies the settings provider with a static configuration.
type fixedSettings struct {
	cfg *payoutdomain.Settings
}

func (f fixedSettings) Get(context.Context) (*payoutdomain.Settings, error) {
	return f.cfg, nil
}

func testSettings() *payoutdomain.Settings {
	return &payoutdomain.Settings{
		ID:                    uuid.New(),
		MinimumPayoutAmount:   decimal.NewFromInt(100),
		MaximumPayoutAmount:   decimal.NewFromInt(100_000),
		AutoApprovalThreshold: decimal.NewFromInt(5_000),
		ProcessingFee:         decimal.NewFromInt(10),
		ProcessingFeeType:     payoutdomain.FeeFixed,
		AllowedPayoutMethods: []payoutdomain.Method{
			payoutdomain.MethodBankTransfer, payoutdomain.MethodUPI,
		},
		RequireBankVerification: true,
	}
}

func newPayoutService(
	uow *mocks.MockUnitOfWork,
	bus *infraeventbus.MemoryBus,
	cfg *payoutdomain.Settings,
) *payoutsvc.Service {
	return payoutsvc.NewService(config.Deps{
		Uow:      uow,
		EventBus: bus,
		Logger:   slog.Default(),
	}, fixedSettings{cfg: cfg})
}

func pendingRequest(partnerID uuid.UUID) *payoutdomain.Request {
	return &payoutdomain.Request{
		ID:               uuid.New(),
		RequestReference: domain.NewReference("PR"),
		PartnerID:        partnerID,
		Type:             payoutdomain.TypeCommission,
		Status:           payoutdomain.StatusPending,
		Amount:           decimal.NewFromInt(10_000),
		Currency:         "INR",
		PayoutMethod:     payoutdomain.MethodBankTransfer,
		ProcessingFee:    decimal.NewFromInt(10),
		NetAmount:        decimal.NewFromInt(9_990),
	}
}

func TestCreateRequest_PendingAboveThreshold(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	actor := domain.Actor{ID: uuid.New(), PartnerScoped: true}

	uow.PayoutRequests.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Audits.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionCreated
	})).Return(nil).Once()

	request, err := svc.CreateRequest(context.Background(), dto.CreatePayoutRequest{
		Type:         payoutdomain.TypeCommission,
		Amount:       decimal.NewFromInt(10_000),
		PayoutMethod: payoutdomain.MethodBankTransfer,
	}, actor)
	require.NoError(t, err)

	assert.Equal(t, payoutdomain.StatusPending, request.Status)
	assert.Equal(t, actor.ID, request.PartnerID)
	assert.True(t, request.ProcessingFee.Equal(decimal.NewFromInt(10)))
	assert.True(t, request.NetAmount.Equal(decimal.NewFromInt(9_990)))

	published := bus.Published()
	require.Len(t, published, 1)
	created, ok := published[0].(events.PayoutRequestCreated)
	require.True(t, ok)
	assert.False(t, created.AutoApproved)

	uow.PayoutRequests.AssertExpectations(t)
	uow.Audits.AssertExpectations(t)
}

func TestCreateRequest_AutoApprovedUnderThreshold(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	actor := domain.Actor{ID: uuid.New(), PartnerScoped: true}

	uow.PayoutRequests.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Audits.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionCreated
	})).Return(nil).Once()
	uow.Audits.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionAutoApproved &&
			e.PreviousStatus == string(payoutdomain.StatusPending) &&
			e.NewStatus == string(payoutdomain.StatusApproved)
	})).Return(nil).Once()

	request, err := svc.CreateRequest(context.Background(), dto.CreatePayoutRequest{
		Type:         payoutdomain.TypeCommission,
		Amount:       decimal.NewFromInt(5_000),
		PayoutMethod: payoutdomain.MethodUPI,
		AutoApprove:  true,
	}, actor)
	require.NoError(t, err)

	assert.Equal(t, payoutdomain.StatusApproved, request.Status)
	require.NotNil(t, request.ApprovedDate)
	require.NotNil(t, request.ApprovedBy)
	assert.Equal(t, actor.ID, *request.ApprovedBy)

	published := bus.Published()
	require.Len(t, published, 1)
	created := published[0].(events.PayoutRequestCreated)
	assert.True(t, created.AutoApproved)
	uow.Audits.AssertExpectations(t)
}

func TestCreateRequest_UnrequestedAutoApprovalStaysPending(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	actor := domain.Actor{ID: uuid.New(), PartnerScoped: true}

	uow.PayoutRequests.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Audits.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionCreated
	})).Return(nil).Once()

	// Amount is under the threshold but auto-approval was never requested.
	request, err := svc.CreateRequest(context.Background(), dto.CreatePayoutRequest{
		Type:         payoutdomain.TypeCommission,
		Amount:       decimal.NewFromInt(1_000),
		PayoutMethod: payoutdomain.MethodUPI,
	}, actor)
	require.NoError(t, err)

	assert.Equal(t, payoutdomain.StatusPending, request.Status)
	assert.Nil(t, request.ApprovedDate)
	assert.Nil(t, request.ApprovedBy)

	published := bus.Published()
	require.Len(t, published, 1)
	created := published[0].(events.PayoutRequestCreated)
	assert.False(t, created.AutoApproved)
	uow.Audits.AssertExpectations(t)
	uow.Audits.AssertNumberOfCalls(t, "Create", 1)
}

func TestCreateRequest_RequestedAboveThresholdStaysPending(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	actor := domain.Actor{ID: uuid.New(), PartnerScoped: true}

	uow.PayoutRequests.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Audits.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionCreated
	})).Return(nil).Once()

	// Requested, but the amount exceeds the threshold: admin review required.
	request, err := svc.CreateRequest(context.Background(), dto.CreatePayoutRequest{
		Type:         payoutdomain.TypeCommission,
		Amount:       decimal.NewFromInt(10_000),
		PayoutMethod: payoutdomain.MethodBankTransfer,
		AutoApprove:  true,
	}, actor)
	require.NoError(t, err)

	assert.Equal(t, payoutdomain.StatusPending, request.Status)
	assert.Nil(t, request.ApprovedDate)
	assert.Nil(t, request.ApprovedBy)

	published := bus.Published()
	require.Len(t, published, 1)
	created := published[0].(events.PayoutRequestCreated)
	assert.False(t, created.AutoApproved)
	uow.Audits.AssertExpectations(t)
	uow.Audits.AssertNumberOfCalls(t, "Create", 1)
}

func TestCreateRequest_Validation(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	cfg := testSettings()
	svc := newPayoutService(uow, bus, cfg)
	actor := domain.Actor{ID: uuid.New(), PartnerScoped: true}

	cases := []struct {
		name    string
		create  dto.CreatePayoutRequest
		wantErr error
	}{
		{
			name: "zero amount",
			create: dto.CreatePayoutRequest{
				Type:         payoutdomain.TypeCommission,
				Amount:       decimal.Zero,
				PayoutMethod: payoutdomain.MethodUPI,
			},
			wantErr: domain.ErrAmountMustBePositive,
		},
		{
			name: "below minimum",
			create: dto.CreatePayoutRequest{
				Type:         payoutdomain.TypeCommission,
				Amount:       decimal.NewFromInt(50),
				PayoutMethod: payoutdomain.MethodUPI,
			},
			wantErr: domain.ErrAmountOutOfBounds,
		},
		{
			name: "above maximum",
			create: dto.CreatePayoutRequest{
				Type:         payoutdomain.TypeCommission,
				Amount:       decimal.NewFromInt(200_000),
				PayoutMethod: payoutdomain.MethodUPI,
			},
			wantErr: domain.ErrAmountOutOfBounds,
		},
		{
			name: "method not allowed",
			create: dto.CreatePayoutRequest{
				Type:         payoutdomain.TypeCommission,
				Amount:       decimal.NewFromInt(1_000),
				PayoutMethod: payoutdomain.MethodCash,
			},
			wantErr: domain.ErrPayoutMethodNotAllowed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateRequest(context.Background(), tc.create, actor)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
	assert.Empty(t, bus.Published())
}

func TestCreateRequest_FeeConsumesAmount(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	cfg := testSettings()
	cfg.MinimumPayoutAmount = decimal.NewFromInt(1)
	cfg.ProcessingFee = decimal.NewFromInt(200)
	svc := newPayoutService(uow, bus, cfg)

	_, err := svc.CreateRequest(context.Background(), dto.CreatePayoutRequest{
		Type:         payoutdomain.TypeCommission,
		Amount:       decimal.NewFromInt(150),
		PayoutMethod: payoutdomain.MethodUPI,
	}, domain.Actor{ID: uuid.New(), PartnerScoped: true})
	assert.ErrorIs(t, err, domain.ErrNetAmountNotPositive)
}

func TestCreateRequest_ForeignPartnerDenied(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	other := uuid.New()
	_, err := svc.CreateRequest(context.Background(), dto.CreatePayoutRequest{
		PartnerID:    &other,
		Type:         payoutdomain.TypeCommission,
		Amount:       decimal.NewFromInt(1_000),
		PayoutMethod: payoutdomain.MethodUPI,
	}, domain.Actor{ID: uuid.New(), PartnerScoped: true})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateRequest_WithdrawalChecksBalance(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	actor := domain.Actor{ID: uuid.New(), PartnerScoped: true}
	w := wallet.New(actor.ID, "INR")
	w.AvailableBalance = decimal.NewFromInt(500)

	uow.Wallets.On("GetByPartner", mock.Anything, actor.ID).Return(w, nil).Once()

	_, err := svc.CreateRequest(context.Background(), dto.CreatePayoutRequest{
		Type:         payoutdomain.TypeWithdrawal,
		Amount:       decimal.NewFromInt(1_000),
		PayoutMethod: payoutdomain.MethodUPI,
	}, actor)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	uow.PayoutRequests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateRequest_WithdrawalWithoutWallet(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	actor := domain.Actor{ID: uuid.New(), PartnerScoped: true}
	uow.Wallets.On("GetByPartner", mock.Anything, actor.ID).
		Return(nil, domain.ErrWalletNotFound).Once()

	_, err := svc.CreateRequest(context.Background(), dto.CreatePayoutRequest{
		Type:         payoutdomain.TypeWithdrawal,
		Amount:       decimal.NewFromInt(1_000),
		PayoutMethod: payoutdomain.MethodUPI,
	}, actor)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestCreateRequest_UnverifiedBankAccountRejected(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	actor := domain.Actor{ID: uuid.New(), PartnerScoped: true}
	accountID := uuid.New()
	uow.BankAccounts.On("Get", mock.Anything, accountID).Return(&bank.Account{
		ID:        accountID,
		PartnerID: actor.ID,
		Status:    bank.StatusPending,
	}, nil).Once()

	_, err := svc.CreateRequest(context.Background(), dto.CreatePayoutRequest{
		Type:          payoutdomain.TypeCommission,
		Amount:        decimal.NewFromInt(1_000),
		BankAccountID: &accountID,
		PayoutMethod:  payoutdomain.MethodBankTransfer,
	}, actor)
	assert.ErrorIs(t, err, domain.ErrBankAccountNotUsable)
}

func TestCreateRequest_ForeignBankAccountRejected(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	actor := domain.Actor{ID: uuid.New(), PartnerScoped: true}
	accountID := uuid.New()
	uow.BankAccounts.On("Get", mock.Anything, accountID).Return(&bank.Account{
		ID:        accountID,
		PartnerID: uuid.New(),
		Status:    bank.StatusVerified,
	}, nil).Once()

	_, err := svc.CreateRequest(context.Background(), dto.CreatePayoutRequest{
		Type:          payoutdomain.TypeCommission,
		Amount:        decimal.NewFromInt(1_000),
		BankAccountID: &accountID,
		PayoutMethod:  payoutdomain.MethodBankTransfer,
	}, actor)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestApprove_PendingRequest(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	request := pendingRequest(uuid.New())
	admin := domain.Actor{ID: uuid.New()}

	uow.PayoutRequests.On("Get", mock.Anything, request.ID).Return(request, nil).Once()
	uow.PayoutRequests.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Audits.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionApproved
	})).Return(nil).Once()

	approved, err := svc.Approve(context.Background(), request.ID, "looks good", admin)
	require.NoError(t, err)
	assert.Equal(t, payoutdomain.StatusApproved, approved.Status)
	assert.Equal(t, "looks good", approved.Notes)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, admin.ID, *approved.ApprovedBy)

	published := bus.Published()
	require.Len(t, published, 1)
	_, ok := published[0].(events.PayoutRequestApproved)
	assert.True(t, ok)
}

func TestApprove_NonPendingRejected(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	for _, status := range []payoutdomain.Status{
		payoutdomain.StatusApproved,
		payoutdomain.StatusProcessing,
		payoutdomain.StatusCompleted,
		payoutdomain.StatusRejected,
		payoutdomain.StatusCancelled,
		payoutdomain.StatusFailed,
	} {
		request := pendingRequest(uuid.New())
		request.Status = status
		uow.PayoutRequests.On("Get", mock.Anything, request.ID).Return(request, nil).Once()

		_, err := svc.Approve(context.Background(), request.ID, "", domain.Actor{ID: uuid.New()})
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "status %s", status)
	}
	assert.Empty(t, bus.Published())
}

func TestReject_RecordsReason(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	request := pendingRequest(uuid.New())
	uow.PayoutRequests.On("Get", mock.Anything, request.ID).Return(request, nil).Once()
	uow.PayoutRequests.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Audits.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionRejected && e.Description == "suspicious activity"
	})).Return(nil).Once()

	rejected, err := svc.Reject(context.Background(), request.ID, "suspicious activity", domain.Actor{ID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, payoutdomain.StatusRejected, rejected.Status)
	assert.Equal(t, "suspicious activity", rejected.RejectionReason)
	require.NotNil(t, rejected.RejectedDate)
	uow.Audits.AssertExpectations(t)
}

func TestCancel_ApprovedRequest(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	partnerID := uuid.New()
	request := pendingRequest(partnerID)
	request.Status = payoutdomain.StatusApproved
	actor := domain.Actor{ID: partnerID, PartnerScoped: true}

	uow.PayoutRequests.On("Get", mock.Anything, request.ID).Return(request, nil).Once()
	uow.PayoutRequests.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Audits.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionCancelled &&
			e.PreviousStatus == string(payoutdomain.StatusApproved)
	})).Return(nil).Once()

	cancelled, err := svc.Cancel(context.Background(), request.ID, "no longer needed", actor)
	require.NoError(t, err)
	assert.Equal(t, payoutdomain.StatusCancelled, cancelled.Status)
	uow.Audits.AssertExpectations(t)
}

func TestCancel_ForeignRequestDenied(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	request := pendingRequest(uuid.New())
	uow.PayoutRequests.On("Get", mock.Anything, request.ID).Return(request, nil).Once()

	_, err := svc.Cancel(context.Background(), request.ID, "x",
		domain.Actor{ID: uuid.New(), PartnerScoped: true})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateRequest_RecomputesFee(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	cfg := testSettings()
	cfg.ProcessingFeeType = payoutdomain.FeePercentage
	cfg.ProcessingFee = decimal.NewFromInt(2)
	svc := newPayoutService(uow, bus, cfg)

	partnerID := uuid.New()
	request := pendingRequest(partnerID)
	actor := domain.Actor{ID: partnerID, PartnerScoped: true}

	uow.PayoutRequests.On("Get", mock.Anything, request.ID).Return(request, nil).Once()
	uow.PayoutRequests.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Audits.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	amount := decimal.NewFromInt(20_000)
	updated, err := svc.UpdateRequest(context.Background(), request.ID, dto.UpdatePayoutRequest{
		Amount: &amount,
	}, actor)
	require.NoError(t, err)
	assert.True(t, updated.ProcessingFee.Equal(decimal.NewFromInt(400)))
	assert.True(t, updated.NetAmount.Equal(decimal.NewFromInt(19_600)))
}

func TestUpdateRequest_NonPendingRejected(t *testing.T) {
	uow := mocks.NewMockUnitOfWork()
	bus := infraeventbus.NewWithMemory(slog.Default())
	svc := newPayoutService(uow, bus, testSettings())

	partnerID := uuid.New()
	request := pendingRequest(partnerID)
	request.Status = payoutdomain.StatusApproved
	uow.PayoutRequests.On("Get", mock.Anything, request.ID).Return(request, nil).Once()

	notes := "late edit"
	_, err := svc.UpdateRequest(context.Background(), request.ID, dto.UpdatePayoutRequest{
		Notes: &notes,
	}, domain.Actor{ID: partnerID, PartnerScoped: true})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}
