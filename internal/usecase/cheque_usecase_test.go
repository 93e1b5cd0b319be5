package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/chequebook/internal/domain"
	"github.com/iho/chequebook/internal/usecase"
	"github.com/iho/chequebook/internal/usecase/mocks"
)

var fixedNow = time.Date(2024, 1, 10, 9, 30, 0, 0, time.Local)

func fixedClock() time.Time { return fixedNow }

type seqIDGenerator struct{}

func (seqIDGenerator) Generate() string { return ulid.Make().String() }

func outgoingDraft() domain.Draft {
	return domain.Draft{
		RecordedDate: "2024-01-01",
		DueDate:      "2024-01-10",
		ChequeNumber: "C1",
		Counterparty: "X",
		Amount:       decimal.NewNullDecimal(decimal.NewFromInt(50000)),
		BankName:     "Bank A",
	}
}

func newUseCase(repo usecase.ChequeRepository, opts ...usecase.ChequeOption) *usecase.ChequeUseCase {
	opts = append([]usecase.ChequeOption{usecase.WithClock(fixedClock)}, opts...)
	return usecase.NewChequeUseCase(repo, seqIDGenerator{}, opts...)
}

func TestChequeUseCase_CreateCheque(t *testing.T) {
	tests := []struct {
		name        string
		kind        domain.Kind
		draft       func() domain.Draft
		setupMocks  func(*mocks.MockChequeRepository)
		expectError error
	}{
		{
			name:  "successful outgoing creation",
			kind:  domain.KindOutgoing,
			draft: outgoingDraft,
			setupMocks: func(repo *mocks.MockChequeRepository) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "negative amount rejected before store",
			kind: domain.KindIncoming,
			draft: func() domain.Draft {
				d := outgoingDraft()
				d.Amount = decimal.NewNullDecimal(decimal.NewFromInt(-5))
				return d
			},
			setupMocks:  func(repo *mocks.MockChequeRepository) {},
			expectError: domain.ErrValidation,
		},
		{
			name:        "unknown kind",
			kind:        domain.Kind("sideways"),
			draft:       outgoingDraft,
			setupMocks:  func(repo *mocks.MockChequeRepository) {},
			expectError: domain.ErrInvalidKind,
		},
		{
			name:  "store error surfaces",
			kind:  domain.KindOutgoing,
			draft: outgoingDraft,
			setupMocks: func(repo *mocks.MockChequeRepository) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.ErrCollaboratorUnavailable)
			},
			expectError: domain.ErrCollaboratorUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockChequeRepository(ctrl)
			tt.setupMocks(repo)

			cheque, err := newUseCase(repo).CreateCheque(context.Background(), tt.kind, tt.draft())

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cheque.Status != domain.StatusPending || cheque.SettledDate != "" {
				t.Fatalf("expected pending cheque without settled date, got %+v", cheque)
			}
			if !domain.IsDurableID(cheque.ID) {
				t.Fatalf("expected durable id, got %q", cheque.ID)
			}
			if cheque.Kind != tt.kind {
				t.Fatalf("expected kind %s, got %s", tt.kind, cheque.Kind)
			}
		})
	}
}

func TestChequeUseCase_SettleCheque(t *testing.T) {
	repo := mocks.NewFakeChequeRepository()
	publisher := &mocks.RecordingPublisher{}
	uc := newUseCase(repo, usecase.WithPublisher(publisher))
	ctx := context.Background()

	cheque, err := uc.CreateCheque(ctx, domain.KindOutgoing, outgoingDraft())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	settled, err := uc.SettleCheque(ctx, domain.KindOutgoing, cheque.ID)
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if settled.Status != domain.StatusCompleted || settled.SettledDate != "2024-01-10" {
		t.Fatalf("expected completed on 2024-01-10, got %s on %q", settled.Status, settled.SettledDate)
	}

	_, err = uc.SettleCheque(ctx, domain.KindOutgoing, cheque.ID)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second settle, got %v", err)
	}

	stored, _ := repo.GetByID(ctx, domain.KindOutgoing, cheque.ID)
	if stored.SettledDate != "2024-01-10" || stored.Status != domain.StatusCompleted {
		t.Fatalf("failed settle must leave record unchanged, got %+v", stored)
	}

	want := []string{domain.EventTypeChequeCreated, domain.EventTypeChequeCompleted}
	if got := publisher.Types(); len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected events %v, got %v", want, got)
	}
}

func TestChequeUseCase_SettleCheque_KindsAreIndependent(t *testing.T) {
	repo := mocks.NewFakeChequeRepository()
	uc := newUseCase(repo)
	ctx := context.Background()

	cheque, err := uc.CreateCheque(ctx, domain.KindIncoming, outgoingDraft())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := uc.SettleCheque(ctx, domain.KindOutgoing, cheque.ID); !errors.Is(err, domain.ErrChequeNotFound) {
		t.Fatalf("expected not found in the other collection, got %v", err)
	}

	deposited, err := uc.SettleCheque(ctx, domain.KindIncoming, cheque.ID)
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if deposited.Status != domain.StatusDeposited {
		t.Fatalf("expected deposited, got %s", deposited.Status)
	}
}

func TestChequeUseCase_SettleCheque_MalformedID(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockChequeRepository(ctrl)

	_, err := newUseCase(repo).SettleCheque(context.Background(), domain.KindOutgoing, "1704873600000")
	if !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestChequeUseCase_DeleteCheque_Idempotent(t *testing.T) {
	repo := mocks.NewFakeChequeRepository()
	uc := newUseCase(repo)
	ctx := context.Background()

	cheque, err := uc.CreateCheque(ctx, domain.KindOutgoing, outgoingDraft())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := uc.DeleteCheque(ctx, domain.KindOutgoing, cheque.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := uc.DeleteCheque(ctx, domain.KindOutgoing, cheque.ID); err != nil {
		t.Fatalf("second delete must be a no-op, got %v", err)
	}
	if err := uc.DeleteCheque(ctx, domain.KindOutgoing, ulid.Make().String()); err != nil {
		t.Fatalf("deleting unknown id must be a no-op, got %v", err)
	}

	list, _ := uc.ListCheques(ctx, domain.KindOutgoing)
	if len(list) != 0 {
		t.Fatalf("expected empty collection, got %d", len(list))
	}
}

func TestChequeUseCase_PublishFailureDoesNotFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockEventPublisher(ctrl)
	metrics := mocks.NewMockMetrics(ctrl)

	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
	metrics.EXPECT().ChequeCreated(domain.KindOutgoing)

	uc := newUseCase(mocks.NewFakeChequeRepository(), usecase.WithPublisher(publisher), usecase.WithMetrics(metrics))
	if _, err := uc.CreateCheque(context.Background(), domain.KindOutgoing, outgoingDraft()); err != nil {
		t.Fatalf("publish failure must not fail create: %v", err)
	}
}

func TestChequeUseCase_ListCheques_NewestFirst(t *testing.T) {
	repo := mocks.NewFakeChequeRepository()
	ctx := context.Background()

	older := &domain.Cheque{ID: ulid.Make().String(), Kind: domain.KindOutgoing, CreatedAt: fixedNow.Add(-time.Hour)}
	newer := &domain.Cheque{ID: ulid.Make().String(), Kind: domain.KindOutgoing, CreatedAt: fixedNow}
	_ = repo.Create(ctx, older)
	_ = repo.Create(ctx, newer)

	list, err := newUseCase(repo).ListCheques(ctx, domain.KindOutgoing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
}
