package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chioma/rentledger/internal/domain"
)

var testNow = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

func newTestServices(t *testing.T) (*AgreementService, *PaymentService, *memStore) {
	t.Helper()
	st := newMemStore()
	agreements := NewAgreementService(st, st, "CHIOMA", zerolog.Nop())
	agreements.now = func() time.Time { return testNow }
	payments := NewPaymentService(st, st, zerolog.Nop())
	payments.now = func() time.Time { return testNow }
	return agreements, payments, st
}

func testParams() domain.NewAgreementParams {
	return domain.NewAgreementParams{
		PropertyID:       uuid.New(),
		LandlordID:       uuid.New(),
		TenantID:         uuid.New(),
		MonthlyRent:      150000,
		SecurityDeposit:  300000,
		Currency:         "NGN",
		CommissionRate:   10,
		PaymentFrequency: domain.FrequencyMonthly,
		StartDate:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAgreementServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("allocates sequential numbers within the year", func(t *testing.T) {
		svc, _, _ := newTestServices(t)

		first, err := svc.Create(ctx, testParams())
		require.NoError(t, err)
		second, err := svc.Create(ctx, testParams())
		require.NoError(t, err)

		assert.Equal(t, "CHIOMA-2026-0001", first.AgreementNumber)
		assert.Equal(t, "CHIOMA-2026-0002", second.AgreementNumber)
		assert.Equal(t, domain.StatusDraft, first.Status)
		assert.Zero(t, first.TotalPaid)
		assert.Zero(t, first.EscrowBalance)
	})

	t.Run("invalid dates fail before consuming a sequence number", func(t *testing.T) {
		svc, _, st := newTestServices(t)

		p := testParams()
		p.StartDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		p.EndDate = time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

		_, err := svc.Create(ctx, p)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Zero(t, st.seqCalls)
	})
}

func TestAgreementServiceUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestServices(t)

	a, err := svc.Create(ctx, testParams())
	require.NoError(t, err)

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Update(ctx, uuid.New(), domain.AgreementPatch{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("patch applied", func(t *testing.T) {
		rent := int64(175000)
		updated, err := svc.Update(ctx, a.ID, domain.AgreementPatch{MonthlyRent: &rent})
		require.NoError(t, err)
		assert.Equal(t, rent, updated.MonthlyRent)
		assert.Equal(t, a.AgreementNumber, updated.AgreementNumber)
	})

	t.Run("failed patch leaves record untouched", func(t *testing.T) {
		end := a.StartDate.AddDate(0, 0, -1)
		_, err := svc.Update(ctx, a.ID, domain.AgreementPatch{EndDate: &end})
		assert.ErrorIs(t, err, domain.ErrValidation)

		detail, err := svc.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.EndDate, detail.EndDate)
	})
}

func TestAgreementServiceTerminate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestServices(t)

	a, err := svc.Create(ctx, testParams())
	require.NoError(t, err)

	terminated, err := svc.Terminate(ctx, a.ID, "lease_end", "moved out")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTerminated, terminated.Status)
	require.NotNil(t, terminated.TerminationDate)
	assert.Equal(t, testNow, *terminated.TerminationDate)

	_, err = svc.Terminate(ctx, a.ID, "breach", "")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Terminate(ctx, uuid.New(), "lease_end", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAgreementServiceDispute(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestServices(t)

	a, err := svc.Create(ctx, testParams())
	require.NoError(t, err)

	disputed, err := svc.Dispute(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDisputed, disputed.Status)

	_, err = svc.Terminate(ctx, a.ID, "dispute_upheld", "")
	require.NoError(t, err)
	_, err = svc.Dispute(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAgreementServiceGet(t *testing.T) {
	ctx := context.Background()
	svc, payments, _ := newTestServices(t)

	a, err := svc.Create(ctx, testParams())
	require.NoError(t, err)

	_, err = payments.Record(ctx, a.ID, RecordPaymentInput{
		Amount:      150000,
		PaymentDate: testNow,
		Method:      domain.MethodBankTransfer,
	})
	require.NoError(t, err)

	detail, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, detail.ID)
	require.Len(t, detail.Payments, 1)
	assert.Equal(t, int64(150000), detail.Payments[0].Amount)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAgreementServiceList(t *testing.T) {
	ctx := context.Background()
	svc, payments, _ := newTestServices(t)

	// 15 active (activated by a first payment), 5 draft.
	for i := 0; i < 20; i++ {
		a, err := svc.Create(ctx, testParams())
		require.NoError(t, err)
		if i < 15 {
			_, err = payments.Record(ctx, a.ID, RecordPaymentInput{
				Amount:      150000,
				PaymentDate: testNow,
				Method:      domain.MethodCash,
			})
			require.NoError(t, err)
		}
	}

	active := domain.StatusActive
	page, err := svc.List(ctx, domain.AgreementQuery{Status: &active, Page: 1, Limit: 10})
	require.NoError(t, err)

	assert.Len(t, page.Agreements, 10)
	assert.Equal(t, int64(15), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	for _, a := range page.Agreements {
		assert.Equal(t, domain.StatusActive, a.Status)
	}

	page2, err := svc.List(ctx, domain.AgreementQuery{Status: &active, Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page2.Agreements, 5)
	assert.Equal(t, int64(15), page2.Total)

	// Defaults applied when the query is empty.
	all, err := svc.List(ctx, domain.AgreementQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(20), all.Total)
	assert.Len(t, all.Agreements, 10)
	assert.Equal(t, 1, all.Page)
	assert.Equal(t, 10, all.Limit)
}

func TestAgreementServiceListFilters(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestServices(t)

	landlord := uuid.New()
	for i := 0; i < 3; i++ {
		p := testParams()
		if i == 0 {
			p.LandlordID = landlord
		}
		_, err := svc.Create(ctx, p)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, domain.AgreementQuery{LandlordID: &landlord})
	require.NoError(t, err)
	require.Len(t, page.Agreements, 1)
	assert.Equal(t, landlord, page.Agreements[0].LandlordID)
}

func TestAgreementServiceExpireOverdue(t *testing.T) {
	ctx := context.Background()
	svc, payments, st := newTestServices(t)

	overdue := testParams()
	overdue.StartDate = testNow.AddDate(-2, 0, 0)
	overdue.EndDate = testNow.AddDate(0, 0, -1)

	a, err := svc.Create(ctx, overdue)
	require.NoError(t, err)
	_, err = payments.Record(ctx, a.ID, RecordPaymentInput{
		Amount: 1000, PaymentDate: testNow, Method: domain.MethodCash,
	})
	require.NoError(t, err)

	// Still running: should not be swept.
	current, err := svc.Create(ctx, testParams())
	require.NoError(t, err)
	_, err = payments.Record(ctx, current.ID, RecordPaymentInput{
		Amount: 1000, PaymentDate: testNow, Method: domain.MethodCash,
	})
	require.NoError(t, err)

	n, err := svc.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := st.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, got.Status)

	kept, err := st.Get(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, kept.Status)
}

func TestAgreementNumberYearRollover(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestServices(t)

	for i := 1; i <= 3; i++ {
		a, err := svc.Create(ctx, testParams())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("CHIOMA-2026-%04d", i), a.AgreementNumber)
	}

	svc.now = func() time.Time { return testNow.AddDate(1, 0, 0) }
	a, err := svc.Create(ctx, testParams())
	require.NoError(t, err)
	assert.Equal(t, "CHIOMA-2027-0001", a.AgreementNumber)
}
