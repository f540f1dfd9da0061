package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
	"github.com/totegamma/misblock/internal/usecase"
)

func TestOnTransferIgnoresUnrelated(t *testing.T) {
	h := newHarness(t)

	result, err := h.transfers.OnTransfer(as(relay), misblock.TransferNotification{
		From: contract, To: "alice", Quantity: misblock.NewMIS(10), Memo: "paybillmis:x",
	})
	require.NoError(t, err)
	assert.Equal(t, usecase.TransferIgnored, result.Outcome)

	result, err = h.transfers.OnTransfer(as(relay), misblock.TransferNotification{
		From: "alice", To: "bob", Quantity: misblock.NewMIS(10), Memo: "nonsense",
	})
	require.NoError(t, err)
	assert.Equal(t, usecase.TransferIgnored, result.Outcome)
	assert.Empty(t, h.pub.events)
}

func TestOnTransferDeposit(t *testing.T) {
	h := newHarness(t)
	result, err := h.transfers.OnTransfer(as(relay), misblock.TransferNotification{
		From: "alice", To: contract, Quantity: misblock.NewMIS(10000),
	})
	require.NoError(t, err)
	assert.Equal(t, usecase.TransferDeposited, result.Outcome)
	assert.Nil(t, result.Bill)
}

func TestOnTransferRejects(t *testing.T) {
	h := newHarness(t)

	_, err := h.transfers.OnTransfer(as("alice"), misblock.TransferNotification{
		From: "alice", To: contract, Quantity: misblock.NewMIS(1),
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = h.transfers.OnTransfer(as(admin), misblock.TransferNotification{
		From: "alice", To: contract, Quantity: misblock.NewMIS(1),
	})
	assert.NoError(t, err)

	_, err = h.transfers.OnTransfer(as(relay), misblock.TransferNotification{
		From: "alice", To: contract, Quantity: misblock.Asset{Amount: 1, Symbol: "EOS"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	for _, memo := range []string{"payconsmis:abc", "refund:abc", "paybillmis", "paybillmis::r1", "paybillcash:alice"} {
		_, err = h.transfers.OnTransfer(as(relay), misblock.TransferNotification{
			From: "alice", To: contract, Quantity: misblock.NewMIS(1), Memo: memo,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAction, memo)
	}

	_, err = h.transfers.OnTransfer(as(relay), misblock.TransferNotification{
		From: "alice", To: contract, Quantity: misblock.NewMIS(1), Memo: "paybillmis:missing",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOnTransferPublishesAfterCommit(t *testing.T) {
	h := newHarness(t)
	_, err := h.hospitals.Register(as("hospitala"), "hospitala", "url")
	require.NoError(t, err)
	bill, err := h.bills.Issue(as("hospitala"), "hospitala", "alice", "checkup", 1000000)
	require.NoError(t, err)
	published := len(h.pub.events)

	_, err = payWithToken(h, "alice", bill, "", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	got, err := h.bills.Get(as("alice"), bill.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPaid())
	_, err = h.points.GetCustomer(as("alice"), "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{domain.EventTransferRefunded}, h.pub.types()[published:])
	published = len(h.pub.events)

	_, err = payWithToken(h, "alice", bill, "", 1000000)
	require.NoError(t, err)
	types := h.pub.types()[published:]
	assert.Contains(t, types, domain.EventPointsCredited)
	assert.Equal(t, domain.EventBillPaid, types[len(types)-1])
	for _, e := range h.pub.events[published:] {
		assert.Equal(t, domain.LedgerChannel, e.Channel)
		assert.NotEmpty(t, e.ID)
	}

	paid, ok := h.pub.events[len(h.pub.events)-1].Payload.(domain.Bill)
	require.True(t, ok)
	assert.Empty(t, paid.Content)
	assert.Equal(t, bill.ID, paid.ID)
}

func TestPaymentCommitsWhileTokenServiceIsDown(t *testing.T) {
	h := newHarness(t)
	_, err := h.hospitals.Register(as("hospitala"), "hospitala", "url")
	require.NoError(t, err)
	bill, err := h.bills.Issue(as("hospitala"), "hospitala", "alice", "checkup", 1000000)
	require.NoError(t, err)

	h.token.fail = errors.New("token service unavailable")
	_, err = payWithToken(h, "alice", bill, "", 1000000)
	require.NoError(t, err)
	assert.Contains(t, h.pub.types(), domain.EventBillPaid)

	logs := h.transferLog(t)
	require.Len(t, logs, 1)
	assert.Equal(t, "bill:"+bill.ID+":hospital", logs[0].Key)
	assert.Equal(t, domain.TransferPending, logs[0].Status)

	// a replayed notification is rejected and refunded, never paid twice
	_, err = payWithToken(h, "alice", bill, "", 1000000)
	assert.ErrorIs(t, err, domain.ErrBillSettled)

	h.token.fail = nil
	n, err := h.ledger.ResendPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(900000), h.token.sentTo("hospitala"))
	assert.Equal(t, int64(1000000), h.token.sentTo("alice"))
	h.requireConsistentSupply(t)
}

func TestRejectedTokenPaymentIsRefunded(t *testing.T) {
	h := newHarness(t)
	_, err := h.hospitals.Register(as("hospitala"), "hospitala", "url")
	require.NoError(t, err)
	bill, err := h.bills.Issue(as("hospitala"), "hospitala", "alice", "checkup", 1000000)
	require.NoError(t, err)

	pay := misblock.TransferNotification{
		TxID:     "tx1",
		From:     "alice",
		To:       contract,
		Quantity: misblock.NewMIS(1000000),
		Memo:     "paybillmis:" + bill.ID,
	}
	_, err = h.transfers.OnTransfer(as(relay), pay)
	require.NoError(t, err)
	assert.Zero(t, h.token.sentTo("alice"))

	pay.TxID = "tx2"
	_, err = h.transfers.OnTransfer(as(relay), pay)
	assert.ErrorIs(t, err, domain.ErrBillSettled)
	assert.Equal(t, int64(1000000), h.token.sentTo("alice"))

	// redelivery of the same rejected transfer
	_, err = h.transfers.OnTransfer(as(relay), pay)
	assert.ErrorIs(t, err, domain.ErrBillSettled)
	assert.Equal(t, int64(1000000), h.token.sentTo("alice"))

	logs := h.transferLog(t)
	require.Len(t, logs, 2)
	assert.Equal(t, "refund:tx2", logs[0].Key)
	assert.Equal(t, "alice", logs[0].To)
	assert.Equal(t, "100.0000 MIS", logs[0].Quantity)
	assert.Equal(t, "refund: InvalidArgument: bill is already paid", logs[0].Memo)
	assert.Equal(t, domain.TransferSent, logs[0].Status)

	_, err = h.transfers.OnTransfer(as(relay), misblock.TransferNotification{
		From: "bob", To: contract, Quantity: misblock.NewMIS(5), Memo: "payconsmis:x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
	assert.Equal(t, int64(5), h.token.sentTo("bob"))

	_, err = h.transfers.OnTransfer(as(relay), misblock.TransferNotification{
		From: "bob", To: contract, Quantity: misblock.NewMIS(5),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), h.token.sentTo("bob"))
	h.requireConsistentSupply(t)
}
