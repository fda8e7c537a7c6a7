//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spinhall/platform/test/integration/testutil"
)

// --- Balance Tests ---

func TestBalance_NewUserZeroState(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, token := env.NewUser()

	resp := env.AuthGET("/wallet/balance", token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var bal struct {
		TotalBalance           int64 `json:"total_balance"`
		BonusBalance           int64 `json:"bonus_balance"`
		RealBalance            int64 `json:"real_balance"`
		AvailableForWithdrawal int64 `json:"available_for_withdrawal"`
		HasActiveBonus         bool  `json:"has_active_bonus"`
	}
	testutil.DecodeJSON(t, resp, &bal)
	assert.Equal(t, int64(0), bal.TotalBalance)
	assert.Equal(t, int64(0), bal.BonusBalance)
	assert.Equal(t, int64(0), bal.RealBalance)
	assert.False(t, bal.HasActiveBonus)
}

func TestBalance_RequiresAuth(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.GET("/wallet/balance")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBalance_IsolatedBetweenUsers(t *testing.T) {
	env := testutil.NewTestEnv(t)
	user1, token1 := env.NewUser()
	_, token2 := env.NewUser()

	env.ApplyOperation(t, token1, "deposit", "75.00", "")

	testutil.AssertTotalBalance(t, env, user1, 7500)

	resp := env.AuthGET("/wallet/balance", token2)
	var bal struct {
		TotalBalance int64 `json:"total_balance"`
	}
	testutil.DecodeJSON(t, resp, &bal)
	assert.Equal(t, int64(0), bal.TotalBalance)
}

// --- Operation Tests ---

func TestOperations_DepositCreditsBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID, token := env.NewUser()

	result := env.ApplyOperation(t, token, "deposit", "100.00", "")

	tx := result["transaction"].(map[string]interface{})
	assert.Equal(t, "deposit", tx["type"])
	assert.Equal(t, float64(10000), tx["amount"])
	assert.Equal(t, float64(0), tx["balance_before"])
	assert.Equal(t, float64(10000), tx["balance_after"])

	testutil.AssertTotalBalance(t, env, userID, 10000)
	assert.Equal(t, 1, testutil.CountTransactions(t, env, userID))
}

func TestOperations_BetDebitsBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID, token := env.NewUser()
	env.ApplyOperation(t, token, "deposit", "50.00", "")

	env.ApplyOperation(t, token, "bet", "20.00", "")

	testutil.AssertTotalBalance(t, env, userID, 3000)
}

func TestOperations_BetInsufficientBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, token := env.NewUser()
	env.ApplyOperation(t, token, "deposit", "10.00", "")

	resp := env.AuthPOST("/wallet/operations", token, map[string]string{
		"kind": "bet", "amount": "10.01",
	})
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "INSUFFICIENT_BALANCE")
}

func TestOperations_WinCreditsBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID, token := env.NewUser()
	env.ApplyOperation(t, token, "deposit", "50.00", "")
	env.ApplyOperation(t, token, "bet", "20.00", "")

	env.ApplyOperation(t, token, "win", "35.00", "")

	testutil.AssertTotalBalance(t, env, userID, 6500)
}

func TestOperations_RejectsNonPositiveAmount(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, token := env.NewUser()

	resp := env.AuthPOST("/wallet/operations", token, map[string]string{
		"kind": "deposit", "amount": "0",
	})
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "INVALID_AMOUNT")
}

func TestOperations_RejectsSubCentPrecision(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, token := env.NewUser()

	resp := env.AuthPOST("/wallet/operations", token, map[string]string{
		"kind": "deposit", "amount": "10.005",
	})
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestOperations_RejectsUnknownKind(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, token := env.NewUser()

	resp := env.AuthPOST("/wallet/operations", token, map[string]string{
		"kind": "jackpot", "amount": "10.00",
	})
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

// --- Idempotency Tests ---

func TestOperations_DuplicateExternalIDReturnsOriginal(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID, token := env.NewUser()

	first := env.ApplyOperation(t, token, "deposit", "100.00", "ext-dup-1")
	second := env.ApplyOperation(t, token, "deposit", "100.00", "ext-dup-1")

	firstTx := first["transaction"].(map[string]interface{})
	secondTx := second["transaction"].(map[string]interface{})
	assert.Equal(t, firstTx["id"], secondTx["id"])
	assert.Equal(t, true, second["idempotent"])

	testutil.AssertTotalBalance(t, env, userID, 10000)
	assert.Equal(t, 1, testutil.CountTransactions(t, env, userID))
}

func TestOperations_ConcurrentBetsSerialize(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID, token := env.NewUser()
	env.ApplyOperation(t, token, "deposit", "100.00", "")

	// 10 concurrent 10.00 bets against a 100.00 balance: every bet either
	// commits fully or fails with INSUFFICIENT_BALANCE; the total never
	// goes negative.
	var wg sync.WaitGroup
	succeeded := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := env.AuthPOST("/wallet/operations", token, map[string]string{
				"kind": "bet", "amount": "10.00",
				"external_transaction_id": fmt.Sprintf("conc-bet-%d", i),
			})
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusCreated {
				succeeded <- struct{}{}
			}
		}(i)
	}
	wg.Wait()
	close(succeeded)

	wins := 0
	for range succeeded {
		wins++
	}
	testutil.AssertTotalBalance(t, env, userID, 10000-int64(wins)*1000)
}

// --- Withdrawal Tests ---

func TestWithdraw_DebitsRealFunds(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID, token := env.NewUser()
	env.ApplyOperation(t, token, "deposit", "80.00", "")

	resp := env.AuthPOST("/wallet/withdrawals", token, map[string]string{"amount": "30.00"})
	testutil.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	testutil.AssertTotalBalance(t, env, userID, 5000)
}

func TestWithdraw_InsufficientAvailable(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, token := env.NewUser()
	env.ApplyOperation(t, token, "deposit", "20.00", "")

	resp := env.AuthPOST("/wallet/withdrawals", token, map[string]string{"amount": "20.01"})
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "INSUFFICIENT_BALANCE")
}

// --- History Tests ---

func TestHistory_NewestFirst(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, token := env.NewUser()
	env.ApplyOperation(t, token, "deposit", "50.00", "")
	env.ApplyOperation(t, token, "bet", "10.00", "")
	env.ApplyOperation(t, token, "win", "25.00", "")

	resp := env.AuthGET("/wallet/transactions?limit=2", token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var body struct {
		Transactions []struct {
			Type string `json:"type"`
		} `json:"transactions"`
	}
	testutil.DecodeJSON(t, resp, &body)
	require.Len(t, body.Transactions, 2)
	assert.Equal(t, "win", body.Transactions[0].Type)
	assert.Equal(t, "bet", body.Transactions[1].Type)
}

func TestHistory_RejectsInvalidLimit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, token := env.NewUser()

	resp := env.AuthGET("/wallet/transactions?limit=101", token)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "INVALID_LIMIT")
}

// --- Ledger Verification Tests ---

func TestVerify_ReplayMatchesStoredBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, token := env.NewUser()
	env.ApplyOperation(t, token, "deposit", "100.00", "")
	env.ApplyOperation(t, token, "bet", "40.00", "")
	env.ApplyOperation(t, token, "win", "15.00", "")

	resp := env.AuthGET("/wallet/verify", token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result struct {
		TransactionCount int   `json:"transaction_count"`
		ReplayedBalance  int64 `json:"replayed_balance"`
		StoredBalance    int64 `json:"stored_balance"`
		AllPassed        bool  `json:"all_passed"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, 3, result.TransactionCount)
	assert.Equal(t, int64(7500), result.ReplayedBalance)
	assert.Equal(t, result.StoredBalance, result.ReplayedBalance)
	assert.True(t, result.AllPassed)
}
