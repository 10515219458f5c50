// Integration tests for the lottery flows against a real PostgreSQL
// instance. Tests use testcontainers-go and skip when Docker is not
// available.
package service

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"lotto-service/internal/model"
	"lotto-service/internal/pkg/db"
	"lotto-service/internal/repository"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, db.Migrate(ctx, pool))
	require.NoError(t, db.SeedPrizeTiers(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// pickFirst is a deterministic draw source: it always selects the head
// of the remaining candidate pool, so the three winners are the three
// smallest numbers of the round.
type pickFirst struct{}

func (pickFirst) Intn(n int) int { return 0 }

// testEnv bundles the repositories and services of one test database.
type testEnv struct {
	pool        *pgxpool.Pool
	users       *repository.UserRepository
	tickets     *repository.TicketRepository
	wallet      *repository.WalletRepository
	accounts    *AccountService
	ticketSvc   *TicketService
	purchases   *PurchaseService
	draws       *DrawService
	redemptions *RedemptionService
}

func newTestEnv(pool *pgxpool.Pool) *testEnv {
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	purchaseRepo := repository.NewPurchaseRepository(pool)
	drawRepo := repository.NewDrawRepository(pool)
	prizeRepo := repository.NewPrizeRepository(pool)
	walletRepo := repository.NewWalletRepository(pool)
	redemptionRepo := repository.NewRedemptionRepository(pool)

	return &testEnv{
		pool:        pool,
		users:       userRepo,
		tickets:     ticketRepo,
		wallet:      walletRepo,
		accounts:    NewAccountService(pool, userRepo, walletRepo, time.Hour, 4),
		ticketSvc:   NewTicketService(ticketRepo, purchaseRepo, 80),
		purchases:   NewPurchaseService(pool, ticketRepo, purchaseRepo, walletRepo),
		draws:       NewDrawService(pool, drawRepo, ticketRepo, prizeRepo, pickFirst{}),
		redemptions: NewRedemptionService(pool, purchaseRepo, redemptionRepo, walletRepo),
	}
}

// registerMember creates an account with an opening balance.
func (e *testEnv) registerMember(t *testing.T, username string, balance int64) *model.User {
	t.Helper()
	user, err := e.accounts.Register(context.Background(), RegisterInput{
		Username:       username,
		Password:       "secret123",
		InitialBalance: balance,
	})
	require.NoError(t, err)
	return user
}

var round = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

// ============================================================================
// AccountService
// ============================================================================

func TestAccountService_RegisterLoginLogout(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	env := newTestEnv(pool)
	ctx := context.Background()

	user := env.registerMember(t, "alice", 100)
	assert.Equal(t, model.RoleMember, user.Role)

	// Opening balance lands in the ledger
	balance, err := env.wallet.CurrentBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	// Duplicate username rejected
	_, err = env.accounts.Register(ctx, RegisterInput{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// Missing credentials rejected
	_, err = env.accounts.Register(ctx, RegisterInput{Username: "", Password: "x"})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	// Login issues a session that resolves back to the account
	logged, token, err := env.accounts.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	require.NotEmpty(t, token)

	resolved, err := env.accounts.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	// Wrong password rejected
	_, _, err = env.accounts.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown user gets the same error as a wrong password
	_, _, err = env.accounts.Login(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Logout invalidates the session
	require.NoError(t, env.accounts.Logout(ctx, token))
	_, err = env.accounts.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

// ============================================================================
// PurchaseService
// ============================================================================

func TestPurchaseService_Flow(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	env := newTestEnv(pool)
	ctx := context.Background()

	buyer := env.registerMember(t, "bob", 100)
	rival := env.registerMember(t, "carol", 100)
	poor := env.registerMember(t, "dave", 10)

	ids, err := env.ticketSvc.Provision(ctx, []string{"111111", "222222"}, round, 80)
	require.NoError(t, err)

	// Successful purchase: ticket sold, price debited, ledger entry linked
	purchase, err := env.purchases.Purchase(ctx, buyer.ID, ids[0])
	require.NoError(t, err)
	assert.Equal(t, int64(80), purchase.Price)

	ticket, err := env.tickets.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, model.TicketSold, ticket.Status)

	balance, err := env.wallet.CurrentBalance(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), balance)

	entries, err := env.wallet.ListByUser(ctx, buyer.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.TxnPurchase, entries[0].Type)
	require.NotNil(t, entries[0].PurchaseID)
	assert.Equal(t, purchase.ID, *entries[0].PurchaseID)

	// Same ticket cannot be bought twice
	_, err = env.purchases.Purchase(ctx, rival.ID, ids[0])
	assert.ErrorIs(t, err, ErrTicketUnavailable)

	// Balance below price leaves everything untouched
	_, err = env.purchases.Purchase(ctx, poor.ID, ids[1])
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	ticket, err = env.tickets.GetByID(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, model.TicketAvailable, ticket.Status)

	balance, err = env.wallet.CurrentBalance(ctx, poor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)

	// Unknown ticket
	_, err = env.purchases.Purchase(ctx, buyer.ID, 99999)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestPurchaseService_ConcurrentBuyers(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	env := newTestEnv(pool)
	ctx := context.Background()

	ids, err := env.ticketSvc.Provision(ctx, []string{"333333"}, round, 80)
	require.NoError(t, err)

	const buyers = 5
	users := make([]*model.User, buyers)
	for i := 0; i < buyers; i++ {
		users[i] = env.registerMember(t, fmt.Sprintf("buyer%d", i), 100)
	}

	// All buyers race for the one ticket; exactly one wins it
	var wg sync.WaitGroup
	results := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = env.purchases.Purchase(ctx, users[i].ID, ids[0])
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrTicketUnavailable)
		}
	}
	assert.Equal(t, 1, successes)
}

// ============================================================================
// DrawService
// ============================================================================

func TestDrawService_ExecuteDraw(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	env := newTestEnv(pool)
	ctx := context.Background()

	owner := env.registerMember(t, "owner", 0)
	buyer := env.registerMember(t, "erin", 1000)

	// Candidates sorted: 000456 is the smallest, so pickFirst makes it
	// the tier-1 number; its suffixes are 456 and 56.
	numbers := []string{"000456", "111111", "222222", "333333", "887456", "999956"}
	ids, err := env.ticketSvc.Provision(ctx, numbers, round, 80)
	require.NoError(t, err)

	// Buyer holds the tier-1 exact number plus both suffix matchers
	for _, i := range []int{0, 4, 5} {
		_, err = env.purchases.Purchase(ctx, buyer.ID, ids[i])
		require.NoError(t, err)
	}

	result, err := env.draws.ExecuteDraw(ctx, round, model.DrawAllTickets, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "000456", result.Tier1)
	assert.Equal(t, "111111", result.Tier2)
	assert.Equal(t, "222222", result.Tier3)
	assert.Equal(t, "456", result.Suffix3)
	assert.Equal(t, "56", result.Suffix2)

	// The whole round retires, sold and unsold tickets alike
	for _, id := range ids {
		ticket, err := env.tickets.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.TicketDrawn, ticket.Status)
	}

	// Five tier outcomes recorded, suffix tiers derived from tier 1
	draw, results, err := env.draws.LatestResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.DrawID, draw.ID)
	require.Len(t, results, 5)

	require.NotNil(t, results[0].NumberFull)
	assert.Equal(t, "000456", *results[0].NumberFull)
	require.NotNil(t, results[3].SuffixValue)
	assert.Equal(t, "456", *results[3].SuffixValue)
	require.NotNil(t, results[3].DerivedFromTier)
	assert.Equal(t, 1, *results[3].DerivedFromTier)
	require.NotNil(t, results[4].SuffixValue)
	assert.Equal(t, "56", *results[4].SuffixValue)

	// The buyer's tier-1 ticket also matches both suffix tiers:
	// 1,000,000 + 4,000 + 2,000. A three-digit suffix match implies
	// the two-digit one, so 887456 takes both; 999956 only the last.
	summaries, err := env.ticketSvc.Mine(ctx, buyer.ID, nil)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	byNumber := make(map[string]*model.PurchaseSummary, len(summaries))
	for _, s := range summaries {
		byNumber[s.Number] = s
	}
	assert.Equal(t, int64(1006000), byNumber["000456"].WinAmount)
	assert.Equal(t, model.ResultWon, byNumber["000456"].ResultStatus())
	assert.Equal(t, int64(6000), byNumber["887456"].WinAmount)
	assert.Equal(t, int64(2000), byNumber["999956"].WinAmount)
}

func TestDrawService_DuplicateRoundRejected(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	env := newTestEnv(pool)
	ctx := context.Background()

	owner := env.registerMember(t, "owner", 0)
	_, err := env.ticketSvc.Provision(ctx, []string{"111111", "222222", "333333"}, round, 80)
	require.NoError(t, err)

	_, err = env.draws.ExecuteDraw(ctx, round, model.DrawAllTickets, owner.ID)
	require.NoError(t, err)

	_, err = env.draws.ExecuteDraw(ctx, round, model.DrawAllTickets, owner.ID)
	assert.ErrorIs(t, err, ErrDrawExists)

	// Exactly one draw recorded
	draws, err := env.draws.ListDraws(ctx)
	require.NoError(t, err)
	assert.Len(t, draws, 1)
}

func TestDrawService_InsufficientCandidates(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	env := newTestEnv(pool)
	ctx := context.Background()

	owner := env.registerMember(t, "owner", 0)
	buyer := env.registerMember(t, "frank", 1000)

	ids, err := env.ticketSvc.Provision(ctx, []string{"111111", "222222", "333333"}, round, 80)
	require.NoError(t, err)

	// Only two sold: sold_only cannot seat three winners
	for _, id := range ids[:2] {
		_, err = env.purchases.Purchase(ctx, buyer.ID, id)
		require.NoError(t, err)
	}

	_, err = env.draws.ExecuteDraw(ctx, round, model.DrawSoldOnly, owner.ID)
	assert.ErrorIs(t, err, ErrInsufficientCandidates)

	// The failed draw left nothing behind
	draws, err := env.draws.ListDraws(ctx)
	require.NoError(t, err)
	assert.Empty(t, draws)

	ticket, err := env.tickets.GetByID(ctx, ids[2])
	require.NoError(t, err)
	assert.Equal(t, model.TicketAvailable, ticket.Status)

	// all_tickets sees all three numbers and succeeds
	_, err = env.draws.ExecuteDraw(ctx, round, model.DrawAllTickets, owner.ID)
	require.NoError(t, err)
}

func TestDrawService_InvalidMethod(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	env := newTestEnv(pool)

	_, err := env.draws.ExecuteDraw(context.Background(), round, "everything", 1)
	assert.ErrorIs(t, err, ErrInvalidDrawMethod)
}

// ============================================================================
// RedemptionService
// ============================================================================

func TestRedemptionService_FullFlow(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	env := newTestEnv(pool)
	ctx := context.Background()

	owner := env.registerMember(t, "owner", 0)
	winner := env.registerMember(t, "grace", 100)
	stranger := env.registerMember(t, "heidi", 100)

	ids, err := env.ticketSvc.Provision(ctx, []string{"000001", "111111", "222222"}, round, 80)
	require.NoError(t, err)

	winPurchase, err := env.purchases.Purchase(ctx, winner.ID, ids[0])
	require.NoError(t, err)

	// pickFirst selects 000001 as tier 1
	result, err := env.draws.ExecuteDraw(ctx, round, model.DrawAllTickets, owner.ID)
	require.NoError(t, err)
	require.Equal(t, "000001", result.Tier1)

	// A stranger cannot claim someone else's purchase
	_, err = env.redemptions.Redeem(ctx, stranger.ID, winPurchase.ID, result.DrawID)
	assert.ErrorIs(t, err, ErrNotOwner)

	// Win: tier-1 exact (1,000,000) + tier-4 suffix 001 + tier-5
	// suffix 01 both also match, so 1,006,000 total
	outcome, err := env.redemptions.Redeem(ctx, winner.ID, winPurchase.ID, result.DrawID)
	require.NoError(t, err)
	assert.Equal(t, int64(1006000), outcome.Amount)
	assert.Equal(t, int64(1006020), outcome.BalanceAfter)

	balance, err := env.wallet.CurrentBalance(ctx, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1006020), balance)

	// The listing flips to claimed
	summaries, err := env.ticketSvc.Mine(ctx, winner.ID, nil)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, model.ResultClaimed, summaries[0].ResultStatus())

	// Second claim of the same pair is rejected and credits nothing
	_, err = env.redemptions.Redeem(ctx, winner.ID, winPurchase.ID, result.DrawID)
	assert.ErrorIs(t, err, ErrAlreadyRedeemed)

	balance, err = env.wallet.CurrentBalance(ctx, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1006020), balance)

	// Unknown purchase
	_, err = env.redemptions.Redeem(ctx, winner.ID, 99999, result.DrawID)
	assert.ErrorIs(t, err, ErrPurchaseNotFound)
}

func TestRedemptionService_NoPrize(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	env := newTestEnv(pool)
	ctx := context.Background()

	owner := env.registerMember(t, "owner", 0)
	buyer := env.registerMember(t, "ivy", 100)

	// 999999 shares no tier or suffix with the three smallest numbers
	ids, err := env.ticketSvc.Provision(ctx, []string{"111111", "222222", "333333", "999999"}, round, 80)
	require.NoError(t, err)

	purchase, err := env.purchases.Purchase(ctx, buyer.ID, ids[3])
	require.NoError(t, err)

	result, err := env.draws.ExecuteDraw(ctx, round, model.DrawAllTickets, owner.ID)
	require.NoError(t, err)

	_, err = env.redemptions.Redeem(ctx, buyer.ID, purchase.ID, result.DrawID)
	assert.ErrorIs(t, err, ErrNoPrize)

	balance, err := env.wallet.CurrentBalance(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), balance)

	summaries, err := env.ticketSvc.Mine(ctx, buyer.ID, nil)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, model.ResultLost, summaries[0].ResultStatus())
}

func TestRedemptionService_ConcurrentClaims(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	env := newTestEnv(pool)
	ctx := context.Background()

	owner := env.registerMember(t, "owner", 0)
	winner := env.registerMember(t, "judy", 100)

	ids, err := env.ticketSvc.Provision(ctx, []string{"000001", "111111", "222222"}, round, 80)
	require.NoError(t, err)

	purchase, err := env.purchases.Purchase(ctx, winner.ID, ids[0])
	require.NoError(t, err)

	result, err := env.draws.ExecuteDraw(ctx, round, model.DrawAllTickets, owner.ID)
	require.NoError(t, err)

	// Concurrent claims of the same win: the purchase row lock
	// serializes them and exactly one credits the wallet.
	const claimers = 5
	var wg sync.WaitGroup
	results := make([]error, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = env.redemptions.Redeem(ctx, winner.ID, purchase.ID, result.DrawID)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyRedeemed)
		}
	}
	assert.Equal(t, 1, successes)

	// 100 - 80 + 1,006,000 exactly once
	balance, err := env.wallet.CurrentBalance(ctx, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1006020), balance)
}
