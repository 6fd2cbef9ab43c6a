// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the token-staking incentive engine.
//
// Depositors accrue time-weighted reward under the tiered rate schedule and
// withdraw principal plus earned reward through a two-phase settlement: the
// stake record is removed optimistically, one outbound transfer is issued, and
// the result callback either commits the global counters or restores the
// record from the continuation snapshot.
package staking

import (
	"math/big"
	"sync"
	"time"

	"github.com/pborman/uuid"

	"github.com/lodepool/lodepool/kv"
	"github.com/lodepool/lodepool/lode"
	"github.com/lodepool/lodepool/log"
	"github.com/lodepool/lodepool/metrics"
	"github.com/lodepool/lodepool/staking/globalstats"
	"github.com/lodepool/lodepool/staking/ledger"
	"github.com/lodepool/lodepool/staking/reverts"
	"github.com/lodepool/lodepool/staking/schedule"
	"github.com/lodepool/lodepool/staking/settlement"
	"github.com/lodepool/lodepool/token"
)

var logger = log.WithContext("pkg", "staking")

var (
	metricDeposits    = metrics.Counter("deposit_count")
	metricUnstakes    = metrics.Counter("unstake_count")
	metricSettlements = metrics.CounterVec("settlement_count", []string{"outcome"})
	metricPending     = metrics.Gauge("pending_settlement_count")
)

// Genesis fixes the initial configuration of a fresh pool.
type Genesis struct {
	Owner        lode.Address
	RewardCap    *big.Int
	LockDuration uint64 // 0 selects lode.DefaultLockDuration
}

// Initialize writes the genesis state of a fresh pool. The schedule anchor is
// fixed to now and never changes afterwards.
func Initialize(db kv.GetPutter, gen *Genesis, now uint64) error {
	cfg := &configStore{db}
	inited, err := cfg.Initialized()
	if err != nil {
		return err
	}
	if inited {
		return reverts.NewPrecondition("already initialized")
	}
	if gen.Owner.IsZero() {
		return reverts.NewPrecondition("owner cannot be empty")
	}
	if gen.RewardCap == nil || gen.RewardCap.Sign() <= 0 {
		return reverts.NewPrecondition("total reward should be gt 0")
	}
	if gen.RewardCap.Cmp(lode.MaxTotalReward) > 0 {
		return reverts.NewPrecondition("total reward exceeds maximum")
	}
	lock := gen.LockDuration
	if lock == 0 {
		lock = lode.DefaultLockDuration
	}
	if lock > lode.MaxLockDuration {
		return reverts.NewPrecondition("lock duration exceeds maximum")
	}

	if err := cfg.SetOwner(gen.Owner); err != nil {
		return err
	}
	if err := cfg.SetAnchor(now); err != nil {
		return err
	}
	if err := cfg.SetLockDuration(lock); err != nil {
		return err
	}
	if err := cfg.SetPaused(false); err != nil {
		return err
	}
	if err := cfg.SetCutoff(0); err != nil {
		return err
	}
	if err := globalstats.New(db).SetRewardCap(gen.RewardCap); err != nil {
		return err
	}
	if err := cfg.SetSchemaVersion(lode.StateVersion); err != nil {
		return err
	}
	return cfg.SetInitialized()
}

// Options configures an opened engine.
type Options struct {
	PoolAddress lode.Address  // the pool's own account on the token ledger
	Now         func() uint64 // clock; defaults to wall time in seconds
	Sink        EventSink     // optional event consumer
}

// Staker is the staking engine. Every exported mutating method executes as one
// atomic step under the engine lock; the per-account operation state is the
// only synchronization spanning the asynchronous settlement gap.
type Staker struct {
	mu sync.Mutex

	cfg     *configStore
	sched   *schedule.Schedule
	records *ledger.Store
	stats   *globalstats.Stats
	states  opStateTable

	tok  token.Ledger
	pool lode.Address
	now  func() uint64
	sink EventSink

	pendingUnstakes    map[string]*settlement.Pending
	pendingWithdrawals map[string]*withdrawal
}

type withdrawal struct {
	recipient lode.Address
	amount    *big.Int
}

var _ token.Receiver = (*Staker)(nil)

// Open loads an initialized pool from db.
func Open(db kv.GetPutter, tok token.Ledger, opts Options) (*Staker, error) {
	cfg := &configStore{db}
	inited, err := cfg.Initialized()
	if err != nil {
		return nil, err
	}
	if !inited {
		return nil, reverts.NewPrecondition("not initialized")
	}
	if err := migrate(cfg); err != nil {
		return nil, err
	}
	anchor, err := cfg.Anchor()
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = func() uint64 { return uint64(time.Now().Unix()) }
	}
	return &Staker{
		cfg:                cfg,
		sched:              schedule.New(schedule.DefaultConfig(anchor)),
		records:            ledger.NewStore(db),
		stats:              globalstats.New(db),
		states:             make(opStateTable),
		tok:                tok,
		pool:               opts.PoolAddress,
		now:                now,
		sink:               opts.Sink,
		pendingUnstakes:    make(map[string]*settlement.Pending),
		pendingWithdrawals: make(map[string]*withdrawal),
	}, nil
}

// Run dispatches transfer results until done is closed. Exactly one Run loop
// must consume the ledger's results.
func (s *Staker) Run(done <-chan struct{}) {
	for {
		select {
		case res := <-s.tok.Results():
			s.Resolve(res)
		case <-done:
			return
		}
	}
}

//
// Deposit
//

// OnTokenReceived handles a deposit notification from the token ledger.
// The full amount is accepted (returning 0 unconsumed), or the whole request
// is rejected with an error.
func (s *Staker) OnTokenReceived(sender lode.Address, amount *big.Int, _ string) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount == nil || amount.Sign() <= 0 {
		return nil, reverts.NewPrecondition("deposit amount should be gt 0")
	}
	paused, err := s.cfg.Paused()
	if err != nil {
		return nil, err
	}
	if paused {
		return nil, reverts.NewPrecondition("stake paused")
	}
	switch s.states.get(sender) {
	case OpIdle:
	case OpStaking:
		return nil, reverts.NewStateConflict("stake operation already in progress")
	case OpUnstaking:
		return nil, reverts.NewStateConflict("cannot stake while unstake is in progress")
	}

	// deposit has no asynchronous sub-step; the lock spans just this call
	s.states.set(sender, OpStaking)
	defer s.states.set(sender, OpIdle)

	now := s.now()
	rec, err := s.records.Get(sender)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = ledger.NewRecord(now)
	}
	cutoff, err := s.cfg.Cutoff()
	if err != nil {
		return nil, err
	}

	// fold reward earned over the closing accrual window, then restart it
	end, start := schedule.ClampInterval(now, cutoff, rec.StartTime)
	folded := s.sched.Reward(rec.Principal, end, start)
	rec.AccumulatedReward.Add(rec.AccumulatedReward, folded)
	rec.Principal.Add(rec.Principal, amount)
	rec.StartTime = now

	if err := s.records.Put(sender, rec); err != nil {
		return nil, err
	}
	if err := s.stats.AddStaked(amount); err != nil {
		return nil, err
	}

	metricDeposits.Add(1)
	logger.Info("deposit accepted", "account", sender, "amount", amount)
	s.postEvent(&Event{
		Time: now, Kind: EventDeposit, Account: sender,
		Amount: new(big.Int).Set(amount), Reward: folded,
	})
	return new(big.Int), nil
}

//
// Unstake settlement
//

// Unstake removes the caller's whole position and pays out principal plus
// earned reward via one asynchronous transfer. It returns the settlement id.
// The request is reported successful once the transfer is issued; a failed
// transfer is recovered by restoring the stake record, never surfaced here.
func (s *Staker) Unstake(account lode.Address) (id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.records.Get(account)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", reverts.NewNotFound("no stake found for this account")
	}
	switch s.states.get(account) {
	case OpIdle:
	case OpStaking:
		return "", reverts.NewStateConflict("cannot unstake while staking is in progress")
	case OpUnstaking:
		return "", reverts.NewStateConflict("unstake operation already in progress")
	}

	s.states.set(account, OpUnstaking)
	defer func() {
		if err != nil {
			s.states.set(account, OpIdle)
		}
	}()

	now := s.now()
	cutoff, err := s.cfg.Cutoff()
	if err != nil {
		return "", err
	}
	lockDuration, err := s.cfg.LockDuration()
	if err != nil {
		return "", err
	}

	end, start := schedule.ClampInterval(now, cutoff, rec.StartTime)
	earned := s.sched.Reward(rec.Principal, end, start)

	// the account can only claim the portion not exceeding the pool's headroom
	headroom, err := s.stats.Headroom()
	if err != nil {
		return "", err
	}
	claim := earned
	if claim.Cmp(headroom) > 0 {
		claim = headroom
	}

	snapshot := new(big.Int).Set(rec.AccumulatedReward)
	rec.AccumulatedReward.Add(rec.AccumulatedReward, claim)

	payoutReward := new(big.Int).Set(rec.AccumulatedReward)
	if now <= rec.FirstStakeTime+lockDuration {
		// early unstake forfeits all reward, principal only
		payoutReward.SetInt64(0)
	}

	pending := &settlement.Pending{
		ID:             uuid.New(),
		Account:        account,
		Principal:      new(big.Int).Set(rec.Principal),
		PayoutReward:   payoutReward,
		FirstStakeTime: rec.FirstStakeTime,
		StartTime:      rec.StartTime,
		SnapshotReward: snapshot,
	}

	// optimistic removal; a concurrent query now sees no stake
	if err := s.records.Delete(account); err != nil {
		return "", err
	}
	s.pendingUnstakes[pending.ID] = pending

	metricUnstakes.Add(1)
	metricPending.Add(1)
	s.tok.RequestTransfer(token.TransferRequest{
		ID:     pending.ID,
		To:     account,
		Amount: pending.TotalPayout(),
	})
	logger.Info("unstake requested",
		"account", account, "payout", pending.TotalPayout(), "id", pending.ID)
	return pending.ID, nil
}

// Resolve consumes one transfer result and completes the settlement or
// withdrawal it belongs to.
func (s *Staker) Resolve(res token.TransferResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pending, ok := s.pendingUnstakes[res.ID]; ok {
		delete(s.pendingUnstakes, res.ID)
		metricPending.Add(-1)
		s.resolveUnstake(pending, res.Err)
		return
	}
	if w, ok := s.pendingWithdrawals[res.ID]; ok {
		delete(s.pendingWithdrawals, res.ID)
		s.resolveWithdrawal(w, res.Err)
		return
	}
	logger.Warn("transfer result without pending operation", "id", res.ID)
}

func (s *Staker) resolveUnstake(pending *settlement.Pending, transferErr error) {
	now := s.now()
	if transferErr == nil {
		if err := s.stats.SubStaked(pending.Principal); err != nil {
			logger.Error("commit settlement", "err", err)
		}
		if err := s.stats.AddClaimed(pending.PayoutReward); err != nil {
			logger.Error("commit settlement", "err", err)
		}
		s.states.set(pending.Account, OpIdle)
		metricSettlements.AddWithLabel(1, map[string]string{"outcome": "settled"})
		logger.Info("unstake settled",
			"account", pending.Account, "principal", pending.Principal, "reward", pending.PayoutReward)
		s.postEvent(&Event{
			Time: now, Kind: EventUnstakeSettled, Account: pending.Account,
			Amount: pending.Principal, Reward: pending.PayoutReward,
		})
		return
	}

	// the transfer did not land: undo the optimistic removal, restoring the
	// reward the account had before this attempt
	restored := &ledger.Record{
		Principal:         new(big.Int).Set(pending.Principal),
		AccumulatedReward: new(big.Int).Set(pending.SnapshotReward),
		FirstStakeTime:    pending.FirstStakeTime,
		StartTime:         pending.StartTime,
	}
	if err := s.records.Put(pending.Account, restored); err != nil {
		logger.Error("restore stake record", "err", err)
	}
	s.states.set(pending.Account, OpIdle)
	metricSettlements.AddWithLabel(1, map[string]string{"outcome": "rolled-back"})
	logger.Warn("unstake transfer failed, stake restored",
		"account", pending.Account, "err", transferErr)
	s.postEvent(&Event{
		Time: now, Kind: EventUnstakeRolledBack, Account: pending.Account,
		Amount: pending.Principal, Reward: pending.SnapshotReward,
	})
}

func (s *Staker) resolveWithdrawal(w *withdrawal, transferErr error) {
	if transferErr != nil {
		logger.Warn("treasury withdrawal transfer failed",
			"recipient", w.recipient, "amount", w.amount, "err", transferErr)
		return
	}
	logger.Info("treasury withdrawal settled", "recipient", w.recipient, "amount", w.amount)
	s.postEvent(&Event{
		Time: s.now(), Kind: EventTreasuryWithdrawal, Account: w.recipient,
		Amount: w.amount, Reward: new(big.Int),
	})
}

//
// Treasury
//

// WithdrawTreasury transfers surplus pool holdings to the owner. Funds
// earmarked for principal or the unclaimed reward pool are frozen and can
// never be withdrawn.
func (s *Staker) WithdrawTreasury(caller lode.Address, amount *big.Int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.requireOwner(caller, "withdraw tokens")
	if err != nil {
		return "", err
	}
	paused, err := s.cfg.Paused()
	if err != nil {
		return "", err
	}
	if !paused {
		return "", reverts.NewPrecondition("stake should be paused")
	}
	if amount == nil || amount.Sign() <= 0 {
		return "", reverts.NewPrecondition("withdraw amount should be gt 0")
	}

	balance, err := s.tok.BalanceOf(s.pool)
	if err != nil {
		return "", reverts.NewExternalCall(err, "failed to get token balance")
	}
	staked, err := s.stats.TotalStaked()
	if err != nil {
		return "", err
	}
	headroom, err := s.stats.Headroom()
	if err != nil {
		return "", err
	}
	frozen := new(big.Int).Add(staked, headroom)
	available := new(big.Int).Sub(balance, frozen)
	if available.Sign() < 0 {
		available.SetInt64(0)
	}
	if amount.Cmp(available) > 0 {
		return "", reverts.NewPrecondition("not enough token balance to withdraw")
	}

	id := uuid.New()
	s.pendingWithdrawals[id] = &withdrawal{recipient: owner, amount: new(big.Int).Set(amount)}
	s.tok.RequestTransfer(token.TransferRequest{ID: id, To: owner, Amount: new(big.Int).Set(amount)})
	logger.Info("treasury withdrawal requested", "recipient", owner, "amount", amount, "id", id)
	return id, nil
}

//
// Owner configuration
//

func (s *Staker) requireOwner(caller lode.Address, action string) (lode.Address, error) {
	owner, err := s.cfg.Owner()
	if err != nil {
		return lode.Address{}, err
	}
	if caller != owner {
		return lode.Address{}, reverts.NewPrecondition("only the owner can %s", action)
	}
	return owner, nil
}

// SetPaused pauses or resumes staking.
func (s *Staker) SetPaused(caller lode.Address, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireOwner(caller, "pause or start stake"); err != nil {
		return err
	}
	if err := s.cfg.SetPaused(paused); err != nil {
		return err
	}
	logger.Info("stake paused updated", "paused", paused)
	return nil
}

// SetLockDuration updates the minimum holding period.
func (s *Staker) SetLockDuration(caller lode.Address, d uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireOwner(caller, "set lock duration"); err != nil {
		return err
	}
	if d > lode.MaxLockDuration {
		return reverts.NewPrecondition("cannot exceed max lock duration")
	}
	if err := s.cfg.SetLockDuration(d); err != nil {
		return err
	}
	logger.Info("lock duration updated", "lockDuration", d)
	return nil
}

// SetCutoff updates the reward cut-off timestamp. A nonzero cutoff may only be
// set while paused; resetting to open-ended only while unpaused.
func (s *Staker) SetCutoff(caller lode.Address, ts uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireOwner(caller, "set end time"); err != nil {
		return err
	}
	paused, err := s.cfg.Paused()
	if err != nil {
		return err
	}
	if ts == 0 {
		if paused {
			return reverts.NewPrecondition("need to start stake first")
		}
	} else if !paused {
		return reverts.NewPrecondition("need to pause stake first")
	}
	if err := s.cfg.SetCutoff(ts); err != nil {
		return err
	}
	logger.Info("stake end time updated", "endTime", ts)
	return nil
}

// SetRewardCap replaces the total reward pool.
func (s *Staker) SetRewardCap(caller lode.Address, cap *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireOwner(caller, "set total reward"); err != nil {
		return err
	}
	if cap == nil || cap.Sign() <= 0 {
		return reverts.NewPrecondition("total reward should be gt 0")
	}
	if cap.Cmp(lode.MaxTotalReward) > 0 {
		return reverts.NewPrecondition("total reward exceeds maximum")
	}
	if err := s.stats.SetRewardCap(new(big.Int).Set(cap)); err != nil {
		return err
	}
	logger.Info("total reward updated", "totalReward", cap)
	return nil
}

// TransferOwnership hands the owner role to newOwner.
func (s *Staker) TransferOwnership(caller, newOwner lode.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.requireOwner(caller, "transfer ownership")
	if err != nil {
		return err
	}
	if newOwner.IsZero() {
		return reverts.NewPrecondition("new owner cannot be empty")
	}
	if err := s.cfg.SetOwner(newOwner); err != nil {
		return err
	}
	logger.Info("owner updated", "from", owner, "to", newOwner)
	return nil
}

//
// Queries - no state change
//

// StakeInfo is a read-only view of one account's position.
type StakeInfo struct {
	Principal         *big.Int `json:"principal"`
	AccumulatedReward *big.Int `json:"accumulatedReward"`
	FirstStakeTime    uint64   `json:"firstStakeTime"`
	StartTime         uint64   `json:"startTime"`
}

// StakeEntry pairs an account with its stored stake info.
type StakeEntry struct {
	Address lode.Address `json:"address"`
	StakeInfo
}

func viewOf(rec *ledger.Record) StakeInfo {
	return StakeInfo{
		Principal:         new(big.Int).Set(rec.Principal),
		AccumulatedReward: new(big.Int).Set(rec.AccumulatedReward),
		FirstStakeTime:    rec.FirstStakeTime,
		StartTime:         rec.StartTime,
	}
}

// GetStakeInfo projects the account's position to real time: the returned
// accumulated reward includes the not-yet-folded interest of the open accrual
// window. Side-effect free; returns (nil, nil) when the account has no stake.
func (s *Staker) GetStakeInfo(account lode.Address) (*StakeInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.records.Get(account)
	if err != nil || rec == nil {
		return nil, err
	}
	cutoff, err := s.cfg.Cutoff()
	if err != nil {
		return nil, err
	}
	end, start := schedule.ClampInterval(s.now(), cutoff, rec.StartTime)
	info := viewOf(rec)
	info.AccumulatedReward.Add(info.AccumulatedReward, s.sched.Reward(rec.Principal, end, start))
	return &info, nil
}

// ListStakes returns stored records ordered by address.
func (s *Staker) ListStakes(offset, limit uint64) ([]*StakeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.records.List(offset, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*StakeEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, &StakeEntry{Address: e.Address, StakeInfo: viewOf(e.Record)})
	}
	return out, nil
}

// Totals returns total staked principal and cumulative claimed reward.
func (s *Staker) Totals() (staked, claimed *big.Int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if staked, err = s.stats.TotalStaked(); err != nil {
		return nil, nil, err
	}
	if claimed, err = s.stats.TotalClaimed(); err != nil {
		return nil, nil, err
	}
	return staked, claimed, nil
}

// Owner returns the current owner.
func (s *Staker) Owner() (lode.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Owner()
}

// LockDuration returns the configured minimum holding period.
func (s *Staker) LockDuration() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.LockDuration()
}

// Paused returns whether staking is paused.
func (s *Staker) Paused() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Paused()
}

// Cutoff returns the reward cut-off timestamp, 0 when open-ended.
func (s *Staker) Cutoff() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Cutoff()
}

// RewardCap returns the configured total reward pool.
func (s *Staker) RewardCap() (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.RewardCap()
}

// Schedule returns the reward schedule.
func (s *Staker) Schedule() *schedule.Schedule {
	return s.sched
}

// OperationState returns the account's current guard state.
func (s *Staker) OperationState(account lode.Address) OpState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states.get(account)
}

func (s *Staker) postEvent(ev *Event) {
	if s.sink != nil {
		s.sink.PostEvent(ev)
	}
}

// PendingSettlements returns the number of unresolved unstakes.
func (s *Staker) PendingSettlements() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pendingUnstakes)
}
