package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianbank/meridian/internal/accounts"
	"github.com/meridianbank/meridian/internal/audit"
	"github.com/meridianbank/meridian/internal/observability"
	"github.com/meridianbank/meridian/internal/platform/db"
	"github.com/meridianbank/meridian/internal/shared"
)

// Engine executes the money-moving operations. It is stateless and
// reentrant; all mutable state lives in the account and transaction rows,
// guarded by row locks for the duration of each atomic unit.
type Engine struct {
	repo    RepositoryPort
	sink    audit.Sink
	metrics *observability.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewEngine builds an Engine instance. sink and metrics may be nil.
func NewEngine(repo RepositoryPort, sink audit.Sink, metrics *observability.Metrics, logger *slog.Logger) *Engine {
	return &Engine{repo: repo, sink: sink, metrics: metrics, logger: logger, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (e *Engine) WithNow(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// Deposit credits an account owned by the acting user.
func (e *Engine) Deposit(ctx context.Context, actor shared.Identity, in MovementInput) (*Transaction, error) {
	amount, err := normalizeAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	var (
		txn     *Transaction
		updated *accounts.Account
	)
	err = e.repo.WithTx(ctx, func(ctx context.Context, tx TxRepositoryPort) error {
		account, err := lockOwnedAccount(ctx, tx, in.AccountID, actor)
		if err != nil {
			return err
		}
		if updated, err = tx.ApplyBalanceDelta(ctx, account.ID, amount); err != nil {
			return err
		}
		txn, err = tx.InsertTransaction(ctx, insertTransaction{
			Type:            TypeDeposit,
			Amount:          amount,
			Description:     orDefault(in.Description, "Deposit"),
			AccountID:       account.ID,
			TransactionDate: e.now(),
		})
		return err
	})
	if err = e.finish("deposit", err); err != nil {
		return nil, err
	}
	txn.AccountNumber = updated.Number
	e.emitAudit(ctx, actor, txn, updated)
	return txn, nil
}

// Withdraw debits an account owned by the acting user. The balance check
// runs under the row lock, so two concurrent withdrawals cannot both pass
// it against the same funds.
func (e *Engine) Withdraw(ctx context.Context, actor shared.Identity, in MovementInput) (*Transaction, error) {
	amount, err := normalizeAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	var (
		txn     *Transaction
		updated *accounts.Account
	)
	err = e.repo.WithTx(ctx, func(ctx context.Context, tx TxRepositoryPort) error {
		account, err := lockOwnedAccount(ctx, tx, in.AccountID, actor)
		if err != nil {
			return err
		}
		if account.Balance.Cmp(amount) < 0 {
			return shared.ErrInsufficientBalance
		}
		if updated, err = tx.ApplyBalanceDelta(ctx, account.ID, amount.Neg()); err != nil {
			return err
		}
		txn, err = tx.InsertTransaction(ctx, insertTransaction{
			Type:            TypeWithdrawal,
			Amount:          amount,
			Description:     orDefault(in.Description, "Withdrawal"),
			AccountID:       account.ID,
			TransactionDate: e.now(),
		})
		return err
	})
	if err = e.finish("withdraw", err); err != nil {
		return nil, err
	}
	txn.AccountNumber = updated.Number
	e.emitAudit(ctx, actor, txn, updated)
	return txn, nil
}

// Transfer moves funds between two accounts as one atomic unit, producing
// the outgoing and incoming legs. Both rows are locked in ascending id
// order regardless of direction, so opposite transfers cannot deadlock.
func (e *Engine) Transfer(ctx context.Context, actor shared.Identity, in TransferInput) (*Transaction, error) {
	amount, err := normalizeAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	var (
		outLeg        *Transaction
		updatedSource *accounts.Account
	)
	err = e.repo.WithTx(ctx, func(ctx context.Context, tx TxRepositoryPort) error {
		// Unlocked pre-reads establish ownership and the lock order; every
		// balance-bearing check is repeated on the locked rows below.
		source, err := tx.GetAccount(ctx, in.SourceAccountID)
		if err != nil {
			return err
		}
		if source.UserID != actor.UserID {
			return fmt.Errorf("account %d: %w", in.SourceAccountID, shared.ErrNotFound)
		}
		if !source.Active {
			return fmt.Errorf("%w: source account is inactive", shared.ErrBusinessRule)
		}
		targetID, err := tx.FindAccountIDByNumber(ctx, in.TargetNumber)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return fmt.Errorf("%w: target account not found", shared.ErrBusinessRule)
			}
			return err
		}
		if targetID == source.ID {
			return fmt.Errorf("%w: cannot transfer to the same account", shared.ErrBusinessRule)
		}

		firstID, secondID := source.ID, targetID
		if secondID < firstID {
			firstID, secondID = secondID, firstID
		}
		first, err := tx.GetAccountForUpdate(ctx, firstID)
		if err != nil {
			return err
		}
		second, err := tx.GetAccountForUpdate(ctx, secondID)
		if err != nil {
			return err
		}
		source, target := first, second
		if source.ID != in.SourceAccountID {
			source, target = second, first
		}

		if !source.Active {
			return fmt.Errorf("%w: source account is inactive", shared.ErrBusinessRule)
		}
		if !target.Active {
			return fmt.Errorf("%w: target account is inactive", shared.ErrBusinessRule)
		}
		if source.Balance.Cmp(amount) < 0 {
			return shared.ErrInsufficientBalance
		}

		if updatedSource, err = tx.ApplyBalanceDelta(ctx, source.ID, amount.Neg()); err != nil {
			return err
		}
		if _, err = tx.ApplyBalanceDelta(ctx, target.ID, amount); err != nil {
			return err
		}

		when := e.now()
		targetRef := target.ID
		outLeg, err = tx.InsertTransaction(ctx, insertTransaction{
			Type:            TypeTransferOut,
			Amount:          amount,
			Description:     orDefault(in.Description, "Transfer sent"),
			AccountID:       source.ID,
			TargetAccountID: &targetRef,
			TransactionDate: when,
		})
		if err != nil {
			return err
		}
		sourceRef := source.ID
		if _, err = tx.InsertTransaction(ctx, insertTransaction{
			Type:            TypeTransferIn,
			Amount:          amount,
			Description:     orDefault(in.Description, "Transfer received"),
			AccountID:       target.ID,
			TargetAccountID: &sourceRef,
			TransactionDate: when,
		}); err != nil {
			return err
		}
		targetNumber := target.Number
		outLeg.TargetNumber = &targetNumber
		return nil
	})
	if err = e.finish("transfer", err); err != nil {
		return nil, err
	}
	outLeg.AccountNumber = updatedSource.Number
	e.emitAudit(ctx, actor, outLeg, updatedSource)
	return outLeg, nil
}

// lockOwnedAccount acquires the row lock and re-validates ownership and the
// active flag on every call; ownership is never cached across requests.
func lockOwnedAccount(ctx context.Context, tx TxRepositoryPort, accountID int64, actor shared.Identity) (*accounts.Account, error) {
	account, err := tx.GetAccountForUpdate(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != actor.UserID {
		// Reported as not-found so callers cannot probe foreign accounts.
		return nil, fmt.Errorf("account %d: %w", accountID, shared.ErrNotFound)
	}
	if !account.Active {
		return nil, fmt.Errorf("%w: account is inactive", shared.ErrBusinessRule)
	}
	return account, nil
}

// finish maps storage-level conflicts and records the operation outcome.
func (e *Engine) finish(op string, err error) error {
	if err != nil && db.IsSerializationFailure(err) {
		err = fmt.Errorf("%w: %v", shared.ErrConcurrencyConflict, err)
	}
	if e.metrics != nil {
		e.metrics.ObserveLedgerOp(op, outcomeLabel(err))
	}
	if err != nil {
		e.logger.Warn("ledger operation rejected", slog.String("op", op), slog.Any("error", err))
	}
	return err
}

func (e *Engine) emitAudit(ctx context.Context, actor shared.Identity, txn *Transaction, account *accounts.Account) {
	if e.sink == nil {
		return
	}
	snapshot := map[string]any{
		"transaction_id": txn.ID,
		"type":           string(txn.Type),
		"amount":         txn.Amount.StringFixed(2),
		"account_id":     txn.AccountID,
		"account_number": txn.AccountNumber,
		"balance_after":  account.Balance.StringFixed(2),
	}
	if txn.TargetNumber != nil {
		snapshot["target_account_number"] = *txn.TargetNumber
	}
	e.sink.Record(ctx, audit.Event{
		Entity:      "Transaction",
		EntityID:    txn.ID,
		Action:      string(txn.Type),
		ActorID:     actor.UserID,
		ActorEmail:  actor.Email,
		Snapshot:    snapshot,
		Description: fmt.Sprintf("%s of %s on account %s", txn.Type, txn.Amount.StringFixed(2), txn.AccountNumber),
		OccurredAt:  txn.TransactionDate,
	})
}

// normalizeAmount enforces the positive, scale-2 contract on monetary
// input. Comparisons downstream are exact decimal comparisons.
func normalizeAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Cmp(decimal.Zero) <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	if !amount.Equal(amount.Round(2)) {
		return decimal.Decimal{}, fmt.Errorf("%w: amount exceeds two decimal places", shared.ErrValidation)
	}
	return amount.Round(2), nil
}

func orDefault(description, fallback string) string {
	if description == "" {
		return fallback
	}
	return description
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, shared.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, shared.ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, shared.ErrNotFound):
		return "not_found"
	case errors.Is(err, shared.ErrBusinessRule):
		return "business_rule"
	case errors.Is(err, shared.ErrValidation):
		return "validation"
	default:
		return "error"
	}
}
