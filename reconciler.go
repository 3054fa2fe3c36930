package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// Reconciler maps verified external claims onto persisted users. It is the
// only writer of the users table; all writes run inside a single transaction
// so a canceled login never leaves a half-created row.
type Reconciler struct {
	db     *bun.DB
	users  Users
	logger Logger
	now    func() time.Time
}

// NewReconciler creates a Reconciler over the given database and repository.
func NewReconciler(db *bun.DB, users Users) *Reconciler {
	return &Reconciler{
		db:     db,
		users:  users,
		logger: defLogger{},
		now:    time.Now,
	}
}

func (r *Reconciler) WithLogger(logger Logger) *Reconciler {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// WithClock overrides the clock used for created_at/updated_at stamps.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	if now != nil {
		r.now = now
	}
	return r
}

// Reconcile finds the user for the claims' external subject or creates one.
// Repeated calls with identical claims perform no write: updated_at means
// "last actual change", not "last login". When concurrent first logins race,
// the unique constraint on google_subject guarantees a single row and the
// loser re-reads the winner's record.
func (r *Reconciler) Reconcile(ctx context.Context, claims *ExternalClaims) (*User, error) {
	if claims == nil || claims.Subject == "" {
		return nil, errors.New("external claims require a subject", errors.CategoryBadInput)
	}

	user, err := r.reconcileOnce(ctx, claims)
	if err == nil {
		return user, nil
	}

	// A unique violation on insert means a concurrent login created the row
	// between our lookup and our write. Retry once in a fresh transaction so
	// the loser reads the winner's record instead of erroring.
	if IsUniqueViolation(err) {
		r.logger.Debug("Reconcile lost first-login race, retrying lookup", "subject", claims.Subject)
		return r.reconcileOnce(ctx, claims)
	}

	return nil, err
}

func (r *Reconciler) reconcileOnce(ctx context.Context, claims *ExternalClaims) (*User, error) {
	var user *User
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		existing, err := r.users.GetByGoogleSubjectTx(ctx, tx, claims.Subject)
		if err == nil {
			user, err = r.syncProfileTx(ctx, tx, existing, claims)
			return err
		}

		if !repository.IsRecordNotFound(err) {
			return WrapPersistence(err, "failed to look up user by external subject")
		}

		user, err = r.createTx(ctx, tx, claims)
		return err
	})

	if err != nil {
		return nil, err
	}

	return user, nil
}

// syncProfileTx compares each mutable field explicitly and writes only the
// ones that drifted.
func (r *Reconciler) syncProfileTx(ctx context.Context, tx bun.IDB, user *User, claims *ExternalClaims) (*User, error) {
	var changed []string

	if user.DisplayName != claims.Name {
		user.DisplayName = claims.Name
		changed = append(changed, "display_name")
	}
	if user.Email != claims.Email {
		user.Email = claims.Email
		changed = append(changed, "email")
	}
	if user.AvatarURL != claims.Picture {
		user.AvatarURL = claims.Picture
		changed = append(changed, "avatar_url")
	}

	if len(changed) == 0 {
		return user, nil
	}

	r.logger.Debug("Reconcile profile drift", "user_id", user.ID.String(), "columns", changed)

	if err := r.users.UpdateProfileTx(ctx, tx, user, changed...); err != nil {
		return nil, WrapPersistence(err, "failed to update drifted profile fields")
	}

	return user, nil
}

func (r *Reconciler) createTx(ctx context.Context, tx bun.IDB, claims *ExternalClaims) (*User, error) {
	record := NewUserFromClaims(claims, r.now())

	created, err := r.users.CreateTx(ctx, tx, record)
	if err == nil {
		r.logger.Info("Reconcile created user", "user_id", created.ID.String(), "subject", claims.Subject)
		return created, nil
	}

	if IsUniqueViolation(err) {
		// Surface the raw conflict so Reconcile can retry the lookup in a
		// fresh transaction.
		return nil, err
	}

	return nil, WrapPersistence(err, "failed to create user from external claims")
}
