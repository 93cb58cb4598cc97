package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"blacklink/internal/model"
	"blacklink/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, username, display_name, bio, email, avatar_url,
	main_cta_url, main_cta_label, main_cta_subtitle,
	instagram_url, tiktok_url, youtube_url, telegram_url, linkedin_url,
	github_url, facebook_url, kwai_url, mercadolivre_url,
	plan, plan_status, plan_started_at, plan_expires_at,
	last_paid_plan, last_paid_expires_at,
	mp_customer_id, mp_subscription_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser reads one row in userColumns order. Nullable timestamps land in
// the model's pointer fields.
func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.DisplayName,
		&u.Bio,
		&u.Email,
		&u.AvatarURL,
		&u.MainCTAURL,
		&u.MainCTALabel,
		&u.MainCTASubtitle,
		&u.InstagramURL,
		&u.TikTokURL,
		&u.YouTubeURL,
		&u.TelegramURL,
		&u.LinkedInURL,
		&u.GitHubURL,
		&u.FacebookURL,
		&u.KwaiURL,
		&u.MercadoLivreURL,
		&u.Plan,
		&u.PlanStatus,
		&u.PlanStartedAt,
		&u.PlanExpiresAt,
		&u.LastPaidPlan,
		&u.LastPaidExpiresAt,
		&u.MPCustomerID,
		&u.MPSubscriptionID,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO blacklink_users (
			username, display_name, bio, email, avatar_url,
			main_cta_url, main_cta_label, main_cta_subtitle,
			instagram_url, tiktok_url, youtube_url, telegram_url, linkedin_url,
			github_url, facebook_url, kwai_url, mercadolivre_url,
			plan, plan_status, plan_started_at, plan_expires_at,
			last_paid_plan, last_paid_expires_at,
			mp_customer_id, mp_subscription_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.Username,
		u.DisplayName,
		u.Bio,
		u.Email,
		u.AvatarURL,
		u.MainCTAURL,
		u.MainCTALabel,
		u.MainCTASubtitle,
		u.InstagramURL,
		u.TikTokURL,
		u.YouTubeURL,
		u.TelegramURL,
		u.LinkedInURL,
		u.GitHubURL,
		u.FacebookURL,
		u.KwaiURL,
		u.MercadoLivreURL,
		u.Plan,
		u.PlanStatus,
		u.PlanStartedAt,
		u.PlanExpiresAt,
		u.LastPaidPlan,
		u.LastPaidExpiresAt,
		u.MPCustomerID,
		u.MPSubscriptionID,
	)
	return scanUser(row)
}

// FindByID fetches a single user by primary key.
func (r *UserPostgres) FindByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM blacklink_users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByUsername fetches a single user by its unique handle.
func (r *UserPostgres) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM blacklink_users WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, username))
}

// List returns users using LIMIT/OFFSET pagination and a total count.
func (r *UserPostgres) List(ctx context.Context, f repository.UserFilter, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	where := ""
	args := make([]any, 0, 3)
	if f.Plan != "" {
		where = " WHERE plan = $1"
		args = append(args, f.Plan)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blacklink_users"+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	q := "SELECT " + userColumns + " FROM blacklink_users" + where +
		fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pq.Limit, pq.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.User]{
		Items: items,
		Total: total,
	}, nil
}

// Update persists every mutable column of u and returns the stored row.
// Username and created_at are immutable.
func (r *UserPostgres) Update(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		UPDATE blacklink_users SET
			display_name = $1, bio = $2, email = $3, avatar_url = $4,
			main_cta_url = $5, main_cta_label = $6, main_cta_subtitle = $7,
			instagram_url = $8, tiktok_url = $9, youtube_url = $10,
			telegram_url = $11, linkedin_url = $12, github_url = $13,
			facebook_url = $14, kwai_url = $15, mercadolivre_url = $16,
			plan = $17, plan_status = $18, plan_started_at = $19, plan_expires_at = $20,
			last_paid_plan = $21, last_paid_expires_at = $22,
			mp_customer_id = $23, mp_subscription_id = $24
		WHERE id = $25
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.DisplayName,
		u.Bio,
		u.Email,
		u.AvatarURL,
		u.MainCTAURL,
		u.MainCTALabel,
		u.MainCTASubtitle,
		u.InstagramURL,
		u.TikTokURL,
		u.YouTubeURL,
		u.TelegramURL,
		u.LinkedInURL,
		u.GitHubURL,
		u.FacebookURL,
		u.KwaiURL,
		u.MercadoLivreURL,
		u.Plan,
		u.PlanStatus,
		u.PlanStartedAt,
		u.PlanExpiresAt,
		u.LastPaidPlan,
		u.LastPaidExpiresAt,
		u.MPCustomerID,
		u.MPSubscriptionID,
		u.ID,
	)
	return scanUser(row)
}

// Delete removes a user by ID. Products cascade via the FK. It does not
// return an error if the row does not exist.
func (r *UserPostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM blacklink_users WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
