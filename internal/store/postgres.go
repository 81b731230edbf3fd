package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kenechi-dev/gighall/internal/apperr"
	"github.com/kenechi-dev/gighall/internal/model"
)

// Postgres backs the repository interfaces with a pgx pool. The schema is
// bootstrapped by the db package. The accept transaction runs inside a single
// database transaction so partial states are never visible.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an already-connected pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// ----- UserStore -----

func (s *Postgres) CreateUser(ctx context.Context, u *model.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, full_name, role, password_hash, created_at)
         VALUES ($1, LOWER($2), $3, $4, $5, $6)`,
		u.ID, u.Email, u.FullName, u.Role, u.PasswordHash, u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return apperr.Conflictf("email %s already registered", u.Email)
	}
	return err
}

func (s *Postgres) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.scanUser(ctx, `SELECT id, email, full_name, role, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (s *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.scanUser(ctx, `SELECT id, email, full_name, role, password_hash, created_at FROM users WHERE email = LOWER($1)`, email)
}

func (s *Postgres) scanUser(ctx context.Context, query, arg string) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("user %s", arg)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Postgres) SaveClientProfile(ctx context.Context, userID string, p *model.ClientProfile) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO client_profiles (user_id, company_name, description)
         VALUES ($1, $2, $3)
         ON CONFLICT (user_id) DO UPDATE SET company_name = $2, description = $3`,
		userID, p.CompanyName, p.Description,
	)
	return err
}

func (s *Postgres) SaveFreelancerProfile(ctx context.Context, userID string, p *model.FreelancerProfile) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO freelancer_profiles (user_id, headline, description, category_id, skills)
         VALUES ($1, $2, $3, $4, $5)
         ON CONFLICT (user_id) DO UPDATE SET headline = $2, description = $3, category_id = $4, skills = $5`,
		userID, p.Headline, p.Description, p.CategoryID, p.Skills,
	)
	return err
}

// ----- RequestStore -----

const requestColumns = `id, client_id, title, description, enhanced_description, category_id,
       skills_required, budget_min, budget_max, deadline_days, status, created_at, expires_at`

func (s *Postgres) CreateRequest(ctx context.Context, r *model.ServiceRequest) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO service_requests (`+requestColumns+`)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		r.ID, r.ClientID, r.Title, r.Description, r.EnhancedDescription, r.CategoryID,
		r.SkillsRequired, r.BudgetMin, r.BudgetMax, r.DeadlineDays, r.Status, r.CreatedAt, r.ExpiresAt,
	)
	return err
}

func (s *Postgres) GetRequest(ctx context.Context, id string) (*model.ServiceRequest, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM service_requests WHERE id = $1`, id)
	r, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("service request %s", id)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Postgres) UpdateRequestStatus(ctx context.Context, id, status string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE service_requests SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("service request %s", id)
	}
	return nil
}

func (s *Postgres) ListRequestsByClient(ctx context.Context, clientID string) ([]model.ServiceRequest, error) {
	return s.listRequests(ctx,
		`SELECT `+requestColumns+` FROM service_requests WHERE client_id = $1 ORDER BY created_at`, clientID)
}

func (s *Postgres) ListOpenRequests(ctx context.Context) ([]model.ServiceRequest, error) {
	return s.listRequests(ctx,
		`SELECT `+requestColumns+` FROM service_requests WHERE status = $1 ORDER BY created_at`, model.RequestOpen)
}

func (s *Postgres) listRequests(ctx context.Context, query string, arg any) ([]model.ServiceRequest, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ServiceRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (*model.ServiceRequest, error) {
	var r model.ServiceRequest
	err := row.Scan(&r.ID, &r.ClientID, &r.Title, &r.Description, &r.EnhancedDescription, &r.CategoryID,
		&r.SkillsRequired, &r.BudgetMin, &r.BudgetMax, &r.DeadlineDays, &r.Status, &r.CreatedAt, &r.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ----- BidStore -----

const bidColumns = `id, request_id, freelancer_id, amount, delivery_time_days, proposal, status, created_at`

func (s *Postgres) CreateBid(ctx context.Context, b *model.Bid) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO bids (`+bidColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.RequestID, b.FreelancerID, b.Amount, b.DeliveryTimeDays, b.Proposal, b.Status, b.CreatedAt,
	)
	return err
}

func (s *Postgres) GetBid(ctx context.Context, id string) (*model.Bid, error) {
	var b model.Bid
	err := s.pool.QueryRow(ctx, `SELECT `+bidColumns+` FROM bids WHERE id = $1`, id).
		Scan(&b.ID, &b.RequestID, &b.FreelancerID, &b.Amount, &b.DeliveryTimeDays, &b.Proposal, &b.Status, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("bid %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Postgres) ListBidsByRequest(ctx context.Context, requestID string) ([]model.Bid, error) {
	return s.listBids(ctx, `SELECT `+bidColumns+` FROM bids WHERE request_id = $1 ORDER BY created_at`, requestID)
}

func (s *Postgres) ListBidsByFreelancer(ctx context.Context, freelancerID string) ([]model.Bid, error) {
	return s.listBids(ctx, `SELECT `+bidColumns+` FROM bids WHERE freelancer_id = $1 ORDER BY created_at`, freelancerID)
}

func (s *Postgres) listBids(ctx context.Context, query string, arg any) ([]model.Bid, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.RequestID, &b.FreelancerID, &b.Amount, &b.DeliveryTimeDays,
			&b.Proposal, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Postgres) AcceptBid(ctx context.Context, requestID, bidID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE bids SET status = $3 WHERE id = $1 AND request_id = $2`,
		bidID, requestID, model.BidAccepted,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("bid %s on request %s", bidID, requestID)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE bids SET status = $3 WHERE request_id = $1 AND id <> $2 AND status = $4`,
		requestID, bidID, model.BidRejected, model.BidPending,
	); err != nil {
		return err
	}
	tag, err = tx.Exec(ctx,
		`UPDATE service_requests SET status = $2 WHERE id = $1`,
		requestID, model.RequestInProgress,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("service request %s", requestID)
	}
	return tx.Commit(ctx)
}

// ----- MessageStore -----

const messageColumns = `id, sender_id, receiver_id, content, created_at, read`

func (s *Postgres) AppendMessage(ctx context.Context, m *model.Message) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (id, sender_id, receiver_id, content, created_at, read)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.SenderID, m.ReceiverID, m.Content, m.CreatedAt, m.Read,
	)
	return err
}

func (s *Postgres) Conversation(ctx context.Context, a, b string) ([]model.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM messages
         WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
         ORDER BY created_at`, a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt, &m.Read); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Postgres) MarkConversationRead(ctx context.Context, receiverID, senderID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE messages SET read = TRUE WHERE receiver_id = $1 AND sender_id = $2 AND NOT read`,
		receiverID, senderID,
	)
	return err
}

func (s *Postgres) HasConversation(ctx context.Context, a, b string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
            SELECT 1 FROM messages
            WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
        )`, a, b).Scan(&exists)
	return exists, err
}
