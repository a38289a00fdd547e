package directory

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/MrEthical07/boardauth"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultTimeout bounds every directory query.
const DefaultTimeout = 5 * time.Second

const uniqueViolation = "23505"

const memberColumns = `id, email, password_hash, role, created_at`

type memberRow struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r memberRow) member() boardauth.Member {
	return boardauth.Member{
		ID:           strconv.FormatInt(r.ID, 10),
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         boardauth.Role(r.Role),
		CreatedAt:    r.CreatedAt,
	}
}

// Postgres stores members in the members table.
type Postgres struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, timeout: DefaultTimeout}
}

func (p *Postgres) FindByEmail(ctx context.Context, email string) (boardauth.Member, error) {
	return p.getOne(ctx, `SELECT `+memberColumns+` FROM members WHERE email = $1`, email)
}

func (p *Postgres) FindByID(ctx context.Context, id string) (boardauth.Member, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return boardauth.Member{}, boardauth.ErrMemberNotFound
	}
	return p.getOne(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, n)
}

func (p *Postgres) Create(ctx context.Context, nm boardauth.NewMember) (boardauth.Member, error) {
	role := nm.Role
	if role == "" {
		role = boardauth.RoleUser
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var row memberRow
	err := pgxscan.Get(ctx, p.pool, &row,
		`INSERT INTO members (email, password_hash, role) VALUES ($1, $2, $3) RETURNING `+memberColumns,
		nm.Email, nm.PasswordHash, string(role))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return boardauth.Member{}, boardauth.ErrMemberExists
		}
		return boardauth.Member{}, err
	}
	return row.member(), nil
}

func (p *Postgres) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	tag, err := p.pool.Exec(ctx, `UPDATE members SET password_hash = $2 WHERE email = $1`, email, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return boardauth.ErrMemberNotFound
	}
	return nil
}

// Ping checks database reachability.
func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

func (p *Postgres) getOne(ctx context.Context, query string, args ...any) (boardauth.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var row memberRow
	if err := pgxscan.Get(ctx, p.pool, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return boardauth.Member{}, boardauth.ErrMemberNotFound
		}
		return boardauth.Member{}, err
	}
	return row.member(), nil
}
