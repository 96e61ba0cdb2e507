// Package repo stores participants in SQL, postgres or sqlite
package repo

import (
	"context"

	"ballotgate/internal/modkit/repokit"
	perr "ballotgate/internal/platform/errors"
	"ballotgate/internal/platform/store"
	"ballotgate/internal/services/gate/domain"
)

// table names the storage of one class; the column names are the historical ones
type table struct {
	name, id string
}

var tables = map[domain.Class]table{
	domain.ClassElector:    {name: "voters", id: "voter_id"},
	domain.ClassContestant: {name: "candidates", id: "candidate_id"},
}

func tableFor(c domain.Class) (table, error) {
	t, ok := tables[c]
	if !ok {
		return table{}, perr.Validationf("unknown participant class %q", string(c))
	}
	return t, nil
}

type (
	// SQL binds the participant repo to any backend speaking $N placeholders
	SQL struct{}

	queries struct{ q repokit.Queryer }
)

// New creates the repo binder
func New() repokit.Binder[domain.Repo] { return SQL{} }

// Bind binds a queryer, either the pool or a tx
func (SQL) Bind(q repokit.Queryer) domain.Repo { return &queries{q: q} }

// Admin binds the maintenance surface
func Admin(q repokit.Queryer) domain.AdminRepo {
	if q == nil {
		panic("repo: nil Queryer")
	}
	return &queries{q: q}
}

func scanner(class domain.Class) func(store.Row) (domain.Participant, error) {
	return func(r store.Row) (domain.Participant, error) {
		p := domain.Participant{Class: class}
		err := r.Scan(&p.ID, &p.DisplayName, &p.CredentialHash, &p.ReferenceImage)
		return p, err
	}
}

func (r *queries) FindByID(ctx context.Context, class domain.Class, id string) (domain.Participant, error) {
	t, err := tableFor(class)
	if err != nil {
		return domain.Participant{}, err
	}
	sql := `SELECT ` + t.id + `, name, password, face_image_path FROM ` + t.name + ` WHERE ` + t.id + ` = $1`
	p, err := store.One(ctx, r.q, scanner(class), sql, id)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.Participant{}, perr.NotFoundf("%s %s not found", class, id)
	}
	if err != nil {
		return domain.Participant{}, perr.FromDBf(err, "find %s", class)
	}
	return p, nil
}

func (r *queries) Insert(ctx context.Context, p domain.Participant) error {
	t, err := tableFor(p.Class)
	if err != nil {
		return err
	}
	sql := `INSERT INTO ` + t.name + ` (` + t.id + `, name, password, face_image_path) VALUES ($1, $2, $3, $4)`
	if err := store.ExecOne(ctx, r.q, sql, p.ID, p.DisplayName, p.CredentialHash, p.ReferenceImage); err != nil {
		if perr.IsDuplicateKey(err) {
			return perr.Wrapf(err, perr.ErrorCodeDuplicateKey, "%s %s already exists", p.Class, p.ID)
		}
		return perr.FromDBf(err, "insert %s", p.Class)
	}
	return nil
}

func (r *queries) List(ctx context.Context, class domain.Class) ([]domain.Participant, error) {
	t, err := tableFor(class)
	if err != nil {
		return nil, err
	}
	sql := `SELECT ` + t.id + `, name, password, face_image_path FROM ` + t.name + ` ORDER BY ` + t.id
	out, err := store.Many(ctx, r.q, scanner(class), sql)
	if err != nil {
		return nil, perr.FromDBf(err, "list %s", class)
	}
	return out, nil
}

func (r *queries) Clear(ctx context.Context, class domain.Class) (int64, error) {
	t, err := tableFor(class)
	if err != nil {
		return 0, err
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM `+t.name)
	if err != nil {
		return 0, perr.FromDBf(err, "clear %s", class)
	}
	return tag.RowsAffected(), nil
}

// Migrate creates both tables when missing; the DDL is portable across backends
func (r *queries) Migrate(ctx context.Context) error {
	for _, c := range domain.Classes {
		t := tables[c]
		ddl := `CREATE TABLE IF NOT EXISTS ` + t.name + ` (
	` + t.id + ` TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	password TEXT NOT NULL,
	face_image_path TEXT NOT NULL
)`
		if _, err := r.q.Exec(ctx, ddl); err != nil {
			return perr.FromDBf(err, "migrate %s", t.name)
		}
	}
	return nil
}
