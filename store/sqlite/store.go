// Package sqlite provides a SQLite implementation of the Ostium
// composite store using grove ORM with Go-based migrations.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/ostium-io/ostium/audit"
	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/relation"
	"github.com/ostium-io/ostium/role"
	"github.com/ostium-io/ostium/rule"
	"github.com/ostium-io/ostium/sec"
	"github.com/ostium-io/ostium/store"
	"github.com/ostium-io/ostium/token"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a SQLite implementation of the composite Ostium store.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("ostium/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("ostium/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation matches SQLite unique constraint failures. The
// modernc driver surfaces them as plain errors, so the message is the
// only signal available.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

// inClause builds "col IN (?, ?, ...)" for n values.
func inClause(col string, n int) string {
	return col + " IN (" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}

// ──────────────────────────────────────────────────
// Rule operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRule(ctx context.Context, r *rule.Rule) error {
	m := ruleToModel(r)
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("ostium/sqlite: create rule: %w", err)
	}
	return nil
}

func (s *Store) GetRule(ctx context.Context, ruleID id.ID) (*rule.Rule, error) {
	m := new(ruleModel)
	if err := s.sdb.NewSelect(m).Where("id = ?", ruleID.String()).Scan(ctx); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("rule %s: %w", ruleID, rule.ErrNotFound)
		}
		return nil, fmt.Errorf("ostium/sqlite: get rule: %w", err)
	}
	return ruleFromModel(m), nil
}

func (s *Store) UpdateRule(ctx context.Context, r *rule.Rule) error {
	r.UpdatedAt = time.Now().UTC()
	m := ruleToModel(r)
	if _, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("ostium/sqlite: update rule: %w", err)
	}
	return nil
}

func (s *Store) DeleteRule(ctx context.Context, ruleID id.ID) error {
	_, err := s.sdb.NewDelete((*ruleModel)(nil)).
		Where("id = ?", ruleID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium/sqlite: delete rule: %w", err)
	}
	return nil
}

func (s *Store) FindRules(ctx context.Context, filter *rule.Filter) ([]*rule.Rule, error) {
	var models []ruleModel
	q := s.sdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.PrincipalType != "" {
			q = q.Where("principal_type = ?", string(filter.PrincipalType))
		}
		if filter.PrincipalID != "" {
			q = q.Where("principal_id = ?", filter.PrincipalID)
		}
		if filter.ResourceType != "" {
			q = q.Where("resource_type = ?", filter.ResourceType)
		}
		if len(filter.Properties) > 0 {
			args := make([]any, len(filter.Properties))
			for i, p := range filter.Properties {
				args[i] = p
			}
			q = q.Where(inClause("property", len(args)), args...)
		}
		if len(filter.AccessTypes) > 0 {
			args := make([]any, len(filter.AccessTypes))
			for i, a := range filter.AccessTypes {
				args[i] = string(a)
			}
			q = q.Where(inClause("access_type", len(args)), args...)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ostium/sqlite: find rules: %w", err)
	}
	result := make([]*rule.Rule, len(models))
	for i := range models {
		result[i] = ruleFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountRules(ctx context.Context, filter *rule.Filter) (int64, error) {
	q := s.sdb.NewSelect((*ruleModel)(nil))
	if filter != nil {
		if filter.PrincipalType != "" {
			q = q.Where("principal_type = ?", string(filter.PrincipalType))
		}
		if filter.PrincipalID != "" {
			q = q.Where("principal_id = ?", filter.PrincipalID)
		}
		if filter.ResourceType != "" {
			q = q.Where("resource_type = ?", filter.ResourceType)
		}
		if len(filter.Properties) > 0 {
			args := make([]any, len(filter.Properties))
			for i, p := range filter.Properties {
				args[i] = p
			}
			q = q.Where(inClause("property", len(args)), args...)
		}
		if len(filter.AccessTypes) > 0 {
			args := make([]any, len(filter.AccessTypes))
			for i, a := range filter.AccessTypes {
				args[i] = string(a)
			}
			q = q.Where(inClause("access_type", len(args)), args...)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ostium/sqlite: count rules: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteRulesByResource(ctx context.Context, resourceType string) error {
	_, err := s.sdb.NewDelete((*ruleModel)(nil)).
		Where("resource_type = ?", resourceType).Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium/sqlite: delete rules by resource: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Role operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(ctx context.Context, r *role.Role) error {
	m, err := roleToModel(r)
	if err != nil {
		return fmt.Errorf("ostium/sqlite: create role: %w", err)
	}
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("role name %q: %w", r.Name, role.ErrDuplicate)
		}
		return fmt.Errorf("ostium/sqlite: create role: %w", err)
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, roleID id.ID) (*role.Role, error) {
	m := new(roleModel)
	if err := s.sdb.NewSelect(m).Where("id = ?", roleID.String()).Scan(ctx); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("role %s: %w", roleID, role.ErrNotFound)
		}
		return nil, fmt.Errorf("ostium/sqlite: get role: %w", err)
	}
	return roleFromModel(m)
}

func (s *Store) GetRoleByName(ctx context.Context, name string) (*role.Role, error) {
	m := new(roleModel)
	if err := s.sdb.NewSelect(m).Where("name = ?", name).Scan(ctx); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("role name %q: %w", name, role.ErrNotFound)
		}
		return nil, fmt.Errorf("ostium/sqlite: get role by name: %w", err)
	}
	return roleFromModel(m)
}

func (s *Store) UpdateRole(ctx context.Context, r *role.Role) error {
	r.UpdatedAt = time.Now().UTC()
	m, err := roleToModel(r)
	if err != nil {
		return fmt.Errorf("ostium/sqlite: update role: %w", err)
	}
	if _, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("ostium/sqlite: update role: %w", err)
	}
	return nil
}

func (s *Store) DeleteRole(ctx context.Context, roleID id.ID) error {
	_, err := s.sdb.NewDelete((*roleModel)(nil)).
		Where("id = ?", roleID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium/sqlite: delete role: %w", err)
	}
	return nil
}

func (s *Store) ListRoles(ctx context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	var models []roleModel
	q := s.sdb.NewSelect(&models).OrderExpr("name ASC")
	if filter != nil {
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ostium/sqlite: list roles: %w", err)
	}
	result := make([]*role.Role, len(models))
	for i := range models {
		r, err := roleFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("ostium/sqlite: list roles: %w", err)
		}
		result[i] = r
	}
	return result, nil
}

func (s *Store) CreateMapping(ctx context.Context, m *role.Mapping) error {
	model := mappingToModel(m)
	if _, err := s.sdb.NewInsert(model).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("mapping %s/%s: %w", m.PrincipalType, m.PrincipalID, role.ErrDuplicate)
		}
		return fmt.Errorf("ostium/sqlite: create mapping: %w", err)
	}
	return nil
}

func (s *Store) DeleteMapping(ctx context.Context, mappingID id.ID) error {
	_, err := s.sdb.NewDelete((*mappingModel)(nil)).
		Where("id = ?", mappingID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium/sqlite: delete mapping: %w", err)
	}
	return nil
}

func (s *Store) ListMappings(ctx context.Context, filter *role.MappingFilter) ([]*role.Mapping, error) {
	var models []mappingModel
	q := s.sdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.RoleID != nil {
			q = q.Where("role_id = ?", filter.RoleID.String())
		}
		if filter.PrincipalType != "" {
			q = q.Where("principal_type = ?", string(filter.PrincipalType))
		}
		if filter.PrincipalID != "" {
			q = q.Where("principal_id = ?", filter.PrincipalID)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ostium/sqlite: list mappings: %w", err)
	}
	result := make([]*role.Mapping, len(models))
	for i := range models {
		result[i] = mappingFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) HasMapping(ctx context.Context, roleID id.ID, principalType sec.PrincipalType, principalID string) (bool, error) {
	count, err := s.sdb.NewSelect((*mappingModel)(nil)).
		Where("role_id = ?", roleID.String()).
		Where("principal_type = ?", string(principalType)).
		Where("principal_id = ?", principalID).
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("ostium/sqlite: has mapping: %w", err)
	}
	return count > 0, nil
}

// ──────────────────────────────────────────────────
// Relation (tuple) operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRelation(ctx context.Context, t *relation.Tuple) error {
	m := relationToModel(t)
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("ostium/sqlite: create relation: %w", err)
	}
	return nil
}

func (s *Store) DeleteRelation(ctx context.Context, relID id.ID) error {
	_, err := s.sdb.NewDelete((*relationModel)(nil)).
		Where("id = ?", relID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium/sqlite: delete relation: %w", err)
	}
	return nil
}

func (s *Store) ListRelations(ctx context.Context, filter *relation.ListFilter) ([]*relation.Tuple, error) {
	var models []relationModel
	q := s.sdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.ObjectType != "" {
			q = q.Where("object_type = ?", filter.ObjectType)
		}
		if filter.ObjectID != "" {
			q = q.Where("object_id = ?", filter.ObjectID)
		}
		if filter.Relation != "" {
			q = q.Where("relation = ?", filter.Relation)
		}
		if filter.SubjectType != "" {
			q = q.Where("subject_type = ?", filter.SubjectType)
		}
		if filter.SubjectID != "" {
			q = q.Where("subject_id = ?", filter.SubjectID)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ostium/sqlite: list relations: %w", err)
	}
	result := make([]*relation.Tuple, len(models))
	for i := range models {
		result[i] = relationFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CheckDirectRelation(ctx context.Context, objectType, objectID, rel, subjectType, subjectID string) (bool, error) {
	count, err := s.sdb.NewSelect((*relationModel)(nil)).
		Where("object_type = ?", objectType).
		Where("object_id = ?", objectID).
		Where("relation = ?", rel).
		Where("subject_type = ?", subjectType).
		Where("subject_id = ?", subjectID).
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("ostium/sqlite: check direct relation: %w", err)
	}
	return count > 0, nil
}

func (s *Store) ListObjectTuples(ctx context.Context, objectType, objectID string) ([]*relation.Tuple, error) {
	var models []relationModel
	err := s.sdb.NewSelect(&models).
		Where("object_type = ?", objectType).
		Where("object_id = ?", objectID).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ostium/sqlite: list object tuples: %w", err)
	}
	result := make([]*relation.Tuple, len(models))
	for i := range models {
		result[i] = relationFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) DeleteRelationsByObject(ctx context.Context, objectType, objectID string) error {
	_, err := s.sdb.NewDelete((*relationModel)(nil)).
		Where("object_type = ?", objectType).
		Where("object_id = ?", objectID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium/sqlite: delete relations by object: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Token operations
// ──────────────────────────────────────────────────

func (s *Store) FindToken(ctx context.Context, tokenID id.ID) (*token.Token, error) {
	m := new(tokenModel)
	if err := s.sdb.NewSelect(m).Where("id = ?", tokenID.String()).Scan(ctx); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("token %s: %w", tokenID, token.ErrNotFound)
		}
		return nil, fmt.Errorf("ostium/sqlite: find token: %w", err)
	}
	t, err := tokenFromModel(m)
	if err != nil {
		return nil, fmt.Errorf("ostium/sqlite: find token: %w", err)
	}
	if t.Expired(time.Now()) {
		return nil, fmt.Errorf("token %s: %w", tokenID, token.ErrNotFound)
	}
	return t, nil
}

func (s *Store) CreateToken(ctx context.Context, t *token.Token) error {
	m, err := tokenToModel(t)
	if err != nil {
		return fmt.Errorf("ostium/sqlite: create token: %w", err)
	}
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("ostium/sqlite: create token: %w", err)
	}
	return nil
}

func (s *Store) DeleteToken(ctx context.Context, tokenID id.ID) error {
	_, err := s.sdb.NewDelete((*tokenModel)(nil)).
		Where("id = ?", tokenID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium/sqlite: delete token: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Audit operations
// ──────────────────────────────────────────────────

func (s *Store) WriteEntry(ctx context.Context, e *audit.Entry) error {
	m, err := auditToModel(e)
	if err != nil {
		return fmt.Errorf("ostium/sqlite: write audit entry: %w", err)
	}
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("ostium/sqlite: write audit entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, entryID id.ID) (*audit.Entry, error) {
	m := new(auditModel)
	if err := s.sdb.NewSelect(m).Where("id = ?", entryID.String()).Scan(ctx); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("audit entry %s: %w", entryID, audit.ErrNotFound)
		}
		return nil, fmt.Errorf("ostium/sqlite: get audit entry: %w", err)
	}
	return auditFromModel(m)
}

func (s *Store) QueryEntries(ctx context.Context, filter *audit.QueryFilter) ([]*audit.Entry, error) {
	var models []auditModel
	q := s.sdb.NewSelect(&models).OrderExpr("created_at DESC")
	if filter != nil {
		if filter.PrincipalType != "" {
			q = q.Where("principal_type = ?", string(filter.PrincipalType))
		}
		if filter.PrincipalID != "" {
			q = q.Where("principal_id = ?", filter.PrincipalID)
		}
		if filter.ResourceType != "" {
			q = q.Where("resource_type = ?", filter.ResourceType)
		}
		if filter.ResourceID != "" {
			q = q.Where("resource_id = ?", filter.ResourceID)
		}
		if filter.Permission != "" {
			q = q.Where("permission = ?", string(filter.Permission))
		}
		if filter.After != nil {
			q = q.Where("created_at > ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at < ?", *filter.Before)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ostium/sqlite: query audit entries: %w", err)
	}
	result := make([]*audit.Entry, len(models))
	for i := range models {
		e, err := auditFromModel(&models[i])
		if err != nil {
			return nil, fmt.Errorf("ostium/sqlite: query audit entries: %w", err)
		}
		result[i] = e
	}
	return result, nil
}

func (s *Store) PurgeEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.sdb.NewDelete((*auditModel)(nil)).
		Where("created_at < ?", cutoff).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("ostium/sqlite: purge audit entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ostium/sqlite: purge audit entries rows: %w", err)
	}
	return n, nil
}
