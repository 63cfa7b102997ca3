// Package mongo provides a MongoDB implementation of the Ostium
// composite store using grove ORM with index-based migrations.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/ostium-io/ostium/audit"
	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/relation"
	"github.com/ostium-io/ostium/role"
	"github.com/ostium-io/ostium/rule"
	"github.com/ostium-io/ostium/sec"
	"github.com/ostium-io/ostium/store"
	"github.com/ostium-io/ostium/token"
)

// Collection name constants.
const (
	colRules        = "ostium_rules"
	colRoles        = "ostium_roles"
	colRoleMappings = "ostium_role_mappings"
	colRelations    = "ostium_relations"
	colTokens       = "ostium_tokens"
	colAuditEntries = "ostium_audit_entries"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a MongoDB implementation of the composite Ostium store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for all ostium collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()
	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("ostium/mongo: migrate %s indexes: %w", col, err)
		}
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all ostium collections.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colRules: {
			{Keys: bson.D{{Key: "resource_type", Value: 1}, {Key: "property", Value: 1}, {Key: "access_type", Value: 1}}},
			{Keys: bson.D{{Key: "principal_type", Value: 1}, {Key: "principal_id", Value: 1}}},
		},
		colRoles: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colRoleMappings: {
			{
				Keys: bson.D{
					{Key: "role_id", Value: 1},
					{Key: "principal_type", Value: 1},
					{Key: "principal_id", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "principal_type", Value: 1}, {Key: "principal_id", Value: 1}}},
		},
		colRelations: {
			{
				Keys: bson.D{
					{Key: "object_type", Value: 1},
					{Key: "object_id", Value: 1},
					{Key: "relation", Value: 1},
					{Key: "subject_type", Value: 1},
					{Key: "subject_id", Value: 1},
					{Key: "subject_relation", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "object_type", Value: 1}, {Key: "object_id", Value: 1}}},
		},
		colTokens: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		colAuditEntries: {
			{Keys: bson.D{{Key: "principal_type", Value: 1}, {Key: "principal_id", Value: 1}}},
			{Keys: bson.D{{Key: "resource_type", Value: 1}, {Key: "resource_id", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
}

// ──────────────────────────────────────────────────
// Rule operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRule(ctx context.Context, r *rule.Rule) error {
	m := ruleToModel(r)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("ostium: create rule: %w", err)
	}
	return nil
}

func (s *Store) GetRule(ctx context.Context, ruleID id.ID) (*rule.Rule, error) {
	var m ruleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": ruleID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("rule %s: %w", ruleID, rule.ErrNotFound)
		}
		return nil, fmt.Errorf("ostium: get rule: %w", err)
	}
	return ruleFromModel(&m), nil
}

func (s *Store) UpdateRule(ctx context.Context, r *rule.Rule) error {
	r.UpdatedAt = time.Now().UTC()
	m := ruleToModel(r)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium: update rule: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("rule %s: %w", r.ID, rule.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteRule(ctx context.Context, ruleID id.ID) error {
	_, err := s.mdb.NewDelete((*ruleModel)(nil)).
		Filter(bson.M{"_id": ruleID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium: delete rule: %w", err)
	}
	return nil
}

// ruleFilterQuery builds the common bson filter for rule lookups.
func ruleFilterQuery(filter *rule.Filter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.PrincipalType != "" {
		f["principal_type"] = string(filter.PrincipalType)
	}
	if filter.PrincipalID != "" {
		f["principal_id"] = filter.PrincipalID
	}
	if filter.ResourceType != "" {
		f["resource_type"] = filter.ResourceType
	}
	if len(filter.Properties) > 0 {
		f["property"] = bson.M{"$in": filter.Properties}
	}
	if len(filter.AccessTypes) > 0 {
		types := make([]string, len(filter.AccessTypes))
		for i, a := range filter.AccessTypes {
			types[i] = string(a)
		}
		f["access_type"] = bson.M{"$in": types}
	}
	return f
}

func (s *Store) FindRules(ctx context.Context, filter *rule.Filter) ([]*rule.Rule, error) {
	var models []ruleModel
	q := s.mdb.NewFind(&models).
		Filter(ruleFilterQuery(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ostium: find rules: %w", err)
	}
	result := make([]*rule.Rule, len(models))
	for i := range models {
		result[i] = ruleFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountRules(ctx context.Context, filter *rule.Filter) (int64, error) {
	count, err := s.mdb.NewFind((*ruleModel)(nil)).
		Filter(ruleFilterQuery(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ostium: count rules: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteRulesByResource(ctx context.Context, resourceType string) error {
	_, err := s.mdb.NewDelete((*ruleModel)(nil)).
		Many().
		Filter(bson.M{"resource_type": resourceType}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium: delete rules by resource: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Role operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(ctx context.Context, r *role.Role) error {
	m := roleToModel(r)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("role name %q: %w", r.Name, role.ErrDuplicate)
		}
		return fmt.Errorf("ostium: create role: %w", err)
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, roleID id.ID) (*role.Role, error) {
	var m roleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": roleID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("role %s: %w", roleID, role.ErrNotFound)
		}
		return nil, fmt.Errorf("ostium: get role: %w", err)
	}
	return roleFromModel(&m), nil
}

func (s *Store) GetRoleByName(ctx context.Context, name string) (*role.Role, error) {
	var m roleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("role name %q: %w", name, role.ErrNotFound)
		}
		return nil, fmt.Errorf("ostium: get role by name: %w", err)
	}
	return roleFromModel(&m), nil
}

func (s *Store) UpdateRole(ctx context.Context, r *role.Role) error {
	r.UpdatedAt = time.Now().UTC()
	m := roleToModel(r)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium: update role: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("role %s: %w", r.ID, role.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteRole(ctx context.Context, roleID id.ID) error {
	// Mappings go first so nothing dangles if the role delete fails.
	_, err := s.mdb.NewDelete((*mappingModel)(nil)).
		Many().
		Filter(bson.M{"role_id": roleID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium: delete role mappings: %w", err)
	}
	_, err = s.mdb.NewDelete((*roleModel)(nil)).
		Filter(bson.M{"_id": roleID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium: delete role: %w", err)
	}
	return nil
}

func (s *Store) ListRoles(ctx context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	var models []roleModel
	f := bson.M{}
	if filter != nil && filter.Search != "" {
		f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "name", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ostium: list roles: %w", err)
	}
	result := make([]*role.Role, len(models))
	for i := range models {
		result[i] = roleFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CreateMapping(ctx context.Context, m *role.Mapping) error {
	model := mappingToModel(m)
	if _, err := s.mdb.NewInsert(model).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("mapping %s/%s: %w", m.PrincipalType, m.PrincipalID, role.ErrDuplicate)
		}
		return fmt.Errorf("ostium: create mapping: %w", err)
	}
	return nil
}

func (s *Store) DeleteMapping(ctx context.Context, mappingID id.ID) error {
	_, err := s.mdb.NewDelete((*mappingModel)(nil)).
		Filter(bson.M{"_id": mappingID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium: delete mapping: %w", err)
	}
	return nil
}

func (s *Store) ListMappings(ctx context.Context, filter *role.MappingFilter) ([]*role.Mapping, error) {
	var models []mappingModel
	f := bson.M{}
	if filter != nil {
		if filter.RoleID != nil {
			f["role_id"] = filter.RoleID.String()
		}
		if filter.PrincipalType != "" {
			f["principal_type"] = string(filter.PrincipalType)
		}
		if filter.PrincipalID != "" {
			f["principal_id"] = filter.PrincipalID
		}
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ostium: list mappings: %w", err)
	}
	result := make([]*role.Mapping, len(models))
	for i := range models {
		result[i] = mappingFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) HasMapping(ctx context.Context, roleID id.ID, principalType sec.PrincipalType, principalID string) (bool, error) {
	count, err := s.mdb.NewFind((*mappingModel)(nil)).
		Filter(bson.M{
			"role_id":        roleID.String(),
			"principal_type": string(principalType),
			"principal_id":   principalID,
		}).
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("ostium: has mapping: %w", err)
	}
	return count > 0, nil
}

// ──────────────────────────────────────────────────
// Relation (tuple) operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRelation(ctx context.Context, t *relation.Tuple) error {
	m := relationToModel(t)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("ostium: create relation: %w", err)
	}
	return nil
}

func (s *Store) DeleteRelation(ctx context.Context, relID id.ID) error {
	_, err := s.mdb.NewDelete((*relationModel)(nil)).
		Filter(bson.M{"_id": relID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium: delete relation: %w", err)
	}
	return nil
}

func (s *Store) ListRelations(ctx context.Context, filter *relation.ListFilter) ([]*relation.Tuple, error) {
	var models []relationModel
	f := bson.M{}
	if filter != nil {
		if filter.ObjectType != "" {
			f["object_type"] = filter.ObjectType
		}
		if filter.ObjectID != "" {
			f["object_id"] = filter.ObjectID
		}
		if filter.Relation != "" {
			f["relation"] = filter.Relation
		}
		if filter.SubjectType != "" {
			f["subject_type"] = filter.SubjectType
		}
		if filter.SubjectID != "" {
			f["subject_id"] = filter.SubjectID
		}
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ostium: list relations: %w", err)
	}
	result := make([]*relation.Tuple, len(models))
	for i := range models {
		result[i] = relationFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CheckDirectRelation(ctx context.Context, objectType, objectID, rel, subjectType, subjectID string) (bool, error) {
	count, err := s.mdb.NewFind((*relationModel)(nil)).
		Filter(bson.M{
			"object_type":  objectType,
			"object_id":    objectID,
			"relation":     rel,
			"subject_type": subjectType,
			"subject_id":   subjectID,
		}).
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("ostium: check direct relation: %w", err)
	}
	return count > 0, nil
}

func (s *Store) ListObjectTuples(ctx context.Context, objectType, objectID string) ([]*relation.Tuple, error) {
	var models []relationModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"object_type": objectType, "object_id": objectID}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ostium: list object tuples: %w", err)
	}
	result := make([]*relation.Tuple, len(models))
	for i := range models {
		result[i] = relationFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) DeleteRelationsByObject(ctx context.Context, objectType, objectID string) error {
	_, err := s.mdb.NewDelete((*relationModel)(nil)).
		Many().
		Filter(bson.M{"object_type": objectType, "object_id": objectID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium: delete relations by object: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Token operations
// ──────────────────────────────────────────────────

func (s *Store) FindToken(ctx context.Context, tokenID id.ID) (*token.Token, error) {
	var m tokenModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": tokenID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("token %s: %w", tokenID, token.ErrNotFound)
		}
		return nil, fmt.Errorf("ostium: find token: %w", err)
	}
	t := tokenFromModel(&m)
	if t.Expired(time.Now()) {
		return nil, fmt.Errorf("token %s: %w", tokenID, token.ErrNotFound)
	}
	return t, nil
}

func (s *Store) CreateToken(ctx context.Context, t *token.Token) error {
	m := tokenToModel(t)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("ostium: create token: %w", err)
	}
	return nil
}

func (s *Store) DeleteToken(ctx context.Context, tokenID id.ID) error {
	_, err := s.mdb.NewDelete((*tokenModel)(nil)).
		Filter(bson.M{"_id": tokenID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ostium: delete token: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Audit operations
// ──────────────────────────────────────────────────

func (s *Store) WriteEntry(ctx context.Context, e *audit.Entry) error {
	m := auditToModel(e)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("ostium: write audit entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, entryID id.ID) (*audit.Entry, error) {
	var m auditModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": entryID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("audit entry %s: %w", entryID, audit.ErrNotFound)
		}
		return nil, fmt.Errorf("ostium: get audit entry: %w", err)
	}
	return auditFromModel(&m), nil
}

func (s *Store) QueryEntries(ctx context.Context, filter *audit.QueryFilter) ([]*audit.Entry, error) {
	var models []auditModel
	f := bson.M{}
	if filter != nil {
		if filter.PrincipalType != "" {
			f["principal_type"] = string(filter.PrincipalType)
		}
		if filter.PrincipalID != "" {
			f["principal_id"] = filter.PrincipalID
		}
		if filter.ResourceType != "" {
			f["resource_type"] = filter.ResourceType
		}
		if filter.ResourceID != "" {
			f["resource_id"] = filter.ResourceID
		}
		if filter.Permission != "" {
			f["permission"] = string(filter.Permission)
		}
		createdAt := bson.M{}
		if filter.After != nil {
			createdAt["$gt"] = *filter.After
		}
		if filter.Before != nil {
			createdAt["$lt"] = *filter.Before
		}
		if len(createdAt) > 0 {
			f["created_at"] = createdAt
		}
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ostium: query audit entries: %w", err)
	}
	result := make([]*audit.Entry, len(models))
	for i := range models {
		result[i] = auditFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) PurgeEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.mdb.NewDelete((*auditModel)(nil)).
		Many().
		Filter(bson.M{"created_at": bson.M{"$lt": cutoff}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("ostium: purge audit entries: %w", err)
	}
	return res.DeletedCount(), nil
}
