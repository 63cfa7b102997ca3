package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/ostium-io/ostium/audit"
	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/relation"
	"github.com/ostium-io/ostium/role"
	"github.com/ostium-io/ostium/rule"
	"github.com/ostium-io/ostium/sec"
	"github.com/ostium-io/ostium/token"
)

// ──────────────────────────────────────────────────
// Rule model
// ──────────────────────────────────────────────────

type ruleModel struct {
	grove.BaseModel `grove:"table:ostium_rules"`
	ID              string    `grove:"id,pk"`
	ResourceType    string    `grove:"resource_type,notnull"`
	Property        string    `grove:"property,notnull"`
	AccessType      string    `grove:"access_type,notnull"`
	PrincipalType   string    `grove:"principal_type,notnull"`
	PrincipalID     string    `grove:"principal_id,notnull"`
	Permission      string    `grove:"permission,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func ruleToModel(r *rule.Rule) *ruleModel {
	return &ruleModel{
		ID:            r.ID.String(),
		ResourceType:  r.ResourceType,
		Property:      r.Property,
		AccessType:    string(r.AccessType),
		PrincipalType: string(r.PrincipalType),
		PrincipalID:   r.PrincipalID,
		Permission:    string(r.Permission),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func ruleFromModel(m *ruleModel) *rule.Rule {
	rid, _ := id.ParseRuleID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &rule.Rule{
		ID:            rid,
		ResourceType:  m.ResourceType,
		Property:      m.Property,
		AccessType:    sec.AccessType(m.AccessType),
		PrincipalType: sec.PrincipalType(m.PrincipalType),
		PrincipalID:   m.PrincipalID,
		Permission:    sec.Permission(m.Permission),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Role model
// ──────────────────────────────────────────────────

type roleModel struct {
	grove.BaseModel `grove:"table:ostium_roles"`
	ID              string         `grove:"id,pk"`
	Name            string         `grove:"name,notnull"`
	Description     string         `grove:"description"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
	UpdatedAt       time.Time      `grove:"updated_at,notnull"`
}

func roleToModel(r *role.Role) *roleModel {
	return &roleModel{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		Metadata:    r.Metadata,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func roleFromModel(m *roleModel) *role.Role {
	rid, _ := id.ParseRoleID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &role.Role{
		ID:          rid,
		Name:        m.Name,
		Description: m.Description,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Role mapping model
// ──────────────────────────────────────────────────

type mappingModel struct {
	grove.BaseModel `grove:"table:ostium_role_mappings"`
	ID              string    `grove:"id,pk"`
	RoleID          string    `grove:"role_id,notnull"`
	PrincipalType   string    `grove:"principal_type,notnull"`
	PrincipalID     string    `grove:"principal_id,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func mappingToModel(m *role.Mapping) *mappingModel {
	return &mappingModel{
		ID:            m.ID.String(),
		RoleID:        m.RoleID.String(),
		PrincipalType: string(m.PrincipalType),
		PrincipalID:   m.PrincipalID,
		CreatedAt:     m.CreatedAt,
	}
}

func mappingFromModel(m *mappingModel) *role.Mapping {
	mid, _ := id.ParseMappingID(m.ID)  //nolint:errcheck // stored IDs are always valid
	rid, _ := id.ParseRoleID(m.RoleID) //nolint:errcheck // stored IDs are always valid
	return &role.Mapping{
		ID:            mid,
		RoleID:        rid,
		PrincipalType: sec.PrincipalType(m.PrincipalType),
		PrincipalID:   m.PrincipalID,
		CreatedAt:     m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Relation (tuple) model
// ──────────────────────────────────────────────────

type relationModel struct {
	grove.BaseModel `grove:"table:ostium_relations"`
	ID              string    `grove:"id,pk"`
	ObjectType      string    `grove:"object_type,notnull"`
	ObjectID        string    `grove:"object_id,notnull"`
	Relation        string    `grove:"relation,notnull"`
	SubjectType     string    `grove:"subject_type,notnull"`
	SubjectID       string    `grove:"subject_id,notnull"`
	SubjectRelation string    `grove:"subject_relation"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func relationToModel(t *relation.Tuple) *relationModel {
	return &relationModel{
		ID:              t.ID.String(),
		ObjectType:      t.ObjectType,
		ObjectID:        t.ObjectID,
		Relation:        t.Relation,
		SubjectType:     t.SubjectType,
		SubjectID:       t.SubjectID,
		SubjectRelation: t.SubjectRelation,
		CreatedAt:       t.CreatedAt,
	}
}

func relationFromModel(m *relationModel) *relation.Tuple {
	rid, _ := id.ParseRelationID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &relation.Tuple{
		ID:              rid,
		ObjectType:      m.ObjectType,
		ObjectID:        m.ObjectID,
		Relation:        m.Relation,
		SubjectType:     m.SubjectType,
		SubjectID:       m.SubjectID,
		SubjectRelation: m.SubjectRelation,
		CreatedAt:       m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Token model
// ──────────────────────────────────────────────────

type tokenModel struct {
	grove.BaseModel `grove:"table:ostium_tokens"`
	ID              string    `grove:"id,pk"`
	UserID          string    `grove:"user_id"`
	AppID           string    `grove:"app_id"`
	Scopes          []string  `grove:"scopes,type:jsonb"`
	TTLSeconds      int64     `grove:"ttl_seconds,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func tokenToModel(t *token.Token) *tokenModel {
	return &tokenModel{
		ID:         t.ID.String(),
		UserID:     t.UserID,
		AppID:      t.AppID,
		Scopes:     t.Scopes,
		TTLSeconds: int64(t.TTL / time.Second),
		CreatedAt:  t.CreatedAt,
	}
}

func tokenFromModel(m *tokenModel) *token.Token {
	tid, _ := id.ParseTokenID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &token.Token{
		ID:        tid,
		UserID:    m.UserID,
		AppID:     m.AppID,
		Scopes:    m.Scopes,
		TTL:       time.Duration(m.TTLSeconds) * time.Second,
		CreatedAt: m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Audit entry model
// ──────────────────────────────────────────────────

type auditModel struct {
	grove.BaseModel `grove:"table:ostium_audit_entries"`
	ID              string         `grove:"id,pk"`
	PrincipalType   string         `grove:"principal_type"`
	PrincipalID     string         `grove:"principal_id"`
	ResourceType    string         `grove:"resource_type,notnull"`
	ResourceID      string         `grove:"resource_id"`
	Property        string         `grove:"property"`
	AccessType      string         `grove:"access_type"`
	Permission      string         `grove:"permission,notnull"`
	Allowed         bool           `grove:"allowed,notnull"`
	EvalTimeNs      int64          `grove:"eval_time_ns,notnull"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
}

func auditToModel(e *audit.Entry) *auditModel {
	return &auditModel{
		ID:            e.ID.String(),
		PrincipalType: string(e.PrincipalType),
		PrincipalID:   e.PrincipalID,
		ResourceType:  e.ResourceType,
		ResourceID:    e.ResourceID,
		Property:      e.Property,
		AccessType:    string(e.AccessType),
		Permission:    string(e.Permission),
		Allowed:       e.Allowed,
		EvalTimeNs:    e.EvalTimeNs,
		Metadata:      e.Metadata,
		CreatedAt:     e.CreatedAt,
	}
}

func auditFromModel(m *auditModel) *audit.Entry {
	aid, _ := id.ParseAuditID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &audit.Entry{
		ID:            aid,
		PrincipalType: sec.PrincipalType(m.PrincipalType),
		PrincipalID:   m.PrincipalID,
		ResourceType:  m.ResourceType,
		ResourceID:    m.ResourceID,
		Property:      m.Property,
		AccessType:    sec.AccessType(m.AccessType),
		Permission:    sec.Permission(m.Permission),
		Allowed:       m.Allowed,
		EvalTimeNs:    m.EvalTimeNs,
		Metadata:      m.Metadata,
		CreatedAt:     m.CreatedAt,
	}
}
