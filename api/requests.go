package api

// ──────────────────────────────────────────────────
// Check requests
// ──────────────────────────────────────────────────

// PrincipalInput identifies one principal on a check request.
type PrincipalInput struct {
	Type string `json:"type" description:"Principal type (USER, APP, ROLE, SCOPE)"`
	ID   string `json:"id" description:"Principal identifier"`
	Name string `json:"name,omitempty" description:"Display name"`
}

// CheckRequest is the request body for an access check.
type CheckRequest struct {
	Principals   []PrincipalInput `json:"principals,omitempty" description:"Principals asking for access"`
	TokenID      string           `json:"token_id,omitempty" description:"Credential to resolve principals from"`
	ResourceType string           `json:"resource_type" description:"Protected resource type"`
	ResourceID   string           `json:"resource_id,omitempty" description:"Resource instance identifier"`
	Property     string           `json:"property,omitempty" description:"Property or method being accessed (empty = all)"`
	AccessType   string           `json:"access_type,omitempty" description:"Access kind (READ, WRITE, EXECUTE, empty = any)"`
	Remote       map[string]any   `json:"remote,omitempty" description:"Context handed to custom role resolvers"`
}

// PermissionCheckRequest asks what one principal may do.
type PermissionCheckRequest struct {
	PrincipalType string `json:"principal_type" description:"Principal type"`
	PrincipalID   string `json:"principal_id" description:"Principal identifier"`
	ResourceType  string `json:"resource_type" description:"Resource type"`
	Property      string `json:"property,omitempty" description:"Property (empty = all)"`
	AccessType    string `json:"access_type,omitempty" description:"Access kind (empty = any)"`
}

// ──────────────────────────────────────────────────
// Rule requests
// ──────────────────────────────────────────────────

// CreateRuleRequest is the body for creating an ACL rule.
type CreateRuleRequest struct {
	ResourceType  string `json:"resource_type" description:"Resource type the rule covers (* = all)"`
	Property      string `json:"property,omitempty" description:"Property pattern (empty = all)"`
	AccessType    string `json:"access_type,omitempty" description:"Access type pattern (empty = any)"`
	PrincipalType string `json:"principal_type" description:"Principal type the rule binds"`
	PrincipalID   string `json:"principal_id" description:"Principal identifier or dynamic role name"`
	Permission    string `json:"permission" description:"Permission (ALLOW, DENY, ALARM, AUDIT)"`
}

// GetRuleRequest is the path parameter for rule lookups.
type GetRuleRequest struct {
	RuleID string `path:"ruleId" description:"Rule ID"`
}

// ListRulesRequest holds query parameters for listing rules.
type ListRulesRequest struct {
	PrincipalType string `query:"principal_type" description:"Filter by principal type"`
	PrincipalID   string `query:"principal_id" description:"Filter by principal ID"`
	ResourceType  string `query:"resource_type" description:"Filter by resource type"`
	Limit         int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset        int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Role requests
// ──────────────────────────────────────────────────

// CreateRoleRequest is the body for creating a role.
type CreateRoleRequest struct {
	Name        string         `json:"name" description:"Unique role name"`
	Description string         `json:"description,omitempty" description:"Human-readable description"`
	Metadata    map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetRoleRequest is the path parameter for role lookups.
type GetRoleRequest struct {
	RoleID string `path:"roleId" description:"Role ID"`
}

// ListRolesRequest holds query parameters for listing roles.
type ListRolesRequest struct {
	Search string `query:"search" description:"Search by name"`
	Limit  int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset int    `query:"offset" description:"Results to skip"`
}

// MapPrincipalRequest is the body for binding a principal to a role.
type MapPrincipalRequest struct {
	PrincipalType string `json:"principal_type" description:"Principal type"`
	PrincipalID   string `json:"principal_id" description:"Principal identifier"`
}

// ListMappingsRequest holds query parameters for listing role mappings.
type ListMappingsRequest struct {
	PrincipalType string `query:"principal_type" description:"Filter by principal type"`
	PrincipalID   string `query:"principal_id" description:"Filter by principal ID"`
	Limit         int    `query:"limit" description:"Maximum results"`
	Offset        int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Relation requests
// ──────────────────────────────────────────────────

// WriteRelationRequest is the body for writing a relation tuple.
type WriteRelationRequest struct {
	ObjectType      string `json:"object_type" description:"Object resource type"`
	ObjectID        string `json:"object_id" description:"Object identifier"`
	Relation        string `json:"relation" description:"Relation name"`
	SubjectType     string `json:"subject_type" description:"Subject resource type"`
	SubjectID       string `json:"subject_id" description:"Subject identifier"`
	SubjectRelation string `json:"subject_relation,omitempty" description:"Subject relation (for nested relations)"`
}

// DeleteRelationRequest is the path parameter for deleting a tuple.
type DeleteRelationRequest struct {
	RelationID string `path:"relationId" description:"Relation tuple ID"`
}

// ListRelationsRequest holds query parameters.
type ListRelationsRequest struct {
	ObjectType  string `query:"object_type" description:"Filter by object type"`
	ObjectID    string `query:"object_id" description:"Filter by object ID"`
	Relation    string `query:"relation" description:"Filter by relation"`
	SubjectType string `query:"subject_type" description:"Filter by subject type"`
	SubjectID   string `query:"subject_id" description:"Filter by subject ID"`
	Limit       int    `query:"limit" description:"Maximum results"`
	Offset      int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Audit requests
// ──────────────────────────────────────────────────

// ListAuditEntriesRequest holds query parameters for audit queries.
type ListAuditEntriesRequest struct {
	PrincipalType string `query:"principal_type" description:"Filter by principal type"`
	PrincipalID   string `query:"principal_id" description:"Filter by principal ID"`
	ResourceType  string `query:"resource_type" description:"Filter by resource type"`
	ResourceID    string `query:"resource_id" description:"Filter by resource ID"`
	Permission    string `query:"permission" description:"Filter by permission"`
	After         string `query:"after" description:"After timestamp (RFC3339)"`
	Before        string `query:"before" description:"Before timestamp (RFC3339)"`
	Limit         int    `query:"limit" description:"Maximum results"`
	Offset        int    `query:"offset" description:"Results to skip"`
}
