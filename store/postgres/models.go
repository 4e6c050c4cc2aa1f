package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/digdir/accessgraph/accesspackage"
	"github.com/digdir/accessgraph/assignment"
	"github.com/digdir/accessgraph/decisionlog"
	"github.com/digdir/accessgraph/delegation"
	"github.com/digdir/accessgraph/entity"
	"github.com/digdir/accessgraph/id"
	"github.com/digdir/accessgraph/resource"
	"github.com/digdir/accessgraph/role"
)

// parseID converts a stored string back to an ID. Empty columns map to the
// zero ID; stored non-empty IDs are always valid.
func parseID(s string) id.ID {
	if s == "" {
		return id.ID{}
	}
	v, _ := id.Parse(s) //nolint:errcheck // stored IDs are always valid
	return v
}

// storeID converts an ID to its column value. The zero ID is stored as an
// empty string so optional references stay queryable.
func storeID(v id.ID) string {
	if v.IsNil() {
		return ""
	}
	return v.String()
}

// ──────────────────────────────────────────────────
// Entity models
// ──────────────────────────────────────────────────

type entityModel struct {
	grove.BaseModel `grove:"table:accessgraph_entities"`
	ID              string    `grove:"id,pk"`
	Name            string    `grove:"name,notnull"`
	TypeID          string    `grove:"type_id,notnull"`
	VariantID       string    `grove:"variant_id"`
	RefID           string    `grove:"ref_id,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func entityToModel(e *entity.Entity) *entityModel {
	return &entityModel{
		ID:        e.ID.String(),
		Name:      e.Name,
		TypeID:    storeID(e.TypeID),
		VariantID: storeID(e.VariantID),
		RefID:     e.RefID,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func entityFromModel(m *entityModel) *entity.Entity {
	return &entity.Entity{
		ID:        parseID(m.ID),
		Name:      m.Name,
		TypeID:    parseID(m.TypeID),
		VariantID: parseID(m.VariantID),
		RefID:     m.RefID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type entityTypeModel struct {
	grove.BaseModel `grove:"table:accessgraph_entity_types"`
	ID              string `grove:"id,pk"`
	Name            string `grove:"name,notnull"`
}

func entityTypeToModel(t *entity.Type) *entityTypeModel {
	return &entityTypeModel{ID: t.ID.String(), Name: t.Name}
}

func entityTypeFromModel(m *entityTypeModel) *entity.Type {
	return &entity.Type{ID: parseID(m.ID), Name: m.Name}
}

type entityVariantModel struct {
	grove.BaseModel `grove:"table:accessgraph_entity_variants"`
	ID              string `grove:"id,pk"`
	TypeID          string `grove:"type_id,notnull"`
	Name            string `grove:"name,notnull"`
	Description     string `grove:"description"`
}

func entityVariantToModel(v *entity.Variant) *entityVariantModel {
	return &entityVariantModel{
		ID:          v.ID.String(),
		TypeID:      storeID(v.TypeID),
		Name:        v.Name,
		Description: v.Description,
	}
}

func entityVariantFromModel(m *entityVariantModel) *entity.Variant {
	return &entity.Variant{
		ID:          parseID(m.ID),
		TypeID:      parseID(m.TypeID),
		Name:        m.Name,
		Description: m.Description,
	}
}

// ──────────────────────────────────────────────────
// Role models
// ──────────────────────────────────────────────────

type roleModel struct {
	grove.BaseModel `grove:"table:accessgraph_roles"`
	ID              string    `grove:"id,pk"`
	EntityTypeID    string    `grove:"entity_type_id,notnull"`
	Code            string    `grove:"code,notnull"`
	Name            string    `grove:"name,notnull"`
	Description     string    `grove:"description"`
	URN             string    `grove:"urn,notnull"`
	IsKeyRole       bool      `grove:"is_key_role,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func roleToModel(r *role.Role) *roleModel {
	return &roleModel{
		ID:           r.ID.String(),
		EntityTypeID: storeID(r.EntityTypeID),
		Code:         r.Code,
		Name:         r.Name,
		Description:  r.Description,
		URN:          r.URN,
		IsKeyRole:    r.IsKeyRole,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func roleFromModel(m *roleModel) *role.Role {
	return &role.Role{
		ID:           parseID(m.ID),
		EntityTypeID: parseID(m.EntityTypeID),
		Code:         m.Code,
		Name:         m.Name,
		Description:  m.Description,
		URN:          m.URN,
		IsKeyRole:    m.IsKeyRole,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type rolePackageModel struct {
	grove.BaseModel `grove:"table:accessgraph_role_packages"`
	RoleID          string `grove:"role_id,pk"`
	PackageID       string `grove:"package_id,pk"`
	HasAccess       bool   `grove:"has_access,notnull"`
	CanDelegate     bool   `grove:"can_delegate,notnull"`
}

func rolePackageToModel(rp *role.Package) *rolePackageModel {
	return &rolePackageModel{
		RoleID:      rp.RoleID.String(),
		PackageID:   rp.PackageID.String(),
		HasAccess:   rp.HasAccess,
		CanDelegate: rp.CanDelegate,
	}
}

func rolePackageFromModel(m *rolePackageModel) *role.Package {
	return &role.Package{
		RoleID:      parseID(m.RoleID),
		PackageID:   parseID(m.PackageID),
		HasAccess:   m.HasAccess,
		CanDelegate: m.CanDelegate,
	}
}

// ──────────────────────────────────────────────────
// Access package models
// ──────────────────────────────────────────────────

type packageModel struct {
	grove.BaseModel `grove:"table:accessgraph_packages"`
	ID              string    `grove:"id,pk"`
	AreaID          string    `grove:"area_id"`
	EntityTypeID    string    `grove:"entity_type_id"`
	Name            string    `grove:"name,notnull"`
	URN             string    `grove:"urn,notnull"`
	Description     string    `grove:"description"`
	IsAssignable    bool      `grove:"is_assignable,notnull"`
	IsDelegable     bool      `grove:"is_delegable,notnull"`
	HasResources    bool      `grove:"has_resources,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func packageToModel(p *accesspackage.Package) *packageModel {
	return &packageModel{
		ID:           p.ID.String(),
		AreaID:       storeID(p.AreaID),
		EntityTypeID: storeID(p.EntityTypeID),
		Name:         p.Name,
		URN:          p.URN,
		Description:  p.Description,
		IsAssignable: p.IsAssignable,
		IsDelegable:  p.IsDelegable,
		HasResources: p.HasResources,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func packageFromModel(m *packageModel) *accesspackage.Package {
	return &accesspackage.Package{
		ID:           parseID(m.ID),
		AreaID:       parseID(m.AreaID),
		EntityTypeID: parseID(m.EntityTypeID),
		Name:         m.Name,
		URN:          m.URN,
		Description:  m.Description,
		IsAssignable: m.IsAssignable,
		IsDelegable:  m.IsDelegable,
		HasResources: m.HasResources,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type areaModel struct {
	grove.BaseModel `grove:"table:accessgraph_areas"`
	ID              string `grove:"id,pk"`
	Name            string `grove:"name,notnull"`
	Description     string `grove:"description"`
	IconURN         string `grove:"icon_urn"`
}

func areaToModel(a *accesspackage.Area) *areaModel {
	return &areaModel{
		ID:          a.ID.String(),
		Name:        a.Name,
		Description: a.Description,
		IconURN:     a.IconURN,
	}
}

func areaFromModel(m *areaModel) *accesspackage.Area {
	return &accesspackage.Area{
		ID:          parseID(m.ID),
		Name:        m.Name,
		Description: m.Description,
		IconURN:     m.IconURN,
	}
}

// ──────────────────────────────────────────────────
// Resource models
// ──────────────────────────────────────────────────

type resourceModel struct {
	grove.BaseModel `grove:"table:accessgraph_resources"`
	ID              string    `grove:"id,pk"`
	RefID           string    `grove:"ref_id,notnull"`
	TypeID          string    `grove:"type_id"`
	ProviderID      string    `grove:"provider_id"`
	Name            string    `grove:"name,notnull"`
	Delegable       bool      `grove:"delegable,notnull"`
	AccessListMode  string    `grove:"access_list_mode"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func resourceToModel(r *resource.Resource) *resourceModel {
	return &resourceModel{
		ID:             r.ID.String(),
		RefID:          r.RefID,
		TypeID:         storeID(r.TypeID),
		ProviderID:     storeID(r.ProviderID),
		Name:           r.Name,
		Delegable:      r.Delegable,
		AccessListMode: string(r.AccessListMode),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func resourceFromModel(m *resourceModel) *resource.Resource {
	return &resource.Resource{
		ID:             parseID(m.ID),
		RefID:          m.RefID,
		TypeID:         parseID(m.TypeID),
		ProviderID:     parseID(m.ProviderID),
		Name:           m.Name,
		Delegable:      m.Delegable,
		AccessListMode: resource.AccessListMode(m.AccessListMode),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

type resourceTypeModel struct {
	grove.BaseModel `grove:"table:accessgraph_resource_types"`
	ID              string `grove:"id,pk"`
	Name            string `grove:"name,notnull"`
}

func resourceTypeToModel(t *resource.Type) *resourceTypeModel {
	return &resourceTypeModel{ID: t.ID.String(), Name: t.Name}
}

func resourceTypeFromModel(m *resourceTypeModel) *resource.Type {
	return &resource.Type{ID: parseID(m.ID), Name: m.Name}
}

type providerModel struct {
	grove.BaseModel `grove:"table:accessgraph_providers"`
	ID              string `grove:"id,pk"`
	Name            string `grove:"name,notnull"`
	OrgRef          string `grove:"org_ref"`
}

func providerToModel(p *resource.Provider) *providerModel {
	return &providerModel{ID: p.ID.String(), Name: p.Name, OrgRef: p.OrgRef}
}

func providerFromModel(m *providerModel) *resource.Provider {
	return &resource.Provider{ID: parseID(m.ID), Name: m.Name, OrgRef: m.OrgRef}
}

type packageResourceModel struct {
	grove.BaseModel `grove:"table:accessgraph_package_resources"`
	PackageID       string `grove:"package_id,pk"`
	ResourceID      string `grove:"resource_id,pk"`
}

// ──────────────────────────────────────────────────
// Assignment models
// ──────────────────────────────────────────────────

type assignmentModel struct {
	grove.BaseModel `grove:"table:accessgraph_assignments"`
	ID              string    `grove:"id,pk"`
	FromID          string    `grove:"from_id,notnull"`
	ToID            string    `grove:"to_id,notnull"`
	RoleID          string    `grove:"role_id,notnull"`
	GrantedBy       string    `grove:"granted_by"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func assignmentToModel(a *assignment.Assignment) *assignmentModel {
	return &assignmentModel{
		ID:        a.ID.String(),
		FromID:    storeID(a.FromID),
		ToID:      storeID(a.ToID),
		RoleID:    storeID(a.RoleID),
		GrantedBy: storeID(a.GrantedBy),
		CreatedAt: a.CreatedAt,
	}
}

func assignmentFromModel(m *assignmentModel) *assignment.Assignment {
	return &assignment.Assignment{
		ID:        parseID(m.ID),
		FromID:    parseID(m.FromID),
		ToID:      parseID(m.ToID),
		RoleID:    parseID(m.RoleID),
		GrantedBy: parseID(m.GrantedBy),
		CreatedAt: m.CreatedAt,
	}
}

type assignmentPackageModel struct {
	grove.BaseModel `grove:"table:accessgraph_assignment_packages"`
	ID              string    `grove:"id,pk"`
	AssignmentID    string    `grove:"assignment_id,notnull"`
	PackageID       string    `grove:"package_id,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func assignmentPackageToModel(ap *assignment.Package) *assignmentPackageModel {
	return &assignmentPackageModel{
		ID:           ap.ID.String(),
		AssignmentID: storeID(ap.AssignmentID),
		PackageID:    storeID(ap.PackageID),
		CreatedAt:    ap.CreatedAt,
	}
}

func assignmentPackageFromModel(m *assignmentPackageModel) *assignment.Package {
	return &assignment.Package{
		ID:           parseID(m.ID),
		AssignmentID: parseID(m.AssignmentID),
		PackageID:    parseID(m.PackageID),
		CreatedAt:    m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Delegation models
// ──────────────────────────────────────────────────

type delegationModel struct {
	grove.BaseModel `grove:"table:accessgraph_delegations"`
	ID              string    `grove:"id,pk"`
	FromID          string    `grove:"from_id,notnull"`
	ToID            string    `grove:"to_id,notnull"`
	FacilitatorID   string    `grove:"facilitator_id,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func delegationToModel(d *delegation.Delegation) *delegationModel {
	return &delegationModel{
		ID:            d.ID.String(),
		FromID:        storeID(d.FromID),
		ToID:          storeID(d.ToID),
		FacilitatorID: storeID(d.FacilitatorID),
		CreatedAt:     d.CreatedAt,
	}
}

func delegationFromModel(m *delegationModel) *delegation.Delegation {
	return &delegation.Delegation{
		ID:            parseID(m.ID),
		FromID:        parseID(m.FromID),
		ToID:          parseID(m.ToID),
		FacilitatorID: parseID(m.FacilitatorID),
		CreatedAt:     m.CreatedAt,
	}
}

type delegationPackageModel struct {
	grove.BaseModel `grove:"table:accessgraph_delegation_packages"`
	ID              string    `grove:"id,pk"`
	DelegationID    string    `grove:"delegation_id,notnull"`
	PackageID       string    `grove:"package_id,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func delegationPackageToModel(dp *delegation.Package) *delegationPackageModel {
	return &delegationPackageModel{
		ID:           dp.ID.String(),
		DelegationID: storeID(dp.DelegationID),
		PackageID:    storeID(dp.PackageID),
		CreatedAt:    dp.CreatedAt,
	}
}

func delegationPackageFromModel(m *delegationPackageModel) *delegation.Package {
	return &delegation.Package{
		ID:           parseID(m.ID),
		DelegationID: parseID(m.DelegationID),
		PackageID:    parseID(m.PackageID),
		CreatedAt:    m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Decision log model
// ──────────────────────────────────────────────────

type decisionLogModel struct {
	grove.BaseModel `grove:"table:accessgraph_decision_logs"`
	ID              string    `grove:"id,pk"`
	PartyID         string    `grove:"party_id,notnull"`
	ActorID         string    `grove:"actor_id,notnull"`
	Kind            string    `grove:"kind,notnull"`
	Ref             string    `grove:"ref,notnull"`
	Decision        string    `grove:"decision,notnull"`
	Reason          string    `grove:"reason"`
	EvalTimeNs      int64     `grove:"eval_time_ns,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func decisionLogToModel(e *decisionlog.Entry) *decisionLogModel {
	return &decisionLogModel{
		ID:         e.ID.String(),
		PartyID:    storeID(e.PartyID),
		ActorID:    storeID(e.ActorID),
		Kind:       e.Kind,
		Ref:        e.Ref,
		Decision:   e.Decision,
		Reason:     e.Reason,
		EvalTimeNs: e.EvalTimeNs,
		CreatedAt:  e.CreatedAt,
	}
}

func decisionLogFromModel(m *decisionLogModel) *decisionlog.Entry {
	return &decisionlog.Entry{
		ID:         parseID(m.ID),
		PartyID:    parseID(m.PartyID),
		ActorID:    parseID(m.ActorID),
		Kind:       m.Kind,
		Ref:        m.Ref,
		Decision:   m.Decision,
		Reason:     m.Reason,
		EvalTimeNs: m.EvalTimeNs,
		CreatedAt:  m.CreatedAt,
	}
}
