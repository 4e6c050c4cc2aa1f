// Package postgres provides a PostgreSQL implementation of the accessgraph
// composite store using grove ORM with Go-based migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/digdir/accessgraph/accesspackage"
	"github.com/digdir/accessgraph/assignment"
	"github.com/digdir/accessgraph/decisionlog"
	"github.com/digdir/accessgraph/delegation"
	"github.com/digdir/accessgraph/entity"
	"github.com/digdir/accessgraph/id"
	"github.com/digdir/accessgraph/resource"
	"github.com/digdir/accessgraph/role"
	"github.com/digdir/accessgraph/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a PostgreSQL implementation of the composite accessgraph store.
type Store struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL store.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("accessgraph: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("accessgraph: migration failed: %w", err)
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

// pgUniqueViolation is the postgres error code for unique-constraint
// violations.
const pgUniqueViolation = "23505"

// writeErr maps a unique-constraint violation to the duplicate sentinel so
// callers see the same error shape across backends.
func writeErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("accessgraph: %s: %w", op, store.ErrDuplicate)
	}
	return fmt.Errorf("accessgraph: %s: %w", op, err)
}

// ──────────────────────────────────────────────────
// Entity operations
// ──────────────────────────────────────────────────

func (s *Store) CreateEntity(ctx context.Context, e *entity.Entity) error {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	m := entityToModel(e)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return writeErr("create entity", err)
	}
	return nil
}

func (s *Store) GetEntity(ctx context.Context, entityID id.ID) (*entity.Entity, error) {
	m := new(entityModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", entityID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("entity %s: %w", entityID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get entity: %w", err)
	}
	return entityFromModel(m), nil
}

func (s *Store) GetEntityByRef(ctx context.Context, typeID id.ID, refID string) (*entity.Entity, error) {
	m := new(entityModel)
	err := s.pgdb.NewSelect(m).
		Where("type_id = ?", typeID.String()).
		Where("ref_id = ?", refID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("entity ref %q: %w", refID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get entity by ref: %w", err)
	}
	return entityFromModel(m), nil
}

func (s *Store) UpdateEntity(ctx context.Context, e *entity.Entity) error {
	e.UpdatedAt = time.Now().UTC()
	m := entityToModel(e)
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return writeErr("update entity", err)
	}
	return nil
}

func (s *Store) ListEntities(ctx context.Context, filter *entity.ListFilter) ([]*entity.Entity, error) {
	var models []entityModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.TypeID != nil {
			q = q.Where("type_id = ?", filter.TypeID.String())
		}
		if filter.VariantID != nil {
			q = q.Where("variant_id = ?", filter.VariantID.String())
		}
		if filter.RefID != "" {
			q = q.Where("ref_id = ?", filter.RefID)
		}
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
		return nil, fmt.Errorf("accessgraph: list entities: %w", err)
	}
	result := make([]*entity.Entity, len(models))
	for i := range models {
		result[i] = entityFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CreateEntityType(ctx context.Context, t *entity.Type) error {
	m := entityTypeToModel(t)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return writeErr("create entity type", err)
	}
	return nil
}

func (s *Store) GetEntityType(ctx context.Context, typeID id.ID) (*entity.Type, error) {
	m := new(entityTypeModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", typeID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("entity type %s: %w", typeID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get entity type: %w", err)
	}
	return entityTypeFromModel(m), nil
}

func (s *Store) GetEntityTypeByName(ctx context.Context, name string) (*entity.Type, error) {
	m := new(entityTypeModel)
	err := s.pgdb.NewSelect(m).Where("LOWER(name) = LOWER(?)", name).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("entity type %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get entity type by name: %w", err)
	}
	return entityTypeFromModel(m), nil
}

func (s *Store) ListEntityTypes(ctx context.Context) ([]*entity.Type, error) {
	var models []entityTypeModel
	if err := s.pgdb.NewSelect(&models).OrderExpr("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("accessgraph: list entity types: %w", err)
	}
	result := make([]*entity.Type, len(models))
	for i := range models {
		result[i] = entityTypeFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CreateEntityVariant(ctx context.Context, v *entity.Variant) error {
	m := entityVariantToModel(v)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return writeErr("create entity variant", err)
	}
	return nil
}

func (s *Store) GetEntityVariant(ctx context.Context, variantID id.ID) (*entity.Variant, error) {
	m := new(entityVariantModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", variantID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("entity variant %s: %w", variantID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get entity variant: %w", err)
	}
	return entityVariantFromModel(m), nil
}

func (s *Store) ListEntityVariants(ctx context.Context, typeID id.ID) ([]*entity.Variant, error) {
	var models []entityVariantModel
	err := s.pgdb.NewSelect(&models).
		Where("type_id = ?", typeID.String()).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("accessgraph: list entity variants: %w", err)
	}
	result := make([]*entity.Variant, len(models))
	for i := range models {
		result[i] = entityVariantFromModel(&models[i])
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Role operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(ctx context.Context, r *role.Role) error {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	m := roleToModel(r)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return writeErr("create role", err)
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, roleID id.ID) (*role.Role, error) {
	m := new(roleModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", roleID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role %s: %w", roleID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get role: %w", err)
	}
	return roleFromModel(m), nil
}

func (s *Store) GetRoleByURN(ctx context.Context, urn string) (*role.Role, error) {
	m := new(roleModel)
	err := s.pgdb.NewSelect(m).Where("urn = ?", urn).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role urn %q: %w", urn, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get role by urn: %w", err)
	}
	return roleFromModel(m), nil
}

func (s *Store) GetRoleByCode(ctx context.Context, entityTypeID id.ID, code string) (*role.Role, error) {
	m := new(roleModel)
	err := s.pgdb.NewSelect(m).
		Where("entity_type_id = ?", entityTypeID.String()).
		Where("LOWER(code) = LOWER(?)", code).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role code %q: %w", code, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get role by code: %w", err)
	}
	return roleFromModel(m), nil
}

func (s *Store) UpdateRole(ctx context.Context, r *role.Role) error {
	r.UpdatedAt = time.Now().UTC()
	m := roleToModel(r)
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return writeErr("update role", err)
	}
	return nil
}

func (s *Store) DeleteRole(ctx context.Context, roleID id.ID) error {
	_, err := s.pgdb.NewDelete((*roleModel)(nil)).
		Where("id = ?", roleID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("accessgraph: delete role: %w", err)
	}
	return nil
}

func (s *Store) ListRoles(ctx context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	var models []roleModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.EntityTypeID != nil {
			q = q.Where("entity_type_id = ?", filter.EntityTypeID.String())
		}
		if filter.Code != "" {
			q = q.Where("LOWER(code) = LOWER(?)", filter.Code)
		}
		if filter.KeyRolesOnly {
			q = q.Where("is_key_role = ?", true)
		}
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
		return nil, fmt.Errorf("accessgraph: list roles: %w", err)
	}
	result := make([]*role.Role, len(models))
	for i := range models {
		result[i] = roleFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) AttachPackage(ctx context.Context, rp *role.Package) error {
	m := rolePackageToModel(rp)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return writeErr("attach role package", err)
	}
	return nil
}

func (s *Store) DetachPackage(ctx context.Context, roleID, packageID id.ID) error {
	res, err := s.pgdb.NewDelete((*rolePackageModel)(nil)).
		Where("role_id = ?", roleID.String()).
		Where("package_id = ?", packageID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("accessgraph: detach role package: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("role package link: %w", store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListRolePackages(ctx context.Context, roleID id.ID) ([]*role.Package, error) {
	var models []rolePackageModel
	err := s.pgdb.NewSelect(&models).
		Where("role_id = ?", roleID.String()).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("accessgraph: list role packages: %w", err)
	}
	result := make([]*role.Package, len(models))
	for i := range models {
		result[i] = rolePackageFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListPackageRoles(ctx context.Context, packageID id.ID) ([]*role.Package, error) {
	var models []rolePackageModel
	err := s.pgdb.NewSelect(&models).
		Where("package_id = ?", packageID.String()).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("accessgraph: list package roles: %w", err)
	}
	result := make([]*role.Package, len(models))
	for i := range models {
		result[i] = rolePackageFromModel(&models[i])
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Access package operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePackage(ctx context.Context, p *accesspackage.Package) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	m := packageToModel(p)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return writeErr("create package", err)
	}
	return nil
}

func (s *Store) GetPackage(ctx context.Context, packageID id.ID) (*accesspackage.Package, error) {
	m := new(packageModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", packageID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("package %s: %w", packageID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get package: %w", err)
	}
	return packageFromModel(m), nil
}

func (s *Store) GetPackageByURN(ctx context.Context, urn string) (*accesspackage.Package, error) {
	m := new(packageModel)
	err := s.pgdb.NewSelect(m).Where("LOWER(urn) = LOWER(?)", urn).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("package urn %q: %w", urn, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get package by urn: %w", err)
	}
	return packageFromModel(m), nil
}

func (s *Store) UpdatePackage(ctx context.Context, p *accesspackage.Package) error {
	p.UpdatedAt = time.Now().UTC()
	m := packageToModel(p)
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return writeErr("update package", err)
	}
	return nil
}

func (s *Store) DeletePackage(ctx context.Context, packageID id.ID) error {
	_, err := s.pgdb.NewDelete((*packageModel)(nil)).
		Where("id = ?", packageID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("accessgraph: delete package: %w", err)
	}
	return nil
}

func (s *Store) ListPackages(ctx context.Context, filter *accesspackage.ListFilter) ([]*accesspackage.Package, error) {
	var models []packageModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.AreaID != nil {
			q = q.Where("area_id = ?", filter.AreaID.String())
		}
		if filter.EntityTypeID != nil {
			q = q.Where("entity_type_id = ?", filter.EntityTypeID.String())
		}
		if len(filter.Names) > 0 {
			// A "name" may be the display name or the URN.
			lowered := lowerAll(filter.Names)
			q = q.Where("LOWER(name) = ANY(?) OR LOWER(urn) = ANY(?)", lowered, lowered)
		}
		if len(filter.URNs) > 0 {
			q = q.Where("LOWER(urn) = ANY(?)", lowerAll(filter.URNs))
		}
		if filter.AssignableOnly {
			q = q.Where("is_assignable = ?", true)
		}
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
		return nil, fmt.Errorf("accessgraph: list packages: %w", err)
	}
	result := make([]*accesspackage.Package, len(models))
	for i := range models {
		result[i] = packageFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CreateArea(ctx context.Context, a *accesspackage.Area) error {
	m := areaToModel(a)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return writeErr("create area", err)
	}
	return nil
}

func (s *Store) GetArea(ctx context.Context, areaID id.ID) (*accesspackage.Area, error) {
	m := new(areaModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", areaID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("area %s: %w", areaID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get area: %w", err)
	}
	return areaFromModel(m), nil
}

func (s *Store) ListAreas(ctx context.Context) ([]*accesspackage.Area, error) {
	var models []areaModel
	if err := s.pgdb.NewSelect(&models).OrderExpr("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("accessgraph: list areas: %w", err)
	}
	result := make([]*accesspackage.Area, len(models))
	for i := range models {
		result[i] = areaFromModel(&models[i])
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Resource operations
// ──────────────────────────────────────────────────

func (s *Store) CreateResource(ctx context.Context, r *resource.Resource) error {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	m := resourceToModel(r)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return writeErr("create resource", err)
	}
	return nil
}

func (s *Store) GetResource(ctx context.Context, resourceID id.ID) (*resource.Resource, error) {
	m := new(resourceModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", resourceID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("resource %s: %w", resourceID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get resource: %w", err)
	}
	return resourceFromModel(m), nil
}

func (s *Store) GetResourceByRef(ctx context.Context, refID string) (*resource.Resource, error) {
	m := new(resourceModel)
	err := s.pgdb.NewSelect(m).Where("ref_id = ?", refID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("resource ref %q: %w", refID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get resource by ref: %w", err)
	}
	return resourceFromModel(m), nil
}

func (s *Store) GetResourceExtended(ctx context.Context, resourceID id.ID) (*resource.Extended, error) {
	r, err := s.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	ext := &resource.Extended{Resource: *r}
	if !r.ProviderID.IsNil() {
		p, err := s.GetProvider(ctx, r.ProviderID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		ext.Provider = p
	}
	if !r.TypeID.IsNil() {
		t, err := s.GetResourceType(ctx, r.TypeID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		ext.Type = t
	}
	return ext, nil
}

func (s *Store) UpdateResource(ctx context.Context, r *resource.Resource) error {
	r.UpdatedAt = time.Now().UTC()
	m := resourceToModel(r)
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return writeErr("update resource", err)
	}
	return nil
}

func (s *Store) DeleteResource(ctx context.Context, resourceID id.ID) error {
	_, err := s.pgdb.NewDelete((*resourceModel)(nil)).
		Where("id = ?", resourceID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("accessgraph: delete resource: %w", err)
	}
	return nil
}

func (s *Store) ListResources(ctx context.Context, filter *resource.ListFilter) ([]*resource.Resource, error) {
	var models []resourceModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.TypeID != nil {
			q = q.Where("type_id = ?", filter.TypeID.String())
		}
		if filter.ProviderID != nil {
			q = q.Where("provider_id = ?", filter.ProviderID.String())
		}
		if filter.RefID != "" {
			q = q.Where("ref_id = ?", filter.RefID)
		}
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
		return nil, fmt.Errorf("accessgraph: list resources: %w", err)
	}
	result := make([]*resource.Resource, len(models))
	for i := range models {
		result[i] = resourceFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CreateResourceType(ctx context.Context, t *resource.Type) error {
	m := resourceTypeToModel(t)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return writeErr("create resource type", err)
	}
	return nil
}

func (s *Store) GetResourceType(ctx context.Context, typeID id.ID) (*resource.Type, error) {
	m := new(resourceTypeModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", typeID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("resource type %s: %w", typeID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get resource type: %w", err)
	}
	return resourceTypeFromModel(m), nil
}

func (s *Store) CreateProvider(ctx context.Context, p *resource.Provider) error {
	m := providerToModel(p)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return writeErr("create provider", err)
	}
	return nil
}

func (s *Store) GetProvider(ctx context.Context, providerID id.ID) (*resource.Provider, error) {
	m := new(providerModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", providerID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("provider %s: %w", providerID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get provider: %w", err)
	}
	return providerFromModel(m), nil
}

func (s *Store) LinkPackageResource(ctx context.Context, packageID, resourceID id.ID) error {
	m := &packageResourceModel{
		PackageID:  packageID.String(),
		ResourceID: resourceID.String(),
	}
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return writeErr("link package resource", err)
	}
	return nil
}

func (s *Store) UnlinkPackageResource(ctx context.Context, packageID, resourceID id.ID) error {
	res, err := s.pgdb.NewDelete((*packageResourceModel)(nil)).
		Where("package_id = ?", packageID.String()).
		Where("resource_id = ?", resourceID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("accessgraph: unlink package resource: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("package resource link: %w", store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListPackageResources(ctx context.Context, packageID id.ID) ([]*resource.Resource, error) {
	var models []resourceModel
	err := s.pgdb.NewSelect(&models).
		Join("JOIN", "accessgraph_package_resources AS pr", "pr.resource_id = accessgraph_resources.id").
		Where("pr.package_id = ?", packageID.String()).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("accessgraph: list package resources: %w", err)
	}
	result := make([]*resource.Resource, len(models))
	for i := range models {
		result[i] = resourceFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListResourcePackages(ctx context.Context, resourceID id.ID) ([]id.ID, error) {
	var models []packageResourceModel
	err := s.pgdb.NewSelect(&models).
		Where("resource_id = ?", resourceID.String()).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("accessgraph: list resource packages: %w", err)
	}
	result := make([]id.ID, 0, len(models))
	for _, m := range models {
		pid := parseID(m.PackageID)
		if !pid.IsNil() {
			result = append(result, pid)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Assignment operations
// ──────────────────────────────────────────────────

func (s *Store) CreateAssignment(ctx context.Context, a *assignment.Assignment) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	m := assignmentToModel(a)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return writeErr("create assignment", err)
	}
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, assignmentID id.ID) (*assignment.Assignment, error) {
	m := new(assignmentModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", assignmentID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("assignment %s: %w", assignmentID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get assignment: %w", err)
	}
	return assignmentFromModel(m), nil
}

func (s *Store) GetAssignmentByEdge(ctx context.Context, fromID, toID, roleID id.ID) (*assignment.Assignment, error) {
	m := new(assignmentModel)
	err := s.pgdb.NewSelect(m).
		Where("from_id = ?", fromID.String()).
		Where("to_id = ?", toID.String()).
		Where("role_id = ?", roleID.String()).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("assignment edge: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get assignment by edge: %w", err)
	}
	return assignmentFromModel(m), nil
}

func (s *Store) DeleteAssignment(ctx context.Context, assignmentID id.ID) error {
	_, err := s.pgdb.NewDelete((*assignmentModel)(nil)).
		Where("id = ?", assignmentID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("accessgraph: delete assignment: %w", err)
	}
	// Attachments cascade in the schema.
	return nil
}

func (s *Store) ListAssignments(ctx context.Context, filter *assignment.ListFilter) ([]*assignment.Assignment, error) {
	var models []assignmentModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.FromID != nil {
			q = q.Where("from_id = ?", filter.FromID.String())
		}
		if filter.ToID != nil {
			q = q.Where("to_id = ?", filter.ToID.String())
		}
		if filter.RoleID != nil {
			q = q.Where("role_id = ?", filter.RoleID.String())
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("accessgraph: list assignments: %w", err)
	}
	result := make([]*assignment.Assignment, len(models))
	for i := range models {
		result[i] = assignmentFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) AddAssignmentPackage(ctx context.Context, ap *assignment.Package) error {
	if ap.CreatedAt.IsZero() {
		ap.CreatedAt = time.Now().UTC()
	}
	m := assignmentPackageToModel(ap)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return writeErr("add assignment package", err)
	}
	return nil
}

func (s *Store) RemoveAssignmentPackage(ctx context.Context, assignmentID, packageID id.ID) error {
	res, err := s.pgdb.NewDelete((*assignmentPackageModel)(nil)).
		Where("assignment_id = ?", assignmentID.String()).
		Where("package_id = ?", packageID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("accessgraph: remove assignment package: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("assignment package: %w", store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListAssignmentPackages(ctx context.Context, assignmentID id.ID) ([]*assignment.Package, error) {
	var models []assignmentPackageModel
	err := s.pgdb.NewSelect(&models).
		Where("assignment_id = ?", assignmentID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("accessgraph: list assignment packages: %w", err)
	}
	result := make([]*assignment.Package, len(models))
	for i := range models {
		result[i] = assignmentPackageFromModel(&models[i])
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Delegation operations
// ──────────────────────────────────────────────────

func (s *Store) CreateDelegation(ctx context.Context, d *delegation.Delegation) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	m := delegationToModel(d)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return writeErr("create delegation", err)
	}
	return nil
}

func (s *Store) GetDelegation(ctx context.Context, delegationID id.ID) (*delegation.Delegation, error) {
	m := new(delegationModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", delegationID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("delegation %s: %w", delegationID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get delegation: %w", err)
	}
	return delegationFromModel(m), nil
}

func (s *Store) DeleteDelegation(ctx context.Context, delegationID id.ID) error {
	_, err := s.pgdb.NewDelete((*delegationModel)(nil)).
		Where("id = ?", delegationID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("accessgraph: delete delegation: %w", err)
	}
	return nil
}

func (s *Store) ListDelegations(ctx context.Context, filter *delegation.ListFilter) ([]*delegation.Delegation, error) {
	var models []delegationModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.FromID != nil {
			q = q.Where("from_id = ?", filter.FromID.String())
		}
		if filter.ToID != nil {
			q = q.Where("to_id = ?", filter.ToID.String())
		}
		if filter.FacilitatorID != nil {
			q = q.Where("facilitator_id = ?", filter.FacilitatorID.String())
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("accessgraph: list delegations: %w", err)
	}
	result := make([]*delegation.Delegation, len(models))
	for i := range models {
		result[i] = delegationFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListDelegationsForAssignment(ctx context.Context, assignmentID id.ID) ([]*delegation.Delegation, error) {
	var models []delegationModel
	err := s.pgdb.NewSelect(&models).
		Where("from_id = ? OR to_id = ?", assignmentID.String(), assignmentID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("accessgraph: list delegations for assignment: %w", err)
	}
	result := make([]*delegation.Delegation, len(models))
	for i := range models {
		result[i] = delegationFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) AddDelegationPackage(ctx context.Context, dp *delegation.Package) error {
	if dp.CreatedAt.IsZero() {
		dp.CreatedAt = time.Now().UTC()
	}
	m := delegationPackageToModel(dp)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return writeErr("add delegation package", err)
	}
	return nil
}

func (s *Store) RemoveDelegationPackage(ctx context.Context, delegationID, packageID id.ID) error {
	res, err := s.pgdb.NewDelete((*delegationPackageModel)(nil)).
		Where("delegation_id = ?", delegationID.String()).
		Where("package_id = ?", packageID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("accessgraph: remove delegation package: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delegation package: %w", store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListDelegationPackages(ctx context.Context, delegationID id.ID) ([]*delegation.Package, error) {
	var models []delegationPackageModel
	err := s.pgdb.NewSelect(&models).
		Where("delegation_id = ?", delegationID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("accessgraph: list delegation packages: %w", err)
	}
	result := make([]*delegation.Package, len(models))
	for i := range models {
		result[i] = delegationPackageFromModel(&models[i])
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Decision log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateDecisionLog(ctx context.Context, e *decisionlog.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m := decisionLogToModel(e)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return writeErr("create decision log", err)
	}
	return nil
}

func (s *Store) GetDecisionLog(ctx context.Context, logID id.ID) (*decisionlog.Entry, error) {
	m := new(decisionLogModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", logID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("decision log %s: %w", logID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("accessgraph: get decision log: %w", err)
	}
	return decisionLogFromModel(m), nil
}

func (s *Store) ListDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	var models []decisionLogModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at DESC")
	if filter != nil {
		if filter.PartyID != nil {
			q = q.Where("party_id = ?", filter.PartyID.String())
		}
		if filter.ActorID != nil {
			q = q.Where("actor_id = ?", filter.ActorID.String())
		}
		if filter.Kind != "" {
			q = q.Where("kind = ?", filter.Kind)
		}
		if filter.Ref != "" {
			q = q.Where("ref = ?", filter.Ref)
		}
		if filter.Decision != "" {
			q = q.Where("decision = ?", filter.Decision)
		}
		if filter.After != nil {
			q = q.Where("created_at >= ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at <= ?", *filter.Before)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("accessgraph: list decision logs: %w", err)
	}
	result := make([]*decisionlog.Entry, len(models))
	for i := range models {
		result[i] = decisionLogFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) PurgeDecisionLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.pgdb.NewDelete((*decisionLogModel)(nil)).
		Where("created_at < ?", before).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("accessgraph: purge decision logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("accessgraph: purge decision logs rows: %w", err)
	}
	return n, nil
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
