// Package memory provides an in-memory implementation of the accessgraph
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

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

// Compile-time interface checks.
var (
	_ entity.Store        = (*Store)(nil)
	_ role.Store          = (*Store)(nil)
	_ accesspackage.Store = (*Store)(nil)
	_ resource.Store      = (*Store)(nil)
	_ assignment.Store    = (*Store)(nil)
	_ delegation.Store    = (*Store)(nil)
	_ decisionlog.Store   = (*Store)(nil)
	_ store.Store         = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all accessgraph entities.
type Store struct {
	mu sync.RWMutex

	entities       map[string]*entity.Entity
	entityTypes    map[string]*entity.Type
	entityVariants map[string]*entity.Variant

	roles        map[string]*role.Role
	rolePackages map[string]map[string]*role.Package // roleID -> packageID -> link

	packages map[string]*accesspackage.Package
	areas    map[string]*accesspackage.Area

	resources        map[string]*resource.Resource
	resourceTypes    map[string]*resource.Type
	providers        map[string]*resource.Provider
	packageResources map[string]map[string]struct{} // packageID -> set of resourceIDs

	assignments        map[string]*assignment.Assignment
	assignmentPackages map[string]*assignment.Package

	delegations        map[string]*delegation.Delegation
	delegationPackages map[string]*delegation.Package

	decisionLogs map[string]*decisionlog.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		entities:           make(map[string]*entity.Entity),
		entityTypes:        make(map[string]*entity.Type),
		entityVariants:     make(map[string]*entity.Variant),
		roles:              make(map[string]*role.Role),
		rolePackages:       make(map[string]map[string]*role.Package),
		packages:           make(map[string]*accesspackage.Package),
		areas:              make(map[string]*accesspackage.Area),
		resources:          make(map[string]*resource.Resource),
		resourceTypes:      make(map[string]*resource.Type),
		providers:          make(map[string]*resource.Provider),
		packageResources:   make(map[string]map[string]struct{}),
		assignments:        make(map[string]*assignment.Assignment),
		assignmentPackages: make(map[string]*assignment.Package),
		delegations:        make(map[string]*delegation.Delegation),
		delegationPackages: make(map[string]*delegation.Package),
		decisionLogs:       make(map[string]*decisionlog.Entry),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Entity Store
// ──────────────────────────────────────────────────

func (s *Store) CreateEntity(_ context.Context, e *entity.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.entities {
		if existing.Name == e.Name && existing.TypeID == e.TypeID && existing.RefID == e.RefID {
			return fmt.Errorf("entity (%s, %s): %w", e.Name, e.RefID, store.ErrDuplicate)
		}
	}
	s.entities[e.ID.String()] = copyEntity(e)
	return nil
}

func (s *Store) GetEntity(_ context.Context, entityID id.ID) (*entity.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[entityID.String()]
	if !ok {
		return nil, fmt.Errorf("entity %s: %w", entityID, store.ErrNotFound)
	}
	return copyEntity(e), nil
}

func (s *Store) GetEntityByRef(_ context.Context, typeID id.ID, refID string) (*entity.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entities {
		if e.TypeID == typeID && e.RefID == refID {
			return copyEntity(e), nil
		}
	}
	return nil, fmt.Errorf("entity ref %q: %w", refID, store.ErrNotFound)
}

func (s *Store) UpdateEntity(_ context.Context, e *entity.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[e.ID.String()]; !ok {
		return fmt.Errorf("entity %s: %w", e.ID, store.ErrNotFound)
	}
	s.entities[e.ID.String()] = copyEntity(e)
	return nil
}

func (s *Store) ListEntities(_ context.Context, filter *entity.ListFilter) ([]*entity.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*entity.Entity, 0, len(s.entities))
	for _, e := range s.entities {
		if filter != nil {
			if filter.TypeID != nil && e.TypeID != *filter.TypeID {
				continue
			}
			if filter.VariantID != nil && e.VariantID != *filter.VariantID {
				continue
			}
			if filter.RefID != "" && e.RefID != filter.RefID {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyEntity(e))
	}
	return applyPagination(result, entityPagination(filter)), nil
}

func (s *Store) CreateEntityType(_ context.Context, t *entity.Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.entityTypes {
		if strings.EqualFold(existing.Name, t.Name) {
			return fmt.Errorf("entity type %q: %w", t.Name, store.ErrDuplicate)
		}
	}
	s.entityTypes[t.ID.String()] = copyEntityType(t)
	return nil
}

func (s *Store) GetEntityType(_ context.Context, typeID id.ID) (*entity.Type, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.entityTypes[typeID.String()]
	if !ok {
		return nil, fmt.Errorf("entity type %s: %w", typeID, store.ErrNotFound)
	}
	return copyEntityType(t), nil
}

func (s *Store) GetEntityTypeByName(_ context.Context, name string) (*entity.Type, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.entityTypes {
		if strings.EqualFold(t.Name, name) {
			return copyEntityType(t), nil
		}
	}
	return nil, fmt.Errorf("entity type %q: %w", name, store.ErrNotFound)
}

func (s *Store) ListEntityTypes(_ context.Context) ([]*entity.Type, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*entity.Type, 0, len(s.entityTypes))
	for _, t := range s.entityTypes {
		result = append(result, copyEntityType(t))
	}
	return result, nil
}

func (s *Store) CreateEntityVariant(_ context.Context, v *entity.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entityVariants[v.ID.String()] = copyEntityVariant(v)
	return nil
}

func (s *Store) GetEntityVariant(_ context.Context, variantID id.ID) (*entity.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entityVariants[variantID.String()]
	if !ok {
		return nil, fmt.Errorf("entity variant %s: %w", variantID, store.ErrNotFound)
	}
	return copyEntityVariant(v), nil
}

func (s *Store) ListEntityVariants(_ context.Context, typeID id.ID) ([]*entity.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*entity.Variant
	for _, v := range s.entityVariants {
		if v.TypeID == typeID {
			result = append(result, copyEntityVariant(v))
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Role Store
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.roles {
		if existing.URN == r.URN {
			return fmt.Errorf("role urn %q: %w", r.URN, store.ErrDuplicate)
		}
		if existing.EntityTypeID == r.EntityTypeID && strings.EqualFold(existing.Code, r.Code) {
			return fmt.Errorf("role code %q: %w", r.Code, store.ErrDuplicate)
		}
	}
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) GetRole(_ context.Context, roleID id.ID) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[roleID.String()]
	if !ok {
		return nil, fmt.Errorf("role %s: %w", roleID, store.ErrNotFound)
	}
	return copyRole(r), nil
}

func (s *Store) GetRoleByURN(_ context.Context, urn string) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.URN == urn {
			return copyRole(r), nil
		}
	}
	return nil, fmt.Errorf("role urn %q: %w", urn, store.ErrNotFound)
}

func (s *Store) GetRoleByCode(_ context.Context, entityTypeID id.ID, code string) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.EntityTypeID == entityTypeID && strings.EqualFold(r.Code, code) {
			return copyRole(r), nil
		}
	}
	return nil, fmt.Errorf("role code %q: %w", code, store.ErrNotFound)
}

func (s *Store) UpdateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[r.ID.String()]; !ok {
		return fmt.Errorf("role %s: %w", r.ID, store.ErrNotFound)
	}
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) DeleteRole(_ context.Context, roleID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles, roleID.String())
	delete(s.rolePackages, roleID.String())
	return nil
}

func (s *Store) ListRoles(_ context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*role.Role, 0, len(s.roles))
	for _, r := range s.roles {
		if filter != nil {
			if filter.EntityTypeID != nil && r.EntityTypeID != *filter.EntityTypeID {
				continue
			}
			if filter.Code != "" && !strings.EqualFold(r.Code, filter.Code) {
				continue
			}
			if filter.KeyRolesOnly && !r.IsKeyRole {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyRole(r))
	}
	return applyPagination(result, rolePagination(filter)), nil
}

func (s *Store) AttachPackage(_ context.Context, rp *role.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rk := rp.RoleID.String()
	if s.rolePackages[rk] == nil {
		s.rolePackages[rk] = make(map[string]*role.Package)
	}
	s.rolePackages[rk][rp.PackageID.String()] = copyRolePackage(rp)
	return nil
}

func (s *Store) DetachPackage(_ context.Context, roleID, packageID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if links, ok := s.rolePackages[roleID.String()]; ok {
		delete(links, packageID.String())
	}
	return nil
}

func (s *Store) ListRolePackages(_ context.Context, roleID id.ID) ([]*role.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	links, ok := s.rolePackages[roleID.String()]
	if !ok {
		return nil, nil
	}
	result := make([]*role.Package, 0, len(links))
	for _, l := range links {
		result = append(result, copyRolePackage(l))
	}
	return result, nil
}

func (s *Store) ListPackageRoles(_ context.Context, packageID id.ID) ([]*role.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pk := packageID.String()
	var result []*role.Package
	for _, links := range s.rolePackages {
		if l, ok := links[pk]; ok {
			result = append(result, copyRolePackage(l))
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Access Package Store
// ──────────────────────────────────────────────────

func (s *Store) CreatePackage(_ context.Context, p *accesspackage.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.packages {
		if existing.URN == p.URN {
			return fmt.Errorf("package urn %q: %w", p.URN, store.ErrDuplicate)
		}
	}
	s.packages[p.ID.String()] = copyPackage(p)
	return nil
}

func (s *Store) GetPackage(_ context.Context, packageID id.ID) (*accesspackage.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.packages[packageID.String()]
	if !ok {
		return nil, fmt.Errorf("package %s: %w", packageID, store.ErrNotFound)
	}
	return copyPackage(p), nil
}

func (s *Store) GetPackageByURN(_ context.Context, urn string) (*accesspackage.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.packages {
		if strings.EqualFold(p.URN, urn) {
			return copyPackage(p), nil
		}
	}
	return nil, fmt.Errorf("package urn %q: %w", urn, store.ErrNotFound)
}

func (s *Store) UpdatePackage(_ context.Context, p *accesspackage.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.packages[p.ID.String()]; !ok {
		return fmt.Errorf("package %s: %w", p.ID, store.ErrNotFound)
	}
	s.packages[p.ID.String()] = copyPackage(p)
	return nil
}

func (s *Store) DeletePackage(_ context.Context, packageID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.packages, packageID.String())
	delete(s.packageResources, packageID.String())
	return nil
}

func (s *Store) ListPackages(_ context.Context, filter *accesspackage.ListFilter) ([]*accesspackage.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*accesspackage.Package, 0, len(s.packages))
	for _, p := range s.packages {
		if filter != nil {
			if filter.AreaID != nil && p.AreaID != *filter.AreaID {
				continue
			}
			if filter.EntityTypeID != nil && p.EntityTypeID != *filter.EntityTypeID {
				continue
			}
			if len(filter.Names) > 0 && !matchesAnyName(p, filter.Names) {
				continue
			}
			if len(filter.URNs) > 0 && !containsFold(filter.URNs, p.URN) {
				continue
			}
			if filter.AssignableOnly && !p.IsAssignable {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyPackage(p))
	}
	return applyPagination(result, packagePagination(filter)), nil
}

func (s *Store) CreateArea(_ context.Context, a *accesspackage.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.areas[a.ID.String()] = copyArea(a)
	return nil
}

func (s *Store) GetArea(_ context.Context, areaID id.ID) (*accesspackage.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.areas[areaID.String()]
	if !ok {
		return nil, fmt.Errorf("area %s: %w", areaID, store.ErrNotFound)
	}
	return copyArea(a), nil
}

func (s *Store) ListAreas(_ context.Context) ([]*accesspackage.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*accesspackage.Area, 0, len(s.areas))
	for _, a := range s.areas {
		result = append(result, copyArea(a))
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Resource Store
// ──────────────────────────────────────────────────

func (s *Store) CreateResource(_ context.Context, r *resource.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.resources {
		if existing.RefID == r.RefID {
			return fmt.Errorf("resource ref %q: %w", r.RefID, store.ErrDuplicate)
		}
	}
	s.resources[r.ID.String()] = copyResource(r)
	return nil
}

func (s *Store) GetResource(_ context.Context, resourceID id.ID) (*resource.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.resources[resourceID.String()]
	if !ok {
		return nil, fmt.Errorf("resource %s: %w", resourceID, store.ErrNotFound)
	}
	return copyResource(r), nil
}

func (s *Store) GetResourceByRef(_ context.Context, refID string) (*resource.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.resources {
		if r.RefID == refID {
			return copyResource(r), nil
		}
	}
	return nil, fmt.Errorf("resource ref %q: %w", refID, store.ErrNotFound)
}

func (s *Store) GetResourceExtended(ctx context.Context, resourceID id.ID) (*resource.Extended, error) {
	r, err := s.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	ext := &resource.Extended{Resource: *r}
	if p, ok := s.providers[r.ProviderID.String()]; ok {
		ext.Provider = copyProvider(p)
	}
	if t, ok := s.resourceTypes[r.TypeID.String()]; ok {
		ext.Type = copyResourceType(t)
	}
	return ext, nil
}

func (s *Store) UpdateResource(_ context.Context, r *resource.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resources[r.ID.String()]; !ok {
		return fmt.Errorf("resource %s: %w", r.ID, store.ErrNotFound)
	}
	s.resources[r.ID.String()] = copyResource(r)
	return nil
}

func (s *Store) DeleteResource(_ context.Context, resourceID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.resources, resourceID.String())
	for _, set := range s.packageResources {
		delete(set, resourceID.String())
	}
	return nil
}

func (s *Store) ListResources(_ context.Context, filter *resource.ListFilter) ([]*resource.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*resource.Resource, 0, len(s.resources))
	for _, r := range s.resources {
		if filter != nil {
			if filter.TypeID != nil && r.TypeID != *filter.TypeID {
				continue
			}
			if filter.ProviderID != nil && r.ProviderID != *filter.ProviderID {
				continue
			}
			if filter.RefID != "" && r.RefID != filter.RefID {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyResource(r))
	}
	return applyPagination(result, resourcePagination(filter)), nil
}

func (s *Store) CreateResourceType(_ context.Context, t *resource.Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resourceTypes[t.ID.String()] = copyResourceType(t)
	return nil
}

func (s *Store) GetResourceType(_ context.Context, typeID id.ID) (*resource.Type, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.resourceTypes[typeID.String()]
	if !ok {
		return nil, fmt.Errorf("resource type %s: %w", typeID, store.ErrNotFound)
	}
	return copyResourceType(t), nil
}

func (s *Store) CreateProvider(_ context.Context, p *resource.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[p.ID.String()] = copyProvider(p)
	return nil
}

func (s *Store) GetProvider(_ context.Context, providerID id.ID) (*resource.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[providerID.String()]
	if !ok {
		return nil, fmt.Errorf("provider %s: %w", providerID, store.ErrNotFound)
	}
	return copyProvider(p), nil
}

func (s *Store) LinkPackageResource(_ context.Context, packageID, resourceID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pk := packageID.String()
	if s.packageResources[pk] == nil {
		s.packageResources[pk] = make(map[string]struct{})
	}
	s.packageResources[pk][resourceID.String()] = struct{}{}
	return nil
}

func (s *Store) UnlinkPackageResource(_ context.Context, packageID, resourceID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.packageResources[packageID.String()]; ok {
		delete(set, resourceID.String())
	}
	return nil
}

func (s *Store) ListPackageResources(_ context.Context, packageID id.ID) ([]*resource.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.packageResources[packageID.String()]
	if !ok {
		return nil, nil
	}
	result := make([]*resource.Resource, 0, len(set))
	for rid := range set {
		if r, ok := s.resources[rid]; ok {
			result = append(result, copyResource(r))
		}
	}
	return result, nil
}

func (s *Store) ListResourcePackages(_ context.Context, resourceID id.ID) ([]id.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rk := resourceID.String()
	var result []id.ID
	for pk, set := range s.packageResources {
		if _, ok := set[rk]; !ok {
			continue
		}
		parsed, err := id.Parse(pk)
		if err == nil {
			result = append(result, parsed)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Assignment Store
// ──────────────────────────────────────────────────

func (s *Store) CreateAssignment(_ context.Context, a *assignment.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.assignments {
		if existing.FromID == a.FromID && existing.ToID == a.ToID && existing.RoleID == a.RoleID {
			return fmt.Errorf("assignment edge (%s, %s, %s): %w", a.FromID, a.ToID, a.RoleID, store.ErrDuplicate)
		}
	}
	s.assignments[a.ID.String()] = copyAssignment(a)
	return nil
}

func (s *Store) GetAssignment(_ context.Context, assignmentID id.ID) (*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[assignmentID.String()]
	if !ok {
		return nil, fmt.Errorf("assignment %s: %w", assignmentID, store.ErrNotFound)
	}
	return copyAssignment(a), nil
}

func (s *Store) GetAssignmentByEdge(_ context.Context, fromID, toID, roleID id.ID) (*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assignments {
		if a.FromID == fromID && a.ToID == toID && a.RoleID == roleID {
			return copyAssignment(a), nil
		}
	}
	return nil, fmt.Errorf("assignment edge (%s, %s, %s): %w", fromID, toID, roleID, store.ErrNotFound)
}

func (s *Store) DeleteAssignment(_ context.Context, assignmentID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assignments, assignmentID.String())
	for k, ap := range s.assignmentPackages {
		if ap.AssignmentID == assignmentID {
			delete(s.assignmentPackages, k)
		}
	}
	return nil
}

func (s *Store) ListAssignments(_ context.Context, filter *assignment.ListFilter) ([]*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*assignment.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		if filter != nil {
			if filter.FromID != nil && a.FromID != *filter.FromID {
				continue
			}
			if filter.ToID != nil && a.ToID != *filter.ToID {
				continue
			}
			if filter.RoleID != nil && a.RoleID != *filter.RoleID {
				continue
			}
		}
		result = append(result, copyAssignment(a))
	}
	return applyPagination(result, assignmentPagination(filter)), nil
}

func (s *Store) AddAssignmentPackage(_ context.Context, ap *assignment.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.assignmentPackages {
		if existing.AssignmentID == ap.AssignmentID && existing.PackageID == ap.PackageID {
			return fmt.Errorf("assignment package (%s, %s): %w", ap.AssignmentID, ap.PackageID, store.ErrDuplicate)
		}
	}
	s.assignmentPackages[ap.ID.String()] = copyAssignmentPackage(ap)
	return nil
}

func (s *Store) RemoveAssignmentPackage(_ context.Context, assignmentID, packageID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, ap := range s.assignmentPackages {
		if ap.AssignmentID == assignmentID && ap.PackageID == packageID {
			delete(s.assignmentPackages, k)
			return nil
		}
	}
	return fmt.Errorf("assignment package (%s, %s): %w", assignmentID, packageID, store.ErrNotFound)
}

func (s *Store) ListAssignmentPackages(_ context.Context, assignmentID id.ID) ([]*assignment.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*assignment.Package
	for _, ap := range s.assignmentPackages {
		if ap.AssignmentID == assignmentID {
			result = append(result, copyAssignmentPackage(ap))
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Delegation Store
// ──────────────────────────────────────────────────

func (s *Store) CreateDelegation(_ context.Context, d *delegation.Delegation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.delegations {
		if existing.FromID == d.FromID && existing.ToID == d.ToID {
			return fmt.Errorf("delegation (%s, %s): %w", d.FromID, d.ToID, store.ErrDuplicate)
		}
	}
	s.delegations[d.ID.String()] = copyDelegation(d)
	return nil
}

func (s *Store) GetDelegation(_ context.Context, delegationID id.ID) (*delegation.Delegation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.delegations[delegationID.String()]
	if !ok {
		return nil, fmt.Errorf("delegation %s: %w", delegationID, store.ErrNotFound)
	}
	return copyDelegation(d), nil
}

func (s *Store) DeleteDelegation(_ context.Context, delegationID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.delegations, delegationID.String())
	for k, dp := range s.delegationPackages {
		if dp.DelegationID == delegationID {
			delete(s.delegationPackages, k)
		}
	}
	return nil
}

func (s *Store) ListDelegations(_ context.Context, filter *delegation.ListFilter) ([]*delegation.Delegation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*delegation.Delegation, 0, len(s.delegations))
	for _, d := range s.delegations {
		if filter != nil {
			if filter.FromID != nil && d.FromID != *filter.FromID {
				continue
			}
			if filter.ToID != nil && d.ToID != *filter.ToID {
				continue
			}
			if filter.FacilitatorID != nil && d.FacilitatorID != *filter.FacilitatorID {
				continue
			}
		}
		result = append(result, copyDelegation(d))
	}
	return applyPagination(result, delegationPagination(filter)), nil
}

func (s *Store) ListDelegationsForAssignment(_ context.Context, assignmentID id.ID) ([]*delegation.Delegation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*delegation.Delegation
	for _, d := range s.delegations {
		if d.FromID == assignmentID || d.ToID == assignmentID {
			result = append(result, copyDelegation(d))
		}
	}
	return result, nil
}

func (s *Store) AddDelegationPackage(_ context.Context, dp *delegation.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.delegationPackages {
		if existing.DelegationID == dp.DelegationID && existing.PackageID == dp.PackageID {
			return fmt.Errorf("delegation package (%s, %s): %w", dp.DelegationID, dp.PackageID, store.ErrDuplicate)
		}
	}
	s.delegationPackages[dp.ID.String()] = copyDelegationPackage(dp)
	return nil
}

func (s *Store) RemoveDelegationPackage(_ context.Context, delegationID, packageID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, dp := range s.delegationPackages {
		if dp.DelegationID == delegationID && dp.PackageID == packageID {
			delete(s.delegationPackages, k)
			return nil
		}
	}
	return fmt.Errorf("delegation package (%s, %s): %w", delegationID, packageID, store.ErrNotFound)
}

func (s *Store) ListDelegationPackages(_ context.Context, delegationID id.ID) ([]*delegation.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*delegation.Package
	for _, dp := range s.delegationPackages {
		if dp.DelegationID == delegationID {
			result = append(result, copyDelegationPackage(dp))
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Decision Log Store
// ──────────────────────────────────────────────────

func (s *Store) CreateDecisionLog(_ context.Context, e *decisionlog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisionLogs[e.ID.String()] = copyDecisionLog(e)
	return nil
}

func (s *Store) GetDecisionLog(_ context.Context, logID id.ID) (*decisionlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.decisionLogs[logID.String()]
	if !ok {
		return nil, fmt.Errorf("decision log %s: %w", logID, store.ErrNotFound)
	}
	return copyDecisionLog(e), nil
}

func (s *Store) ListDecisionLogs(_ context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*decisionlog.Entry, 0, len(s.decisionLogs))
	for _, e := range s.decisionLogs {
		if filter != nil {
			if filter.PartyID != nil && e.PartyID != *filter.PartyID {
				continue
			}
			if filter.ActorID != nil && e.ActorID != *filter.ActorID {
				continue
			}
			if filter.Kind != "" && e.Kind != filter.Kind {
				continue
			}
			if filter.Ref != "" && e.Ref != filter.Ref {
				continue
			}
			if filter.Decision != "" && e.Decision != filter.Decision {
				continue
			}
			if filter.After != nil && !e.CreatedAt.After(*filter.After) {
				continue
			}
			if filter.Before != nil && !e.CreatedAt.Before(*filter.Before) {
				continue
			}
		}
		result = append(result, copyDecisionLog(e))
	}
	return applyPagination(result, decisionLogPagination(filter)), nil
}

func (s *Store) PurgeDecisionLogs(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for k, e := range s.decisionLogs {
		if e.CreatedAt.Before(before) {
			delete(s.decisionLogs, k)
			purged++
		}
	}
	return purged, nil
}

// ──────────────────────────────────────────────────
// Copy helpers. The store never shares pointers with callers.
// ──────────────────────────────────────────────────

func copyEntity(e *entity.Entity) *entity.Entity {
	c := *e
	return &c
}

func copyEntityType(t *entity.Type) *entity.Type {
	c := *t
	return &c
}

func copyEntityVariant(v *entity.Variant) *entity.Variant {
	c := *v
	return &c
}

func copyRole(r *role.Role) *role.Role {
	c := *r
	return &c
}

func copyRolePackage(rp *role.Package) *role.Package {
	c := *rp
	return &c
}

func copyPackage(p *accesspackage.Package) *accesspackage.Package {
	c := *p
	return &c
}

func copyArea(a *accesspackage.Area) *accesspackage.Area {
	c := *a
	return &c
}

func copyResource(r *resource.Resource) *resource.Resource {
	c := *r
	return &c
}

func copyResourceType(t *resource.Type) *resource.Type {
	c := *t
	return &c
}

func copyProvider(p *resource.Provider) *resource.Provider {
	c := *p
	return &c
}

func copyAssignment(a *assignment.Assignment) *assignment.Assignment {
	c := *a
	return &c
}

func copyAssignmentPackage(ap *assignment.Package) *assignment.Package {
	c := *ap
	return &c
}

func copyDelegation(d *delegation.Delegation) *delegation.Delegation {
	c := *d
	return &c
}

func copyDelegationPackage(dp *delegation.Package) *delegation.Package {
	c := *dp
	return &c
}

func copyDecisionLog(e *decisionlog.Entry) *decisionlog.Entry {
	c := *e
	return &c
}

// matchesAnyName matches a package by display name or URN, case-insensitive.
func matchesAnyName(p *accesspackage.Package, names []string) bool {
	for _, name := range names {
		if strings.EqualFold(p.Name, name) || strings.EqualFold(p.URN, name) {
			return true
		}
	}
	return false
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

// Pagination helpers for each entity type.
type pagOpts struct{ limit, offset int }

func applyPagination[T any](items []*T, p pagOpts) []*T {
	if p.offset > 0 && p.offset < len(items) {
		items = items[p.offset:]
	} else if p.offset > 0 {
		return nil
	}
	if p.limit > 0 && p.limit < len(items) {
		items = items[:p.limit]
	}
	return items
}

func entityPagination(f *entity.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func rolePagination(f *role.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func packagePagination(f *accesspackage.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func resourcePagination(f *resource.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func assignmentPagination(f *assignment.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func delegationPagination(f *delegation.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func decisionLogPagination(f *decisionlog.QueryFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}
