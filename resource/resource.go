// Package resource defines the external protected Resource entity and its
// provider/type reference data.
package resource

import (
	"time"

	"github.com/digdir/accessgraph/id"
)

// AccessListMode gates delegation of a resource to pre-approved parties.
type AccessListMode string

const (
	// AccessListDisabled means the resource is delegable to anyone the
	// policy allows.
	AccessListDisabled AccessListMode = "Disabled"

	// AccessListEnabled restricts delegation to parties on the resource's
	// access list. Only organization parties are subject to the gate.
	AccessListEnabled AccessListMode = "Enabled"
)

// Resource is an external protected object registered by a provider.
type Resource struct {
	ID             id.ID          `json:"id" db:"id"`
	RefID          string         `json:"ref_id" db:"ref_id"` // registry resource id, e.g. "app_skd_skattemelding"
	TypeID         id.ID          `json:"type_id" db:"type_id"`
	ProviderID     id.ID          `json:"provider_id" db:"provider_id"`
	Name           string         `json:"name" db:"name"`
	Delegable      bool           `json:"delegable" db:"delegable"`
	AccessListMode AccessListMode `json:"access_list_mode" db:"access_list_mode"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// Type classifies resources (generic, app, maskinporten schema, ...).
type Type struct {
	ID   id.ID  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Provider is the service owner that registered a resource.
type Provider struct {
	ID     id.ID  `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	OrgRef string `json:"org_ref,omitempty" db:"org_ref"`
}

// Extended is a resource joined with its provider and type, the shape the
// read-side lookup collaborator returns.
type Extended struct {
	Resource
	Provider *Provider `json:"provider,omitempty"`
	Type     *Type     `json:"type,omitempty"`
}

// PackageLink ties a resource into an access package (many-to-many).
type PackageLink struct {
	PackageID  id.ID `json:"package_id" db:"package_id"`
	ResourceID id.ID `json:"resource_id" db:"resource_id"`
}

// ListFilter contains filters for listing resources.
type ListFilter struct {
	TypeID     *id.ID `json:"type_id,omitempty"`
	ProviderID *id.ID `json:"provider_id,omitempty"`
	RefID      string `json:"ref_id,omitempty"`
	Search     string `json:"search,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}
