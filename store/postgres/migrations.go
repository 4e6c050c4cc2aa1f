package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Schema DDL, one statement block per migration. Shared with the schema
// integration test, which applies the same statements over a plain
// connection.
const (
	ddlEntityTypes = `
CREATE TABLE IF NOT EXISTS accessgraph_entity_types (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_entity_types_name ON accessgraph_entity_types (LOWER(name));
`

	ddlEntityVariants = `
CREATE TABLE IF NOT EXISTS accessgraph_entity_variants (
    id              TEXT PRIMARY KEY,
    type_id         TEXT NOT NULL REFERENCES accessgraph_entity_types(id),
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_entity_variants_type ON accessgraph_entity_variants (type_id);
`

	ddlEntities = `
CREATE TABLE IF NOT EXISTS accessgraph_entities (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    type_id         TEXT NOT NULL REFERENCES accessgraph_entity_types(id),
    variant_id      TEXT NOT NULL DEFAULT '',
    ref_id          TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL,
    UNIQUE (name, type_id, ref_id)
);
CREATE INDEX IF NOT EXISTS idx_entities_ref ON accessgraph_entities (type_id, ref_id);
`

	ddlRoles = `
CREATE TABLE IF NOT EXISTS accessgraph_roles (
    id              TEXT PRIMARY KEY,
    entity_type_id  TEXT NOT NULL,
    code            TEXT NOT NULL,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    urn             TEXT NOT NULL UNIQUE,
    is_key_role     BOOLEAN NOT NULL DEFAULT FALSE,
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_roles_type_code ON accessgraph_roles (entity_type_id, LOWER(code));
`

	ddlAreas = `
CREATE TABLE IF NOT EXISTS accessgraph_areas (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    icon_urn        TEXT NOT NULL DEFAULT ''
);
`

	ddlPackages = `
CREATE TABLE IF NOT EXISTS accessgraph_packages (
    id              TEXT PRIMARY KEY,
    area_id         TEXT NOT NULL DEFAULT '',
    entity_type_id  TEXT NOT NULL DEFAULT '',
    name            TEXT NOT NULL,
    urn             TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    is_assignable   BOOLEAN NOT NULL DEFAULT FALSE,
    is_delegable    BOOLEAN NOT NULL DEFAULT FALSE,
    has_resources   BOOLEAN NOT NULL DEFAULT FALSE,
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_packages_urn ON accessgraph_packages (LOWER(urn));
CREATE INDEX IF NOT EXISTS idx_packages_area ON accessgraph_packages (area_id);
`

	ddlRolePackages = `
CREATE TABLE IF NOT EXISTS accessgraph_role_packages (
    role_id         TEXT NOT NULL REFERENCES accessgraph_roles(id) ON DELETE CASCADE,
    package_id      TEXT NOT NULL REFERENCES accessgraph_packages(id) ON DELETE CASCADE,
    has_access      BOOLEAN NOT NULL DEFAULT FALSE,
    can_delegate    BOOLEAN NOT NULL DEFAULT FALSE,
    PRIMARY KEY (role_id, package_id)
);
CREATE INDEX IF NOT EXISTS idx_role_packages_package ON accessgraph_role_packages (package_id);
`

	ddlResources = `
CREATE TABLE IF NOT EXISTS accessgraph_resource_types (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS accessgraph_providers (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    org_ref         TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS accessgraph_resources (
    id               TEXT PRIMARY KEY,
    ref_id           TEXT NOT NULL UNIQUE,
    type_id          TEXT NOT NULL DEFAULT '',
    provider_id      TEXT NOT NULL DEFAULT '',
    name             TEXT NOT NULL,
    delegable        BOOLEAN NOT NULL DEFAULT FALSE,
    access_list_mode TEXT NOT NULL DEFAULT 'Disabled',
    created_at       TIMESTAMPTZ NOT NULL,
    updated_at       TIMESTAMPTZ NOT NULL
);
`

	ddlPackageResources = `
CREATE TABLE IF NOT EXISTS accessgraph_package_resources (
    package_id      TEXT NOT NULL REFERENCES accessgraph_packages(id) ON DELETE CASCADE,
    resource_id     TEXT NOT NULL REFERENCES accessgraph_resources(id) ON DELETE CASCADE,
    PRIMARY KEY (package_id, resource_id)
);
CREATE INDEX IF NOT EXISTS idx_package_resources_resource ON accessgraph_package_resources (resource_id);
`

	ddlAssignments = `
CREATE TABLE IF NOT EXISTS accessgraph_assignments (
    id              TEXT PRIMARY KEY,
    from_id         TEXT NOT NULL REFERENCES accessgraph_entities(id),
    to_id           TEXT NOT NULL REFERENCES accessgraph_entities(id),
    role_id         TEXT NOT NULL REFERENCES accessgraph_roles(id),
    granted_by      TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL,
    UNIQUE (from_id, to_id, role_id)
);
CREATE INDEX IF NOT EXISTS idx_assignments_from ON accessgraph_assignments (from_id);
CREATE INDEX IF NOT EXISTS idx_assignments_to ON accessgraph_assignments (to_id);
`

	ddlAssignmentPackages = `
CREATE TABLE IF NOT EXISTS accessgraph_assignment_packages (
    id              TEXT PRIMARY KEY,
    assignment_id   TEXT NOT NULL REFERENCES accessgraph_assignments(id) ON DELETE CASCADE,
    package_id      TEXT NOT NULL REFERENCES accessgraph_packages(id),
    created_at      TIMESTAMPTZ NOT NULL,
    UNIQUE (assignment_id, package_id)
);
`

	ddlDelegations = `
CREATE TABLE IF NOT EXISTS accessgraph_delegations (
    id              TEXT PRIMARY KEY,
    from_id         TEXT NOT NULL REFERENCES accessgraph_assignments(id),
    to_id           TEXT NOT NULL REFERENCES accessgraph_assignments(id),
    facilitator_id  TEXT NOT NULL REFERENCES accessgraph_entities(id),
    created_at      TIMESTAMPTZ NOT NULL,
    UNIQUE (from_id, to_id)
);
CREATE INDEX IF NOT EXISTS idx_delegations_facilitator ON accessgraph_delegations (facilitator_id);
`

	ddlDelegationPackages = `
CREATE TABLE IF NOT EXISTS accessgraph_delegation_packages (
    id              TEXT PRIMARY KEY,
    delegation_id   TEXT NOT NULL REFERENCES accessgraph_delegations(id) ON DELETE CASCADE,
    package_id      TEXT NOT NULL REFERENCES accessgraph_packages(id),
    created_at      TIMESTAMPTZ NOT NULL,
    UNIQUE (delegation_id, package_id)
);
`

	ddlDecisionLogs = `
CREATE TABLE IF NOT EXISTS accessgraph_decision_logs (
    id              TEXT PRIMARY KEY,
    party_id        TEXT NOT NULL,
    actor_id        TEXT NOT NULL,
    kind            TEXT NOT NULL,
    ref             TEXT NOT NULL,
    decision        TEXT NOT NULL,
    reason          TEXT NOT NULL DEFAULT '',
    eval_time_ns    BIGINT NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decision_logs_party ON accessgraph_decision_logs (party_id, created_at DESC);
`
)

// schemaDDL lists the Up statements in dependency order.
var schemaDDL = []string{
	ddlEntityTypes,
	ddlEntityVariants,
	ddlEntities,
	ddlRoles,
	ddlAreas,
	ddlPackages,
	ddlRolePackages,
	ddlResources,
	ddlPackageResources,
	ddlAssignments,
	ddlAssignmentPackages,
	ddlDelegations,
	ddlDelegationPackages,
	ddlDecisionLogs,
}

// Migrations is the grove migration group for the accessgraph store.
var Migrations = migrate.NewGroup("accessgraph")

func up(ddl string) func(ctx context.Context, exec migrate.Executor) error {
	return func(ctx context.Context, exec migrate.Executor) error {
		_, err := exec.Exec(ctx, ddl)
		return err
	}
}

func down(sql string) func(ctx context.Context, exec migrate.Executor) error {
	return func(ctx context.Context, exec migrate.Executor) error {
		_, err := exec.Exec(ctx, sql)
		return err
	}
}

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_entity_types",
			Version: "20240101000001",
			Up:      up(ddlEntityTypes),
			Down:    down(`DROP TABLE IF EXISTS accessgraph_entity_types`),
		},
		&migrate.Migration{
			Name:    "create_entity_variants",
			Version: "20240101000002",
			Up:      up(ddlEntityVariants),
			Down:    down(`DROP TABLE IF EXISTS accessgraph_entity_variants`),
		},
		&migrate.Migration{
			Name:    "create_entities",
			Version: "20240101000003",
			Up:      up(ddlEntities),
			Down:    down(`DROP TABLE IF EXISTS accessgraph_entities`),
		},
		&migrate.Migration{
			Name:    "create_roles",
			Version: "20240101000004",
			Up:      up(ddlRoles),
			Down:    down(`DROP TABLE IF EXISTS accessgraph_roles`),
		},
		&migrate.Migration{
			Name:    "create_areas",
			Version: "20240101000005",
			Up:      up(ddlAreas),
			Down:    down(`DROP TABLE IF EXISTS accessgraph_areas`),
		},
		&migrate.Migration{
			Name:    "create_packages",
			Version: "20240101000006",
			Up:      up(ddlPackages),
			Down:    down(`DROP TABLE IF EXISTS accessgraph_packages`),
		},
		&migrate.Migration{
			Name:    "create_role_packages",
			Version: "20240101000007",
			Up:      up(ddlRolePackages),
			Down:    down(`DROP TABLE IF EXISTS accessgraph_role_packages`),
		},
		&migrate.Migration{
			Name:    "create_resources",
			Version: "20240101000008",
			Up:      up(ddlResources),
			Down: down(`
DROP TABLE IF EXISTS accessgraph_resources;
DROP TABLE IF EXISTS accessgraph_providers;
DROP TABLE IF EXISTS accessgraph_resource_types;
`),
		},
		&migrate.Migration{
			Name:    "create_package_resources",
			Version: "20240101000009",
			Up:      up(ddlPackageResources),
			Down:    down(`DROP TABLE IF EXISTS accessgraph_package_resources`),
		},
		&migrate.Migration{
			Name:    "create_assignments",
			Version: "20240101000010",
			Up:      up(ddlAssignments),
			Down:    down(`DROP TABLE IF EXISTS accessgraph_assignments`),
		},
		&migrate.Migration{
			Name:    "create_assignment_packages",
			Version: "20240101000011",
			Up:      up(ddlAssignmentPackages),
			Down:    down(`DROP TABLE IF EXISTS accessgraph_assignment_packages`),
		},
		&migrate.Migration{
			Name:    "create_delegations",
			Version: "20240101000012",
			Up:      up(ddlDelegations),
			Down:    down(`DROP TABLE IF EXISTS accessgraph_delegations`),
		},
		&migrate.Migration{
			Name:    "create_delegation_packages",
			Version: "20240101000013",
			Up:      up(ddlDelegationPackages),
			Down:    down(`DROP TABLE IF EXISTS accessgraph_delegation_packages`),
		},
		&migrate.Migration{
			Name:    "create_decision_logs",
			Version: "20240101000014",
			Up:      up(ddlDecisionLogs),
			Down:    down(`DROP TABLE IF EXISTS accessgraph_decision_logs`),
		},
	)
}
