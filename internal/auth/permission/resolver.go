// Package permission resolves role sets to permission decisions using an
// immutable role to permission table.
package permission

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Roles known to the default table.
const (
	RoleKepalaKlinik = "kepala_klinik"
	RoleDokter       = "dokter"
	RoleStaf         = "staf"
)

// Permissions referenced by route guards.
const (
	PatientsView         = "patients:view"
	TreatmentsView       = "treatments:view"
	PaymentsCreate       = "payments:create"
	PaymentsUpdate       = "payments:update"
	MedicalRecordsCreate = "medical-records:create"
	MedicalRecordsUpdate = "medical-records:update"
	UsersView            = "users:view"
	UsersManage          = "users:manage"
)

//go:embed permissions.yaml
var defaultTableYAML []byte

// Table maps a role to the permissions it grants.
type Table map[string][]string

// DefaultTable returns the built-in clinic roles.
func DefaultTable() Table {
	table, err := parseTable(defaultTableYAML)
	if err != nil {
		panic(fmt.Sprintf("permission: embedded table: %v", err))
	}
	return table
}

// LoadTable parses a YAML table from r.
func LoadTable(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read permission table: %w", err)
	}
	return parseTable(data)
}

// LoadTableFile parses the YAML table at path. An empty path yields the
// default table.
func LoadTableFile(path string) (Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open permission table: %w", err)
	}
	defer f.Close()
	return LoadTable(f)
}

func parseTable(data []byte) (Table, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse permission table: %w", err)
	}
	for role, perms := range table {
		if strings.TrimSpace(role) == "" {
			return nil, fmt.Errorf("parse permission table: empty role name")
		}
		for _, p := range perms {
			if !strings.Contains(p, ":") {
				return nil, fmt.Errorf("parse permission table: role %s: permission %q must be resource:action", role, p)
			}
		}
	}
	return table, nil
}

// Resolver answers permission questions. It is read-only after construction
// and safe for concurrent use.
type Resolver struct {
	grants map[string]map[string]struct{}
}

// NewResolver copies table into a Resolver.
func NewResolver(table Table) *Resolver {
	grants := make(map[string]map[string]struct{}, len(table))
	for role, perms := range table {
		set := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		grants[role] = set
	}
	return &Resolver{grants: grants}
}

// HasRole reports whether role is defined in the table.
func (r *Resolver) HasRole(role string) bool {
	_, ok := r.grants[role]
	return ok
}

// HasPermission reports whether any of roles grants permission.
func (r *Resolver) HasPermission(roles []string, permission string) bool {
	for _, role := range roles {
		if _, ok := r.grants[role][permission]; ok {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether roles grant at least one of permissions.
func (r *Resolver) HasAnyPermission(roles []string, permissions []string) bool {
	for _, p := range permissions {
		if r.HasPermission(roles, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether roles grant every one of permissions.
// An empty permission list is never granted.
func (r *Resolver) HasAllPermissions(roles []string, permissions []string) bool {
	if len(roles) == 0 || len(permissions) == 0 {
		return false
	}
	for _, p := range permissions {
		if !r.HasPermission(roles, p) {
			return false
		}
	}
	return true
}

// Permissions returns the sorted union of permissions granted by roles.
func (r *Resolver) Permissions(roles []string) []string {
	seen := make(map[string]struct{})
	for _, role := range roles {
		for p := range r.grants[role] {
			seen[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
