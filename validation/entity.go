package validation

import (
	"fmt"
	"strings"

	"github.com/digdir/accessgraph/entity"
)

// EntityExists fails with EntityNotExists when the looked-up entity is absent.
func EntityExists(e *entity.Entity, param string) Rule {
	mustParam(param)
	return func() Failure {
		if e != nil {
			return nil
		}
		return fail(CodeEntityNotExists, param, "entity does not exist")
	}
}

// IsOfType fails with DisallowedEntityType unless the entity type's name is
// in the allowed set. The detail names both the allowed set and the type
// actually found.
func IsOfType(et *entity.Type, allowed []string, param string) Rule {
	mustParam(param)
	return func() Failure {
		found := "<none>"
		if et != nil {
			found = et.Name
			for _, name := range allowed {
				if strings.EqualFold(name, et.Name) {
					return nil
				}
			}
		}
		detail := fmt.Sprintf("entity type must be one of [%s], found %s",
			strings.Join(allowed, ", "), found)
		return fail(CodeDisallowedEntityType, param, detail)
	}
}

// FromIsOfType is IsOfType anchored at the "from" parameter.
func FromIsOfType(et *entity.Type, allowed []string) Rule {
	return IsOfType(et, allowed, "from")
}

// ToIsOfType is IsOfType anchored at the "to" parameter.
func ToIsOfType(et *entity.Type, allowed []string) Rule {
	return IsOfType(et, allowed, "to")
}
