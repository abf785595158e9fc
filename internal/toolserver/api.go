package toolserver

import (
	"context"
	"fmt"

	"langcore/internal/entity"
	"langcore/internal/index"
)

// EntitySummary, MethodSummary and ParamSummary are exported aliases of the
// wire-level summaries, so a direct Go caller (the CLI) sees the same shape
// a Tool-Call Server client would.
type (
	EntitySummary = entitySummary
	MethodSummary = methodSummary
	ParamSummary  = paramSummary
)

// FindType is find_type's logic exposed for direct Go callers, such as the
// CLI's one-shot `find` subcommand, instead of going through NDJSON.
func FindType(snap *index.Snapshot, name string) (*EntitySummary, []string, error) {
	result, err := handleFindType(snap, findTypeParams{Name: name})
	if err != nil {
		return nil, nil, err
	}
	return result.Entity, result.Suggestions, nil
}

// GetTypeMethods is get_type_methods's logic exposed for direct Go callers.
func GetTypeMethods(snap *index.Snapshot, name string, includeInherited bool, execCtx entity.Availability) ([]MethodSummary, error) {
	result, perr := handleGetTypeMethods(snap, getTypeMethodsParams{
		Name:             name,
		IncludeInherited: includeInherited,
		Context:          string(execCtx),
	})
	if perr != nil {
		return nil, fmt.Errorf("%s", perr.Message)
	}
	return result.Methods, nil
}

// CheckTypeCompatibility is check_type_compatibility's logic exposed for
// direct Go callers, such as the CLI's one-shot `compat` subcommand.
func CheckTypeCompatibility(ctx context.Context, snap *index.Snapshot, from, to string) (compatible bool, rationale string, err error) {
	result, perr := handleCheckTypeCompatibility(ctx, snap, checkTypeCompatibilityParams{From: from, To: to})
	if perr != nil {
		return false, "", fmt.Errorf("%s", perr.Message)
	}
	return result.Compatible, result.Rationale, nil
}
