package toolserver

import (
	"context"
	"fmt"

	"langcore/internal/entity"
	"langcore/internal/index"
)

// maxSuggestions bounds find_type's similar-name fallback list.
const maxSuggestions = 5

func toEntitySummary(e *entity.Entity) *entitySummary {
	return &entitySummary{
		ID:            e.ID,
		QualifiedName: e.QualifiedName,
		DisplayName:   e.DisplayName,
		Type:          string(e.Type),
		Kind:          string(e.Kind),
		Parents:       e.Parents,
		Constructible: e.Constructible,
	}
}

// handleFindType resolves p.Name by qualified name then alias; on a miss it
// returns the closest-spelled known names instead of an error, matching
// spec §4.7's "entity summary or similar-name suggestions" contract.
func handleFindType(snap *index.Snapshot, p findTypeParams) (findTypeResult, error) {
	if p.Name == "" {
		return findTypeResult{}, fmt.Errorf("name is required")
	}
	if e, ok := snap.FindByQualifiedName(p.Name); ok {
		return findTypeResult{Entity: toEntitySummary(e)}, nil
	}
	if e, ok := snap.FindByAlias(p.Name); ok {
		return findTypeResult{Entity: toEntitySummary(e)}, nil
	}
	return findTypeResult{Suggestions: nameSuggestions(snap, p.Name, maxSuggestions)}, nil
}

func toMethodSummary(m entity.Method, inherited bool, declaredOn string) methodSummary {
	params := make([]paramSummary, len(m.Params))
	for i, pm := range m.Params {
		params[i] = paramSummary{Name: pm.Name, Type: pm.Type, HasDefault: pm.HasDefault}
	}
	avail := make([]string, len(m.Availability))
	for i, a := range m.Availability {
		avail[i] = string(a)
	}
	return methodSummary{
		Name:         m.Name,
		Params:       params,
		ReturnType:   m.ReturnType,
		Availability: avail,
		Deprecated:   m.Deprecated,
		Inherited:    inherited,
		DeclaredOn:   declaredOn,
	}
}

// handleGetTypeMethods lists a type's own methods, plus its inherited ones
// when p.IncludeInherited is set; p.Context, when non-empty, filters to
// methods callable from that execution context.
func handleGetTypeMethods(snap *index.Snapshot, p getTypeMethodsParams) (getTypeMethodsResult, *protoError) {
	ent, ok := snap.FindByQualifiedName(p.Name)
	if !ok {
		ent, ok = snap.FindByAlias(p.Name)
	}
	if !ok {
		return getTypeMethodsResult{}, &protoError{Code: codeTypeNotFound, Message: fmt.Sprintf("unknown type %q", p.Name)}
	}

	ctx := entity.Availability(p.Context)
	own := map[string]bool{}
	for _, m := range ent.Methods {
		own[lowerName(m.Name)] = true
	}

	var out []methodSummary
	if p.IncludeInherited {
		for _, m := range snap.GetAllMethods(ent) {
			if ctx != "" && !m.HasAvailability(ctx) {
				continue
			}
			declaredOn := ent.QualifiedName
			inherited := !own[lowerName(m.Name)]
			out = append(out, toMethodSummary(m, inherited, declaredOn))
		}
	} else {
		for _, m := range ent.Methods {
			if ctx != "" && !m.HasAvailability(ctx) {
				continue
			}
			out = append(out, toMethodSummary(m, false, ent.QualifiedName))
		}
	}
	return getTypeMethodsResult{Methods: out}, nil
}

// handleCheckTypeCompatibility is a thin wrapper over Snapshot.IsAssignable,
// the same predicate the Semantic Analyzer uses for argument-type checks.
func handleCheckTypeCompatibility(ctx context.Context, snap *index.Snapshot, p checkTypeCompatibilityParams) (checkTypeCompatibilityResult, *protoError) {
	if p.From == "" || p.To == "" {
		return checkTypeCompatibilityResult{}, &protoError{Code: codeProtocolError, Message: "from and to are required"}
	}
	ok, rationale := snap.IsAssignable(ctx, p.From, p.To)
	return checkTypeCompatibilityResult{Compatible: ok, Rationale: rationale}, nil
}

// handleValidateMethodCall checks an object_type.method_name(args) call the
// same way internal/semantic.checkCall does: unknown member, arity, then
// per-argument assignability, given args as the declared type of each
// argument expression (the tool-call caller has no AST to offer a real
// expression node).
func handleValidateMethodCall(ctx context.Context, snap *index.Snapshot, execCtx entity.Availability, p validateMethodCallParams) (validateMethodCallResult, *protoError) {
	if p.ObjectType == "" || p.MethodName == "" {
		return validateMethodCallResult{}, &protoError{Code: codeProtocolError, Message: "object_type and method_name are required"}
	}
	ent, ok := snap.FindByQualifiedName(p.ObjectType)
	if !ok {
		ent, ok = snap.FindByAlias(p.ObjectType)
	}
	if !ok {
		return validateMethodCallResult{}, &protoError{Code: codeTypeNotFound, Message: fmt.Sprintf("unknown type %q", p.ObjectType)}
	}

	method, _, found := snap.ResolveMember(ent, p.MethodName)
	if !found || method == nil {
		return validateMethodCallResult{}, &protoError{Code: codeMemberNotFound, Message: fmt.Sprintf("%s has no member %q", p.ObjectType, p.MethodName)}
	}

	callCtx := execCtx
	if p.Context != "" {
		callCtx = entity.Availability(p.Context)
	}
	if !method.HasAvailability(callCtx) {
		return validateMethodCallResult{
			Valid:            false,
			Reason:           fmt.Sprintf("%s.%s is not available in the %q execution context", p.ObjectType, p.MethodName, callCtx),
			ClosestSignature: sig(*method, p.ObjectType),
		}, nil
	}

	if len(p.Args) < method.MinArity() || len(p.Args) > method.MaxArity() {
		return validateMethodCallResult{
			Valid:            false,
			Reason:           fmt.Sprintf("expects %d-%d arguments, got %d", method.MinArity(), method.MaxArity(), len(p.Args)),
			ClosestSignature: sig(*method, p.ObjectType),
		}, nil
	}

	for i, argType := range p.Args {
		if i >= len(method.Params) || argType == "" {
			continue
		}
		paramType := method.Params[i].Type
		if paramType == "" {
			continue
		}
		if ok, _ := snap.IsAssignable(ctx, argType, paramType); !ok {
			return validateMethodCallResult{
				Valid:            false,
				Reason:           fmt.Sprintf("argument %d: cannot use %s as %s", i+1, argType, paramType),
				ClosestSignature: sig(*method, p.ObjectType),
			}, nil
		}
	}

	return validateMethodCallResult{Valid: true}, nil
}

func sig(m entity.Method, declaredOn string) *methodSummary {
	s := toMethodSummary(m, false, declaredOn)
	return &s
}

func lowerName(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
