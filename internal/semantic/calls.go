package semantic

import (
	"context"
	"fmt"

	"langcore/internal/ast"
	"langcore/internal/diagnostics"
	"langcore/internal/entity"
	"langcore/internal/index"
)

// validateCalls walks every Call, member access, and `new` expression in u
// and checks it against the Unified Index: unknown members, wrong arity,
// argument type mismatches, non-constructible types, and availability
// violations.
func validateCalls(ctx context.Context, tree *ast.Tree, u *Unit, env *TypeEnv, snap *index.Snapshot, execCtx entity.Availability) []diagnostics.Diagnostic {
	if snap == nil {
		return nil
	}
	var diags []diagnostics.Diagnostic

	for _, stmt := range u.Stmts {
		tree.Walk(stmt, func(n ast.NodeID) {
			node := tree.Get(n)
			switch node.Kind {
			case ast.KindMember:
				diags = append(diags, checkMember(tree, n, env, snap, execCtx)...)
			case ast.KindCall:
				diags = append(diags, checkCall(ctx, tree, n, env, snap, execCtx)...)
			case ast.KindNew:
				diags = append(diags, checkNew(ctx, tree, n, env, snap)...)
			}
		})
	}
	return diags
}

func checkMember(tree *ast.Tree, id ast.NodeID, env *TypeEnv, snap *index.Snapshot, execCtx entity.Availability) []diagnostics.Diagnostic {
	children := tree.Children(id)
	if len(children) == 0 {
		return nil
	}
	baseType := env.NodeType(children[0])
	if baseType == typeUnknown {
		return nil // nothing to check against an unresolved base type
	}
	ent, ok := snap.FindByQualifiedName(baseType)
	if !ok {
		return nil
	}
	memberName := tree.Symbols.Name(tree.Get(id).Symbol)
	if memberName == "" {
		return nil
	}
	method, prop, found := snap.ResolveMember(ent, memberName)
	if !found {
		return []diagnostics.Diagnostic{{
			File:     tree.File,
			Span:     tree.Get(id).Span,
			Code:     diagnostics.CodeUnknownMember,
			Severity: diagnostics.SeverityError,
			Message:  fmt.Sprintf("%s has no member %q", baseType, memberName),
		}}
	}
	if method != nil && !method.HasAvailability(execCtx) {
		return []diagnostics.Diagnostic{{
			File:     tree.File,
			Span:     tree.Get(id).Span,
			Code:     diagnostics.CodeAvailabilityViolation,
			Severity: diagnostics.SeverityWarning,
			Message:  fmt.Sprintf("%s.%s is not available in this execution context", baseType, memberName),
		}}
	}
	if prop != nil && len(prop.Availability) > 0 && !containsAvailabilityLocal(prop.Availability, execCtx) {
		return []diagnostics.Diagnostic{{
			File:     tree.File,
			Span:     tree.Get(id).Span,
			Code:     diagnostics.CodeAvailabilityViolation,
			Severity: diagnostics.SeverityWarning,
			Message:  fmt.Sprintf("%s.%s is not available in this execution context", baseType, memberName),
		}}
	}
	return nil
}

func containsAvailabilityLocal(set []entity.Availability, ctx entity.Availability) bool {
	for _, a := range set {
		if a == ctx || a == entity.AvailabilityMixed {
			return true
		}
	}
	return false
}

func checkCall(ctx context.Context, tree *ast.Tree, id ast.NodeID, env *TypeEnv, snap *index.Snapshot, execCtx entity.Availability) []diagnostics.Diagnostic {
	children := tree.Children(id)
	if len(children) == 0 {
		return nil
	}
	callee := children[0]
	if tree.Get(callee).Kind != ast.KindMember {
		return nil // bare-name calls (local procedures) are resolved by the module's own symbol table, not the index
	}
	memberChildren := tree.Children(callee)
	if len(memberChildren) == 0 {
		return nil
	}
	baseType := env.NodeType(memberChildren[0])
	if baseType == typeUnknown {
		return nil
	}
	ent, ok := snap.FindByQualifiedName(baseType)
	if !ok {
		return nil
	}
	methodName := tree.Symbols.Name(tree.Get(callee).Symbol)
	method, _, found := snap.ResolveMember(ent, methodName)
	if !found || method == nil {
		return nil // already reported as UnknownMember by checkMember
	}

	args := children[1:]
	var diags []diagnostics.Diagnostic
	if len(args) < method.MinArity() || len(args) > method.MaxArity() {
		diags = append(diags, diagnostics.Diagnostic{
			File:     tree.File,
			Span:     tree.Get(id).Span,
			Code:     diagnostics.CodeWrongArgumentCount,
			Severity: diagnostics.SeverityError,
			Message:  fmt.Sprintf("%s.%s expects %d-%d arguments, got %d", baseType, methodName, method.MinArity(), method.MaxArity(), len(args)),
		})
	}
	for i, arg := range args {
		if i >= len(method.Params) {
			break
		}
		argType := env.NodeType(arg)
		paramType := method.Params[i].Type
		if argType == typeUnknown || paramType == "" {
			continue
		}
		if ok, _ := snap.IsAssignable(ctx, argType, paramType); !ok {
			diags = append(diags, diagnostics.Diagnostic{
				File:     tree.File,
				Span:     tree.Get(arg).Span,
				Code:     diagnostics.CodeArgumentTypeMismatch,
				Severity: diagnostics.SeverityError,
				Message:  fmt.Sprintf("argument %d of %s.%s: cannot use %s as %s", i+1, baseType, methodName, argType, paramType),
			})
		}
	}
	return diags
}

func checkNew(ctx context.Context, tree *ast.Tree, id ast.NodeID, env *TypeEnv, snap *index.Snapshot) []diagnostics.Diagnostic {
	children := tree.Children(id)
	if len(children) == 0 || tree.Get(children[0]).Kind != ast.KindIdentifier {
		return nil
	}
	typeName := tree.Symbols.Name(tree.Get(children[0]).Symbol)
	ent, ok := snap.FindByQualifiedName(typeName)
	if !ok {
		ent, ok = snap.FindByAlias(typeName)
	}
	if !ok {
		return []diagnostics.Diagnostic{{
			File:     tree.File,
			Span:     tree.Get(id).Span,
			Code:     diagnostics.CodeUnknownType,
			Severity: diagnostics.SeverityWarning,
			Message:  fmt.Sprintf("unknown type %q", typeName),
		}}
	}
	if !ent.Constructible {
		return []diagnostics.Diagnostic{{
			File:     tree.File,
			Span:     tree.Get(id).Span,
			Code:     diagnostics.CodeNotConstructible,
			Severity: diagnostics.SeverityError,
			Message:  fmt.Sprintf("%s cannot be constructed with `new`", ent.QualifiedName),
		}}
	}

	args := children[1:]
	var diags []diagnostics.Diagnostic
	if len(ent.Constructors) > 0 {
		matched := false
		for _, ctor := range ent.Constructors {
			if len(args) >= minArity(ctor) && len(args) <= len(ctor.Params) {
				matched = true
				break
			}
		}
		if !matched {
			diags = append(diags, diagnostics.Diagnostic{
				File:     tree.File,
				Span:     tree.Get(id).Span,
				Code:     diagnostics.CodeWrongArgumentCount,
				Severity: diagnostics.SeverityError,
				Message:  fmt.Sprintf("no constructor of %s accepts %d arguments", ent.QualifiedName, len(args)),
			})
		}
	}
	return diags
}

func minArity(ctor entity.Constructor) int {
	n := 0
	for i := len(ctor.Params) - 1; i >= 0; i-- {
		if !ctor.Params[i].HasDefault {
			break
		}
		n++
	}
	return len(ctor.Params) - n
}
