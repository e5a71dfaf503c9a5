package engine

import "context"

// Complete resolves a ProtoJson tree to plain Json against mapping
// (§4.4): PureJson passes through untouched, composites recurse field by
// field / element by element, and a Deferred hole is resolved by the
// matching Mapping's Subobject, then its returned proto is completed in
// turn (recursively, possibly against a different mapping).
//
// Completion is total (§4.4 invariant): every Deferred is resolved by
// exactly one sub-interpreter, or a Deferral Problem is produced in its
// place (§8 law 6: errors non-empty iff some Deferred was unresolvable
// or a capability call failed).
func Complete(ctx context.Context, proto ProtoJson, mapping Mapping) Result[Json] {
	switch p := proto.(type) {
	case *PureJson:
		return Succeed(p.Value)

	case *ProtoObject:
		om := NewOrderedMap()
		var problems []*Problem
		for _, f := range p.Fields {
			r := Complete(ctx, f.Value, mapping)
			v, ok := r.Value()
			problems = append(problems, r.Problems()...)
			if ok {
				om.Set(f.Name, v)
			}
		}
		return Warn[Json](om, problems...)

	case *ProtoArray:
		values := make([]Json, 0, len(p.Elements))
		var problems []*Problem
		for _, e := range p.Elements {
			r := Complete(ctx, e, mapping)
			v, ok := r.Value()
			problems = append(problems, r.Problems()...)
			if ok {
				values = append(values, v)
			}
		}
		return Warn[Json](values, problems...)

	case *DeferredJson:
		return completeDeferred(ctx, p, mapping)

	default:
		return Fail[Json](NewProblem(BadQuery, "unknown ProtoJson node: %T", proto))
	}
}

func completeDeferred(ctx context.Context, d *DeferredJson, mapping Mapping) Result[Json] {
	target := mapping
	if d.TargetMapping != nil {
		target = d.TargetMapping
	}

	sub, ok := LookupSubobject(target, d.Tpe, d.Name)
	if !ok {
		return Fail[Json](ProblemAt(d.Cursor.Context(), Deferral, []string{d.Name},
			"field %q on type %s could not be resolved by any mapping", d.Name, d.Tpe))
	}

	join := sub.Join
	if join == nil {
		join = IdentityJoin
	}
	jr := join(d.Cursor, d.Query)
	subquery, ok := jr.Value()
	if !ok {
		return Fail[Json](jr.Problems()...)
	}

	fieldName, _, sel, _, selOK := PossiblyRenamedSelect(subquery)
	var args Args
	var child Query = subquery
	if selOK {
		fieldName, args, child = sel.Name, sel.Args, sel.Child
	} else {
		fieldName = d.Name
	}

	proto := sub.Run(ctx, fieldName, args, child)
	value, hasValue := proto.Value()
	if !hasValue {
		return Fail[Json](append(jr.Problems(), proto.Problems()...)...)
	}

	completed := Complete(ctx, value, sub.Mapping)
	v, ok := completed.Value()
	problems := append(append(jr.Problems(), proto.Problems()...), completed.Problems()...)
	if !ok {
		return Fail[Json](problems...)
	}
	return Warn(v, problems...)
}
