// Package reconcile computes the mutations needed to turn a server-known
// collection into a user-edited one.
//
// Diff is pure: it never talks to the backend and never validates its input.
// Callers filter invalid entries first (see FilterValid) and then execute the
// returned Plan. Create, Update and Delete never share a key, so their calls may
// be issued concurrently and in any order.
package reconcile

// Plan is the result of diffing existing entities (E) against desired ones (T).
type Plan[E, T any] struct {
	Create []T
	Update []T
	Delete []E
}

// Empty reports whether applying the plan would be a no-op.
func (p Plan[E, T]) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// Len is the number of backend calls needed to apply the plan.
func (p Plan[E, T]) Len() int {
	return len(p.Create) + len(p.Update) + len(p.Delete)
}

// Diff matches existing and target by key. A target with an unknown key is
// created, a target whose existing match differs per changed is updated, and an
// existing entity with no target is deleted. Entries that match and are
// unchanged appear nowhere. Output preserves input order.
//
// Keys are assumed unique within each input; when a key repeats, the first
// existing entry is the one compared against.
func Diff[E, T any, K comparable](
	existing []E,
	target []T,
	existingKey func(E) K,
	targetKey func(T) K,
	changed func(E, T) bool,
) Plan[E, T] {
	byKey := make(map[K]E, len(existing))
	for _, e := range existing {
		k := existingKey(e)
		if _, dup := byKey[k]; !dup {
			byKey[k] = e
		}
	}

	wanted := make(map[K]struct{}, len(target))
	var plan Plan[E, T]
	for _, t := range target {
		k := targetKey(t)
		wanted[k] = struct{}{}
		e, ok := byKey[k]
		switch {
		case !ok:
			plan.Create = append(plan.Create, t)
		case changed(e, t):
			plan.Update = append(plan.Update, t)
		}
	}

	for _, e := range existing {
		if _, ok := wanted[existingKey(e)]; !ok {
			plan.Delete = append(plan.Delete, e)
		}
	}
	return plan
}

// Keys returns the keys touched by each part of the plan.
func Keys[E, T any, K comparable](p Plan[E, T], existingKey func(E) K, targetKey func(T) K) (create, update, del []K) {
	for _, t := range p.Create {
		create = append(create, targetKey(t))
	}
	for _, t := range p.Update {
		update = append(update, targetKey(t))
	}
	for _, e := range p.Delete {
		del = append(del, existingKey(e))
	}
	return create, update, del
}
