package reconcile

// Diff computes the actions that converge target toward reference, in ascending key order.
// Keys present only in target are never inspected. Neither input is modified.
func Diff(reference, target *KeyedRowSet) []Action {
	var actions []Action
	for _, key := range reference.Keys() {
		refRow, _ := reference.Get(key)
		targetRow, exists := target.Get(key)
		switch {
		case !exists:
			actions = append(actions, InsertAction(key, refRow))
		case !refRow.Equal(targetRow):
			actions = append(actions, UpdateAction(key, refRow))
		}
	}
	return actions
}

// countTargetOnly returns the number of target keys absent from reference.
func countTargetOnly(reference, target *KeyedRowSet) int {
	n := 0
	for id := range target.rows {
		if _, ok := reference.rows[id]; !ok {
			n++
		}
	}
	return n
}
