package db

import "fmt"

// PrepareBatch validates a write batch and splits it into the clear flag and the
// remaining put and remove mutations in batch order.
// Engines apply a batch by wiping all entries first if clear is set, then applying ops.
func PrepareBatch(batch []Mutation) (clear bool, ops []Mutation, err error) {
	ops = make([]Mutation, 0, len(batch))
	for i, m := range batch {
		switch m.Op {
		case OpClear:
			clear = true
		case OpPut:
			if m.Key == "" {
				return false, nil, fmt.Errorf("mutation %d: empty key", i)
			}
			if !m.Value.Type.Valid() {
				return false, nil, fmt.Errorf("mutation %d (%s): invalid value type %d", i, m.Key, m.Value.Type)
			}
			ops = append(ops, m)
		case OpRemove:
			if m.Key == "" {
				return false, nil, fmt.Errorf("mutation %d: empty key", i)
			}
			ops = append(ops, m)
		default:
			return false, nil, fmt.Errorf("mutation %d: unknown operation %d", i, m.Op)
		}
	}
	return clear, ops, nil
}

// ApplyBatch applies a prepared batch to an in-memory entry map.
// Puts that store an equal value and removes of missing keys are not reported as changes.
func ApplyBatch(entries map[string]Value, clear bool, ops []Mutation) (changed []string) {
	if clear {
		for k := range entries {
			delete(entries, k)
		}
		changed = append(changed, "")
	}
	for _, m := range ops {
		old, exists := entries[m.Key]
		switch m.Op {
		case OpPut:
			if exists && old.Equal(m.Value) {
				continue
			}
			entries[m.Key] = m.Value.Clone()
		case OpRemove:
			if !exists {
				continue
			}
			delete(entries, m.Key)
		}
		changed = append(changed, m.Key)
	}
	return changed
}
