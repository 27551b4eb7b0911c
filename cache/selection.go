package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// SelectionTuple is the canonical cache key shape from spec section 3: a
// sorted sequence of (name, value) selection pairs, a sorted sequence of
// (name, value) configurable pairs, the requesting user's identity, and
// the entity being resolved (its type and name).
type SelectionTuple struct {
	EntityType    string
	EntityName    string
	UserIdentity  string
	Selections    map[string]string
	Configurables map[string]string
}

type pair struct {
	Name  string `json:"n"`
	Value string `json:"v"`
}

func sortedPairs(m map[string]string) []pair {
	pairs := make([]pair, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, pair{Name: k, Value: v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Name < pairs[j].Name })
	return pairs
}

// Key renders the tuple into a fixed-width, order-independent string,
// Go's pragmatic stand-in for the source's naturally-hashable Python
// tuple: JSON-encode the canonicalized (sorted) shape, then SHA-256 it.
func (t SelectionTuple) Key() string {
	canonical := struct {
		EntityType    string `json:"entity_type"`
		EntityName    string `json:"entity_name"`
		UserIdentity  string `json:"user_identity"`
		Selections    []pair `json:"selections"`
		Configurables []pair `json:"configurables"`
	}{
		EntityType:    t.EntityType,
		EntityName:    t.EntityName,
		UserIdentity:  t.UserIdentity,
		Selections:    sortedPairs(t.Selections),
		Configurables: sortedPairs(t.Configurables),
	}
	b, _ := json.Marshal(canonical)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
