package expr

import (
	"golang.org/x/text/cases"
)

// Param is a named constant parameter.
type Param struct {
	Name  string
	Value Value
}

// ParamTable is an insertion-ordered map of constant parameters keyed by
// case-insensitive name. The zero value is ready to use.
type ParamTable struct {
	index  map[string]int
	params []Param
}

// foldName returns the case-folded key for name. A Caser holds state, so a
// fresh one is built per call.
func foldName(name string) string {
	return cases.Fold().String(name)
}

// Len returns the number of parameters.
func (table *ParamTable) Len() int {
	if table == nil {
		return 0
	}

	return len(table.params)
}

// Get returns the value stored under name.
func (table *ParamTable) Get(name string) (Value, bool) {
	if table == nil || table.index == nil {
		return nil, false
	}

	pos, ok := table.index[foldName(name)]
	if !ok {
		return nil, false
	}

	return table.params[pos].Value, true
}

// Set stores value under name, replacing any existing entry in place.
func (table *ParamTable) Set(name string, value Value) {
	key := foldName(name)

	if table.index == nil {
		table.index = make(map[string]int)
	}

	if pos, ok := table.index[key]; ok {
		table.params[pos] = Param{Name: name, Value: value}

		return
	}

	table.index[key] = len(table.params)
	table.params = append(table.params, Param{Name: name, Value: value})
}

// SetIfAbsent stores value under name only when no entry exists yet and
// reports whether it did.
func (table *ParamTable) SetIfAbsent(name string, value Value) bool {
	if _, ok := table.Get(name); ok {
		return false
	}

	table.Set(name, value)

	return true
}

// Params returns a copy of the parameters in insertion order.
func (table *ParamTable) Params() []Param {
	if table == nil {
		return nil
	}

	out := make([]Param, len(table.params))
	copy(out, table.params)

	return out
}

func (table *ParamTable) clone() *ParamTable {
	out := &ParamTable{}

	if table == nil {
		return out
	}

	for _, param := range table.params {
		out.Set(param.Name, param.Value)
	}

	return out
}
