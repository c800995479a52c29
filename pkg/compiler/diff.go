package compiler

import (
	"slices"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Difference compares two artifacts.
type Difference struct {
	// Expression is the character diff from the left to the right expression.
	Expression []diffmatchpatch.Diff

	ReferencesAdded   []string
	ReferencesRemoved []string

	ConstantsAdded   []string
	ConstantsRemoved []string
	// ConstantsChanged lists constants present in both with a different
	// shape or value.
	ConstantsChanged []string
}

// Equal reports whether the artifacts compile to the same expression and
// parameter tables.
func (d Difference) Equal() bool {
	for _, part := range d.Expression {
		if part.Type != diffmatchpatch.DiffEqual {
			return false
		}
	}

	return len(d.ReferencesAdded) == 0 && len(d.ReferencesRemoved) == 0 &&
		len(d.ConstantsAdded) == 0 && len(d.ConstantsRemoved) == 0 && len(d.ConstantsChanged) == 0
}

// Diff compares left and right.
func Diff(left, right *Artifact) Difference {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(left.Expression, right.Expression, false))

	leftRefs := referenceSet(left)
	rightRefs := referenceSet(right)

	leftConsts := constantSet(left)
	rightConsts := constantSet(right)

	diff := Difference{
		Expression:        diffs,
		ReferencesAdded:   missingFrom(rightRefs, leftRefs),
		ReferencesRemoved: missingFrom(leftRefs, rightRefs),
		ConstantsAdded:    missingFrom(rightConsts, leftConsts),
		ConstantsRemoved:  missingFrom(leftConsts, rightConsts),
	}

	for name, literal := range leftConsts {
		other, ok := rightConsts[name]
		if ok && other != literal {
			diff.ConstantsChanged = append(diff.ConstantsChanged, name)
		}
	}

	slices.Sort(diff.ConstantsChanged)

	return diff
}

// referenceSet maps reference names to their object types.
func referenceSet(artifact *Artifact) map[string]string {
	set := make(map[string]string, len(artifact.References))
	for _, reference := range artifact.References {
		set[reference.Name] = reference.ObjectType
	}

	return set
}

// constantSet maps constant names to "shape literal".
func constantSet(artifact *Artifact) map[string]string {
	set := make(map[string]string, len(artifact.Constants))
	for _, constant := range artifact.Constants {
		set[constant.Name] = constant.Shape + " " + constant.Literal
	}

	return set
}

// missingFrom returns the sorted keys of have that are absent from other.
func missingFrom(have, other map[string]string) []string {
	var missing []string

	for name := range have {
		if _, ok := other[name]; !ok {
			missing = append(missing, name)
		}
	}

	slices.Sort(missing)

	return missing
}
