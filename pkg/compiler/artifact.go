// Package compiler turns expression documents into cached, serializable
// artifacts.
package compiler

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/Sumatoshi-tech/exprgraph/pkg/expr"
)

// artifactOverhead approximates the fixed cost of an Artifact and its slices.
const artifactOverhead = 256

// Artifact is the compiled form of one document: the expression string and
// the parameter tables a host must bind before starting the animation.
type Artifact struct {
	Name       string                   `json:"name"`
	SourceHash string                   `json:"source_hash"`
	Expression string                   `json:"expression"`
	References []expr.CompiledReference `json:"references"`
	Constants  []expr.CompiledConstant  `json:"constants"`
	NodeCount  int                      `json:"node_count"`
}

// Size implements cache.Sized.
func (artifact *Artifact) Size() int64 {
	size := int64(artifactOverhead + len(artifact.Name) + len(artifact.SourceHash) + len(artifact.Expression))

	for _, reference := range artifact.References {
		size += int64(len(reference.Name) + len(reference.ObjectType))
	}

	for _, constant := range artifact.Constants {
		size += int64(len(constant.Name) + len(constant.Shape) + len(constant.Literal))
	}

	return size
}

// withName returns artifact itself when it already carries name, else a
// shallow copy renamed. Cached artifacts are shared and never mutated.
func (artifact *Artifact) withName(name string) *Artifact {
	if name == "" || name == artifact.Name {
		return artifact
	}

	renamed := *artifact
	renamed.Name = name

	return &renamed
}

func newArtifact(name, hash string, compiled *expr.Compiled) *Artifact {
	return &Artifact{
		Name:       name,
		SourceHash: hash,
		Expression: compiled.Expression,
		References: compiled.References,
		Constants:  compiled.Constants,
		NodeCount:  compiled.NodeCount,
	}
}

// HashSource returns the hex sha256 of a document's bytes.
func HashSource(data []byte) string {
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])
}
